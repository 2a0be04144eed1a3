// This file is part of Sio800.
//
// Sio800 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Sio800 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Sio800.  If not, see <https://www.gnu.org/licenses/>.

package preferences

import (
	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/paths"
	"github.com/jetsetilly/sio800/prefs"
)

// Preferences for the emulated serial bus and the drives connected to it.
type Preferences struct {
	dsk *prefs.Disk

	SIO   *SIOPreferences
	Drive *DrivePreferences

	// use a fixed seed for random numbers (weak sectors in ATX images)
	ZeroSeed prefs.Bool
}

func (p *Preferences) String() string {
	if p.dsk == nil {
		return ""
	}
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. The values are loaded from the default preferences file.
// A missing preferences file is not an error.
func NewPreferences() (*Preferences, error) {
	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	return NewPreferencesFromFile(pth)
}

// NewPreferencesFromFile is like NewPreferences but with an explicit path.
// An empty path creates preferences that are never loaded or saved.
func NewPreferencesFromFile(pth string) (*Preferences, error) {
	p := &Preferences{
		SIO:   newSIOPreferences(),
		Drive: newDrivePreferences(),
	}
	p.SetDefaults()

	if pth == "" {
		return p, nil
	}

	var err error
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	if err := p.SIO.add(p.dsk); err != nil {
		return nil, err
	}
	if err := p.Drive.add(p.dsk); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("random.zeroseed", &p.ZeroSeed); err != nil {
		return nil, err
	}

	err = p.dsk.Load()
	if err != nil && !curated.Is(err, prefs.NoPrefsFile) {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.SIO.SetDefaults()
	p.Drive.SetDefaults()
	p.ZeroSeed.Set(false)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	if p.dsk == nil {
		return nil
	}
	return p.dsk.Load()
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	if p.dsk == nil {
		return nil
	}
	return p.dsk.Save()
}
