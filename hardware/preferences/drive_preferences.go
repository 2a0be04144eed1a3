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
	"github.com/jetsetilly/sio800/prefs"
)

// DrivePreferences are the defaults for newly created disk drives.
type DrivePreferences struct {
	// name of the drive model. see diskdrive.ParseModel() for valid names
	Model prefs.String

	// insert images write-protected
	Protect prefs.Bool

	// add the seek and rotational delays of ATX images to read/write timing
	ATXTiming prefs.Bool
}

func newDrivePreferences() *DrivePreferences {
	p := &DrivePreferences{}
	p.Model.SetMaxLen(16)
	return p
}

func (p *DrivePreferences) add(dsk *prefs.Disk) error {
	if err := dsk.Add("drive.model", &p.Model); err != nil {
		return err
	}
	if err := dsk.Add("drive.protect", &p.Protect); err != nil {
		return err
	}
	return dsk.Add("drive.atxtiming", &p.ATXTiming)
}

// SetDefaults reverts the drive preferences to their default values.
func (p *DrivePreferences) SetDefaults() {
	p.Model.Set("810")
	p.Protect.Set(false)
	p.ATXTiming.Set(true)
}
