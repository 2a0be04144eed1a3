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

// SIOPreferences are the response delays of the serial bus, measured in
// horizontal blanks (lines) of the emulated display.
type SIOPreferences struct {
	// delay between the end of a command frame and the acknowledgement
	CmdDelay prefs.Int

	// delay before the completion byte of a read, write or format
	ReadDelay   prefs.Int
	WriteDelay  prefs.Int
	FormatDelay prefs.Int
}

func newSIOPreferences() *SIOPreferences {
	p := &SIOPreferences{}
	p.CmdDelay.SetRange(0, 240)
	p.ReadDelay.SetRange(0, 240)
	p.WriteDelay.SetRange(0, 240)
	p.FormatDelay.SetRange(0, 1024)
	return p
}

func (p *SIOPreferences) add(dsk *prefs.Disk) error {
	if err := dsk.Add("sio.cmddelay", &p.CmdDelay); err != nil {
		return err
	}
	if err := dsk.Add("sio.readdelay", &p.ReadDelay); err != nil {
		return err
	}
	if err := dsk.Add("sio.writedelay", &p.WriteDelay); err != nil {
		return err
	}
	return dsk.Add("sio.formatdelay", &p.FormatDelay)
}

// SetDefaults reverts the SIO preferences to their default values.
func (p *SIOPreferences) SetDefaults() {
	p.CmdDelay.Set(50)
	p.ReadDelay.Set(50)
	p.WriteDelay.Set(50)
	p.FormatDelay.Set(400)
}
