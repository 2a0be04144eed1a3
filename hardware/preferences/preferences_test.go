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

package preferences_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/sio800/hardware/preferences"
	"github.com/jetsetilly/sio800/prefs"
	"github.com/jetsetilly/sio800/test"
)

func TestDefaults(t *testing.T) {
	p, err := preferences.NewPreferencesFromFile("")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.SIO.CmdDelay.Get().(int), 50)
	test.ExpectEquality(t, p.SIO.FormatDelay.Get().(int), 400)
	test.ExpectEquality(t, p.Drive.Model.String(), "810")
	test.ExpectEquality(t, p.Drive.ATXTiming.Get().(bool), true)

	// preferences without a file can be saved and loaded without effect
	test.ExpectSuccess(t, p.Save())
	test.ExpectSuccess(t, p.Load())
	test.ExpectEquality(t, p.String(), "")

	// delays are limited
	test.ExpectFailure(t, p.SIO.ReadDelay.Set(500))
}

func TestSaveAndLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	p, err := preferences.NewPreferencesFromFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p.Drive.Model.Set("speedy"))
	test.ExpectSuccess(t, p.SIO.WriteDelay.Set(60))
	test.DemandSuccess(t, p.Save())

	q, err := preferences.NewPreferencesFromFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Drive.Model.String(), "speedy")
	test.ExpectEquality(t, q.SIO.WriteDelay.Get().(int), 60)

	q.SetDefaults()
	test.ExpectEquality(t, q.Drive.Model.String(), "810")

	// command line overrides
	prefs.PushCommandLineStack("sio.readdelay::10")
	r, err := preferences.NewPreferencesFromFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.SIO.ReadDelay.Get().(int), 10)
	prefs.PopCommandLineStack()
}
