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

package environment

import (
	"github.com/jetsetilly/sio800/hardware/preferences"
	"github.com/jetsetilly/sio800/random"
)

// Label is used to name the environment.
type Label string

// MainEmulation is the label used for the main emulation.
const MainEmulation = Label("")

// Environment is used to provide context for an emulation. Disk drives and
// disk images receive the environment when they are created.
type Environment struct {
	Label Label

	// any randomisation required by the emulation should be retrieved through
	// this structure
	Random *random.Random

	// the emulation preferences
	Prefs *preferences.Preferences
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type. If prefs is nil then default preferences, not backed by
// a file, are used.
func NewEnvironment(label Label, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label:  label,
		Random: random.NewRandom(nil),
	}

	if prefs == nil {
		var err error
		prefs, err = preferences.NewPreferencesFromFile("")
		if err != nil {
			return nil, err
		}
	}
	env.Prefs = prefs
	env.Random.ZeroSeed = prefs.ZeroSeed.Get().(bool)

	return env, nil
}

// Normalise ensures the environment is in a known default state. Useful for
// regression testing where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
	env.Prefs.ZeroSeed.Set(true)
	env.Random.ZeroSeed = true
}

// IsMainEmulation returns true if the environment is the main emulation.
func (env *Environment) IsMainEmulation() bool {
	return env.Label == MainEmulation
}

// IsEmulation checks the emulation label and returns true if it matches.
func (env *Environment) IsEmulation(label Label) bool {
	return env.Label == label
}

// AllowLogging implements the logger.Permission interface. Only the main
// emulation is allowed to add entries to the central log.
func (env *Environment) AllowLogging() bool {
	return env.IsMainEmulation()
}
