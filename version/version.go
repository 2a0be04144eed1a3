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

// Package version reports the version of the application. The version
// number is set by the linker when building a release:
//
//	go build -ldflags "-X github.com/jetsetilly/sio800/version.number=v0.1.0"
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "Sio800"

// set by the linker
var number string

var version string
var revision string

// Version returns the version string and the revision string. The third
// value is true if this is a numbered release.
//
// A version of "unreleased" means that the binary was built from a VCS
// checkout without a version number. "local" means there is no version
// information at all, which happens with "go run".
func Version() (string, string, bool) {
	return version, revision, number != "" && version == number
}

// String returns a version string suitable for the --version flag.
func String() string {
	v, r, release := Version()
	if release {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, r)
}

func init() {
	var vcs bool
	var modified bool

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	switch {
	case revision == "":
		revision = "no revision information"
	case modified:
		revision += "+dirty"
	}

	switch {
	case number != "":
		version = number
	case vcs:
		version = "unreleased"
	default:
		version = "local"
	}
}
