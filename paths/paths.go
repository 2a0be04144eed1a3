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

package paths

import (
	"os"
	"path/filepath"
)

const localConfigDir = ".sio800"
const userConfigDir = "sio800"

// ResourcePath returns the path of a file or sub-directory in the sio800
// configuration directory. The sub-directory is created if it does not
// exist. Either argument may be empty.
func ResourcePath(subPth string, file string) (string, error) {
	base, err := getBasePath()
	if err != nil {
		return "", err
	}

	pth := filepath.Join(base, subPth)
	if err := os.MkdirAll(pth, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(pth, file), nil
}

func getBasePath() (string, error) {
	if info, err := os.Stat(localConfigDir); err == nil && info.IsDir() {
		return localConfigDir, nil
	}

	cnf, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(cnf, userConfigDir), nil
}
