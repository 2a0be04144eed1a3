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

package diskloader

// FileExtensions is the list of file extensions that are recognised by the
// diskloader package. The image format is decided by the content of the
// file and not by the extension.
var FileExtensions = [...]string{
	".ATR", ".ATX", ".XFD", ".DCM", ".XEX", ".COM", ".EXE", ".BAS", ".LST",
	".ASM", ".M65", ".GZ", ".ATZ", ".XFZ",
}
