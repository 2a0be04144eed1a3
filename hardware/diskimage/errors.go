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

package diskimage

// Sentinel errors.
const (
	// the stream is not in the format of the image, or is corrupt beyond
	// repair
	FormatError = "disk image: format error: %v"

	// the underlying stream could not be read
	IoError = "disk image: i/o error: %v"

	AlreadyOpen = "disk image: already open"
	NotOpen     = "disk image: not open"

	// an offset inside a compressed stream is malformed
	OutOfRange = "disk image: out of range: %v"
)
