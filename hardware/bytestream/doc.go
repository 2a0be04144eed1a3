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

// Package bytestream provides the randomly addressable byte stores that disk
// images are read from and written to.
//
// The Stream interface is all a disk image needs. Three implementations are
// provided: File, which is backed by a file on the host and locks it while
// it is open; Memory, a slice of bytes; and the result of OpenGzip(), which
// is a read-only Memory holding the decompressed contents of a gzip stream.
//
// Reads and writes never extend a stream. An access beyond the end of the
// stream is an error.
package bytestream
