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

package bytestream

// Sentinel errors.
const (
	ReadError  = "bytestream: read error: %v"
	WriteError = "bytestream: write error: %v"
	ReadOnly   = "bytestream: stream is read-only"
	Locked     = "bytestream: %s is in use by another process"
	Range      = "bytestream: access of %d bytes at %d exceeds size %d"
)

// Stream is a randomly addressable store of bytes.
type Stream interface {
	// the size of the stream in bytes
	Size() int64

	// read len(buf) bytes starting at offset. the buffer is filled
	// completely or an error is returned
	Read(offset int64, buf []byte) error

	// write all of buf starting at offset
	Write(offset int64, buf []byte) error

	IsReadOnly() bool

	Close() error
}

// Formattable is implemented by streams that can be resized and cleared.
// Disk drives use this to create a blank image in place of the current one.
type Formattable interface {
	// Format the stream to the given size. All bytes are zero afterwards
	Format(size int64) error
}

// checkRange makes sure an access of l bytes at offset lies inside size.
func checkRange(offset int64, l int, size int64) bool {
	return offset >= 0 && offset+int64(l) <= size
}
