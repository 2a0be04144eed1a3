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

import (
	"io"
)

// Reader reads a Stream sequentially from the beginning. It implements the
// io.Reader interface.
type Reader struct {
	stream Stream
	offset int64
}

// NewReader is the preferred method of initialisation for the Reader type.
func NewReader(stream Stream) *Reader {
	return &Reader{stream: stream}
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	remaining := r.stream.Size() - r.offset
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if err := r.stream.Read(r.offset, p); err != nil {
		return 0, err
	}
	r.offset += int64(len(p))
	return len(p), nil
}
