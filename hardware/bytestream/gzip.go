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
	"bytes"
	"compress/gzip"
	"io"

	"github.com/jetsetilly/sio800/curated"
)

// the gzip magic number
var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip returns true if the data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// OpenGzip decompresses the entire gzip stream into memory. The resulting
// stream is read-only because there is no way of writing the changes back.
func OpenGzip(r io.Reader) (*Memory, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, curated.Errorf(ReadError, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, curated.Errorf(ReadError, err)
	}

	return NewMemory(data, true), nil
}
