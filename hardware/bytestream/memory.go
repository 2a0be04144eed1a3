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
	"github.com/jetsetilly/sio800/curated"
)

// Memory is a Stream backed by a slice of bytes.
type Memory struct {
	data     []byte
	readOnly bool
}

// NewMemory is the preferred method of initialisation for the Memory type.
// The data slice is used directly and is not copied.
func NewMemory(data []byte, readOnly bool) *Memory {
	return &Memory{
		data:     data,
		readOnly: readOnly,
	}
}

// Size implements the Stream interface.
func (m *Memory) Size() int64 {
	return int64(len(m.data))
}

// Read implements the Stream interface.
func (m *Memory) Read(offset int64, buf []byte) error {
	if !checkRange(offset, len(buf), m.Size()) {
		return curated.Errorf(ReadError, curated.Errorf(Range, len(buf), offset, m.Size()))
	}
	copy(buf, m.data[offset:])
	return nil
}

// Write implements the Stream interface.
func (m *Memory) Write(offset int64, buf []byte) error {
	if m.readOnly {
		return curated.Errorf(WriteError, curated.Errorf(ReadOnly))
	}
	if !checkRange(offset, len(buf), m.Size()) {
		return curated.Errorf(WriteError, curated.Errorf(Range, len(buf), offset, m.Size()))
	}
	copy(m.data[offset:], buf)
	return nil
}

// IsReadOnly implements the Stream interface.
func (m *Memory) IsReadOnly() bool {
	return m.readOnly
}

// Close implements the Stream interface. Memory streams hold no resources.
func (m *Memory) Close() error {
	return nil
}

// Format implements the Formattable interface.
func (m *Memory) Format(size int64) error {
	if m.readOnly {
		return curated.Errorf(WriteError, curated.Errorf(ReadOnly))
	}
	m.data = make([]byte, size)
	return nil
}

// Bytes returns the underlying data. It should not be modified.
func (m *Memory) Bytes() []byte {
	return m.data
}
