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

package bytestream_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/test"
)

func TestMemory(t *testing.T) {
	m := bytestream.NewMemory(make([]byte, 16), false)
	test.ExpectEquality(t, m.Size(), int64(16))
	test.ExpectFailure(t, m.IsReadOnly())

	test.ExpectSuccess(t, m.Write(4, []byte{1, 2, 3}))
	b := make([]byte, 4)
	test.ExpectSuccess(t, m.Read(3, b))
	test.ExpectSuccess(t, bytes.Equal(b, []byte{0, 1, 2, 3}))

	// access beyond the end
	err := m.Read(14, b)
	test.ExpectSuccess(t, curated.Is(err, bytestream.ReadError))
	test.ExpectSuccess(t, curated.Has(err, bytestream.Range))
	test.ExpectFailure(t, m.Write(15, []byte{1, 2}))
	test.ExpectFailure(t, m.Read(-1, b))

	test.ExpectSuccess(t, m.Format(32))
	test.ExpectEquality(t, m.Size(), int64(32))
	test.ExpectSuccess(t, m.Read(4, b))
	test.ExpectSuccess(t, bytes.Equal(b, []byte{0, 0, 0, 0}))
}

func TestReadOnlyMemory(t *testing.T) {
	m := bytestream.NewMemory([]byte{1, 2, 3, 4}, true)
	test.ExpectSuccess(t, m.IsReadOnly())
	err := m.Write(0, []byte{9})
	test.ExpectSuccess(t, curated.Has(err, bytestream.ReadOnly))
	test.ExpectFailure(t, m.Format(10))
	test.ExpectEquality(t, m.Bytes()[0], byte(1))
}

func TestGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("hello disk"))
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, zw.Close())

	test.ExpectSuccess(t, bytestream.IsGzip(buf.Bytes()))
	test.ExpectFailure(t, bytestream.IsGzip([]byte{0x96, 0x02}))

	m, err := bytestream.OpenGzip(&buf)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, m.IsReadOnly())
	test.ExpectEquality(t, string(m.Bytes()), "hello disk")

	_, err = bytestream.OpenGzip(bytes.NewReader([]byte{1, 2, 3}))
	test.ExpectFailure(t, err)
}

func TestFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "test.xfd")

	f, err := bytestream.CreateFile(fn, 256)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.Size(), int64(256))
	test.ExpectFailure(t, f.IsReadOnly())
	test.ExpectEquality(t, f.Name(), fn)

	test.ExpectSuccess(t, f.Write(128, []byte{0xaa, 0xbb}))
	b := make([]byte, 2)
	test.ExpectSuccess(t, f.Read(128, b))
	test.ExpectEquality(t, b[1], byte(0xbb))
	test.ExpectFailure(t, f.Write(255, b))
	test.ExpectFailure(t, f.Read(256, b))

	// the file is locked exclusively while open
	_, err = bytestream.OpenFile(fn, false)
	test.ExpectSuccess(t, curated.Is(err, bytestream.Locked))

	test.ExpectSuccess(t, f.Format(128))
	test.ExpectEquality(t, f.Size(), int64(128))
	test.ExpectSuccess(t, f.Close())

	// closing twice is harmless
	test.ExpectSuccess(t, f.Close())

	info, err := os.Stat(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, info.Size(), int64(128))

	// read-only opens share the lock
	r1, err := bytestream.OpenFile(fn, true)
	test.DemandSuccess(t, err)
	r2, err := bytestream.OpenFile(fn, true)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, r1.IsReadOnly())
	test.ExpectFailure(t, r1.Write(0, []byte{1}))
	test.ExpectFailure(t, r1.Format(10))

	// but a writer cannot join them
	_, err = bytestream.OpenFile(fn, false)
	test.ExpectSuccess(t, curated.Is(err, bytestream.Locked))

	r1.Close()
	r2.Close()

	_, err = bytestream.OpenFile(filepath.Join(t.TempDir(), "missing"), false)
	test.ExpectFailure(t, err)
}

func TestReader(t *testing.T) {
	m := bytestream.NewMemory([]byte("sequential"), true)
	r := bytestream.NewReader(m)

	b := make([]byte, 4)
	n, err := r.Read(b)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 4)
	test.ExpectEquality(t, string(b), "sequ")

	rest, err := io.ReadAll(r)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, string(rest), "ential")

	_, err = r.Read(b)
	test.ExpectEquality(t, err, io.EOF)
}
