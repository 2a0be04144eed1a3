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
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"github.com/jetsetilly/sio800/curated"
)

// File is a Stream backed by a file on the host.
//
// The file is locked with an advisory lock for as long as it is open. A
// writable file is locked exclusively and a read-only file is locked shared,
// so an image can be inserted into more than one drive only if no drive can
// write to it.
type File struct {
	f        *os.File
	name     string
	size     int64
	readOnly bool
}

// OpenFile opens the named file for reading and writing. If the file cannot
// be opened for writing, because of permissions or because forceReadOnly is
// true, it is opened read-only.
func OpenFile(name string, forceReadOnly bool) (*File, error) {
	fl := &File{name: name}

	var err error
	if !forceReadOnly {
		fl.f, err = os.OpenFile(name, os.O_RDWR, 0)
		if err != nil && !errors.Is(err, fs.ErrPermission) && !errors.Is(err, unix.EROFS) {
			return nil, curated.Errorf(ReadError, err)
		}
	}

	if fl.f == nil {
		fl.readOnly = true
		fl.f, err = os.Open(name)
		if err != nil {
			return nil, curated.Errorf(ReadError, err)
		}
	}

	how := unix.LOCK_EX
	if fl.readOnly {
		how = unix.LOCK_SH
	}
	if err := unix.Flock(int(fl.f.Fd()), how|unix.LOCK_NB); err != nil {
		fl.f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, curated.Errorf(Locked, name)
		}
		return nil, curated.Errorf(ReadError, err)
	}

	info, err := fl.f.Stat()
	if err != nil {
		fl.Close()
		return nil, curated.Errorf(ReadError, err)
	}
	fl.size = info.Size()

	return fl, nil
}

// Name returns the filename the stream was opened with.
func (fl *File) Name() string {
	return fl.name
}

// Size implements the Stream interface.
func (fl *File) Size() int64 {
	return fl.size
}

// Read implements the Stream interface.
func (fl *File) Read(offset int64, buf []byte) error {
	if !checkRange(offset, len(buf), fl.size) {
		return curated.Errorf(ReadError, curated.Errorf(Range, len(buf), offset, fl.size))
	}
	if _, err := fl.f.ReadAt(buf, offset); err != nil {
		return curated.Errorf(ReadError, err)
	}
	return nil
}

// Write implements the Stream interface.
func (fl *File) Write(offset int64, buf []byte) error {
	if fl.readOnly {
		return curated.Errorf(WriteError, curated.Errorf(ReadOnly))
	}
	if !checkRange(offset, len(buf), fl.size) {
		return curated.Errorf(WriteError, curated.Errorf(Range, len(buf), offset, fl.size))
	}
	if _, err := fl.f.WriteAt(buf, offset); err != nil {
		return curated.Errorf(WriteError, err)
	}
	return nil
}

// IsReadOnly implements the Stream interface.
func (fl *File) IsReadOnly() bool {
	return fl.readOnly
}

// Close implements the Stream interface. The lock is released when the file
// is closed.
func (fl *File) Close() error {
	if fl.f == nil {
		return nil
	}
	_ = unix.Flock(int(fl.f.Fd()), unix.LOCK_UN)
	err := fl.f.Close()
	fl.f = nil
	return err
}

// Format implements the Formattable interface. The file is truncated and
// then extended with zero bytes.
func (fl *File) Format(size int64) error {
	if fl.readOnly {
		return curated.Errorf(WriteError, curated.Errorf(ReadOnly))
	}
	if err := fl.f.Truncate(0); err != nil {
		return curated.Errorf(WriteError, err)
	}
	if err := fl.f.Truncate(size); err != nil {
		return curated.Errorf(WriteError, err)
	}
	fl.size = size
	return nil
}

// CreateFile creates (or truncates) the named file and returns it as an
// open, writable, zero-filled stream of the given size.
func CreateFile(name string, size int64) (*File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, curated.Errorf(WriteError, err)
	}
	f.Close()

	fl, err := OpenFile(name, false)
	if err != nil {
		return nil, err
	}
	if fl.readOnly {
		fl.Close()
		return nil, curated.Errorf(WriteError, curated.Errorf(ReadOnly))
	}
	if err := fl.Format(size); err != nil {
		fl.Close()
		return nil, err
	}
	return fl, nil
}
