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

import (
	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
)

// XFD implements the DiskImage interface for raw sector images.
//
// There is no header so the geometry is guessed from the size of the file.
// A file of exactly 720 sectors of 256 bytes is double density, with full
// length slots for the first three sectors. Everything else is assumed to
// have 128 byte sectors. This means that a double density image of any other
// size will not be read correctly.
type XFD struct {
	env    *environment.Environment
	stream bytestream.Stream

	protected bool

	sectorSize  int
	sectorShift int
	bytes       int64
}

// NewXFD is the preferred method of initialisation for the XFD type.
func NewXFD(env *environment.Environment) *XFD {
	return &XFD{
		env:         env,
		sectorSize:  128,
		sectorShift: 7,
	}
}

func (img *XFD) String() string {
	return "XFD"
}

// Open implements the DiskImage interface.
func (img *XFD) Open(stream bytestream.Stream) error {
	if img.stream != nil {
		return curated.Errorf(AlreadyOpen)
	}

	bytes := stream.Size()
	if bytes == 0 || bytes&0x7f != 0 {
		return curated.Errorf(FormatError, "file is not an xfd image")
	}

	if bytes == 720*256 {
		img.sectorSize = 256
		img.sectorShift = 8
	} else {
		img.sectorSize = 128
		img.sectorShift = 7
	}

	img.bytes = bytes
	img.protected = stream.IsReadOnly()
	img.stream = stream

	return nil
}

// SectorSize implements the DiskImage interface.
func (img *XFD) SectorSize(sector int) int {
	if sector <= 3 {
		return 128
	}
	return img.sectorSize
}

// SectorCount implements the DiskImage interface.
func (img *XFD) SectorCount() int {
	return int(img.bytes >> img.sectorShift)
}

func (img *XFD) offset(sector int) int64 {
	return int64(sector-1) << img.sectorShift
}

// Status implements the DiskImage interface.
func (img *XFD) Status() Status {
	if img.protected {
		return Protected
	}
	return 0
}

// ReadSector implements the DiskImage interface.
func (img *XFD) ReadSector(sector int, buffer []byte) byte {
	if img.stream == nil || !validSector(img, sector) {
		return Error
	}
	size := img.SectorSize(sector)
	if len(buffer) < size {
		return Error
	}
	if err := img.stream.Read(img.offset(sector), buffer[:size]); err != nil {
		return Error
	}
	return Complete
}

// WriteSector implements the DiskImage interface.
func (img *XFD) WriteSector(sector int, buffer []byte) byte {
	if img.stream == nil || img.protected || !validSector(img, sector) {
		return Error
	}
	size := img.SectorSize(sector)
	if len(buffer) < size {
		return Error
	}
	if err := img.stream.Write(img.offset(sector), buffer[:size]); err != nil {
		return Error
	}
	return Complete
}

// Protect implements the DiskImage interface.
func (img *XFD) Protect() {
	img.protected = true
}

// Reset implements the DiskImage interface.
func (img *XFD) Reset() {
}
