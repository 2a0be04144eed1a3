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
	"fmt"
	"strings"

	"github.com/jetsetilly/sio800/hardware/bytestream"
)

// Completion codes returned by ReadSector() and WriteSector().
const (
	Complete byte = 'C'
	Error    byte = 'E'
)

// Status is the collection of status flags for a disk image. The bits are
// the same as the status register of the floppy disk controller chip.
type Status uint8

// List of valid Status bits. Not every format sets every bit.
const (
	Busy      Status = 0x01
	DRQ       Status = 0x02
	LostData  Status = 0x04
	CRCError  Status = 0x08
	NotFound  Status = 0x10
	Deleted   Status = 0x20
	Protected Status = 0x40
	NotReady  Status = 0x80
)

func (s Status) String() string {
	if s == 0 {
		return "ok"
	}

	b := strings.Builder{}
	flag := func(f Status, n string) {
		if s&f == f {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(n)
		}
	}
	flag(Busy, "busy")
	flag(DRQ, "drq")
	flag(LostData, "lost")
	flag(CRCError, "crc")
	flag(NotFound, "notfound")
	flag(Deleted, "deleted")
	flag(Protected, "protected")
	flag(NotReady, "notready")
	return b.String()
}

// DiskImage is implemented by every disk image format.
type DiskImage interface {
	fmt.Stringer

	// Open the image from the stream. The image takes ownership of the
	// stream. An image can only be opened once
	Open(stream bytestream.Stream) error

	// the size of a sector in bytes. the size can differ between sectors
	// of the same image
	SectorSize(sector int) int

	// the number of sectors in the image
	SectorCount() int

	// the status flags resulting from the most recent read or write
	Status() Status

	// read sector into buffer, which must be at least SectorSize() bytes
	// long. returns Complete or Error
	ReadSector(sector int, buffer []byte) byte

	// write sector from the buffer, which must be at least SectorSize()
	// bytes long. returns Complete or Error
	WriteSector(sector int, buffer []byte) byte

	// Protect the image. After the call all writes will fail. Protecting an
	// image cannot be undone
	Protect()

	// Reset the image to the state it was in after opening
	Reset()
}

// Timed is implemented by images that simulate the rotation of the disk.
//
// Delays are measured in lines (horizontal blanks) of the emulated display,
// of which there are approximately 15000 per second.
type Timed interface {
	// advance the position of the disk under the head by the number of
	// microseconds
	PassTime(micros int)

	// the delay caused by seeking and rotation during the most recent
	// ReadSector() or WriteSector()
	Delay() int
}

// Cataloguer is implemented by images that have an internal structure worth
// showing to the user.
type Cataloguer interface {
	Catalog() any
}

// validSector is true if the sector number is between one and the number of
// sectors.
func validSector(img DiskImage, sector int) bool {
	return sector > 0 && sector <= img.SectorCount()
}
