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
	"strings"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
)

// DOS 2 disk structure.
const (
	dosVTOC      = 0x168
	dosDirectory = 0x169

	// the VTOC and the eight directory sectors
	dosReserved = 9

	// sectors are always reserved up to this sector
	dosMinSectors = 0x170
)

// a boot sector that returns to the operating system with an error.
var unbootable = []byte{0x00, 0x01, 0x00, 0x07, 0x06, 0x07, 0x38, 0x60}

// StreamText implements the DiskImage interface for files that are not
// disks. The file is placed on a DOS 2 disk under the given name. The disk
// is not bootable.
type StreamText struct {
	env  *environment.Environment
	name string

	contents []byte
}

// NewStreamText is the preferred method of initialisation for the
// StreamText type. The name should be in the 8.3 form.
func NewStreamText(env *environment.Environment, name string) *StreamText {
	return &StreamText{
		env:  env,
		name: name,
	}
}

func (img *StreamText) String() string {
	return img.name
}

// dosFilename returns the name in the eleven byte form used by DOS 2
// directory entries.
func dosFilename(name string) []byte {
	n := []byte("           ")

	base, ext, _ := strings.Cut(strings.ToUpper(name), ".")
	if len(base) > 8 {
		base = base[:8]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	copy(n, base)
	copy(n[8:], ext)
	return n
}

// next data sector after sector, skipping the VTOC and directory.
func dosNextSector(sector int) int {
	sector++
	if sector == dosVTOC {
		sector += dosReserved
	}
	return sector
}

// Open implements the DiskImage interface.
func (img *StreamText) Open(stream bytestream.Stream) error {
	if img.contents != nil {
		return curated.Errorf(AlreadyOpen)
	}

	filesize := int(stream.Size())
	fileSectors := (filesize + dosDataBytes - 1) / dosDataBytes

	// three blank boot sectors
	count := fileSectors + 3
	if count < dosVTOC {
		count = dosMinSectors
	} else {
		count += dosReserved
	}

	img.contents = make([]byte, count<<7)
	copy(img.contents, unbootable)

	vtoc := img.contents[(dosVTOC-1)<<7:]
	vtoc[0] = 0x02
	vtoc[1] = byte(count - dosReserved - 3)
	vtoc[2] = byte((count - dosReserved - 3) >> 8)

	dir := img.contents[(dosDirectory-1)<<7:]
	dir[0] = 0x62
	dir[1] = byte(fileSectors)
	dir[2] = byte(fileSectors >> 8)
	dir[3] = 0x03
	dir[4] = 0x00
	copy(dir[5:], dosFilename(img.name))

	offset := 0
	for sector := 3; offset < filesize; sector = dosNextSector(sector) {
		dest := img.contents[(sector-1)<<7 : sector<<7]

		n := filesize - offset
		next := 0
		if n > dosDataBytes {
			n = dosDataBytes
			next = dosNextSector(sector)
		}

		if err := stream.Read(int64(offset), dest[:n]); err != nil {
			img.contents = nil
			return curated.Errorf(IoError, err)
		}

		dest[125] = byte(next >> 8)
		dest[126] = byte(next)
		dest[127] = byte(n)

		offset += n
	}

	return nil
}

// SectorSize implements the DiskImage interface.
func (img *StreamText) SectorSize(_ int) int {
	return 128
}

// SectorCount implements the DiskImage interface.
func (img *StreamText) SectorCount() int {
	return len(img.contents) >> 7
}

// Status implements the DiskImage interface.
func (img *StreamText) Status() Status {
	return Protected
}

// ReadSector implements the DiskImage interface.
func (img *StreamText) ReadSector(sector int, buffer []byte) byte {
	if img.contents == nil || !validSector(img, sector) || len(buffer) < 128 {
		return Error
	}
	copy(buffer, img.contents[(sector-1)<<7:sector<<7])
	return Complete
}

// WriteSector implements the DiskImage interface.
func (img *StreamText) WriteSector(_ int, _ []byte) byte {
	return Error
}

// Protect implements the DiskImage interface.
func (img *StreamText) Protect() {
}

// Reset implements the DiskImage interface.
func (img *StreamText) Reset() {
}
