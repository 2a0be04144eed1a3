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
	"encoding/binary"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/logger"
)

// the ATR header precedes the sector data.
const atrHeaderLen = 16

// the first two bytes of every ATR file.
var atrMagic = [2]byte{0x96, 0x02}

// atrHeader is the decoded ATR header. The size field counts 16 byte
// paragraphs of sector data, not sectors.
type atrHeader struct {
	paragraphs uint32
	sectorSize int
}

func decodeATRHeader(b []byte) (atrHeader, bool) {
	if b[0] != atrMagic[0] || b[1] != atrMagic[1] {
		return atrHeader{}, false
	}
	return atrHeader{
		paragraphs: uint32(binary.LittleEndian.Uint16(b[2:])) | uint32(binary.LittleEndian.Uint16(b[6:]))<<16,
		sectorSize: int(binary.LittleEndian.Uint16(b[4:])),
	}, true
}

func (h atrHeader) encode() []byte {
	b := make([]byte, atrHeaderLen)
	b[0] = atrMagic[0]
	b[1] = atrMagic[1]
	binary.LittleEndian.PutUint16(b[2:], uint16(h.paragraphs))
	binary.LittleEndian.PutUint16(b[4:], uint16(h.sectorSize))
	binary.LittleEndian.PutUint16(b[6:], uint16(h.paragraphs>>16))
	return b
}

// ATR implements the DiskImage interface for the ATR format.
type ATR struct {
	env    *environment.Environment
	stream bytestream.Stream

	protected bool

	sectorSize  int
	sectorShift int
	sectorCount int

	// the first three sectors of a double density image are normally
	// stored as 128 bytes each. some images (and hard disk images) store
	// them with the full sector size, with only the first 128 bytes used
	broken bool
}

// NewATR is the preferred method of initialisation for the ATR type.
func NewATR(env *environment.Environment) *ATR {
	return &ATR{
		env:         env,
		sectorSize:  128,
		sectorShift: 7,
	}
}

func (img *ATR) String() string {
	return "ATR"
}

// Open implements the DiskImage interface.
func (img *ATR) Open(stream bytestream.Stream) error {
	if img.stream != nil {
		return curated.Errorf(AlreadyOpen)
	}

	bytes := stream.Size()
	if bytes < atrHeaderLen || (bytes-atrHeaderLen)&0x7f != 0 {
		return curated.Errorf(FormatError, "file is not an atr image")
	}
	bytes -= atrHeaderLen

	b := make([]byte, atrHeaderLen)
	if err := stream.Read(0, b); err != nil {
		return curated.Errorf(IoError, err)
	}

	hdr, ok := decodeATRHeader(b)
	if !ok {
		return curated.Errorf(FormatError, "atr magic number not found")
	}

	// the size is counted in sixteenths of a 128 byte sector
	numsecs := int64(hdr.paragraphs)
	if numsecs&0x07 != 0 {
		return curated.Errorf(FormatError, "atr sector count is invalid")
	}

	size := hdr.sectorSize
	if size != 128 && size != 256 && size != 512 {
		return curated.Errorf(FormatError, "atr sector size is invalid")
	}

	// the size in 256 byte units. used for hard disk images
	ns := numsecs >> 4

	var count, expected int64
	var shift int

	switch {
	case size == 256 && numsecs > 3*8:
		// the first three sectors are 128 bytes long
		count = (numsecs-3*8)/16 + 3
		expected = (count-3)*256 + 3*128
		shift = 8
	case size == 512:
		count = numsecs >> 5
		expected = count * 512
		shift = 9
	default:
		count = numsecs >> 3
		expected = count * 128
		shift = 7
	}

	broken := false

	if expected != bytes {
		if bytes == ns<<8 {
			// hard disk image
			count = ns
			shift = 8
			broken = true
		} else {
			logger.Log(img.env, "atr", "header mangled. trying to fix it")

			switch bytes {
			case 128 * 1040:
				count = 1040
				shift = 7
			case 128 * 720:
				count = 720
				shift = 7
			case 256*720 - 3*128:
				count = 720
				shift = 8
			case 256 * 720:
				count = 720
				shift = 8
				broken = true
			}
		}
	}

	img.sectorSize = size
	img.sectorShift = shift
	img.sectorCount = int(count)
	img.broken = broken
	img.protected = stream.IsReadOnly()
	img.stream = stream

	return nil
}

// SectorSize implements the DiskImage interface.
func (img *ATR) SectorSize(sector int) int {
	if img.sectorSize == 256 && sector <= 3 {
		return 128
	}
	return img.sectorSize
}

// SectorCount implements the DiskImage interface.
func (img *ATR) SectorCount() int {
	return img.sectorCount
}

// Status implements the DiskImage interface.
func (img *ATR) Status() Status {
	if img.protected {
		return Protected
	}
	return 0
}

// location returns the offset into the stream and size of a sector.
func (img *ATR) location(sector int) (int64, int) {
	var offset int64
	var size int

	switch {
	case img.sectorSize == 512:
		offset = int64(sector-1) << img.sectorShift
		size = img.sectorSize
	case sector <= 3:
		offset = int64(sector-1) << 7
		size = 128
	default:
		offset = int64(sector-4)<<img.sectorShift + 3*128
		size = img.sectorSize
	}

	if img.broken {
		offset = int64(sector-1) << img.sectorShift
	}

	return offset + atrHeaderLen, size
}

// ReadSector implements the DiskImage interface.
func (img *ATR) ReadSector(sector int, buffer []byte) byte {
	if img.stream == nil || !validSector(img, sector) {
		return Error
	}
	offset, size := img.location(sector)
	if len(buffer) < size {
		return Error
	}
	if err := img.stream.Read(offset, buffer[:size]); err != nil {
		return Error
	}
	return Complete
}

// WriteSector implements the DiskImage interface.
func (img *ATR) WriteSector(sector int, buffer []byte) byte {
	if img.stream == nil || !validSector(img, sector) {
		return Error
	}
	if img.protected {
		return Error
	}
	offset, size := img.location(sector)
	if len(buffer) < size {
		return Error
	}
	if err := img.stream.Write(offset, buffer[:size]); err != nil {
		return Error
	}
	return Complete
}

// Protect implements the DiskImage interface.
func (img *ATR) Protect() {
	img.protected = true
}

// Reset implements the DiskImage interface.
func (img *ATR) Reset() {
}

// ATRSize returns the size in bytes of an ATR file with the given geometry,
// including the header.
func ATRSize(sectorSize int, sectorCount int) int64 {
	if sectorSize == 256 && sectorCount >= 3 {
		return atrHeaderLen + int64(sectorCount-3)*256 + 3*128
	}
	return atrHeaderLen + int64(sectorSize)*int64(sectorCount)
}

// FormatDisk writes a blank ATR image with the given geometry to the target
// stream. If the stream implements bytestream.Formattable it is resized
// first, otherwise it must already be large enough.
//
// This is the only way blank images are created. Other formats are not
// suitable for formatting.
func FormatDisk(target bytestream.Stream, sectorSize int, sectorCount int) error {
	if sectorSize != 128 && sectorSize != 256 && sectorSize != 512 {
		return curated.Errorf(FormatError, "sector size invalid for formatting")
	}
	if sectorCount <= 0 || (sectorSize == 256 && sectorCount < 3) {
		return curated.Errorf(FormatError, "sector count invalid for formatting")
	}

	if f, ok := target.(bytestream.Formattable); ok {
		if err := f.Format(ATRSize(sectorSize, sectorCount)); err != nil {
			return curated.Errorf(IoError, err)
		}
	}

	var cnt int64
	if sectorSize == 256 {
		cnt = (int64(sectorCount-3)*int64(sectorSize) + 128*3) >> 4
	} else {
		cnt = (int64(sectorSize) * int64(sectorCount)) >> 4
	}

	hdr := atrHeader{
		paragraphs: uint32(cnt),
		sectorSize: sectorSize,
	}
	if err := target.Write(0, hdr.encode()); err != nil {
		return curated.Errorf(IoError, err)
	}

	offset := int64(atrHeaderLen)
	blank := make([]byte, sectorSize)
	for sector := 1; sector <= sectorCount; sector++ {
		l := sectorSize
		if sectorSize == 256 && sector <= 3 {
			l = 128
		}
		if err := target.Write(offset, blank[:l]); err != nil {
			return curated.Errorf(IoError, err)
		}
		offset += int64(l)
	}

	return nil
}
