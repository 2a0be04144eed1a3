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
	"errors"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/logger"
)

// bootLoader is a three sector boot program that loads a DOS 2 style
// binary load file starting at sector four. The file is read through the
// sector link bytes so no DOS is required.
var bootLoader = []byte{
	0x00, 0x03, 0x00, 0x07, 0x99, 0x07, 0x20, 0x07, 0x08, 0xa9, 0x00, 0x8d,
	0xe0, 0x02, 0x8d, 0xe1, 0x02, 0x8d, 0xe2, 0x02, 0x8d, 0xe3, 0x02, 0x8d,
	0x7d, 0x09, 0x8d, 0x7f, 0x09, 0x85, 0x49, 0xa9, 0x04, 0x8d, 0x7e, 0x09,
	0x20, 0xe8, 0x07, 0xc9, 0xff, 0xd0, 0x05, 0x20, 0xe8, 0x07, 0xc9, 0xff,
	0xd0, 0x62, 0x20, 0xe8, 0x07, 0x85, 0x43, 0x8d, 0xe0, 0x02, 0x20, 0xe8,
	0x07, 0x85, 0x44, 0x8d, 0xe1, 0x02, 0x20, 0xe8, 0x07, 0x85, 0x45, 0x20,
	0xe8, 0x07, 0x85, 0x46, 0x20, 0xe8, 0x07, 0xa0, 0x00, 0x91, 0x43, 0xe6,
	0x43, 0xd0, 0x02, 0xe6, 0x44, 0xa5, 0x45, 0xc5, 0x43, 0xa5, 0x46, 0xe5,
	0x44, 0xb0, 0xe9, 0xad, 0xe2, 0x02, 0x0d, 0xe3, 0x02, 0xf0, 0x0f, 0xa5,
	0x49, 0x48, 0x20, 0xfb, 0x07, 0x20, 0x1f, 0x08, 0x20, 0x1f, 0x08, 0x68,
	0x85, 0x49, 0x20, 0xd4, 0x07, 0xf0, 0x0f, 0x85, 0x43, 0x20, 0xe8, 0x07,
	0x85, 0x44, 0x25, 0x43, 0xc9, 0xff, 0xf0, 0xee, 0xd0, 0xb4, 0xf0, 0x09,
	0x68, 0x68, 0x68, 0x68, 0x38, 0x60, 0x6c, 0xe2, 0x02, 0x6c, 0xe0, 0x02,
	0xad, 0x7e, 0x09, 0x8d, 0x0a, 0x03, 0xad, 0x7d, 0x09, 0x8d, 0x0b, 0x03,
	0x0d, 0x0a, 0x03, 0xf0, 0x26, 0xa9, 0x31, 0x8d, 0x00, 0x03, 0xa9, 0x01,
	0x8d, 0x01, 0x03, 0xa9, 0x52, 0x8d, 0x02, 0x03, 0xa9, 0x00, 0x8d, 0x04,
	0x03, 0x85, 0x47, 0x85, 0x49, 0xa9, 0x09, 0x8d, 0x05, 0x03, 0x85, 0x48,
	0x20, 0x53, 0xe4, 0x30, 0xbf, 0xa0, 0x01, 0x60, 0xa4, 0x49, 0xcc, 0x7f,
	0x09, 0x90, 0x08, 0x20, 0x9c, 0x07, 0xd0, 0x01, 0x60, 0xa0, 0x00, 0xb1,
	0x47, 0xe6, 0x49, 0x60, 0xa4, 0x49, 0xcc, 0x7f, 0x09, 0x90, 0x07, 0x20,
	0x9c, 0x07, 0xf0, 0x9e, 0xa0, 0x00, 0xb1, 0x47, 0xe6, 0x49, 0x60, 0x20,
	0x96, 0x07, 0xa9, 0x00, 0x8d, 0xe2, 0x02, 0x8d, 0xe3, 0x02, 0x60, 0xa9,
	0x01, 0x85, 0x09, 0xa9, 0x00, 0x8d, 0x44, 0x02, 0xa9, 0x77, 0x85, 0x0a,
	0x85, 0x0c, 0xa9, 0xe4, 0x85, 0x0b, 0x85, 0x0d, 0x4c, 0x50, 0xe4, 0xad,
	0x0b, 0xd4, 0xc9, 0x70, 0x90, 0xf9, 0xad, 0x0b, 0xd4, 0xc9, 0x20, 0xb0,
	0xf9, 0x60,
}

// number of data bytes in a DOS 2 sector. the remaining three bytes are
// the link to the next sector and the count of bytes used.
const dosDataBytes = 125

// BinaryLoader implements the DiskImage interface for Atari binary load
// files. The file is wrapped in a bootable disk when opened.
type BinaryLoader struct {
	env *environment.Environment

	contents []byte
}

// NewBinaryLoader is the preferred method of initialisation for the
// BinaryLoader type.
func NewBinaryLoader(env *environment.Environment) *BinaryLoader {
	return &BinaryLoader{
		env: env,
	}
}

func (img *BinaryLoader) String() string {
	return "binary load file"
}

// Open implements the DiskImage interface.
func (img *BinaryLoader) Open(stream bytestream.Stream) error {
	if img.contents != nil {
		return curated.Errorf(AlreadyOpen)
	}

	filesize := int(stream.Size())
	if filesize == 0 {
		return curated.Errorf(FormatError, "binary load file is empty")
	}

	bootLen := (len(bootLoader) + 0x7f) &^ 0x7f
	fileSectors := (filesize + dosDataBytes - 1) / dosDataBytes

	img.contents = make([]byte, bootLen+fileSectors<<7)
	copy(img.contents, bootLoader)

	nextSector := 1 + bootLen>>7
	offset := 0

	for sector := bootLen; offset < filesize; sector += 128 {
		dest := img.contents[sector : sector+128]

		n := filesize - offset
		if n > dosDataBytes {
			n = dosDataBytes
			nextSector++
		} else {
			nextSector = 0
		}

		if err := stream.Read(int64(offset), dest[:n]); err != nil {
			img.contents = nil
			return curated.Errorf(IoError, err)
		}

		// the first sector of a known broken loader has been patched with
		// no-operations in place of an increment. restore it
		if offset == 0 && n == dosDataBytes {
			if dest[2] == 0x00 && dest[3] == 0x04 && dest[4] == 0x66 && dest[5] == 0x04 && dest[6] == 0xa9 && dest[7] == 0x1f {
				if dest[0x22] == 0xea && dest[0x23] == 0xea && dest[0x24] == 0xea {
					logger.Log(img.env, "binary", "fixing hacked binary loader")
					dest[0x23] = 0xee
					dest[0x24] = 0x6b
					dest[0x25] = 0x04
				}
			}
		}

		dest[125] = byte(nextSector >> 8)
		dest[126] = byte(nextSector)
		dest[127] = byte(n)

		offset += n
	}

	img.verify(bootLen)

	return nil
}

var errBinaryEOF = errors.New("unexpected end of file")

// binaryPointer walks the data bytes of a chain of DOS 2 sectors.
type binaryPointer struct {
	data   []byte
	sector int
	offset int
}

func (p *binaryPointer) step() error {
	for {
		if p.offset < int(p.data[p.sector+127]) {
			return nil
		}
		if p.data[p.sector+125]|p.data[p.sector+126] == 0 || p.sector+256 > len(p.data) {
			return errBinaryEOF
		}
		p.sector += 128
		p.offset = 0
	}
}

func (p *binaryPointer) get() (byte, error) {
	if err := p.step(); err != nil {
		return 0, err
	}
	v := p.data[p.sector+p.offset]
	p.offset++
	return v, nil
}

func (p *binaryPointer) put(v byte) error {
	if err := p.step(); err != nil {
		return err
	}
	p.data[p.sector+p.offset] = v
	p.offset++
	return nil
}

func (p *binaryPointer) getWord() (int, error) {
	lo, err := p.get()
	if err != nil {
		return 0, err
	}
	hi, err := p.get()
	if err != nil {
		return 0, err
	}
	return int(lo) | int(hi)<<8, nil
}

func (p *binaryPointer) putWord(v int) {
	_ = p.put(byte(v))
	_ = p.put(byte(v >> 8))
}

func (p *binaryPointer) eof() bool {
	return p.offset >= int(p.data[p.sector+127]) && p.data[p.sector+125] == 0 && p.data[p.sector+126] == 0
}

// truncate the file at the current position.
func (p *binaryPointer) truncate() {
	p.data[p.sector+127] = byte(p.offset)
	p.data[p.sector+126] = 0
	p.data[p.sector+125] = 0
}

// verify walks the segments of the binary load file and repairs the most
// common forms of damage.
func (img *BinaryLoader) verify(start int) {
	file := binaryPointer{data: img.contents, sector: start}
	backup := file
	adr := file

	var begin, end, data int
	var err error

	walk := func() error {
		if begin, err = file.getWord(); err != nil {
			return err
		}
		if begin != 0xffff {
			logger.Log(img.env, "binary", "binary load header is missing. the file will probably not work")
			return nil
		}

		if begin, err = file.getWord(); err != nil {
			return err
		}
		adr = file
		if end, err = file.getWord(); err != nil {
			return err
		}

		for {
			if begin > end {
				logger.Log(img.env, "binary", "segment start address is after end address. truncating")
				backup.truncate()
				return nil
			}

			for ; begin <= end; begin++ {
				if _, err := file.get(); err != nil {
					return err
				}
				data++
			}

			data = 0
			if file.eof() {
				return nil
			}

			backup = file
			for {
				if begin, err = file.getWord(); err != nil {
					return err
				}
				if begin != 0xffff {
					break
				}
			}
			adr = file
			if end, err = file.getWord(); err != nil {
				return err
			}
		}
	}

	if err := walk(); err != nil {
		logger.Log(img.env, "binary", "binary load file ends unexpectedly. repairing")
		if data > 0 {
			adr.putWord(begin - 1)
		} else {
			backup.truncate()
		}
	}
}

// SectorSize implements the DiskImage interface.
func (img *BinaryLoader) SectorSize(_ int) int {
	return 128
}

// SectorCount implements the DiskImage interface.
func (img *BinaryLoader) SectorCount() int {
	return len(img.contents) >> 7
}

// Status implements the DiskImage interface.
func (img *BinaryLoader) Status() Status {
	return Protected
}

// ReadSector implements the DiskImage interface.
func (img *BinaryLoader) ReadSector(sector int, buffer []byte) byte {
	if img.contents == nil || !validSector(img, sector) || len(buffer) < 128 {
		return Error
	}
	copy(buffer, img.contents[(sector-1)<<7:sector<<7])
	return Complete
}

// WriteSector implements the DiskImage interface.
func (img *BinaryLoader) WriteSector(_ int, _ []byte) byte {
	return Error
}

// Protect implements the DiskImage interface.
func (img *BinaryLoader) Protect() {
}

// Reset implements the DiskImage interface.
func (img *BinaryLoader) Reset() {
}
