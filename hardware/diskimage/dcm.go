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
	"bufio"
	"errors"
	"io"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/logger"
)

// the first byte of a single file DCM archive. multi-file archives begin
// with dcmMultiFile and are not supported.
const (
	dcmSingleFile = 0xfa
	dcmMultiFile  = 0xf9
)

// sector encodings in a DCM pass.
const (
	dcmModifyBegin  = 0x41
	dcmDosSector    = 0x42
	dcmCompressed   = 0x43
	dcmModifyEnd    = 0x44
	dcmEndOfPass    = 0x45
	dcmSameAsBefore = 0x46
	dcmUncompressed = 0x47
)

// DCM implements the DiskImage interface for DCM archives. The archive is
// decompressed in its entirety when opened. DCM images are always write
// protected.
type DCM struct {
	env *environment.Environment

	contents    []byte
	sectorSize  int
	sectorShift int
}

// NewDCM is the preferred method of initialisation for the DCM type.
func NewDCM(env *environment.Environment) *DCM {
	return &DCM{
		env:         env,
		sectorSize:  128,
		sectorShift: 7,
	}
}

func (img *DCM) String() string {
	return "DCM"
}

// dcmDecoder reads the archive one byte at a time. The first error is
// sticky and all reads after it return zero.
type dcmDecoder struct {
	r   *bufio.Reader
	err error

	sectorSize int

	// the most recently decoded sector. the encodings modify the previous
	// sector rather than starting afresh
	last []byte
}

func (d *dcmDecoder) getc() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			d.err = curated.Errorf(FormatError, "premature end of dcm archive")
		} else {
			d.err = curated.Errorf(IoError, err)
		}
		return 0
	}
	return b
}

func (d *dcmDecoder) getw() int {
	lo := d.getc()
	hi := d.getc()
	return int(lo) | int(hi)<<8
}

func (d *dcmDecoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// modify the start of the previous sector. the bytes are stored backwards
// from the offset to the first byte.
func (d *dcmDecoder) modifyBegin() {
	offset := int(d.getc())
	if offset >= d.sectorSize {
		d.fail(curated.Errorf(OutOfRange, "dcm byte offset"))
		return
	}
	for i := offset; i >= 0; i-- {
		d.last[i] = d.getc()
	}
}

// a DOS sector is filled with a single value except for the link bytes at
// the end.
func (d *dcmDecoder) dosSector() {
	v := d.getc()
	for i := 0; i < d.sectorSize-3; i++ {
		d.last[i] = v
	}

	// four bytes are stored but a sector only has room for three. the last
	// buffer is one byte longer than a sector for this reason
	for i := d.sectorSize - 3; i <= d.sectorSize; i++ {
		d.last[i] = d.getc()
	}
}

// alternating literal and repeated runs. each run is given by the offset
// at which it ends.
func (d *dcmDecoder) compressed() {
	offset := 0

	for offset < d.sectorSize {
		end := int(d.getc())

		// only the first end offset can be zero. after that zero means 256
		if offset != 0 && end == 0 {
			end = 256
		}
		if end > d.sectorSize || end < offset {
			d.fail(curated.Errorf(OutOfRange, "dcm literal run end offset"))
			return
		}
		for ; offset < end; offset++ {
			d.last[offset] = d.getc()
		}

		if offset >= d.sectorSize {
			break
		}

		end = int(d.getc())
		if end == 0 {
			end = 256
		}
		v := d.getc()
		if end > d.sectorSize || end < offset {
			d.fail(curated.Errorf(OutOfRange, "dcm repeat run end offset"))
			return
		}
		for ; offset < end; offset++ {
			d.last[offset] = v
		}

		if d.err != nil {
			return
		}
	}
}

// modify the end of the previous sector from the offset onwards.
func (d *dcmDecoder) modifyEnd() {
	offset := int(d.getc())
	if offset > d.sectorSize {
		d.fail(curated.Errorf(OutOfRange, "dcm byte offset"))
		return
	}
	for i := offset; i < d.sectorSize; i++ {
		d.last[i] = d.getc()
	}
}

func (d *dcmDecoder) uncompressed() {
	for i := 0; i < d.sectorSize; i++ {
		d.last[i] = d.getc()
	}
}

// Open implements the DiskImage interface.
func (img *DCM) Open(stream bytestream.Stream) error {
	if img.contents != nil {
		return curated.Errorf(AlreadyOpen)
	}

	d := &dcmDecoder{
		r: bufio.NewReaderSize(bytestream.NewReader(stream), 512),
	}

	sector := 1
	pass := 1
	numSectors := 720
	sectorShift := 7
	lastPass := false
	var archiveType byte
	var contents []byte

	// copy the most recently decoded sector into the image
	install := func() error {
		if sector < 1 || sector > numSectors {
			return curated.Errorf(OutOfRange, "dcm sector number")
		}
		copy(contents[(sector-1)*d.sectorSize:], d.last[:d.sectorSize])
		return nil
	}

	for sector <= numSectors {
		var nextSector int

		if lastPass {
			// the rest of the disk is blank
			break
		}

		switch d.getc() {
		case dcmSingleFile:
		case dcmMultiFile:
			if d.err == nil {
				return curated.Errorf(FormatError, "multi-file dcm archives are not supported")
			}
		default:
			if d.err == nil {
				return curated.Errorf(FormatError, "unsupported or invalid dcm archive")
			}
		}

		in := d.getc()
		if d.err != nil {
			return d.err
		}

		if pass == 1 {
			archiveType = in & 0x70
			switch archiveType {
			case 0x00:
				numSectors = 720
				d.sectorSize = 128
				sectorShift = 7
			case 0x20:
				numSectors = 720
				d.sectorSize = 256
				sectorShift = 8
			case 0x40:
				numSectors = 1040
				d.sectorSize = 128
				sectorShift = 7
			default:
				return curated.Errorf(FormatError, "invalid dcm density")
			}
			contents = make([]byte, numSectors*d.sectorSize)
			d.last = make([]byte, d.sectorSize+1)
		} else if (archiveType^in)&0x70 != 0 {
			return curated.Errorf(FormatError, "inconsistent density in dcm pass")
		}

		if (byte(pass)^in)&0x1f != 0 {
			return curated.Errorf(FormatError, "unexpected dcm pass sequence")
		}

		lastPass = in&0x80 == 0x80
		nextSector = d.getw()
		if d.err != nil {
			return d.err
		}

		// sectors that are skipped are blank
		if sector < nextSector {
			sector = nextSector
		}

		endOfPass := false
		for !endOfPass {
			in := d.getc()
			expectSector := in&0x80 == 0
			nextSector = sector + 1

			switch in & 0x7f {
			case dcmModifyBegin:
				d.modifyBegin()
			case dcmDosSector:
				d.dosSector()
			case dcmCompressed:
				d.compressed()
			case dcmModifyEnd:
				d.modifyEnd()
			case dcmEndOfPass:
				endOfPass = true
			case dcmSameAsBefore:
			case dcmUncompressed:
				d.uncompressed()
			default:
				if d.err == nil {
					return curated.Errorf(FormatError, "invalid dcm sector encoding")
				}
			}
			if d.err != nil {
				return d.err
			}

			if endOfPass {
				pass++
				break
			}

			if err := install(); err != nil {
				return err
			}
			sector++

			if expectSector {
				nextSector = d.getw()
				if d.err != nil {
					return d.err
				}

				// some encoders write the end of pass marker where the next
				// sector number is expected
				if lastPass && nextSector == dcmEndOfPass {
					logger.Log(img.env, "dcm", "end of pass found in place of a sector number")
					break
				}

				if nextSector < sector {
					return curated.Errorf(FormatError, "invalid dcm next sector")
				}
			}

			if sector < nextSector {
				sector = nextSector
			}

			// a pass ends after the last sector of the disk even without an
			// explicit marker
			if sector > numSectors {
				break
			}
		}
	}

	img.sectorSize = d.sectorSize
	img.sectorShift = sectorShift
	img.contents = contents

	return nil
}

// SectorSize implements the DiskImage interface.
func (img *DCM) SectorSize(sector int) int {
	if sector <= 3 {
		return 128
	}
	return img.sectorSize
}

// SectorCount implements the DiskImage interface.
func (img *DCM) SectorCount() int {
	return len(img.contents) >> img.sectorShift
}

// Status implements the DiskImage interface.
func (img *DCM) Status() Status {
	return Protected
}

// ReadSector implements the DiskImage interface. Every sector, including
// the first three, occupies a full sector slot in the decompressed image.
func (img *DCM) ReadSector(sector int, buffer []byte) byte {
	if img.contents == nil || !validSector(img, sector) {
		return Error
	}
	size := img.SectorSize(sector)
	if len(buffer) < size {
		return Error
	}
	offset := (sector - 1) << img.sectorShift
	copy(buffer, img.contents[offset:offset+size])
	return Complete
}

// WriteSector implements the DiskImage interface. DCM images cannot be
// written to.
func (img *DCM) WriteSector(_ int, _ []byte) byte {
	return Error
}

// Protect implements the DiskImage interface. DCM images are always
// protected.
func (img *DCM) Protect() {
}

// Reset implements the DiskImage interface.
func (img *DCM) Reset() {
}
