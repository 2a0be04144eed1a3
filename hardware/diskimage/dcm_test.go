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

package diskimage_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/hardware/diskimage"
	"github.com/jetsetilly/sio800/test"
)

// pattern returns predictable but varied data for a sector.
func pattern(sector int, size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(sector*7 + i*3)
	}
	return b
}

func TestDCMUncompressed(t *testing.T) {
	env := newEnvironment(t)

	// a single pass archive of an entire single density disk
	var xfd []byte
	dcm := []byte{0xfa, 0x81, 0x01, 0x00}
	for s := 1; s <= 720; s++ {
		p := pattern(s, 128)
		xfd = append(xfd, p...)
		dcm = append(dcm, 0x47|0x80)
		dcm = append(dcm, p...)
	}
	dcm = append(dcm, 0x45)

	ximg := diskimage.NewXFD(env)
	test.DemandSuccess(t, ximg.Open(bytestream.NewMemory(xfd, true)))

	img := diskimage.NewDCM(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(dcm, true)))
	test.ExpectEquality(t, img.SectorCount(), ximg.SectorCount())
	test.ExpectEquality(t, img.Status(), diskimage.Protected)

	a := make([]byte, 128)
	b := make([]byte, 128)
	for s := 1; s <= 720; s++ {
		test.ExpectEquality(t, img.ReadSector(s, a), diskimage.Complete)
		test.ExpectEquality(t, ximg.ReadSector(s, b), diskimage.Complete)
		if !bytes.Equal(a, b) {
			t.Fatalf("sector %d differs", s)
		}
	}

	test.ExpectEquality(t, img.WriteSector(1, a), diskimage.Error)
	test.ExpectEquality(t, img.ReadSector(721, a), diskimage.Error)
}

func TestDCMCompressed(t *testing.T) {
	env := newEnvironment(t)

	// double density. sector four is compressed and the rest are blank
	dcm := []byte{0xfa, 0xa1, 0x04, 0x00}
	dcm = append(dcm, 0x43|0x80)

	// a literal run of four bytes
	dcm = append(dcm, 4, 0xa0, 0xa1, 0xa2, 0xa3)

	// a repeated run up to offset eight
	dcm = append(dcm, 8, 0x11)

	// a literal run ending at zero. this is not the first run so zero means
	// the end of the sector
	dcm = append(dcm, 0)
	tail := pattern(4, 248)
	dcm = append(dcm, tail...)

	// sector five is the same as sector four with a modified beginning
	dcm = append(dcm, 0x41|0x80, 1, 0xff, 0xfe)

	// sector six has a modified end
	dcm = append(dcm, 0x44|0x80, 254, 0xee, 0xef)

	// sector seven starts with an empty literal run. zero is zero here
	dcm = append(dcm, 0x43|0x80, 0, 0, 0x77)

	// sector eight is a DOS sector
	dcm = append(dcm, 0x42|0x80, 0x99, 0x01, 0x02, 0x03, 0x04)

	// sector nine is the same as sector eight
	dcm = append(dcm, 0x46)

	// then jump to sector 700
	dcm = append(dcm, 0xbc, 0x02, 0x47|0x80)
	dcm = append(dcm, pattern(700, 256)...)
	dcm = append(dcm, 0x45)

	img := diskimage.NewDCM(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(dcm, true)))
	test.ExpectEquality(t, img.SectorCount(), 720)
	test.ExpectEquality(t, img.SectorSize(3), 128)
	test.ExpectEquality(t, img.SectorSize(4), 256)

	buf := make([]byte, 256)

	expected := append([]byte{0xa0, 0xa1, 0xa2, 0xa3, 0x11, 0x11, 0x11, 0x11}, tail...)
	test.ExpectEquality(t, img.ReadSector(4, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, expected))

	// the beginning is modified backwards
	expected[1] = 0xff
	expected[0] = 0xfe
	test.ExpectEquality(t, img.ReadSector(5, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, expected))

	expected[254] = 0xee
	expected[255] = 0xef
	test.ExpectEquality(t, img.ReadSector(6, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, expected))

	test.ExpectEquality(t, img.ReadSector(7, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, bytes.Repeat([]byte{0x77}, 256)))

	dos := append(bytes.Repeat([]byte{0x99}, 253), 0x01, 0x02, 0x03)
	test.ExpectEquality(t, img.ReadSector(8, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, dos))
	test.ExpectEquality(t, img.ReadSector(9, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, dos))

	// skipped sectors are blank
	test.ExpectEquality(t, img.ReadSector(10, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, make([]byte, 256)))

	test.ExpectEquality(t, img.ReadSector(700, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, pattern(700, 256)))
}

func TestDCMFirstRunZero(t *testing.T) {
	env := newEnvironment(t)

	// in a single density archive an end offset of zero for the first
	// literal run is an empty run. the repeat run that follows cannot
	// reach 256
	dcm := []byte{0xfa, 0x81, 0x01, 0x00, 0x43 | 0x80, 0, 0, 0x55, 0x45}
	err := diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.OutOfRange))

	// modify begin offset beyond the sector
	dcm = []byte{0xfa, 0x81, 0x01, 0x00, 0x41 | 0x80, 200, 0x45}
	err = diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.OutOfRange))
}

func TestDCMFormatError(t *testing.T) {
	env := newEnvironment(t)

	// premature end of archive
	dcm := []byte{0xfa, 0x81, 0x01, 0x00, 0x47 | 0x80, 1, 2, 3}
	err := diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))

	// bad density
	dcm = []byte{0xfa, 0x91, 0x01, 0x00, 0x45}
	err = diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))

	// bad pass number
	dcm = []byte{0xfa, 0x82, 0x01, 0x00, 0x45}
	err = diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))

	// unknown encoding
	dcm = []byte{0xfa, 0x81, 0x01, 0x00, 0x48 | 0x80}
	err = diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))

	// sector numbers must not go backwards
	dcm = []byte{0xfa, 0x81, 0x05, 0x00, 0x46, 0x02, 0x00}
	err = diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))
}

func TestDCMPasses(t *testing.T) {
	env := newEnvironment(t)

	// two passes. the second pass is the last and ends with the end of pass
	// marker in place of a sector number
	dcm := []byte{0xfa, 0x01, 0x01, 0x00, 0x47}
	dcm = append(dcm, pattern(1, 128)...)
	dcm = append(dcm, 0x02, 0x00, 0x45)
	dcm = append(dcm, 0xfa, 0x82, 0x64, 0x00, 0x47)
	dcm = append(dcm, pattern(100, 128)...)
	dcm = append(dcm, 0x45, 0x00)

	img := diskimage.NewDCM(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(dcm, true)))

	buf := make([]byte, 128)
	test.ExpectEquality(t, img.ReadSector(1, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, pattern(1, 128)))
	test.ExpectEquality(t, img.ReadSector(100, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, pattern(100, 128)))
	test.ExpectEquality(t, img.ReadSector(2, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf, make([]byte, 128)))

	// a later pass cannot change the density
	dcm = []byte{0xfa, 0x01, 0x01, 0x00, 0x45, 0xfa, 0xa2, 0x01, 0x00, 0x45}
	err := diskimage.NewDCM(env).Open(bytestream.NewMemory(dcm, true))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))
}
