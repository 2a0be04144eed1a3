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

	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/hardware/diskimage"
	"github.com/jetsetilly/sio800/test"
)

func TestBinaryLoader(t *testing.T) {
	env := newEnvironment(t)

	file := []byte{0xff, 0xff, 0x00, 0x20, 0x03, 0x20, 0x01, 0x02, 0x03, 0x04}
	img := diskimage.NewBinaryLoader(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(file, true)))
	test.ExpectEquality(t, img.SectorCount(), 4)
	test.ExpectEquality(t, img.SectorSize(4), 128)
	test.ExpectEquality(t, img.Status(), diskimage.Protected)

	buf := make([]byte, 128)

	// the boot sector loads three sectors
	test.ExpectEquality(t, img.ReadSector(1, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf[:4], []byte{0x00, 0x03, 0x00, 0x07}))

	test.ExpectEquality(t, img.ReadSector(4, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf[:len(file)], file))
	test.ExpectEquality(t, buf[125], byte(0))
	test.ExpectEquality(t, buf[126], byte(0))
	test.ExpectEquality(t, buf[127], byte(len(file)))

	test.ExpectEquality(t, img.WriteSector(4, buf), diskimage.Error)
	test.ExpectEquality(t, img.ReadSector(5, buf), diskimage.Error)
}

func TestBinaryLoaderLinks(t *testing.T) {
	env := newEnvironment(t)

	// a segment of 294 bytes. 300 bytes in total
	file := []byte{0xff, 0xff, 0x00, 0x30, 0x25, 0x31}
	for i := 0; i < 294; i++ {
		file = append(file, byte(i))
	}

	img := diskimage.NewBinaryLoader(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(file, true)))
	test.ExpectEquality(t, img.SectorCount(), 6)

	buf := make([]byte, 128)
	for s, link := range map[int][3]byte{
		4: {0, 5, 125},
		5: {0, 6, 125},
		6: {0, 0, 50},
	} {
		test.ExpectEquality(t, img.ReadSector(s, buf), diskimage.Complete)
		test.ExpectEquality(t, [3]byte{buf[125], buf[126], buf[127]}, link, s)
	}
}

func TestBinaryLoaderRepair(t *testing.T) {
	env := newEnvironment(t)

	// the segment claims to end at 0x200f but the file ends after two bytes
	file := []byte{0xff, 0xff, 0x00, 0x20, 0x0f, 0x20, 0x01, 0x02}
	img := diskimage.NewBinaryLoader(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(file, true)))

	buf := make([]byte, 128)
	test.ExpectEquality(t, img.ReadSector(4, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[4], byte(0x01))
	test.ExpectEquality(t, buf[5], byte(0x20))

	// the second segment starts after it ends. the file is cut before it
	file = []byte{0xff, 0xff, 0x00, 0x20, 0x00, 0x20, 0x01, 0x10, 0x20, 0x00, 0x20, 0x05}
	img = diskimage.NewBinaryLoader(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(file, true)))
	test.ExpectEquality(t, img.ReadSector(4, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[127], byte(7))
}

func TestStreamText(t *testing.T) {
	env := newEnvironment(t)

	file := []byte{0x00, 0x00, 'B', 'A', 'S', 'I', 'C'}
	img := diskimage.NewStreamText(env, "PROGRAM.BAS")
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(file, true)))
	test.ExpectEquality(t, img.SectorCount(), 0x170)
	test.ExpectEquality(t, img.Status(), diskimage.Protected)

	buf := make([]byte, 128)
	test.ExpectEquality(t, img.ReadSector(1, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[6], byte(0x38))

	test.ExpectEquality(t, img.ReadSector(3, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf[:len(file)], file))
	test.ExpectEquality(t, buf[127], byte(len(file)))

	// the VTOC
	test.ExpectEquality(t, img.ReadSector(0x168, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf[:3], []byte{0x02, 0x64, 0x01}))

	// the directory entry
	test.ExpectEquality(t, img.ReadSector(0x169, buf), diskimage.Complete)
	test.ExpectSuccess(t, bytes.Equal(buf[:5], []byte{0x62, 0x01, 0x00, 0x03, 0x00}))
	test.ExpectEquality(t, string(buf[5:16]), "PROGRAM BAS")

	test.ExpectEquality(t, img.WriteSector(3, buf), diskimage.Error)
}

func TestStreamTextLarge(t *testing.T) {
	env := newEnvironment(t)

	// large enough for the file to continue after the directory
	file := make([]byte, 0x170*125)
	file[0] = 0xfe
	file[1] = 0xfe
	file[len(file)-1] = 0x5a

	img := diskimage.NewStreamText(env, "PROGRAM.ASM")
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(file, true)))
	test.ExpectEquality(t, img.SectorCount(), 0x170+3+9)

	buf := make([]byte, 128)
	test.ExpectEquality(t, img.ReadSector(0x167, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[125], byte(0x01))
	test.ExpectEquality(t, buf[126], byte(0x71))

	test.ExpectEquality(t, img.ReadSector(0x169, buf), diskimage.Complete)
	test.ExpectEquality(t, string(buf[5:16]), "PROGRAM ASM")

	// the final sector of the disk is not used
	test.ExpectEquality(t, img.ReadSector(img.SectorCount()-1, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[124], byte(0x5a))
	test.ExpectEquality(t, buf[127], byte(125))
}

func TestFingerprint(t *testing.T) {
	env := newEnvironment(t)

	atr := bytestream.NewMemory(nil, false)
	test.DemandSuccess(t, diskimage.FormatDisk(atr, 128, 720))

	// any unrecognised data is an XFD image
	xfd := make([]byte, 720*128)
	xfd[0] = 0x01

	for _, c := range []struct {
		data   []byte
		format string
	}{
		{atr.Bytes(), "ATR"},
		{atxFile(atxTrack(0, []atxSector{{index: 1, position: 1000}})), "ATX"},
		{[]byte{0xff, 0xff, 0x00, 0x20, 0x00, 0x20, 0x00}, "binary load file"},
		{[]byte{0x00, 0x00, 0x01}, "PROGRAM.BAS"},
		{[]byte{0xfe, 0xfe, 0x01}, "PROGRAM.ASM"},
		{[]byte{0xfa, 0x81, 0x01, 0x00, 0x45}, "DCM"},
		{xfd, "XFD"},
	} {
		img, err := diskimage.NewDiskImage(env, bytestream.NewMemory(c.data, true))
		test.DemandSuccess(t, err, c.format)
		test.ExpectEquality(t, img.String(), c.format)
	}

	_, err := diskimage.Fingerprint(env, bytestream.NewMemory([]byte{0xf9, 0x00}, true))
	test.ExpectFailure(t, err)
}
