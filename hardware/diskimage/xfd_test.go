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

func TestXFD(t *testing.T) {
	env := newEnvironment(t)

	img := diskimage.NewXFD(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(make([]byte, 720*128), false)))
	test.ExpectEquality(t, img.SectorCount(), 720)
	test.ExpectEquality(t, img.SectorSize(4), 128)

	img = diskimage.NewXFD(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(make([]byte, 1040*128), false)))
	test.ExpectEquality(t, img.SectorCount(), 1040)

	err := diskimage.NewXFD(env).Open(bytestream.NewMemory(make([]byte, 1000), false))
	test.ExpectSuccess(t, curated.Is(err, diskimage.FormatError))
}

func TestXFDDoubleDensity(t *testing.T) {
	env := newEnvironment(t)

	// only an image of exactly 720x256 bytes is double density. an image
	// that is three half sectors short is single density
	data := make([]byte, 720*256-3*128)
	data[3*128] = 0x22
	m := bytestream.NewMemory(data, false)

	img := diskimage.NewXFD(env)
	test.DemandSuccess(t, img.Open(m))
	test.ExpectEquality(t, img.SectorCount(), 1434)
	test.ExpectEquality(t, img.SectorSize(1), 128)
	test.ExpectEquality(t, img.SectorSize(4), 128)

	buf := make([]byte, 256)
	test.ExpectEquality(t, img.ReadSector(4, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[0], byte(0x22))
	test.ExpectEquality(t, img.ReadSector(1434, buf), diskimage.Complete)
	test.ExpectEquality(t, img.ReadSector(1435, buf), diskimage.Error)

	// full sized slots for every sector
	data = make([]byte, 720*256)
	data[3*256] = 0x33
	m = bytestream.NewMemory(data, false)
	img = diskimage.NewXFD(env)
	test.DemandSuccess(t, img.Open(m))
	test.ExpectEquality(t, img.SectorCount(), 720)
	test.ExpectEquality(t, img.SectorSize(3), 128)
	test.ExpectEquality(t, img.ReadSector(4, buf), diskimage.Complete)
	test.ExpectEquality(t, buf[0], byte(0x33))

	w := bytes.Repeat([]byte{0x44}, 256)
	test.ExpectEquality(t, img.WriteSector(5, w), diskimage.Complete)
	test.ExpectEquality(t, m.Bytes()[4*256+255], byte(0x44))
}

func TestXFDProtected(t *testing.T) {
	env := newEnvironment(t)

	img := diskimage.NewXFD(env)
	test.DemandSuccess(t, img.Open(bytestream.NewMemory(make([]byte, 720*128), true)))
	test.ExpectEquality(t, img.Status(), diskimage.Protected)
	test.ExpectEquality(t, img.WriteSector(1, make([]byte, 128)), diskimage.Error)
	test.ExpectEquality(t, img.ReadSector(1, make([]byte, 128)), diskimage.Complete)
	test.ExpectEquality(t, img.ReadSector(0, make([]byte, 128)), diskimage.Error)
}
