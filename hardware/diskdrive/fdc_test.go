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

package diskdrive

import (
	"testing"

	"github.com/jetsetilly/sio800/diskloader"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/hardware/diskimage"
	"github.com/jetsetilly/sio800/test"
)

// countingImage records the calls to the write path.
type countingImage struct {
	status diskimage.Status
	reads  int
	writes int
}

func (img *countingImage) String() string { return "counting" }

func (img *countingImage) Open(_ bytestream.Stream) error { return nil }

func (img *countingImage) SectorSize(_ int) int { return 128 }

func (img *countingImage) SectorCount() int { return 720 }

func (img *countingImage) Status() diskimage.Status { return img.status }

func (img *countingImage) Protect() { img.status |= diskimage.Protected }

func (img *countingImage) Reset() {}

func (img *countingImage) ReadSector(_ int, _ []byte) byte {
	img.reads++
	return 'C'
}

func (img *countingImage) WriteSector(_ int, _ []byte) byte {
	img.writes++
	return 'C'
}

func newCountingDrive(t *testing.T) (*DiskDrive, *countingImage) {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	drv, err := NewDiskDrive(env, 0)
	test.DemandSuccess(t, err)

	img := &countingImage{}
	test.DemandImplements(t, img, (*diskimage.DiskImage)(nil))
	test.DemandSuccess(t, drv.install(img, bytestream.NewMemory(nil, false), diskloader.Loader{}))

	return drv, img
}

func TestWriteSize(t *testing.T) {
	drv, img := newCountingDrive(t)

	for _, n := range []int{0, 1, 127, 129, 256} {
		code, _ := drv.WriteBuffer(Frame{0x31, 0x57, 5, 0}, StandardSpeed, make([]byte, n))
		test.ExpectEquality(t, code, byte('E'), n)
	}
	test.ExpectEquality(t, img.writes, 0)

	code, _ := drv.WriteBuffer(Frame{0x31, 0x57, 5, 0}, StandardSpeed, make([]byte, 128))
	test.ExpectEquality(t, code, byte('C'))
	test.ExpectEquality(t, img.writes, 1)
}

func TestFDCStatus(t *testing.T) {
	drv, img := newCountingDrive(t)

	img.status = diskimage.Deleted | diskimage.CRCError | diskimage.DRQ

	// type I commands report the head and the track
	drv.lastFDC = FDCReset
	test.ExpectEquality(t, drv.fdcStatus(), byte(fdcTrackZero))
	drv.lastFDC = FDCSeek
	test.ExpectEquality(t, drv.fdcStatus(), byte(fdcTrackZero|fdcHeadLoaded))
	drv.lastSector = 100
	test.ExpectEquality(t, drv.fdcStatus(), byte(fdcHeadLoaded))
	img.status |= diskimage.NotFound
	test.ExpectEquality(t, drv.fdcStatus(), byte(fdcHeadLoaded|fdcSeekError))
	img.status &^= diskimage.NotFound

	// the record type bit is only meaningful after a read
	drv.lastFDC = FDCRead
	test.ExpectEquality(t, drv.fdcStatus(), byte(0x2a))
	drv.lastFDC = FDCWrite
	test.ExpectEquality(t, drv.fdcStatus(), byte(0x0a))
	drv.lastFDC = FDCReadTrack
	test.ExpectEquality(t, drv.fdcStatus(), byte(0x02))
	drv.lastFDC = FDCWriteTrack
	test.ExpectEquality(t, drv.fdcStatus(), byte(0x02))

	drv.status = ReadOnly
	drv.lastFDC = FDCWrite
	test.ExpectEquality(t, drv.fdcStatus(), byte(0x4a))
	drv.lastFDC = FDCRead
	test.ExpectEquality(t, drv.fdcStatus(), byte(0x2a))

	// the status command sends the register inverted
	status := make([]byte, 4)
	drv.driveStatus(status)
	test.ExpectEquality(t, status[1], byte(^byte(0x2a)))
}

func TestPassTime(t *testing.T) {
	drv, _ := newCountingDrive(t)

	// images without rotation ignore the passing of time
	drv.PassTime(1000)
	test.ExpectEquality(t, drv.rotationDelay(), 0)
}
