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

package diskdrive_test

import (
	"testing"

	"github.com/jetsetilly/sio800/hardware/diskdrive"
	"github.com/jetsetilly/sio800/test"
)

func TestLayouts(t *testing.T) {
	l, ok := diskdrive.LayoutFromSize(diskdrive.Layouts, 128, 1040)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, l.SectorsPerTrack, 26)

	l, ok = diskdrive.LayoutFromSize(diskdrive.Layouts, 256, 1440)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, l.Heads, 2)

	_, ok = diskdrive.LayoutFromSize(diskdrive.Layouts, 128, 1000)
	test.ExpectFailure(t, ok)

	// the table is an argument so that other tables can be used
	table := []diskdrive.Layout{{1, 10, 10, 128}}
	_, ok = diskdrive.LayoutFromSize(table, 128, 720)
	test.ExpectFailure(t, ok)
	_, ok = diskdrive.LayoutFromGeometry(table, 128, 10, 100)
	test.ExpectSuccess(t, ok)
}

func TestStatusBlock(t *testing.T) {
	buf := make([]byte, 12)

	// eight inch drive
	code := diskdrive.ReadStatusBlock(diskdrive.Layouts, 128, 26, 2002, buf)
	test.ExpectEquality(t, code, byte('C'))
	test.ExpectEquality(t, buf[0], byte(77))
	test.ExpectEquality(t, buf[3], byte(26))
	test.ExpectEquality(t, buf[5], byte(0x02))

	// hard disk partition
	code = diskdrive.ReadStatusBlock(diskdrive.Layouts, 256, 4000, 4000, buf)
	test.ExpectEquality(t, code, byte('C'))
	test.ExpectEquality(t, buf[0], byte(1))
	test.ExpectEquality(t, buf[2], byte(4000>>8))
	test.ExpectEquality(t, buf[3], byte(4000&0xff))
	test.ExpectEquality(t, buf[4], byte(0))
	test.ExpectEquality(t, buf[5], byte(0x04))

	// large hard disk. the high bits of the sector count are in the heads
	code = diskdrive.ReadStatusBlock(diskdrive.Layouts, 512, 0x20000, 0x20000, buf)
	test.ExpectEquality(t, code, byte('C'))
	test.ExpectEquality(t, buf[4], byte(1))
	test.ExpectEquality(t, buf[5], byte(0x0c))
	test.ExpectEquality(t, buf[6], byte(2))
	test.ExpectEquality(t, buf[7], byte(0))

	// written and read back
	diskdrive.ReadStatusBlock(diskdrive.Layouts, 256, 18, 1440, buf)
	l, ok := diskdrive.WriteStatusBlock(diskdrive.Layouts, buf)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, l, diskdrive.Layout{2, 40, 18, 256})

	_, ok = diskdrive.WriteStatusBlock(diskdrive.Layouts, buf[:4])
	test.ExpectFailure(t, ok)
}
