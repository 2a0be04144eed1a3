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
	"github.com/jetsetilly/sio800/hardware/diskimage"
)

// bits of the command status byte of the status command.
const (
	cmdInvalidFrame = 0x01
	cmdWriteFailed  = 0x04
	cmdProtected    = 0x08
	cmdActive       = 0x10
	cmdDouble       = 0x20
	cmdEnhanced     = 0x80
)

// bits of the controller status register that are only used by the type I
// (reset and seek) commands.
const (
	fdcNotReady     = 0x80
	fdcWriteProtect = 0x40
	fdcHeadLoaded   = 0x20
	fdcSeekError    = 0x10
	fdcTrackZero    = 0x04
)

// formatTimeout is the timeout in seconds reported by the status command.
// the computer waits this long for a format command to complete.
const formatTimeout = 0xe0

// fdcStatus returns the status register of the floppy disk controller. The
// meaning of the bits depends on the class of the most recent command.
func (drv *DiskDrive) fdcStatus() byte {
	var img diskimage.Status
	if drv.disk != nil {
		img = drv.disk.Status()
	}

	var s byte
	if drv.disk == nil {
		s |= fdcNotReady
	}

	switch drv.lastFDC {
	case FDCReset, FDCSeek:
		if drv.status == ReadOnly {
			s |= fdcWriteProtect
		}
		if drv.lastSector <= drv.sectorsPerTrack {
			s |= fdcTrackZero
		}
		if drv.lastFDC == FDCSeek {
			if drv.disk != nil {
				s |= fdcHeadLoaded
			}
			if img&diskimage.NotFound == diskimage.NotFound {
				s |= fdcSeekError
			}
		}

	case FDCRead:
		s |= byte(img & (diskimage.Deleted | diskimage.NotFound | diskimage.CRCError | diskimage.LostData | diskimage.DRQ))

	case FDCWrite:
		if drv.status == ReadOnly {
			s |= byte(diskimage.Protected)
		}
		s |= byte(img & (diskimage.NotFound | diskimage.CRCError | diskimage.LostData | diskimage.DRQ))

	case FDCReadTrack:
		s |= byte(img & (diskimage.LostData | diskimage.DRQ))

	case FDCWriteTrack:
		if drv.status == ReadOnly {
			s |= byte(diskimage.Protected)
		}
		s |= byte(img & (diskimage.LostData | diskimage.DRQ))
	}

	return s
}

// driveStatus fills the four byte status of the 0x53 command.
//
// The controller status is sent inverted, as the drive reads it from the
// controller chip.
func (drv *DiskDrive) driveStatus(buffer []byte) byte {
	var cmd byte

	if drv.frameError {
		cmd |= cmdInvalidFrame
	}
	if drv.writeError {
		cmd |= cmdWriteFailed
	}
	if drv.status == ReadOnly {
		cmd |= cmdProtected
	}
	if drv.status == ReadOnly || drv.status == ReadWrite {
		cmd |= cmdActive
	}

	switch drv.density {
	case Enhanced:
		cmd |= cmdEnhanced
	case Double, High:
		cmd |= cmdDouble
	}

	buffer[0] = cmd
	buffer[1] = ^drv.fdcStatus()
	buffer[2] = formatTimeout
	buffer[3] = 0

	drv.frameError = false
	drv.writeError = false

	return 'C'
}

// formatSingle formats the disk with the geometry set by the geometry
// command. An aux value of 0x411 asks for an enhanced density disk. The
// buffer receives the list of bad sectors, which is always empty.
func (drv *DiskDrive) formatSingle(buffer []byte, aux int) byte {
	if drv.status != ReadWrite {
		return 'E'
	}

	if aux == 0x411 {
		drv.sectorCount = 1040
		drv.sectorSize = 128
	}

	if drv.CreateNewImage(drv.sectorSize, drv.sectorCount) != 'C' {
		return 'E'
	}

	drv.lastFDC = FDCWriteTrack

	n := drv.sectorSize
	if n > len(buffer) {
		n = len(buffer)
	}
	for i := range buffer[:n] {
		buffer[i] = 0x00
	}

	// end of list
	buffer[0] = 0xff
	buffer[1] = 0xff

	return 'C'
}

func (drv *DiskDrive) formatEnhanced(buffer []byte) byte {
	return drv.formatSingle(buffer, 0x411)
}

// startTest starts the drive test in the first byte of the buffer.
func (drv *DiskDrive) startTest(buffer []byte) byte {
	if len(buffer) != 128 {
		return 'E'
	}

	step := drv.sectorsPerTrack >> 1
	drv.runningTest = buffer[0]

	switch drv.runningTest {
	case 0x00:
		// speed test
		drv.lastFDC = FDCReadTrack
		return 'C'
	case 0x01, 0x02:
		return 'C'
	case 0x03:
		// step in
		if drv.lastSector <= drv.sectorCount-step {
			drv.lastSector += step
		}
		drv.lastFDC = FDCSeek
		return 'C'
	case 0x04:
		// step out
		if drv.lastSector >= step {
			drv.lastSector -= step
		}
		drv.lastFDC = FDCSeek
		return 'C'
	case 0x05:
		// restore to track zero
		drv.lastSector = 1
		drv.lastFDC = FDCSeek
		return 'C'
	}

	return 'E'
}

// testResults fills the buffer with the results of the running drive test
// and ends the test.
func (drv *DiskDrive) testResults(buffer []byte) byte {
	test := drv.runningTest
	drv.runningTest = 0xff

	for i := range buffer {
		buffer[i] = 0x00
	}

	switch test {
	case 0x00:
		// rotation period
		buffer[0] = 0x20
		buffer[1] = 0x08
		return 'C'
	case 0x01:
		// motor start time
		buffer[0] = 0x14
		return 'C'
	case 0x02, 0x03, 0x04, 0x05:
		return 'C'
	}

	return 'E'
}
