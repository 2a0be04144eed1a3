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
	"github.com/jetsetilly/sio800/logger"
)

// CommandType is the kind of exchange a command frame starts.
type CommandType int

// List of valid CommandType values.
const (
	// the drive is switched off and does not answer
	DriveOff CommandType = iota

	// the command is not understood by the drive, or was sent at the wrong
	// speed. the drive answers with a NAK
	InvalidCommand

	// a data frame is sent to the computer
	ReadCommand

	// a data frame is received from the computer
	WriteCommand

	// like a ReadCommand but the completion takes much longer
	FormatCommand

	// no data frame. only the completion byte is sent
	StatusCommand
)

func (t CommandType) String() string {
	switch t {
	case DriveOff:
		return "off"
	case InvalidCommand:
		return "invalid"
	case ReadCommand:
		return "read"
	case WriteCommand:
		return "write"
	case FormatCommand:
		return "format"
	case StatusCommand:
		return "status"
	}
	return "unknown"
}

// Frame is a command frame without the checksum: device address, command
// byte, AUX1 and AUX2.
type Frame [4]byte

// the standard sector commands. high speed variants are mapped onto these.
func isSectorCommand(cmd byte) bool {
	return cmd == 0x50 || cmd == 0x52 || cmd == 0x53 || cmd == 0x57
}

// command returns the command byte with high speed variants replaced by the
// standard command. The second return value is true if the command asks for
// the data frame to be sent at the fast speed.
func (drv *DiskDrive) command(frame Frame) (byte, bool) {
	cmd := frame[1]
	caps := drv.model.caps()

	switch {
	case cmd >= 0xd0 && cmd <= 0xd7 && caps.doubler:
		if isSectorCommand(cmd & 0x7f) {
			return cmd & 0x7f, true
		}
	case cmd >= 0x70 && cmd <= 0x77 && caps.warp:
		if isSectorCommand(cmd - 0x20) {
			return cmd - 0x20, true
		}
	case cmd == 0x55 && caps.speedy:
		return 0x52, false
	}

	return cmd, false
}

// sector returns the sector number in the AUX bytes.
func (drv *DiskDrive) sector(frame Frame) int {
	s := int(frame[2]) | int(frame[3])<<8
	if drv.model.caps().auxFast {
		s &= 0x7fff
	}
	return s
}

// listens returns true if the drive accepts command frames at the speed.
func (drv *DiskDrive) listens(speed int) bool {
	if matchSpeed(speed, StandardSpeed) {
		return true
	}
	return drv.model.caps().ultra && matchSpeed(speed, drv.model.FastSpeed())
}

// DataSpeed returns the speed of the data frame that follows the command
// frame, in either direction. The command frame was received at the speed.
func (drv *DiskDrive) DataSpeed(frame Frame, speed int) int {
	caps := drv.model.caps()
	fast := drv.model.FastSpeed()
	if fast == 0 {
		return StandardSpeed
	}

	if caps.ultra && matchSpeed(speed, fast) {
		return fast
	}
	if _, ok := drv.command(frame); ok {
		return fast
	}
	if caps.auxFast && frame[3]&0x80 == 0x80 {
		return fast
	}

	return StandardSpeed
}

// dataSize is the size of the data frame for a sector command.
func (drv *DiskDrive) dataSize(sector int) int {
	if n := drv.speedyBankSize(sector); n > 0 {
		return n
	}
	if drv.disk != nil {
		return drv.disk.SectorSize(sector)
	}
	return drv.sectorSize
}

// CheckCommandFrame decides whether the drive answers the command frame and
// how. The frame was received at the speed in bits per second. The second
// return value is the size of the data frame.
func (drv *DiskDrive) CheckCommandFrame(frame Frame, speed int) (CommandType, int) {
	if drv.status == Off {
		return DriveOff, 0
	}

	if !drv.listens(speed) {
		drv.frameError = true
		return InvalidCommand, 0
	}

	caps := drv.model.caps()
	cmd, _ := drv.command(frame)
	sector := drv.sector(frame)

	switch cmd {
	case 0x3f:
		// read speed byte
		if caps.speedByte {
			return ReadCommand, 1
		}
	case 0x41:
		// install user command. command character and address
		if caps.speedy {
			return WriteCommand, 3
		}
	case 0x44, 0x4b, 0x51:
		// display control, speed control, flush write cache
		if caps.speedy {
			return StatusCommand, 0
		}
	case 0x4c, 0x4d:
		// jump without and with status
		if caps.speedy {
			return drv.jumpStatusType(sector)
		}
	case 0x4e:
		if caps.geometry {
			return ReadCommand, statusBlockLen
		}
	case 0x4f:
		if caps.geometry {
			return WriteCommand, statusBlockLen
		}
	case 0x50, 0x57:
		return WriteCommand, drv.dataSize(sector)
	case 0x52:
		return ReadCommand, drv.dataSize(sector)
	case 0x53:
		return ReadCommand, 4
	case 0x21:
		// the size of the data frame is the sector size set by the
		// geometry command
		return FormatCommand, drv.sectorSize
	case 0x22:
		if drv.model >= Atari1050 {
			return FormatCommand, 128
		}
	case 0x23:
		// start drive test
		return WriteCommand, 128
	case 0x24:
		// drive test results
		return ReadCommand, 128
	}

	drv.frameError = true
	logger.Logf(drv.env, drv.tag(), "invalid command frame: %02x %02x %02x %02x", frame[0], frame[1], frame[2], frame[3])

	return InvalidCommand, 0
}

// AcknowledgeCommandFrame returns the timing of the acknowledgement of a
// command frame received at the speed.
func (drv *DiskDrive) AcknowledgeCommandFrame(frame Frame, speed int) Transfer {
	t := Transfer{
		Delay: drv.env.Prefs.SIO.CmdDelay.Get().(int),
		Speed: StandardSpeed,
	}
	if drv.model.caps().ultra && matchSpeed(speed, drv.model.FastSpeed()) {
		t.Speed = drv.model.FastSpeed()
	}
	return t
}

// the delay added by images that simulate the rotation of the disk.
func (drv *DiskDrive) rotationDelay() int {
	if !drv.env.Prefs.Drive.ATXTiming.Get().(bool) {
		return 0
	}
	if t, ok := drv.disk.(diskimage.Timed); ok {
		return t.Delay()
	}
	return 0
}

// ReadBuffer performs a command that sends a data frame to the computer.
// The buffer must be at least as long as the data size returned by
// CheckCommandFrame(). Returns 'C' on success and 'E' on failure.
func (drv *DiskDrive) ReadBuffer(frame Frame, speed int, buffer []byte) (byte, Transfer) {
	cmd, _ := drv.command(frame)
	sector := drv.sector(frame)

	t := Transfer{
		Delay: drv.env.Prefs.SIO.ReadDelay.Get().(int),
		Speed: drv.DataSpeed(frame, speed),
	}

	switch cmd {
	case 0x3f:
		buffer[0] = drv.speedControl
		return 'C', t

	case 0x4c, 0x4d:
		return drv.jumpStatus(sector, buffer), t

	case 0x4e:
		return ReadStatusBlock(Layouts, drv.sectorSize, drv.sectorsPerTrack, drv.sectorCount, buffer), t

	case 0x52:
		if bank := drv.speedyBank(sector); bank != nil {
			copy(buffer, bank)
			return 'C', t
		}
		if drv.disk == nil {
			return 'E', t
		}
		drv.lastSector = sector
		drv.lastFDC = FDCRead
		code := drv.disk.ReadSector(sector, buffer)
		t.Delay += drv.rotationDelay()
		return code, t

	case 0x53:
		return drv.driveStatus(buffer), t

	case 0x21:
		drv.lastSector = 1
		t.Delay = drv.env.Prefs.SIO.FormatDelay.Get().(int)
		return drv.formatSingle(buffer, sector), t

	case 0x22:
		drv.lastSector = 1
		t.Delay = drv.env.Prefs.SIO.FormatDelay.Get().(int)
		return drv.formatEnhanced(buffer), t

	case 0x24:
		return drv.testResults(buffer), t
	}

	logger.Logf(drv.env, drv.tag(), "unknown read command: %02x %02x %02x %02x", frame[0], frame[1], frame[2], frame[3])

	return 'E', t
}

// WriteBuffer performs a command that receives a data frame from the
// computer. The length of the buffer is the length of the data frame.
// Returns 'C' on success and 'E' on failure.
func (drv *DiskDrive) WriteBuffer(frame Frame, speed int, buffer []byte) (byte, Transfer) {
	cmd, _ := drv.command(frame)
	sector := drv.sector(frame)

	t := Transfer{
		Delay: drv.env.Prefs.SIO.WriteDelay.Get().(int),
		Speed: drv.DataSpeed(frame, speed),
	}

	switch cmd {
	case 0x41:
		return drv.installUserCommand(buffer), t

	case 0x4c, 0x4d:
		// bytes sent to a jump address are ignored
		return 'C', t

	case 0x4f:
		l, ok := WriteStatusBlock(Layouts, buffer)
		if !ok {
			return 'E', t
		}
		drv.sectorSize = l.SectorSize
		drv.sectorsPerTrack = l.SectorsPerTrack
		drv.sectorCount = l.SectorCount()
		return 'C', t

	case 0x23:
		return drv.startTest(buffer), t

	case 0x50, 0x57:
		code := drv.writeSector(sector, buffer)
		drv.writeError = code != 'C'
		t.Delay += drv.rotationDelay()
		return code, t
	}

	logger.Logf(drv.env, drv.tag(), "unknown write command: %02x %02x %02x %02x", frame[0], frame[1], frame[2], frame[3])

	return 'E', t
}

func (drv *DiskDrive) writeSector(sector int, buffer []byte) byte {
	if n := drv.speedyBankSize(sector); n > 0 {
		if len(buffer) != n {
			return 'E'
		}
		copy(drv.speedyBank(sector), buffer)
		return 'C'
	}

	if drv.disk == nil || drv.status != ReadWrite {
		return 'E'
	}

	drv.lastSector = sector
	drv.lastFDC = FDCWrite

	// the data frame must be exactly the size of the sector
	if len(buffer) != drv.disk.SectorSize(sector) {
		return 'E'
	}

	return drv.disk.WriteSector(sector, buffer)
}

// ReadStatus performs a command that has no data frame. Returns 'C' on
// success and 'N' if the command is not known.
func (drv *DiskDrive) ReadStatus(frame Frame, speed int) (byte, Transfer) {
	cmd, _ := drv.command(frame)

	t := Transfer{
		Delay: drv.env.Prefs.SIO.CmdDelay.Get().(int),
		Speed: drv.DataSpeed(frame, speed),
	}

	switch cmd {
	case 0x44:
		drv.displayControl = frame[2]
		return 'C', t
	case 0x4b:
		drv.speedControl = frame[2]
		return 'C', t
	case 0x4c, 0x4d:
		return 'C', t
	case 0x51:
		// there is no write cache
		return 'C', t
	}

	logger.Logf(drv.env, drv.tag(), "unknown status command: %02x %02x %02x %02x", frame[0], frame[1], frame[2], frame[3])

	return 'N', t
}
