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
	"github.com/jetsetilly/sio800/logger"
)

// the RAM and ROM of a Speedy drive can be read and written with the sector
// commands by using sector numbers that are addresses in the drive's memory.
type speedyBanks struct {
	zeroPage []byte
	ram      []byte
	io       []byte
	rom      []byte
}

func bank(b *[]byte, size int) []byte {
	if *b == nil {
		*b = make([]byte, size)
	}
	return *b
}

// speedyBankSize returns the size of the memory area addressed by the
// sector number. Returns zero if the sector is a disk sector.
func (drv *DiskDrive) speedyBankSize(sector int) int {
	if !drv.model.caps().speedy {
		return 0
	}

	switch {
	case sector == 0:
		return 128
	case sector >= 0x8000 && sector <= 0x9fff && sector&0xff == 0:
		return 256
	case sector >= 0xc000 && sector <= 0xc0ff && sector&0xff == 0:
		return 256
	case sector >= 0xe000 && sector <= 0xffff && sector&0x7f == 0:
		return 128
	}

	return 0
}

// speedyBank returns the memory addressed by the sector number. Returns nil
// if the sector is a disk sector.
func (drv *DiskDrive) speedyBank(sector int) []byte {
	n := drv.speedyBankSize(sector)
	if n == 0 {
		return nil
	}

	switch {
	case sector == 0:
		return bank(&drv.banks.zeroPage, 0x80)
	case sector >= 0x8000 && sector <= 0x9fff:
		o := sector - 0x8000
		return bank(&drv.banks.ram, 0x2000)[o : o+n]
	case sector >= 0xc000 && sector <= 0xc0ff:
		o := sector - 0xc000
		return bank(&drv.banks.io, 0x100)[o : o+n]
	default:
		o := sector - 0xe000
		return bank(&drv.banks.rom, 0x2000)[o : o+n]
	}
}

const maxUserCommands = 16

// a command added to the drive by the computer.
type userCommand struct {
	char      byte
	procedure uint16
}

// UserCommand returns the address of the procedure installed for the
// command character. Returns false if there is no such command.
func (drv *DiskDrive) UserCommand(char byte) (uint16, bool) {
	for _, c := range drv.userCommands {
		if c.procedure != 0 && c.char == char {
			return c.procedure, true
		}
	}
	return 0, false
}

// installUserCommand installs, replaces or removes a user command. The
// buffer is the command character followed by the address of the procedure.
// An address of zero removes the command.
//
// The procedures are recorded but never run.
func (drv *DiskDrive) installUserCommand(buffer []byte) byte {
	if len(buffer) < 3 {
		return 'E'
	}

	char := buffer[0]
	procedure := uint16(buffer[1]) | uint16(buffer[2])<<8

	for i := range drv.userCommands {
		c := &drv.userCommands[i]
		if c.procedure != 0 && c.char == char {
			if procedure == 0 {
				*c = userCommand{}
			} else {
				c.procedure = procedure
			}
			return 'C'
		}
	}

	if procedure == 0 {
		return 'C'
	}

	for i := range drv.userCommands {
		c := &drv.userCommands[i]
		if c.procedure == 0 {
			c.char = char
			c.procedure = procedure
			return 'C'
		}
	}

	// no free slot
	return 'E'
}

// addresses of known routines in the drive's ROM.
const (
	jumpReset   = 0xff0f
	jumpUnknown = 0xffa5
	jumpRAMTest = 0xffb4
	jumpROMTest = 0xffb7
	jumpMotor   = 0xffba
	jumpSetLEDs = 0x9e00
)

// jumpStatusType returns the kind of exchange used by the routine at the
// address.
func (drv *DiskDrive) jumpStatusType(address int) (CommandType, int) {
	switch address {
	case jumpReset, jumpUnknown, jumpROMTest:
	case jumpRAMTest, jumpMotor:
		return ReadCommand, 2
	case jumpSetLEDs:
		return WriteCommand, 3
	default:
		logger.Logf(drv.env, drv.tag(), "unknown entry point %04x", address)
	}
	return StatusCommand, 0
}

// jumpStatus fills the buffer with the result of the routine at the
// address.
func (drv *DiskDrive) jumpStatus(address int, buffer []byte) byte {
	switch address {
	case jumpReset, jumpUnknown, jumpROMTest, jumpSetLEDs:
		return 'C'
	case jumpRAMTest:
		buffer[0] = 0
		buffer[1] = 0
		return 'C'
	case jumpMotor:
		// 288 rpm
		buffer[0] = 40
		buffer[1] = 1
		return 'C'
	}
	logger.Logf(drv.env, drv.tag(), "unknown entry point %04x", address)
	return 'E'
}
