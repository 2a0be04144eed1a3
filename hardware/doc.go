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

// Package hardware is the base package for the emulated serial peripherals.
// Its sub-packages contain everything required to present disk images to a
// real Atari 8-bit computer.
//
// The sio package is the bus. It decodes command frames and hands them to
// the device that owns the addressed device ID. The diskdrive package is the
// only device type: a floppy drive that can emulate a range of stock and
// modified drive models. Disk images themselves are parsed and written by the
// diskimage package, using the byte streams of the bytestream package.
//
// Preferences for all of the above are in the preferences package.
package hardware
