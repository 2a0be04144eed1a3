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

// Package diskdrive emulates the disk drives that are attached to the serial
// bus of an Atari 8-bit computer. A drive holds at most one disk image and
// answers the command frames sent to it by the computer.
//
// The DiskDrive type is not safe for concurrent use. The serial bus makes
// sure that only one command is being handled at any one time.
package diskdrive
