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

// Package diskimage implements the disk image formats used by Atari 8-bit
// emulators and serial interface devices.
//
// Every format implements the DiskImage interface. Images are opened from a
// bytestream.Stream and from then on the image owns the stream. The formats
// are:
//
//	ATR   the common format with a 16 byte header
//	XFD   raw sector data without a header
//	ATX   sector data with timing, duplicate and weak sector information
//	DCM   the compressed DiskComm format. always read-only
//	binary loader   a DOS binary load file presented as a bootable disk
//	stream text     a BASIC or MAC/65 file presented on a DOS 2 disk
//
// Use NewDiskImage() to choose the correct format from the contents of a
// stream.
//
// Sector numbers start at one. Sector zero, and sectors beyond the value
// returned by SectorCount(), can never be read or written. Reading and
// writing returns the completion code of the serial bus rather than an error
// value. Complete ('C') indicates success and Error ('E') indicates failure.
// The Status() function can be used afterwards to find out more about a
// failure.
package diskimage
