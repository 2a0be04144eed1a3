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

// Package diskloader is used to specify the disk image that is to be
// inserted into an emulated drive.
//
// When the image is ready to be inserted the Open() function should be used.
// The Open() function handles local files, named either by path or by a
// file:// URL. Other URL schemes are refused. Gzip compressed data is
// recognised and decompressed automatically.
//
// The simplest instance of the Loader type:
//
//	ld := diskloader.Loader{
//		Filename: "disks/dos25.atr",
//	}
//
// It is preferred however that the NewLoader() function is used.
//
// Compressed images are held in memory and are always read-only.
package diskloader
