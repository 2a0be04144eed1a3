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

// Package random should be used in preference to the math/rand package when
// random data is required by an emulated device.
//
// Numbers are derived from a Source, which supplies the current position of
// the simulated hardware (for a disk image, the head position within the
// rotation). The same position always produces the same numbers for the
// lifetime of the program. Between program runs the numbers differ unless
// ZeroSeed is set, in which case every run is identical. ZeroSeed is useful
// for testing and for reproducible serial traces.
package random
