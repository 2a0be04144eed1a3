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

// Sentinel errors.
const (
	DriveError   = "disk drive: %v"
	Incompatible = "disk drive: %s cannot use %s"
	UnknownModel = "disk drive: unknown model (%s)"
	PoweredOff   = "disk drive: D%d: is switched off"
)
