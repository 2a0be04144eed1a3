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

// PokeyClock is the frequency of the clock driving the POKEY serial port.
const PokeyClock = 1789790

// StandardSpeed is the speed in bits per second of every command frame and
// of data frames that are not sent in a fast mode.
const StandardSpeed = 19200

// Baud returns the serial speed produced by the POKEY divisor.
func Baud(divisor int) int {
	return PokeyClock / (2 * (divisor + 7))
}

// the clocks of the computer and the peripheral are never exact so a small
// difference in speed is tolerated.
const speedTolerance = 20

// matchSpeed returns true if the speed is close enough to the expected speed.
func matchSpeed(speed int, expected int) bool {
	if expected == 0 {
		return false
	}
	d := speed - expected
	if d < 0 {
		d = -d
	}
	return d <= expected/speedTolerance
}

// Transfer describes how a response from the drive is to be sent.
type Transfer struct {
	// delay before the completion byte, in lines of the emulated display
	Delay int

	// speed of the data frame in bits per second
	Speed int
}
