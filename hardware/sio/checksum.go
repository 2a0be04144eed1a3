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

package sio

// Checksum returns the checksum of a frame. The checksum is the sum of the
// bytes with the carry added back in after every addition.
func Checksum(buf []byte) byte {
	var sum int
	for _, b := range buf {
		sum += int(b)
		if sum > 0xff {
			sum = (sum & 0xff) + 1
		}
	}
	return byte(sum)
}

// Acknowledgement and completion bytes.
const (
	Ack      byte = 'A'
	Nak      byte = 'N'
	Complete byte = 'C'
	Error    byte = 'E'
)
