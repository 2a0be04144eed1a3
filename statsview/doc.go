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

// Package statsview serves runtime statistics of the sio800 process while
// it is serving drives on the serial bus. It shows whether memory use and
// the number of goroutines stay flat over a long session. It is only
// included when the statsview build tag is present:
//
//	go build -tags statsview
//
// and is started with the statsview flag of the serve command:
//
//	sio800 serve --port /dev/ttyUSB0 --statsview --d1 dos25.atr
//
// The graphs are then at localhost:12800/debug/statsview and the pprof
// endpoints at localhost:12800/debug/pprof/.
package statsview
