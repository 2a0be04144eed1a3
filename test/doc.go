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

// Package test contains helper functions to remove common boilerplate from
// tests.
//
// The Expect functions report a failure with t.Errorf() and allow the test to
// continue. The Demand functions use t.Fatalf() and stop the test.
//
// ExpectSuccess() and ExpectFailure() accept bool and error values. A nil
// value is treated as success because that is how a nil error is normally
// interpreted.
//
// The RingWriter type implements io.Writer and keeps only the most recent
// output. It is useful for capturing echoed log output.
package test
