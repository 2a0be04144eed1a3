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

// Package curated wraps the plain Go error type so that errors can be
// identified by the pattern they were created with.
//
// Errors are created with Errorf(). The first argument is the pattern and
// is stored alongside the placeholder values. Formatting happens only when
// Error() is called.
//
// Patterns are normally declared as const strings in the package that
// raises them. For example, the diskimage package declares:
//
//	const FormatError = "disk image: format error: %v"
//
// and a caller can test for it with:
//
//	if curated.Is(err, diskimage.FormatError) {
//		...
//	}
//
// Is() only looks at the outermost error. Has() searches the chain of
// curated errors stored as placeholder values:
//
//	e := curated.Errorf(diskimage.OutOfRange, "dcm offset")
//	f := curated.Errorf(diskimage.FormatError, e)
//
//	curated.Is(f, diskimage.OutOfRange)  // false
//	curated.Has(f, diskimage.OutOfRange) // true
//
// The Error() implementation normalises the message by removing duplicate
// adjacent parts, where parts are separated by the sub-string ": ". Wrapping
// an error with a pattern that begins with the same prefix therefore does
// not result in stuttering messages such as "drive: drive: no image".
//
// Curated errors also implement Unwrap(), returning the first placeholder
// value that is itself an error. This means errors.Is() from the standard
// library will see through a curated error to, for example, io.EOF.
package curated
