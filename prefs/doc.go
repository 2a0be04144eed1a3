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

// Package prefs holds typed preference values and stores them on disk.
//
// A value is one of the types Bool, Int or String. Values are registered
// with a Disk instance under a key and saved to a plain text file with one
// "key :: value" entry per line. Entries in the file that are not
// registered with the Disk instance are preserved when saving, so several
// Disk instances can share the same file.
//
// Values loaded from disk can be overridden for a single run with the
// command line stack. See PushCommandLineStack().
package prefs
