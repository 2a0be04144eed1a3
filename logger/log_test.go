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

package logger_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/sio800/logger"
	"github.com/jetsetilly/sio800/test"
)

func TestLogger(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Write(w)
	test.ExpectEquality(t, w.String(), "")

	log.Log("atr", "header mangled")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "atr: header mangled\n")

	// repeated entries are folded
	w.Reset()
	log.Log("atr", "header mangled")
	log.Log("atr", "header mangled")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "atr: header mangled (repeat x3)\n")
	test.ExpectEquality(t, log.Len(), 1)

	w.Reset()
	log.Logf("dcm", "pass %d", 2)
	log.Tail(w, 1)
	test.ExpectEquality(t, w.String(), "dcm: pass 2\n")

	// tail larger than the log is capped
	w.Reset()
	log.Tail(w, 10)
	test.ExpectEquality(t, w.String(), "atr: header mangled (repeat x3)\ndcm: pass 2\n")

	log.Clear()
	w.Reset()
	log.Write(w)
	test.ExpectEquality(t, w.String(), "")
}

func TestMaxEntries(t *testing.T) {
	log := logger.NewLogger(2)
	log.Log("a", "1")
	log.Log("b", "2")
	log.Log("c", "3")
	test.ExpectEquality(t, log.Len(), 2)

	w := &strings.Builder{}
	log.Write(w)
	test.ExpectEquality(t, w.String(), "b: 2\nc: 3\n")
}

func TestEcho(t *testing.T) {
	log := logger.NewLogger(10)
	w := &strings.Builder{}
	log.SetEcho(w)
	log.Log("sio", "checksum\nerror")
	test.ExpectEquality(t, w.String(), "sio: checksumerror\n")

	log.SetEcho(nil)
	log.Log("sio", "quiet")
	test.ExpectEquality(t, w.String(), "sio: checksumerror\n")
}

type deny struct{}

func (deny) AllowLogging() bool {
	return false
}

func TestPermission(t *testing.T) {
	logger.Clear()

	w := &strings.Builder{}
	logger.Log(deny{}, "test", "not logged")
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "")

	logger.Logf(logger.Allow, "test", "logged %d", 1)
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "test: logged 1\n")

	logger.Clear()
}
