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

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jetsetilly/sio800/diskloader"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/diskdrive"
	"github.com/jetsetilly/sio800/test"
)

// line records the bytes written to it. nothing is ever read.
type line struct {
	out bytes.Buffer
}

func (l *line) Read(_ []byte) (int, error)  { return 0, nil }
func (l *line) Write(b []byte) (int, error) { return l.out.Write(b) }
func (l *line) SetSpeed(_ int) error        { return nil }
func (l *line) Flush() error                { return nil }

// duplicateATX returns an image with a single track with two copies of
// sector one. the copy filled with 0xaa passes the head 8000us into the
// rotation and the copy filled with 0xbb after 160000us.
func duplicateATX() []byte {
	data := make([]byte, 32)
	copy(data, "AT8X")
	binary.LittleEndian.PutUint32(data[28:], 32)

	track := make([]byte, 32+24)
	binary.LittleEndian.PutUint32(track[0:], uint32(len(track)+256))
	binary.LittleEndian.PutUint16(track[10:], 18)
	binary.LittleEndian.PutUint32(track[20:], 32)

	list := track[32:]
	binary.LittleEndian.PutUint32(list[0:], 24)
	list[4] = 1
	list[8] = 1
	binary.LittleEndian.PutUint16(list[10:], 1000)
	binary.LittleEndian.PutUint32(list[12:], 56)
	list[16] = 1
	binary.LittleEndian.PutUint16(list[18:], 20000)
	binary.LittleEndian.PutUint32(list[20:], 56+128)

	data = append(data, track...)
	data = append(data, bytes.Repeat([]byte{0xaa}, 128)...)
	return append(data, bytes.Repeat([]byte{0xbb}, 128)...)
}

func TestRotation(t *testing.T) {
	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	env.Normalise()
	test.DemandSuccess(t, env.Prefs.SIO.CmdDelay.Set(0))
	test.DemandSuccess(t, env.Prefs.SIO.ReadDelay.Set(0))
	test.DemandSuccess(t, env.Prefs.Drive.ATXTiming.Set(false))

	pth := filepath.Join(t.TempDir(), "duplicate.atx")
	test.DemandSuccess(t, os.WriteFile(pth, duplicateATX(), 0o644))

	drv, err := diskdrive.NewDiskDrive(env, 0)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, drv.InsertDisk(diskloader.NewLoader(pth, true), false))

	bus := NewBus(env)
	test.DemandSuccess(t, bus.Register(drv))

	clock := time.Unix(0, 0)
	l := &line{}
	srv := newServer(bus, l, func() time.Time { return clock })

	frame := [5]byte{0x31, 0x52, 0x01, 0x00}
	frame[4] = Checksum(frame[:4])

	read := func() byte {
		t.Helper()
		l.out.Reset()
		test.DemandSuccess(t, srv.exchange(context.Background(), frame))
		test.DemandEquality(t, l.out.Len(), 2+128+1)
		return l.out.Bytes()[2]
	}

	// the head starts at the beginning of the rotation
	test.ExpectEquality(t, read(), byte(0xaa))

	// the first copy has passed the head
	clock = clock.Add(10 * time.Millisecond)
	test.ExpectEquality(t, read(), byte(0xbb))

	// and the second copy, almost a full rotation later
	clock = clock.Add(200 * time.Millisecond)
	test.ExpectEquality(t, read(), byte(0xaa))

	// fractions of a microsecond are not lost
	clock = clock.Add(500 * time.Nanosecond)
	srv.passTime()
	clock = clock.Add(500 * time.Nanosecond)
	srv.passTime()
	test.ExpectEquality(t, srv.last, clock)
}
