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
	"context"
	"io"
	"time"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/hardware/diskdrive"
	"github.com/jetsetilly/sio800/hardware/diskimage"
	"github.com/jetsetilly/sio800/logger"
	"github.com/pkg/term"
)

// Port is the serial port connected to the computer. Reads should time out
// rather than block forever, returning zero bytes.
type Port interface {
	io.ReadWriter
	SetSpeed(baud int) error
	Flush() error
}

// OpenPort opens the named serial device in raw mode at the standard speed.
func OpenPort(name string) (*term.Term, error) {
	t, err := term.Open(name, term.Speed(diskdrive.StandardSpeed), term.RawMode)
	if err != nil {
		return nil, curated.Errorf(PortError, err)
	}
	if err := t.SetReadTimeout(readTimeout); err != nil {
		t.Close()
		return nil, curated.Errorf(PortError, err)
	}
	return t, nil
}

const (
	// duration of one line of the emulated display. delays are measured in
	// lines
	lineDuration = diskimage.MusecsPerLine * time.Microsecond

	readTimeout = 100 * time.Millisecond

	// the longest wait for a data frame from the computer
	dataTimeout = time.Second
)

func sleepLines(ctx context.Context, lines int) {
	if lines <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(lines) * lineDuration):
	}
}

// server is the state of a running Serve().
type server struct {
	bus   *Bus
	port  Port
	speed int

	// the time that has been passed to the devices so far
	now  func() time.Time
	last time.Time
}

func newServer(bus *Bus, port Port, now func() time.Time) *server {
	return &server{
		bus:   bus,
		port:  port,
		speed: diskdrive.StandardSpeed,
		now:   now,
		last:  now(),
	}
}

// passTime turns the disks by the time since the last call. Only whole
// microseconds are passed on, the remainder is kept for the next call.
func (srv *server) passTime() {
	us := srv.now().Sub(srv.last).Microseconds()
	if us <= 0 {
		return
	}
	srv.bus.PassTime(int(us))
	srv.last = srv.last.Add(time.Duration(us) * time.Microsecond)
}

func (srv *server) setSpeed(speed int) error {
	if speed == 0 || speed == srv.speed {
		return nil
	}
	if err := srv.port.SetSpeed(speed); err != nil {
		return curated.Errorf(PortError, err)
	}
	srv.speed = speed
	return nil
}

func (srv *server) write(b ...byte) error {
	if _, err := srv.port.Write(b); err != nil {
		return curated.Errorf(PortError, err)
	}
	return nil
}

// read exactly n bytes from the port
func (srv *server) read(ctx context.Context, n int) ([]byte, error) {
	buf := make([]byte, n)
	deadline := time.Now().Add(dataTimeout)

	r := 0
	for r < n {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if time.Now().After(deadline) {
			return nil, curated.Errorf(PortError, "timeout")
		}
		c, err := srv.port.Read(buf[r:])
		if err != nil && err != io.EOF {
			return nil, curated.Errorf(PortError, err)
		}
		r += c
	}

	return buf, nil
}

// Serve answers the command frames arriving on the port until the context
// is cancelled. Command frames are found by sliding a five byte window over
// the incoming bytes until the checksum matches and the address is that of
// a registered device.
//
// The disks in the devices turn in real time, including the time spent
// waiting for a command.
func Serve(ctx context.Context, port Port, bus *Bus) error {
	srv := newServer(bus, port, time.Now)

	if err := port.Flush(); err != nil {
		return curated.Errorf(PortError, err)
	}

	var window [5]byte
	var filled int
	b := make([]byte, 1)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := port.Read(b)
		if err != nil && err != io.EOF {
			return curated.Errorf(PortError, err)
		}
		if n == 0 {
			continue
		}

		copy(window[:], window[1:])
		window[4] = b[0]
		if filled < len(window) {
			filled++
			if filled < len(window) {
				continue
			}
		}

		if !bus.Listening(window[0]) || Checksum(window[:4]) != window[4] {
			continue
		}

		if err := srv.exchange(ctx, window); err != nil {
			if curated.Is(err, PortError) {
				return err
			}
			logger.Log(bus.env, "sio", err.Error())
		}

		filled = 0
	}
}

// exchange handles a single command frame and everything that follows.
func (srv *server) exchange(ctx context.Context, frame [5]byte) error {
	srv.passTime()

	resp, err := srv.bus.Command(frame, srv.speed)
	if err != nil {
		return err
	}

	// switched off devices do not answer
	if resp.Ack == 0 {
		return nil
	}

	// the next command frame always arrives at the standard speed
	defer func() {
		_ = srv.setSpeed(diskdrive.StandardSpeed)
	}()

	sleepLines(ctx, resp.AckDelay)
	if err := srv.write(resp.Ack); err != nil {
		return err
	}
	if resp.Ack == Nak {
		return nil
	}

	if resp.Expect > 0 {
		if err := srv.setSpeed(resp.Speed); err != nil {
			return err
		}
		data, err := srv.read(ctx, resp.Expect+1)
		if err != nil {
			return err
		}
		srv.passTime()
		resp, err = srv.bus.Data(data)
		if werr := srv.write(resp.Ack); werr != nil {
			return werr
		}
		if err != nil {
			return err
		}
	}

	if err := srv.setSpeed(resp.Speed); err != nil {
		return err
	}

	sleepLines(ctx, resp.Delay)
	if err := srv.write(resp.Complete); err != nil {
		return err
	}

	if len(resp.Data) > 0 {
		return srv.write(append(resp.Data, Checksum(resp.Data))...)
	}

	return nil
}
