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

package sio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/diskloader"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/diskdrive"
	"github.com/jetsetilly/sio800/hardware/sio"
	"github.com/jetsetilly/sio800/test"
)

func TestChecksum(t *testing.T) {
	test.ExpectEquality(t, sio.Checksum([]byte{0x31, 0x52, 0x01, 0x00}), byte(0x84))
	test.ExpectEquality(t, sio.Checksum([]byte{0x80, 0x80}), byte(0x01))
	test.ExpectEquality(t, sio.Checksum([]byte{0xff, 0xff}), byte(0xff))
	test.ExpectEquality(t, sio.Checksum(nil), byte(0x00))
}

func command(dev byte, cmd byte, sector int) [5]byte {
	f := [5]byte{dev, cmd, byte(sector), byte(sector >> 8)}
	f[4] = sio.Checksum(f[:4])
	return f
}

// newBus creates a bus with two drives. the first drive has a single
// density disk in which every byte is the sector number. the second drive
// is switched off.
func newBus(t *testing.T, model string) (*sio.Bus, *diskdrive.DiskDrive) {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	env.Normalise()
	test.DemandSuccess(t, env.Prefs.Drive.Model.Set(model))

	data := make([]byte, 720*128)
	for i := range data {
		data[i] = byte(i/128 + 1)
	}
	pth := filepath.Join(t.TempDir(), "disk.xfd")
	test.DemandSuccess(t, os.WriteFile(pth, data, 0o644))

	bus := sio.NewBus(env)

	d1, err := diskdrive.NewDiskDrive(env, 0)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, d1.InsertDisk(diskloader.NewLoader(pth, false), false))
	test.DemandSuccess(t, bus.Register(d1))

	d2, err := diskdrive.NewDiskDrive(env, 1)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, bus.Register(d2))

	test.ExpectSuccess(t, curated.Is(bus.Register(d2), sio.DeviceExists))

	return bus, d1
}

func TestBusRead(t *testing.T) {
	bus, _ := newBus(t, "810")

	resp, err := bus.Command(command(0x31, 0x52, 7), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, resp.Ack, sio.Ack)
	test.ExpectEquality(t, resp.AckDelay, 50)
	test.ExpectEquality(t, resp.Complete, sio.Complete)
	test.ExpectEquality(t, len(resp.Data), 128)
	test.ExpectEquality(t, resp.Data[0], byte(7))
	test.ExpectEquality(t, resp.Speed, diskdrive.StandardSpeed)

	resp, err = bus.Command(command(0x31, 0x53, 0), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(resp.Data), 4)
	test.ExpectEquality(t, resp.Data[0], byte(0x10))
}

func TestBusWrite(t *testing.T) {
	bus, drv := newBus(t, "810")

	resp, err := bus.Command(command(0x31, 0x57, 9), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, resp.Ack, sio.Ack)
	test.ExpectEquality(t, resp.Expect, 128)
	test.ExpectEquality(t, resp.Complete, byte(0))

	data := make([]byte, 129)
	for i := 0; i < 128; i++ {
		data[i] = 0x5a
	}
	data[128] = sio.Checksum(data[:128])

	resp, err = bus.Data(data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, resp.Ack, sio.Ack)
	test.ExpectEquality(t, resp.Complete, sio.Complete)

	buf := make([]byte, 128)
	test.ExpectEquality(t, drv.Disk().ReadSector(9, buf), byte('C'))
	test.ExpectEquality(t, buf[64], byte(0x5a))

	// the data frame belongs to a single command
	_, err = bus.Data(data)
	test.ExpectSuccess(t, curated.Is(err, sio.NoCommand))

	// bad checksum in the data frame
	_, err = bus.Command(command(0x31, 0x57, 9), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	data[128]++
	resp, err = bus.Data(data)
	test.ExpectSuccess(t, curated.Is(err, sio.ChecksumError))
	test.ExpectEquality(t, resp.Ack, sio.Nak)

	// short data frame
	_, err = bus.Command(command(0x31, 0x57, 9), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	resp, err = bus.Data(data[:64])
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, resp.Ack, sio.Nak)
}

func TestBusFastWrite(t *testing.T) {
	bus, drv := newBus(t, "xf551")
	fast := diskdrive.XF551.FastSpeed()

	// the command frame arrives at the standard speed but the data frame
	// of a high speed write follows at the fast speed
	resp, err := bus.Command(command(0x31, 0xd7, 9), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, resp.Ack, sio.Ack)
	test.ExpectEquality(t, resp.Expect, 128)
	test.ExpectEquality(t, resp.Speed, fast)

	data := make([]byte, 129)
	for i := 0; i < 128; i++ {
		data[i] = 0xa5
	}
	data[128] = sio.Checksum(data[:128])

	resp, err = bus.Data(data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, resp.Complete, sio.Complete)
	test.ExpectEquality(t, resp.Speed, fast)

	buf := make([]byte, 128)
	test.ExpectEquality(t, drv.Disk().ReadSector(9, buf), byte('C'))
	test.ExpectEquality(t, buf[0], byte(0xa5))

	// the standard write command is unchanged
	resp, err = bus.Command(command(0x31, 0x57, 9), diskdrive.StandardSpeed)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, resp.Speed, diskdrive.StandardSpeed)
}

func TestBusErrors(t *testing.T) {
	bus, _ := newBus(t, "810")

	f := command(0x31, 0x52, 1)
	f[4]++
	_, err := bus.Command(f, diskdrive.StandardSpeed)
	test.ExpectSuccess(t, curated.Is(err, sio.ChecksumError))

	_, err = bus.Command(command(0x33, 0x52, 1), diskdrive.StandardSpeed)
	test.ExpectSuccess(t, curated.Is(err, sio.NoDevice))
	test.ExpectFailure(t, bus.Listening(0x33))

	// the second drive is switched off and does not answer
	resp, err := bus.Command(command(0x32, 0x52, 1), diskdrive.StandardSpeed)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, resp.Ack, byte(0))

	resp, err = bus.Command(command(0x31, 0x99, 1), diskdrive.StandardSpeed)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, resp.Ack, sio.Nak)
}
