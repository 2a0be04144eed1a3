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
	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/diskdrive"
	"github.com/jetsetilly/sio800/logger"
)

// Device is implemented by everything that can be attached to the bus.
type Device interface {
	Device() byte
	CheckCommandFrame(frame diskdrive.Frame, speed int) (diskdrive.CommandType, int)
	AcknowledgeCommandFrame(frame diskdrive.Frame, speed int) diskdrive.Transfer
	ReadBuffer(frame diskdrive.Frame, speed int, buffer []byte) (byte, diskdrive.Transfer)
	WriteBuffer(frame diskdrive.Frame, speed int, buffer []byte) (byte, diskdrive.Transfer)
	ReadStatus(frame diskdrive.Frame, speed int) (byte, diskdrive.Transfer)
	DataSpeed(frame diskdrive.Frame, speed int) int
	PassTime(micros int)
}

// Response is what a device sends back in answer to a command frame or a
// data frame.
type Response struct {
	// Ack or Nak. zero if the device does not answer at all
	Ack byte

	// delay before Ack in lines of the emulated display
	AckDelay int

	// Complete or Error. zero if the exchange is not over yet
	Complete byte

	// data frame sent after the completion byte, without the checksum
	Data []byte

	// size of the data frame expected from the computer, without the
	// checksum. non-zero only for write commands
	Expect int

	// delay before the completion byte. the speed is that of the data frame
	// expected from the computer, or of the completion byte and the data
	// frame sent to the computer
	Delay int
	Speed int
}

// Bus connects the computer to the devices.
type Bus struct {
	env *environment.Environment

	devices map[byte]Device

	// the write command waiting for its data frame
	pending *pendingWrite
}

type pendingWrite struct {
	dev   Device
	frame diskdrive.Frame
	speed int
	size  int
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(env *environment.Environment) *Bus {
	return &Bus{
		env:     env,
		devices: make(map[byte]Device),
	}
}

// Register attaches the device to the bus.
func (bus *Bus) Register(dev Device) error {
	id := dev.Device()
	if _, ok := bus.devices[id]; ok {
		return curated.Errorf(DeviceExists, id)
	}
	bus.devices[id] = dev
	return nil
}

// Listening returns true if a device is registered at the address.
func (bus *Bus) Listening(id byte) bool {
	_, ok := bus.devices[id]
	return ok
}

// Command sends a command frame, including its checksum, to the bus. The
// frame was received at the speed in bits per second.
//
// A frame with a bad checksum or for an unknown device is an error. Devices
// that are switched off return a response with a zero Ack.
func (bus *Bus) Command(frame [5]byte, speed int) (Response, error) {
	bus.pending = nil

	if Checksum(frame[:4]) != frame[4] {
		return Response{}, curated.Errorf(ChecksumError, "command")
	}

	dev, ok := bus.devices[frame[0]]
	if !ok {
		return Response{}, curated.Errorf(NoDevice, frame[0])
	}

	var f diskdrive.Frame
	copy(f[:], frame[:4])

	ct, size := dev.CheckCommandFrame(f, speed)

	switch ct {
	case diskdrive.DriveOff:
		return Response{}, nil
	case diskdrive.InvalidCommand:
		return Response{Ack: Nak, Speed: diskdrive.StandardSpeed}, nil
	}

	ack := dev.AcknowledgeCommandFrame(f, speed)
	resp := Response{
		Ack:      Ack,
		AckDelay: ack.Delay,
		Speed:    ack.Speed,
	}

	switch ct {
	case diskdrive.ReadCommand, diskdrive.FormatCommand:
		buffer := make([]byte, size)
		code, t := dev.ReadBuffer(f, speed, buffer)
		resp.Complete = code
		resp.Data = buffer
		resp.Delay = t.Delay
		resp.Speed = t.Speed

	case diskdrive.StatusCommand:
		code, t := dev.ReadStatus(f, speed)
		resp.Complete = code
		resp.Delay = t.Delay
		resp.Speed = t.Speed

	case diskdrive.WriteCommand:
		bus.pending = &pendingWrite{
			dev:   dev,
			frame: f,
			speed: speed,
			size:  size,
		}
		resp.Expect = size
		resp.Speed = dev.DataSpeed(f, speed)
	}

	logger.Logf(bus.env, "sio", "%02x %02x %02x %02x: %s", frame[0], frame[1], frame[2], frame[3], ct)

	return resp, nil
}

// PassTime advances the rotation of the disk in every device by the number
// of microseconds.
func (bus *Bus) PassTime(micros int) {
	for _, dev := range bus.devices {
		dev.PassTime(micros)
	}
}

// Data sends the data frame, including its checksum, of the most recent
// write command to the bus.
func (bus *Bus) Data(data []byte) (Response, error) {
	p := bus.pending
	bus.pending = nil

	if p == nil {
		return Response{}, curated.Errorf(NoCommand)
	}

	if len(data) != p.size+1 || Checksum(data[:p.size]) != data[p.size] {
		return Response{Ack: Nak, Speed: diskdrive.StandardSpeed}, curated.Errorf(ChecksumError, "data")
	}

	code, t := p.dev.WriteBuffer(p.frame, p.speed, data[:p.size])

	return Response{
		Ack:      Ack,
		Complete: code,
		Delay:    t.Delay,
		Speed:    t.Speed,
	}, nil
}
