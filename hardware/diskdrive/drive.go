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

package diskdrive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/diskloader"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/hardware/diskimage"
	"github.com/jetsetilly/sio800/logger"
)

// ProtectionStatus is the state of the drive as seen by the computer.
type ProtectionStatus int

// List of valid ProtectionStatus values.
const (
	Off ProtectionStatus = iota
	Unloaded
	ReadOnly
	ReadWrite
)

func (p ProtectionStatus) String() string {
	switch p {
	case Off:
		return "off"
	case Unloaded:
		return "empty"
	case ReadOnly:
		return "read only"
	case ReadWrite:
		return "read/write"
	}
	return "unknown"
}

// Density of the disk in the drive.
type Density int

// List of valid Density values.
const (
	NoDensity Density = iota
	Single
	Enhanced
	Double
	High
)

func (d Density) String() string {
	switch d {
	case Single:
		return "single density"
	case Enhanced:
		return "enhanced density"
	case Double:
		return "double density"
	case High:
		return "high density"
	}
	return "no density"
}

// FDCCommand is the class of the most recent command sent to the floppy
// disk controller. The meaning of the bits in the controller's status
// register depends on the class.
type FDCCommand int

// List of valid FDCCommand values.
const (
	FDCReset FDCCommand = iota
	FDCSeek
	FDCRead
	FDCWrite
	FDCReadTrack
	FDCWriteTrack
)

// MaxDrives is the number of drives that can be attached to the serial bus.
const MaxDrives = 8

// DiskDrive is a single disk drive attached to the serial bus.
type DiskDrive struct {
	env *environment.Environment

	// drive number starting from zero. the device address on the serial bus
	// is 0x31 plus the id
	id    int
	model Model

	status  ProtectionStatus
	density Density
	lastFDC FDCCommand

	disk   diskimage.DiskImage
	stream bytestream.Stream
	loader diskloader.Loader

	// geometry of the disk. the geometry can be changed by the computer
	// before formatting a disk
	sectorSize      int
	sectorCount     int
	sectorsPerTrack int

	// sector of the most recent access. used to decide whether the head is
	// on track zero
	lastSector int

	speedControl   byte
	displayControl byte

	// drive test started by command 0x23. 0xff if no test is running
	runningTest byte

	// flags reported by the next status command
	frameError bool
	writeError bool

	banks        speedyBanks
	userCommands [maxUserCommands]userCommand
}

// NewDiskDrive is the preferred method of initialisation for the DiskDrive
// type. The first drive is switched on, all other drives are switched off.
func NewDiskDrive(env *environment.Environment, id int) (*DiskDrive, error) {
	if id < 0 || id >= MaxDrives {
		return nil, curated.Errorf(DriveError, fmt.Sprintf("no drive with number %d", id+1))
	}

	model, err := ParseModel(env.Prefs.Drive.Model.Get().(string))
	if err != nil {
		return nil, err
	}

	drv := &DiskDrive{
		env:          env,
		id:           id,
		model:        model,
		speedControl: 9,
	}
	drv.setDefaultGeometry()

	if id == 0 {
		drv.status = Unloaded
	}

	return drv, nil
}

func (drv *DiskDrive) setDefaultGeometry() {
	drv.sectorSize = 128
	drv.sectorCount = 720
	drv.sectorsPerTrack = 18
	drv.lastSector = 1
	drv.runningTest = 0xff
	drv.lastFDC = FDCReset
}

func (drv *DiskDrive) tag() string {
	return fmt.Sprintf("D%d", drv.id+1)
}

// String returns a single line description of the drive and the disk in it.
func (drv *DiskDrive) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s %s", drv.tag(), drv.model, drv.status))
	if drv.disk != nil {
		s.WriteString(fmt.Sprintf(" %s %dx%d %s", drv.disk, drv.sectorCount, drv.sectorSize, drv.loader.ShortName()))
	}
	return s.String()
}

// ID returns the drive number, starting from zero.
func (drv *DiskDrive) ID() int {
	return drv.id
}

// Device returns the address of the drive on the serial bus.
func (drv *DiskDrive) Device() byte {
	return byte(0x31 + drv.id)
}

// Model returns the drive model.
func (drv *DiskDrive) Model() Model {
	return drv.model
}

// SetModel changes the model of the drive. The change is refused if the
// model cannot use the disk currently in the drive.
func (drv *DiskDrive) SetModel(model Model) error {
	if drv.disk != nil {
		if err := model.checkGeometry(drv.sectorSize, drv.sectorCount); err != nil {
			return curated.Errorf(Incompatible, model, err)
		}
	}
	drv.model = model
	return nil
}

// CheckDiskCompatibility returns an error if the drive model cannot use the
// disk in the drive.
func (drv *DiskDrive) CheckDiskCompatibility() error {
	if drv.disk == nil {
		return nil
	}
	if err := drv.model.checkGeometry(drv.sectorSize, drv.sectorCount); err != nil {
		return curated.Errorf(Incompatible, drv.model, err)
	}
	return nil
}

// Protection returns the state of the drive.
func (drv *DiskDrive) Protection() ProtectionStatus {
	return drv.status
}

// Density of the disk in the drive.
func (drv *DiskDrive) Density() Density {
	return drv.density
}

// Geometry returns the sector size, the sector count and the number of
// sectors per track.
func (drv *DiskDrive) Geometry() (int, int, int) {
	return drv.sectorSize, drv.sectorCount, drv.sectorsPerTrack
}

// LastSector returns the sector of the most recent access.
func (drv *DiskDrive) LastSector() int {
	return drv.lastSector
}

// LastFDC returns the class of the most recent controller command.
func (drv *DiskDrive) LastFDC() FDCCommand {
	return drv.lastFDC
}

// Disk returns the disk image in the drive. Returns nil if there is no disk.
func (drv *DiskDrive) Disk() diskimage.DiskImage {
	return drv.disk
}

// Loader returns the loader of the disk in the drive.
func (drv *DiskDrive) Loader() diskloader.Loader {
	return drv.loader
}

// SwitchPower turns the drive on or off. Switching the drive off ejects the
// disk.
func (drv *DiskDrive) SwitchPower(on bool) {
	if on {
		if drv.status == Off {
			drv.status = Unloaded
			drv.EjectDisk()
		}
		return
	}

	if drv.status != Off {
		drv.EjectDisk()
		drv.status = Off
	}
}

// EjectDisk removes the disk from the drive. The stream of the disk is
// closed. Does nothing if the drive is switched off.
func (drv *DiskDrive) EjectDisk() {
	if drv.status == Off {
		return
	}

	if drv.stream != nil {
		if err := drv.stream.Close(); err != nil {
			logger.Logf(drv.env, drv.tag(), "eject: %v", err)
		}
	}

	drv.disk = nil
	drv.stream = nil
	drv.loader = diskloader.Loader{}
	drv.density = NoDensity
	drv.status = Unloaded
	drv.lastFDC = FDCReset
}

// InsertDisk loads the disk specified by the loader into the drive. If
// protect is true, or if the drive preferences ask for it, the disk is
// write-protected.
//
// A local file that does not exist is created as a blank single density
// disk.
func (drv *DiskDrive) InsertDisk(loader diskloader.Loader, protect bool) error {
	if drv.status == Off {
		return curated.Errorf(PoweredOff, drv.id+1)
	}

	drv.EjectDisk()

	if loader.IsLocal() {
		if _, err := os.Stat(loader.Path()); errors.Is(err, fs.ErrNotExist) {
			if err := createBlank(loader.Path()); err != nil {
				return curated.Errorf(DriveError, err)
			}
			logger.Logf(drv.env, drv.tag(), "created blank disk %s", loader.Path())
		}
	}

	stream, err := loader.Open()
	if err != nil {
		return curated.Errorf(DriveError, err)
	}

	img, err := diskimage.NewDiskImage(drv.env, stream)
	if err != nil {
		stream.Close()
		return curated.Errorf(DriveError, err)
	}

	if protect || drv.env.Prefs.Drive.Protect.Get().(bool) {
		img.Protect()
	}

	if err := drv.install(img, stream, loader); err != nil {
		stream.Close()
		return err
	}

	logger.Logf(drv.env, drv.tag(), "inserted %s", drv.String())

	return nil
}

func createBlank(filename string) error {
	fl, err := bytestream.CreateFile(filename, diskimage.ATRSize(128, 720))
	if err != nil {
		return err
	}
	if err := diskimage.FormatDisk(fl, 128, 720); err != nil {
		fl.Close()
		return err
	}
	return fl.Close()
}

// install the open image in the drive. the geometry of the drive follows
// the image.
func (drv *DiskDrive) install(img diskimage.DiskImage, stream bytestream.Stream, loader diskloader.Loader) error {
	count := img.SectorCount()
	size := img.SectorSize(4)

	if err := drv.model.checkGeometry(size, count); err != nil {
		return curated.Errorf(Incompatible, drv.model, err)
	}

	// images with an unknown layout are treated as a hard disk with a
	// single track
	spt := count
	if l, ok := LayoutFromSize(Layouts, size, count); ok {
		spt = l.SectorsPerTrack
	}

	drv.disk = img
	drv.stream = stream
	drv.loader = loader
	drv.sectorSize = size
	drv.sectorCount = count
	drv.sectorsPerTrack = spt
	drv.lastSector = 1
	drv.lastFDC = FDCReset

	switch {
	case size == 512:
		drv.density = High
	case size == 256:
		drv.density = Double
	case spt == 26:
		drv.density = Enhanced
	default:
		drv.density = Single
	}

	if img.Status()&diskimage.Protected == diskimage.Protected {
		drv.status = ReadOnly
	} else {
		drv.status = ReadWrite
	}

	return nil
}

// CreateNewImage replaces the disk in the drive with a blank ATR image of
// the specified geometry. The stream of the current disk is reused so the
// new image has the same name as the old one. Returns 'C' on success and 'E'
// on failure, in which case the drive is left empty.
func (drv *DiskDrive) CreateNewImage(sectorSize int, sectorCount int) byte {
	if drv.stream == nil || drv.stream.IsReadOnly() {
		return 'E'
	}

	if err := drv.model.checkGeometry(sectorSize, sectorCount); err != nil {
		logger.Logf(drv.env, drv.tag(), "format: %v", err)
		return 'E'
	}

	stream := drv.stream
	loader := drv.loader

	// the stream is being reused so it must not be closed by the eject
	drv.stream = nil
	drv.EjectDisk()

	fail := func(err error) byte {
		logger.Logf(drv.env, drv.tag(), "format: %v", err)
		stream.Close()
		return 'E'
	}

	if err := diskimage.FormatDisk(stream, sectorSize, sectorCount); err != nil {
		return fail(err)
	}

	img := diskimage.NewATR(drv.env)
	if err := img.Open(stream); err != nil {
		return fail(err)
	}

	if err := drv.install(img, stream, loader); err != nil {
		return fail(err)
	}

	return 'C'
}

// PassTime advances the rotation of the disk by the number of microseconds.
func (drv *DiskDrive) PassTime(micros int) {
	if t, ok := drv.disk.(diskimage.Timed); ok {
		t.PassTime(micros)
	}
}
