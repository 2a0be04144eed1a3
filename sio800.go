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

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/sio800/diskloader"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/hardware/diskdrive"
	"github.com/jetsetilly/sio800/hardware/diskimage"
	"github.com/jetsetilly/sio800/hardware/preferences"
	"github.com/jetsetilly/sio800/hardware/sio"
	"github.com/jetsetilly/sio800/logger"
	"github.com/jetsetilly/sio800/prefs"
	"github.com/jetsetilly/sio800/statsview"
	"github.com/jetsetilly/sio800/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "* error: %v\n", err)
		os.Exit(20)
	}
}

func newApp(output io.Writer) *cli.App {
	return &cli.App{
		Name:      strings.ToLower(version.ApplicationName),
		Usage:     "Atari 8-bit disk images and disk drives",
		Version:   version.String(),
		Writer:    output,
		ErrWriter: output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefs",
				Usage: `preference overrides of the form "key::value; key::value"`,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "preferences file to use instead of the default",
			},
			&cli.BoolFlag{
				Name:  "log",
				Usage: "echo the log to stdout",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("log") {
				logger.SetEcho(c.App.Writer)
			} else {
				logger.SetEcho(nil)
			}
			if p := c.String("prefs"); p != "" {
				prefs.PushCommandLineStack(p)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if c.String("prefs") != "" {
				if unused := prefs.PopCommandLineStack(); unused != "" {
					fmt.Fprintf(c.App.Writer, "* unused preferences: %s\n", unused)
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "describe one or more disk images",
				ArgsUsage: "IMAGE...",
				Action:    info,
			},
			{
				Name:      "dump",
				Usage:     "hex dump of a single sector",
				ArgsUsage: "IMAGE SECTOR",
				Action:    dump,
			},
			{
				Name:      "format",
				Usage:     "create a blank ATR image",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "density",
						Value: "sd",
						Usage: "sd (720x128), ed (1040x128) or dd (720x256)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "overwrite an existing file",
					},
				},
				Action: format,
			},
			{
				Name:      "dot",
				Usage:     "write the catalog of an ATX image as a graphviz file",
				ArgsUsage: "IMAGE OUTPUT",
				Action:    dot,
			},
			{
				Name:   "serve",
				Usage:  "emulate disk drives on a serial port (SIO2PC cable)",
				Flags:  serveFlags(),
				Action: serve,
			},
		},
	}
}

// newEnvironment creates the environment with the preferences file named
// by the config flag. The default preferences file is used if the flag is
// not set.
func newEnvironment(c *cli.Context) (*environment.Environment, error) {
	var p *preferences.Preferences
	var err error

	if cfg := c.String("config"); cfg != "" {
		p, err = preferences.NewPreferencesFromFile(cfg)
	} else {
		p, err = preferences.NewPreferences()
	}
	if err != nil {
		return nil, err
	}

	return environment.NewEnvironment(environment.MainEmulation, p)
}

// openImage opens the named image read-only. The stream must be closed by
// the caller.
func openImage(env *environment.Environment, filename string) (diskimage.DiskImage, bytestream.Stream, diskloader.Loader, error) {
	ld := diskloader.NewLoader(filename, true)
	stream, err := ld.Open()
	if err != nil {
		return nil, nil, ld, err
	}

	img, err := diskimage.NewDiskImage(env, stream)
	if err != nil {
		stream.Close()
		return nil, nil, ld, err
	}

	return img, stream, ld, nil
}

func info(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one disk image is required")
	}

	env, err := newEnvironment(c)
	if err != nil {
		return err
	}

	w := c.App.Writer

	for _, fn := range c.Args().Slice() {
		img, stream, ld, err := openImage(env, fn)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", fn, err)
			continue
		}

		count := img.SectorCount()
		size := img.SectorSize(4)

		fmt.Fprintf(w, "%s\n", fn)
		fmt.Fprintf(w, "  format:   %s\n", img)
		fmt.Fprintf(w, "  sectors:  %d x %d bytes", count, size)
		if img.SectorSize(1) != size {
			fmt.Fprintf(w, " (boot sectors %d bytes)", img.SectorSize(1))
		}
		fmt.Fprintln(w)

		if l, ok := diskdrive.LayoutFromSize(diskdrive.Layouts, size, count); ok {
			fmt.Fprintf(w, "  layout:   %d heads, %d tracks, %d sectors per track\n", l.Heads, l.Tracks, l.SectorsPerTrack)
		} else {
			fmt.Fprintf(w, "  layout:   no standard layout\n")
		}

		if img.Status()&diskimage.Protected == diskimage.Protected {
			fmt.Fprintf(w, "  writable: no\n")
		} else {
			fmt.Fprintf(w, "  writable: yes\n")
		}

		fmt.Fprintf(w, "  sha1:     %s\n", ld.Hash)

		stream.Close()
	}

	return nil
}

func dump(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("a disk image and a sector number are required")
	}

	sector, err := strconv.ParseInt(c.Args().Get(1), 0, 32)
	if err != nil {
		return fmt.Errorf("sector number: %w", err)
	}

	env, err := newEnvironment(c)
	if err != nil {
		return err
	}

	img, stream, _, err := openImage(env, c.Args().Get(0))
	if err != nil {
		return err
	}
	defer stream.Close()

	buf := make([]byte, img.SectorSize(int(sector)))
	if img.ReadSector(int(sector), buf) != diskimage.Complete {
		return fmt.Errorf("cannot read sector %d (%s)", sector, img.Status())
	}

	d := hex.Dumper(c.App.Writer)
	if _, err := d.Write(buf); err != nil {
		return err
	}
	return d.Close()
}

// density names used by the format command.
var densities = map[string]struct {
	size  int
	count int
}{
	"sd": {128, 720},
	"ed": {128, 1040},
	"dd": {256, 720},
}

func format(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("a filename is required")
	}

	d, ok := densities[strings.ToLower(c.String("density"))]
	if !ok {
		return fmt.Errorf("unknown density (%s)", c.String("density"))
	}

	fn := c.Args().Get(0)
	if _, err := os.Stat(fn); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists", fn)
	}

	fl, err := bytestream.CreateFile(fn, diskimage.ATRSize(d.size, d.count))
	if err != nil {
		return err
	}

	if err := diskimage.FormatDisk(fl, d.size, d.count); err != nil {
		fl.Close()
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s: %d sectors of %d bytes\n", fn, d.count, d.size)

	return fl.Close()
}

func dot(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("a disk image and an output file are required")
	}

	env, err := newEnvironment(c)
	if err != nil {
		return err
	}

	img, stream, _, err := openImage(env, c.Args().Get(0))
	if err != nil {
		return err
	}
	defer stream.Close()

	cat, ok := img.(diskimage.Cataloguer)
	if !ok {
		return fmt.Errorf("%s images have no catalog", img)
	}

	f, err := os.Create(c.Args().Get(1))
	if err != nil {
		return err
	}

	catalog := cat.Catalog()
	memviz.Map(f, &catalog)

	return f.Close()
}

func serveFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "port",
			Usage:    "serial device connected to the computer",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: fmt.Sprintf("drive model (%s)", strings.Join(diskdrive.ModelNames(), ", ")),
		},
		&cli.BoolFlag{
			Name:  "protect",
			Usage: "insert all disks write-protected",
		},
		&cli.BoolFlag{
			Name:  "statsview",
			Usage: "run the runtime statistics server",
		},
	}

	for i := 1; i <= diskdrive.MaxDrives; i++ {
		flags = append(flags, &cli.StringFlag{
			Name:  fmt.Sprintf("d%d", i),
			Usage: fmt.Sprintf("disk image for drive %d", i),
		})
	}

	return flags
}

// attachDrives creates the drives and registers them with the bus. Drive
// one is always attached, other drives only when a disk has been given.
func attachDrives(c *cli.Context, env *environment.Environment, bus *sio.Bus) ([]*diskdrive.DiskDrive, error) {
	if m := c.String("model"); m != "" {
		model, err := diskdrive.ParseModel(m)
		if err != nil {
			return nil, err
		}
		if err := env.Prefs.Drive.Model.Set(model.Key()); err != nil {
			return nil, err
		}
	}

	var drives []*diskdrive.DiskDrive

	for i := 0; i < diskdrive.MaxDrives; i++ {
		fn := c.String(fmt.Sprintf("d%d", i+1))
		if fn == "" && i > 0 {
			continue
		}

		drv, err := diskdrive.NewDiskDrive(env, i)
		if err != nil {
			return nil, err
		}
		drv.SwitchPower(true)

		if fn != "" {
			if err := drv.InsertDisk(diskloader.NewLoader(fn, false), c.Bool("protect")); err != nil {
				return nil, err
			}
		}

		if err := bus.Register(drv); err != nil {
			return nil, err
		}

		drives = append(drives, drv)
	}

	return drives, nil
}

func serve(c *cli.Context) error {
	env, err := newEnvironment(c)
	if err != nil {
		return err
	}

	bus := sio.NewBus(env)

	drives, err := attachDrives(c, env, bus)
	if err != nil {
		return err
	}
	defer func() {
		for _, drv := range drives {
			drv.EjectDisk()
		}
	}()

	for _, drv := range drives {
		fmt.Fprintln(c.App.Writer, drv)
	}

	port, err := sio.OpenPort(c.String("port"))
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Bool("statsview") {
		if !statsview.Available() {
			return fmt.Errorf("statsview not included in this build")
		}
		statsview.Launch(ctx, c.App.Writer)
	}

	return sio.Serve(ctx, port, bus)
}
