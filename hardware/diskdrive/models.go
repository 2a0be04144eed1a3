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
	"fmt"
	"strings"

	"github.com/jetsetilly/sio800/curated"
)

// Model of the disk drive. The model decides which commands are understood
// and which disks can be used.
//
// Models are ordered so that every model from Atari1050 onwards is able to
// format enhanced density disks.
type Model int

// List of valid Model values.
const (
	Atari810 Model = iota
	Happy810
	Atari815
	Atari1050
	Happy1050
	Speedy
	XF551
	USTurbo
	IndusGT
)

// geometry limit for a single sector size.
type limit struct {
	sectorSize int
	maxSectors int
}

type capabilities struct {
	name string

	// names accepted by ParseModel(). the first entry is the canonical name
	keys []string

	limits []limit

	// pokey divisor of the fast transfer speed. zero if the model has none
	divisor int

	// command frames are also accepted at the fast speed
	ultra bool

	// 0x4e and 0x4f geometry commands
	geometry bool

	// 0x3f speed byte command
	speedByte bool

	// speedy extensions and the speedy RAM banks
	speedy bool

	// 0xd0 to 0xd7 high speed variants of the sector commands
	doubler bool

	// 0x70 to 0x77 warp speed variants of the sector commands
	warp bool

	// bit 7 of AUX2 requests the fast speed for the data frame
	auxFast bool
}

var models = [...]capabilities{
	Atari810: {
		name:   "Atari 810",
		keys:   []string{"810"},
		limits: []limit{{128, 720}},
	},
	Happy810: {
		name:     "Happy 810",
		keys:     []string{"happy810", "warp"},
		limits:   []limit{{128, 720}},
		divisor:  10,
		ultra:    true,
		geometry: true,
		warp:     true,
	},
	Atari815: {
		name:     "Atari 815",
		keys:     []string{"815"},
		limits:   []limit{{128, 720}, {256, 720}},
		geometry: true,
	},
	Atari1050: {
		name:   "Atari 1050",
		keys:   []string{"1050"},
		limits: []limit{{128, 1040}},
	},
	Happy1050: {
		name:     "Happy 1050",
		keys:     []string{"happy1050", "happy"},
		limits:   []limit{{128, 1040}},
		divisor:  10,
		ultra:    true,
		geometry: true,
		warp:     true,
	},
	Speedy: {
		name:      "Speedy 1050",
		keys:      []string{"speedy"},
		limits:    []limit{{128, 1040}, {256, 720}},
		divisor:   9,
		ultra:     true,
		geometry:  true,
		speedByte: true,
		speedy:    true,
		doubler:   true,
	},
	XF551: {
		name:    "XF551",
		keys:    []string{"xf551"},
		limits:  []limit{{128, 1440}, {256, 1440}},
		divisor: 16,
		doubler: true,
	},
	USTurbo: {
		name:      "US Doubler",
		keys:      []string{"usturbo", "usdoubler"},
		limits:    []limit{{128, 1040}, {256, 720}},
		divisor:   10,
		ultra:     true,
		speedByte: true,
	},
	IndusGT: {
		name:      "Indus GT",
		keys:      []string{"indusgt", "indus"},
		limits:    []limit{{128, 1040}, {256, 720}},
		divisor:   6,
		speedByte: true,
		auxFast:   true,
	},
}

func (m Model) caps() capabilities {
	if m < 0 || int(m) >= len(models) {
		return models[Atari810]
	}
	return models[m]
}

func (m Model) String() string {
	return m.caps().name
}

// Key returns the canonical name of the model. The result can be used with
// ParseModel().
func (m Model) Key() string {
	return m.caps().keys[0]
}

// FastSpeed returns the speed of the fast transfer mode in bits per second.
// Returns zero if the model has no fast mode.
func (m Model) FastSpeed() int {
	d := m.caps().divisor
	if d == 0 {
		return 0
	}
	return Baud(d)
}

// ParseModel returns the Model with the specified name. Names are not case
// sensitive.
func ParseModel(s string) (Model, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimPrefix(k, "atari")
	for i := range models {
		for _, n := range models[i].keys {
			if k == n {
				return Model(i), nil
			}
		}
	}
	return Atari810, curated.Errorf(UnknownModel, s)
}

// ModelNames lists the canonical name of every model.
func ModelNames() []string {
	n := make([]string, 0, len(models))
	for i := range models {
		n = append(n, models[i].keys[0])
	}
	return n
}

// checkGeometry returns an error if the model cannot use a disk of the
// specified geometry.
func (m Model) checkGeometry(sectorSize int, sectorCount int) error {
	for _, l := range m.caps().limits {
		if l.sectorSize == sectorSize {
			if sectorCount > l.maxSectors {
				return fmt.Errorf("%d sectors (maximum is %d)", sectorCount, l.maxSectors)
			}
			return nil
		}
	}
	return fmt.Errorf("sectors of %d bytes", sectorSize)
}
