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

package random

import (
	"math/rand"
	"time"
)

// the base seed is chosen once at program start
var baseSeed int64

func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Source is anything that can report a position that advances as the
// emulated hardware runs.
type Source interface {
	Position() int64
}

// Random should be used in place of math/rand.
type Random struct {
	src Source

	// use zero seed rather than the random base seed. this is only really
	// useful for normalised instances where random numbers must be predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type. A
// nil Source is allowed, in which case every call is seeded the same way.
func NewRandom(src Source) *Random {
	return &Random{
		src: src,
	}
}

// Derive creates a new Random for a different source. The ZeroSeed setting
// is copied from the original.
func (rnd *Random) Derive(src Source) *Random {
	return &Random{
		src:      src,
		ZeroSeed: rnd.ZeroSeed,
	}
}

// SetSource changes the position source used to seed the generator.
func (rnd *Random) SetSource(src Source) {
	rnd.src = src
}

func (rnd *Random) rand(salt int64) *rand.Rand {
	var p int64
	if rnd.src != nil {
		p = rnd.src.Position()
	}
	if rnd.ZeroSeed {
		return rand.New(rand.NewSource(p + salt))
	}
	return rand.New(rand.NewSource(baseSeed + p + salt))
}

// Intn returns a number in the range [0,n) for the current position.
func (rnd *Random) Intn(n int) int {
	return rnd.rand(0).Intn(n)
}

// Noise fills the buffer with random bytes for the current position. The
// salt differentiates buffers filled at the same position, for example two
// sectors read during the same tick.
func (rnd *Random) Noise(buf []byte, salt int64) {
	r := rnd.rand(salt)
	for i := range buf {
		buf[i] = byte(r.Intn(256))
	}
}
