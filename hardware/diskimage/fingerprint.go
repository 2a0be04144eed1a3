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

package diskimage

import (
	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
)

// Fingerprint returns a DiskImage of the type suggested by the first bytes
// of the stream. The image is not opened. Streams that are not recognised
// are assumed to be XFD images.
func Fingerprint(env *environment.Environment, stream bytestream.Stream) (DiskImage, error) {
	var b [4]byte

	n := len(b)
	if stream.Size() < int64(n) {
		n = int(stream.Size())
	}
	if err := stream.Read(0, b[:n]); err != nil {
		return nil, curated.Errorf(IoError, err)
	}

	switch {
	case n >= 2 && b[0] == atrMagic[0] && b[1] == atrMagic[1]:
		return NewATR(env), nil
	case n >= 4 && b[0] == atxMagic[0] && b[1] == atxMagic[1] && b[2] == atxMagic[2] && b[3] == atxMagic[3]:
		return NewATX(env), nil
	case n >= 2 && b[0] == 0xff && b[1] == 0xff:
		return NewBinaryLoader(env), nil
	case n >= 2 && b[0] == 0x00 && b[1] == 0x00:
		return NewStreamText(env, "PROGRAM.BAS"), nil
	case n >= 2 && b[0] == 0xfe && b[1] == 0xfe:
		return NewStreamText(env, "PROGRAM.ASM"), nil
	case n >= 1 && b[0] == dcmSingleFile:
		return NewDCM(env), nil
	case n >= 1 && b[0] == dcmMultiFile:
		return nil, curated.Errorf(FormatError, "multi-file dcm archives are not supported")
	}

	return NewXFD(env), nil
}

// NewDiskImage fingerprints the stream and opens the resulting image.
func NewDiskImage(env *environment.Environment, stream bytestream.Stream) (DiskImage, error) {
	img, err := Fingerprint(env, stream)
	if err != nil {
		return nil, err
	}
	if err := img.Open(stream); err != nil {
		return nil, err
	}
	return img, nil
}
