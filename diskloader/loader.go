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

package diskloader

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/hardware/bytestream"
)

// Sentinel errors.
const (
	LoaderError    = "diskloader: %v"
	UnexpectedHash = "diskloader: unexpected hash value"
)

// Loader is used to specify the disk image to insert into a drive.
type Loader struct {
	// filename of the image. a file:// URL is accepted
	Filename string

	// open the image read-only even if it could be written to
	ReadOnly bool

	// expected hash of the image. empty string indicates that the hash is
	// unknown and need not be validated. after a successful Open() the value
	// will be the hash of the image data
	//
	// for compressed images the hash is of the decompressed data
	Hash string
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string, readOnly bool) Loader {
	return Loader{
		Filename: strings.TrimSpace(filename),
		ReadOnly: readOnly,
	}
}

// ShortName returns the filename without the path or extension.
func (ld Loader) ShortName() string {
	s := filepath.Base(ld.Filename)
	return strings.TrimSuffix(s, filepath.Ext(s))
}

// IsLocal returns true if the filename refers to the local filesystem. Any
// other URL scheme is refused when the image is opened.
func (ld Loader) IsLocal() bool {
	u, err := url.Parse(ld.Filename)
	if err != nil {
		return true
	}
	return u.Scheme == "" || u.Scheme == "file"
}

// Path returns the local path of the image. For a file:// URL this is the
// path component.
func (ld Loader) Path() string {
	u, err := url.Parse(ld.Filename)
	if err == nil && u.Scheme == "file" {
		return u.Path
	}
	return ld.Filename
}

// Open the image and return it as a stream. The caller is responsible for
// closing the stream.
func (ld *Loader) Open() (bytestream.Stream, error) {
	if !ld.IsLocal() {
		u, _ := url.Parse(ld.Filename)
		return nil, curated.Errorf(LoaderError, fmt.Sprintf("unsupported URL scheme (%s)", u.Scheme))
	}

	stream, err := ld.openFile()
	if err != nil {
		return nil, err
	}

	hash, err := hashStream(stream)
	if err != nil {
		stream.Close()
		return nil, curated.Errorf(LoaderError, err)
	}

	if ld.Hash != "" && ld.Hash != hash {
		stream.Close()
		return nil, curated.Errorf(UnexpectedHash)
	}
	ld.Hash = hash

	return stream, nil
}

func (ld *Loader) openFile() (bytestream.Stream, error) {
	pth := ld.Path()

	// check for compression before opening the file as a stream. compressed
	// files are never locked because they are never written to
	f, err := os.Open(pth)
	if err != nil {
		return nil, curated.Errorf(LoaderError, err)
	}
	defer f.Close()

	magic := make([]byte, 2)
	n, _ := io.ReadFull(f, magic)
	if bytestream.IsGzip(magic[:n]) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, curated.Errorf(LoaderError, err)
		}
		m, err := bytestream.OpenGzip(f)
		if err != nil {
			return nil, curated.Errorf(LoaderError, err)
		}
		return m, nil
	}

	fl, err := bytestream.OpenFile(pth, ld.ReadOnly)
	if err != nil {
		return nil, curated.Errorf(LoaderError, err)
	}
	return fl, nil
}

func hashStream(stream bytestream.Stream) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, bytestream.NewReader(stream)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
