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
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/jetsetilly/sio800/curated"
	"github.com/jetsetilly/sio800/environment"
	"github.com/jetsetilly/sio800/hardware/bytestream"
	"github.com/jetsetilly/sio800/logger"
	"github.com/jetsetilly/sio800/random"
)

// Timing of the drive mechanism, in microseconds.
const (
	MusecsPerTrack    = 50000
	MusecsPerSettle   = 20000
	MusecsPerRotation = 210107

	// length of a single line of the emulated display
	MusecsPerLine = 67
)

// the first four bytes of every ATX file.
var atxMagic = [4]byte{'A', 'T', '8', 'X'}

// Flags in the status byte of a sector header. The lower bits are the same
// as the floppy disk controller status.
const (
	ATXLostData = 0x04
	ATXCRCError = 0x08
	ATXMissing  = 0x10
	ATXNoRecord = 0x20
	ATXExtended = 0x40
)

// sizes of the fixed records in an ATX file
const (
	atxFileHeaderLen    = 32
	atxTrackHeaderLen   = 24
	atxListHeaderLen    = 8
	atxSectorHeaderLen  = 8
	atxExtensionLen     = 8
	atxExtensionWeak    = 0x08
	atxSectorListRecord = 1
)

// ATXSector is a single physical sector on a track. A track can contain
// more than one sector with the same index.
type ATXSector struct {
	Index    uint8
	Status   uint8
	Position uint16

	// offset of the sector data in the stream
	Offset int64

	// offset of the sector header and of the extension record in the
	// stream. used when the status of a sector changes as a result of a
	// write
	HeaderOffset    int64
	ExtensionOffset int64

	// bytes from this offset onwards are unreliable and will read as
	// random data
	WeakOffset int

	SectorSize int
}

func (sec ATXSector) String() string {
	return fmt.Sprintf("sector %d at %d (status %#02x, size %d)", sec.Index, sec.Position, sec.Status, sec.SectorSize)
}

// ATXTrack is a single track of the disk.
type ATXTrack struct {
	Index   uint8
	Sectors int
	List    []*ATXSector
}

// ATX implements the DiskImage interface for the ATX format. The ATX format
// records the physical layout of the disk, including the position of
// sectors on the track and sectors that are damaged. Access to the sectors
// takes time depending on where the head is.
type ATX struct {
	env    *environment.Environment
	rnd    *random.Random
	stream bytestream.Stream

	protected bool

	// status of the most recent access
	crcError bool
	lostData bool
	missing  bool
	deleted  bool

	SectorsPerTrack   int
	DefaultSectorSize int

	// the head position in microseconds since the start of the rotation
	HeadPosition   int
	TrackUnderHead int

	Tracks []*ATXTrack

	// delay of the most recent access in display lines
	delay int
}

// NewATX is the preferred method of initialisation for the ATX type.
func NewATX(env *environment.Environment) *ATX {
	img := &ATX{
		env:               env,
		SectorsPerTrack:   18,
		DefaultSectorSize: 128,
	}
	img.rnd = env.Random.Derive(img)
	return img
}

func (img *ATX) String() string {
	return "ATX"
}

// Position implements the random.Source interface.
func (img *ATX) Position() int64 {
	return int64(img.HeadPosition)
}

// atxReader reads fixed sized records from the stream. Reads that fall
// outside the stream are format errors rather than i/o errors.
type atxReader struct {
	stream bytestream.Stream
	size   int64
}

func (r atxReader) read(offset int64, n int) ([]byte, error) {
	if offset < 0 || offset+int64(n) > r.size {
		return nil, curated.Errorf(FormatError, "atx offset out of range or image truncated")
	}
	b := make([]byte, n)
	if err := r.stream.Read(offset, b); err != nil {
		return nil, curated.Errorf(IoError, err)
	}
	return b, nil
}

// Open implements the DiskImage interface.
func (img *ATX) Open(stream bytestream.Stream) error {
	if img.stream != nil {
		return curated.Errorf(AlreadyOpen)
	}

	r := atxReader{stream: stream, size: stream.Size()}

	sectorsPerTrack := 18
	defaultSectorSize := 128
	var tracks []*ATXTrack

	hdr, err := r.read(0, atxFileHeaderLen)
	if err != nil {
		return err
	}
	if hdr[0] != atxMagic[0] || hdr[1] != atxMagic[1] || hdr[2] != atxMagic[2] || hdr[3] != atxMagic[3] {
		return curated.Errorf(FormatError, "image is not an atx image")
	}

	haveSectorsPerTrack := false
	haveSectorSize := false
	trackCount := 0

	trackStart := int64(binary.LittleEndian.Uint32(hdr[28:]))

	for trackStart < r.size {
		th, err := r.read(trackStart, atxTrackHeaderLen)
		if err != nil {
			return err
		}

		trackEnd := trackStart + int64(binary.LittleEndian.Uint32(th[0:]))

		// record type must be zero
		if th[4] != 0 || th[5] != 0 {
			if trackCount < 40 {
				return curated.Errorf(FormatError, "atx track header type invalid")
			}
			logger.Log(img.env, "atx", "image probably corrupt. bogus data beyond last track")
			break
		}

		if trackEnd <= trackStart {
			return curated.Errorf(FormatError, "atx track length invalid")
		}

		trackCount++

		track := &ATXTrack{
			Index:   th[8],
			Sectors: int(uint8(binary.LittleEndian.Uint16(th[10:]))),
		}

		// the format does not say whether the disk is single, enhanced or
		// double density. assume the first reasonable track is typical
		if !haveSectorsPerTrack {
			switch track.Sectors {
			case 18, 26:
				sectorsPerTrack = track.Sectors
				haveSectorsPerTrack = true
			}
		}

		trackData := trackStart + int64(binary.LittleEndian.Uint32(th[20:]))

		if err := img.readTrack(r, track, trackStart, trackEnd, trackData); err != nil {
			return err
		}

		for _, sec := range track.List {
			if sec.Status == 0 && !haveSectorSize {
				defaultSectorSize = sec.SectorSize
				haveSectorSize = true
			}
		}

		tracks = insertTrack(tracks, track)

		trackStart = trackEnd
	}

	img.SectorsPerTrack = sectorsPerTrack
	img.DefaultSectorSize = defaultSectorSize
	img.Tracks = tracks
	img.protected = stream.IsReadOnly()
	img.stream = stream
	img.Reset()

	return nil
}

// insertTrack adds the track in order of track index. A track with the same
// index as an existing track is placed before it.
func insertTrack(tracks []*ATXTrack, track *ATXTrack) []*ATXTrack {
	i := sort.Search(len(tracks), func(i int) bool {
		return tracks[i].Index >= track.Index
	})
	tracks = append(tracks, nil)
	copy(tracks[i+1:], tracks[i:])
	tracks[i] = track
	return tracks
}

func (img *ATX) readTrack(r atxReader, track *ATXTrack, trackStart, trackEnd, trackData int64) error {
	lh, err := r.read(trackData, atxListHeaderLen)
	if err != nil {
		return err
	}

	list := trackData + atxListHeaderLen
	listEnd := trackData + int64(binary.LittleEndian.Uint32(lh[0:]))

	if lh[4] != atxSectorListRecord {
		return curated.Errorf(FormatError, "atx sector list header type invalid")
	}

	ext := 0

	for ; list < listEnd; list += atxSectorHeaderLen {
		sh, err := r.read(list, atxSectorHeaderLen)
		if err != nil {
			return err
		}

		sec := &ATXSector{
			Index:        sh[0],
			Status:       sh[1],
			Position:     binary.LittleEndian.Uint16(sh[2:]),
			HeaderOffset: list,
		}

		if sec.Status&ATXExtended == ATXExtended {
			ext++
		}

		if sec.Status&ATXMissing != ATXMissing {
			// size is corrected once all sectors of the track are known
			sec.SectorSize = 256
			sec.WeakOffset = 256
			sec.Offset = trackStart + int64(binary.LittleEndian.Uint32(sh[4:]))
			if sec.Status&ATXCRCError == ATXCRCError {
				sec.WeakOffset = 0
			}
		}

		track.List = append(track.List, sec)
	}

	// extension records are at the end of the track data. there is no
	// definite way of finding them so work backwards from the end of the
	// track for as long as the records look plausible
	sectorEnd := trackEnd
	for ext > 0 && sectorEnd > trackStart {
		rec, err := r.read(sectorEnd-atxExtensionLen, atxExtensionLen)
		if err != nil {
			return err
		}

		// an empty sector list header is sometimes found here
		if rec[4] == atxSectorListRecord && rec[0] == 0 && rec[1] == 0 && rec[2] == 0 && rec[3] == 0 {
			sectorEnd -= atxExtensionLen
			continue
		}

		// as is a zeroed trailer
		if sectorEnd == trackEnd && allZero(rec) {
			sectorEnd -= atxExtensionLen
			continue
		}

		found := false

		if rec[0] == atxExtensionWeak {
			idx := int(rec[5])
			weak := int(binary.LittleEndian.Uint16(rec[6:]))

			if idx < track.Sectors && weak < 512 {
				found = true
				if idx < len(track.List) {
					sec := track.List[idx]
					if sec.Status&ATXExtended != ATXExtended {
						logger.Logf(img.env, "atx", "extended data for sector %d of track %d which does not require it", sec.Index, track.Index)
					}
					sec.WeakOffset = weak
					sec.ExtensionOffset = sectorEnd - atxExtensionLen
				}
			}
			ext--
		}

		if !found {
			break
		}
		sectorEnd -= atxExtensionLen
	}

	// the format does not record sector sizes. assume a sector runs until
	// the next sector or the end of the sector data
	for _, sec := range track.List {
		if sec.Status&ATXMissing == ATXMissing {
			continue
		}

		for _, other := range track.List {
			if other.Status&ATXMissing == ATXMissing {
				continue
			}
			if other.Offset > sec.Offset && other.Offset-sec.Offset < int64(sec.SectorSize) {
				sec.SectorSize = int(other.Offset - sec.Offset)
			}
		}

		if sectorEnd > sec.Offset && sectorEnd-sec.Offset < int64(sec.SectorSize) {
			sec.SectorSize = int(sectorEnd - sec.Offset)

			// a difference of eight is a dummy extension record
			switch sec.SectorSize {
			case 128 + atxExtensionLen:
				sec.SectorSize = 128
			case 256 + atxExtensionLen:
				sec.SectorSize = 256
			}
		}
	}

	return nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// FindSector returns the sector on the disk that the head will reach first
// for the given sector number. Returns nil if there is no such sector.
//
// If delay is not nil the time taken to move the head and to wait for the
// sector, in display lines, is added to it and the head is moved to the
// track. The rotational position of the head is not changed.
func (img *ATX) FindSector(sector int, delay *int) *ATXSector {
	if sector <= 0 {
		return nil
	}

	trackIdx := uint8((sector - 1) / img.SectorsPerTrack)
	secIdx := uint8(1 + (sector-1)%img.SectorsPerTrack)

	var track *ATXTrack
	for _, t := range img.Tracks {
		if t.Index == trackIdx {
			track = t
			break
		}
	}
	if track == nil {
		return nil
	}

	var timespan int
	if int(trackIdx) > img.TrackUnderHead {
		timespan = (int(trackIdx)-img.TrackUnderHead)*MusecsPerTrack + MusecsPerSettle
	} else if int(trackIdx) < img.TrackUnderHead {
		timespan = (img.TrackUnderHead-int(trackIdx))*MusecsPerTrack + MusecsPerSettle
	}

	if delay != nil {
		*delay += timespan / MusecsPerLine
		img.TrackUnderHead = int(trackIdx)
	}

	headpos := (img.HeadPosition + timespan) % MusecsPerRotation

	var found *ATXSector
	pickup := MusecsPerRotation

	for _, sec := range track.List {
		if sec.Index != secIdx {
			continue
		}

		// position is recorded in units of eight microseconds
		secpos := int(sec.Position) << 3

		var t int
		if secpos > headpos {
			t = secpos - headpos
		} else {
			// wait for another rotation
			t = MusecsPerRotation + secpos - headpos
		}

		if t < pickup {
			found = sec
			pickup = t
		}
	}

	if delay != nil {
		*delay += pickup / MusecsPerLine
	}

	return found
}

// PassTime implements the Timed interface.
func (img *ATX) PassTime(micros int) {
	img.HeadPosition = (img.HeadPosition + micros) % MusecsPerRotation
}

// Delay implements the Timed interface.
func (img *ATX) Delay() int {
	return img.delay
}

// SectorSize implements the DiskImage interface. Physical sectors might be
// shorter but transfers are always of the nominal size.
func (img *ATX) SectorSize(_ int) int {
	return img.DefaultSectorSize
}

// SectorCount implements the DiskImage interface. The count is the nominal
// count used for identifying the type of disk.
func (img *ATX) SectorCount() int {
	return len(img.Tracks) * img.SectorsPerTrack
}

// Status implements the DiskImage interface.
func (img *ATX) Status() Status {
	var s Status
	if img.protected {
		s |= Protected
	}
	if img.crcError {
		s |= CRCError
	}
	if img.lostData {
		// data was requested but not collected
		s |= LostData | DRQ
	}
	if img.missing {
		s |= NotFound
	}
	if img.deleted {
		s |= Deleted
	}
	return s
}

func (img *ATX) setFlags(sec *ATXSector) {
	img.missing = sec == nil || sec.Status&ATXMissing == ATXMissing
	img.deleted = sec != nil && sec.Status&ATXNoRecord == ATXNoRecord
	img.crcError = sec != nil && sec.Status&ATXCRCError == ATXCRCError
	img.lostData = sec != nil && sec.Status&ATXLostData == ATXLostData
}

// ReadSector implements the DiskImage interface.
func (img *ATX) ReadSector(sector int, buffer []byte) byte {
	if img.stream == nil {
		return Error
	}

	img.delay = 0
	sec := img.FindSector(sector, &img.delay)
	img.setFlags(sec)

	if img.missing {
		return Error
	}

	size := img.DefaultSectorSize
	if len(buffer) < size {
		return Error
	}

	if err := img.stream.Read(sec.Offset, buffer[:size]); err != nil {
		return Error
	}

	if sec.Status&ATXExtended == ATXExtended && sec.WeakOffset < size {
		img.rnd.Noise(buffer[sec.WeakOffset:size], int64(sector))
	}

	if sec.Status&(ATXCRCError|ATXLostData|ATXNoRecord|ATXMissing) != 0 {
		return Error
	}

	return Complete
}

// WriteSector implements the DiskImage interface. A successful write
// repairs the sector and the repair is recorded in the image.
func (img *ATX) WriteSector(sector int, buffer []byte) byte {
	if img.stream == nil || img.protected {
		return Error
	}

	img.delay = 0
	sec := img.FindSector(sector, &img.delay)
	img.setFlags(sec)

	if img.missing {
		return Error
	}

	size := sec.SectorSize
	if len(buffer) < size {
		return Error
	}

	if err := img.stream.Write(sec.Offset, buffer[:size]); err != nil {
		img.crcError = true
		return Error
	}

	if err := img.patchMetadata(sec, size); err != nil {
		img.crcError = true
		return Error
	}

	return Complete
}

// patchMetadata records in the image that the sector has been rewritten.
// The sector no longer has a CRC error, lost data or weak bytes.
func (img *ATX) patchMetadata(sec *ATXSector, size int) error {
	status := sec.Status &^ (ATXCRCError | ATXLostData)
	sec.WeakOffset = size

	if status != sec.Status {
		sec.Status = status
		if err := img.stream.Write(sec.HeaderOffset+1, []byte{status}); err != nil {
			return err
		}
	}

	// extended sectors stay extended but without any weak bytes
	if sec.Status&ATXExtended == ATXExtended {
		var weak [2]byte
		binary.LittleEndian.PutUint16(weak[:], uint16(sec.WeakOffset))
		if err := img.stream.Write(sec.ExtensionOffset+6, weak[:]); err != nil {
			return err
		}
	}

	return nil
}

// Protect implements the DiskImage interface.
func (img *ATX) Protect() {
	img.protected = true
}

// Reset implements the DiskImage interface.
func (img *ATX) Reset() {
	img.crcError = false
	img.lostData = false
	img.missing = false
	img.deleted = false
	img.TrackUnderHead = 0
	img.HeadPosition = 0
	img.delay = 0
}

// Catalog implements the Cataloguer interface.
func (img *ATX) Catalog() any {
	return img.Tracks
}
