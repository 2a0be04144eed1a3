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

// Layout describes the physical geometry of a disk.
type Layout struct {
	Heads           int
	Tracks          int
	SectorsPerTrack int
	SectorSize      int
}

// SectorCount is the number of sectors on a disk with the layout.
func (l Layout) SectorCount() int {
	return l.Heads * l.Tracks * l.SectorsPerTrack
}

// Layouts lists every disk geometry known to the geometry commands.
var Layouts = []Layout{
	// 5.25 inch
	{1, 40, 18, 128}, {1, 40, 26, 128}, {1, 40, 18, 256}, {1, 40, 9, 512}, {1, 40, 18, 512},
	{2, 40, 18, 128}, {2, 40, 26, 128}, {2, 40, 18, 256}, {2, 40, 9, 512}, {2, 40, 18, 512},
	{1, 80, 18, 128}, {1, 80, 26, 128}, {1, 80, 18, 256}, {1, 80, 9, 512}, {1, 80, 18, 512},
	{2, 80, 18, 128}, {2, 80, 26, 128}, {2, 80, 18, 256}, {2, 80, 9, 512}, {2, 80, 18, 512},

	// 8 inch
	{1, 35, 26, 128}, {1, 77, 26, 128}, {1, 35, 26, 256}, {1, 77, 26, 256},
	{2, 35, 26, 128}, {2, 77, 26, 128}, {2, 35, 26, 256}, {2, 77, 26, 256},
}

// LayoutFromSize returns the first layout in the table with the sector size
// and sector count.
func LayoutFromSize(table []Layout, sectorSize int, sectorCount int) (Layout, bool) {
	for _, l := range table {
		if l.SectorSize == sectorSize && l.SectorCount() == sectorCount {
			return l, true
		}
	}
	return Layout{}, false
}

// LayoutFromGeometry is like LayoutFromSize but the number of sectors per
// track must also match.
func LayoutFromGeometry(table []Layout, sectorSize int, sectorsPerTrack int, sectorCount int) (Layout, bool) {
	for _, l := range table {
		if l.SectorSize == sectorSize && l.SectorsPerTrack == sectorsPerTrack && l.SectorCount() == sectorCount {
			return l, true
		}
	}
	return Layout{}, false
}

// the length of a status block used by the 0x4e and 0x4f commands.
const statusBlockLen = 12

// ReadStatusBlock fills the buffer with the status block (the "percom"
// block) describing the geometry. Geometry without an entry in the table is
// described as a single track hard disk partition.
func ReadStatusBlock(table []Layout, sectorSize int, sectorsPerTrack int, sectorCount int, buffer []byte) byte {
	if len(buffer) < statusBlockLen {
		return 'E'
	}

	var heads, tracks, spt int
	var ctl byte

	if l, ok := LayoutFromGeometry(table, sectorSize, sectorsPerTrack, sectorCount); ok {
		heads = l.Heads
		tracks = l.Tracks
		spt = l.SectorsPerTrack

		// 8 inch drive
		if tracks == 35 || tracks == 77 {
			ctl |= 0x02
		}
	} else {
		heads = 1
		tracks = 1
		spt = sectorCount
		if spt > 0x100ffff {
			spt = 0x100ffff
		}

		// large drive. only the low 16 bits of the sector count fit in the
		// sectors per track field
		if spt > 0xffff {
			ctl |= 0x08
			heads = spt >> 16
		}
	}

	// MFM
	if sectorSize > 128 {
		ctl |= 0x04
	}

	buffer[0] = byte(tracks)
	buffer[1] = 1
	buffer[2] = byte(spt >> 8)
	buffer[3] = byte(spt)
	buffer[4] = byte(heads - 1)
	buffer[5] = ctl
	buffer[6] = byte(sectorSize >> 8)
	buffer[7] = byte(sectorSize)
	buffer[8] = 0xff
	buffer[9] = 0
	buffer[10] = 0
	buffer[11] = 0

	return 'C'
}

// WriteStatusBlock decodes the status block in the buffer. The geometry must
// be in the table.
func WriteStatusBlock(table []Layout, buffer []byte) (Layout, bool) {
	if len(buffer) < statusBlockLen {
		return Layout{}, false
	}

	req := Layout{
		Heads:           int(buffer[4]) + 1,
		Tracks:          int(buffer[0]),
		SectorsPerTrack: int(buffer[2])<<8 | int(buffer[3]),
		SectorSize:      int(buffer[6])<<8 | int(buffer[7]),
	}

	for _, l := range table {
		if l == req {
			return l, true
		}
	}
	return Layout{}, false
}
