// This file is part of GoStation.
//
// GoStation is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoStation is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoStation.  If not, see <https://www.gnu.org/licenses/>.

package cdrom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// sentinel errors for ISO-9660 parsing
var (
	ErrNotISO9660 = errors.New("no ISO-9660 filesystem")
)

// pvdLBA is the sector of the primary volume descriptor.
const pvdLBA = 16

// logicalBlockSize is the only block size supported. Discs for the console
// always use it.
const logicalBlockSize = 2048

// PVD is the parsed primary volume descriptor of an ISO-9660 filesystem.
type PVD struct {
	VolumeID string

	// LBA and byte length of the root directory extent
	RootDirLBA uint32
	RootDirLen uint32

	// file and directory identifiers found in the root directory
	RootFiles []string
}

// userData extracts the 2048-byte payload of a raw Mode 2 Form 1 sector.
func userData(raw []byte) ([]byte, error) {
	if len(raw) < 24+logicalBlockSize {
		return nil, fmt.Errorf("cdrom: short sector (%d bytes)", len(raw))
	}
	return raw[24 : 24+logicalBlockSize], nil
}

// ReadPVD reads and validates the primary volume descriptor at sector 16
// and traverses the root directory. A disc without a filesystem, an audio
// disc for instance, returns ErrNotISO9660.
func ReadPVD(src SectorSource) (*PVD, error) {
	raw, err := src.ReadSector(pvdLBA)
	if err != nil {
		return nil, fmt.Errorf("cdrom: %w", err)
	}
	data, err := userData(raw)
	if err != nil {
		return nil, err
	}

	// type code 1 and the standard identifier mark a primary volume
	// descriptor
	if data[0] != 1 || string(data[1:6]) != "CD001" {
		return nil, ErrNotISO9660
	}

	blockSize := binary.LittleEndian.Uint16(data[128:])
	if blockSize != logicalBlockSize {
		return nil, fmt.Errorf("cdrom: unsupported logical block size %d", blockSize)
	}

	pvd := &PVD{
		VolumeID: strings.TrimRight(string(data[40:72]), " "),
	}

	// the root directory record is embedded at offset 156
	root := data[156 : 156+34]
	pvd.RootDirLBA = binary.LittleEndian.Uint32(root[2:])
	pvd.RootDirLen = binary.LittleEndian.Uint32(root[10:])

	if err := readRootDir(src, pvd); err != nil {
		return nil, err
	}

	return pvd, nil
}

// readRootDir walks the directory records of the root directory extent and
// collects their identifiers.
func readRootDir(src SectorSource, pvd *PVD) error {
	sectors := (pvd.RootDirLen + logicalBlockSize - 1) / logicalBlockSize

	for i := uint32(0); i < sectors; i++ {
		raw, err := src.ReadSector(pvd.RootDirLBA + i)
		if err != nil {
			return fmt.Errorf("cdrom: %w", err)
		}
		data, err := userData(raw)
		if err != nil {
			return err
		}

		off := 0
		for off < logicalBlockSize {
			recLen := int(data[off])
			if recLen == 0 {
				// records do not straddle sector boundaries; a
				// zero length means the rest of the sector is
				// padding
				break
			}
			// a record is at least the 33-byte fixed part plus its
			// identifier, and never straddles a sector boundary
			if recLen < 33 || off+recLen > logicalBlockSize {
				return fmt.Errorf("cdrom: malformed directory record at offset %d", off)
			}
			idLen := int(data[off+32])
			if 33+idLen > recLen {
				return fmt.Errorf("cdrom: directory record identifier overruns record at offset %d", off)
			}

			id := string(data[off+33 : off+33+idLen])

			// skip the "." and ".." entries
			if id != "\x00" && id != "\x01" {
				// identifiers carry a ";1" version suffix
				id = strings.TrimSuffix(id, ";1")
				pvd.RootFiles = append(pvd.RootFiles, id)
			}

			off += recLen
		}
	}

	return nil
}

// Contains reports whether the root directory holds the named file.
func (pvd *PVD) Contains(name string) bool {
	for _, f := range pvd.RootFiles {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
