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

// Package cdimage provides disc images as sector sources for the CD-ROM
// drive. Only raw single-track .bin images are supported; the .cue sheet, if
// any, is ignored because the raw image of a data disc is self-describing.
package cdimage

import (
	"fmt"
	"io"
	"os"

	"github.com/redcrab/gostation/hardware/cdrom"
)

// Image is a disc backed by a raw .bin file on the host filesystem.
type Image struct {
	file    *os.File
	sectors uint32
}

// Open a raw disc image. The file size must be a whole number of raw
// sectors.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cdimage: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cdimage: %w", err)
	}
	if fi.Size()%cdrom.SectorSize != 0 {
		f.Close()
		return nil, fmt.Errorf("cdimage: %s: size %d is not a whole number of sectors", path, fi.Size())
	}

	return &Image{
		file:    f,
		sectors: uint32(fi.Size() / cdrom.SectorSize),
	}, nil
}

// Close the underlying file.
func (img *Image) Close() error {
	return img.file.Close()
}

// Sectors returns the number of raw sectors in the image.
func (img *Image) Sectors() uint32 {
	return img.sectors
}

// ReadSector implements the cdrom.SectorSource interface.
func (img *Image) ReadSector(lba uint32) ([]byte, error) {
	if lba >= img.sectors {
		return nil, fmt.Errorf("cdimage: sector %d beyond end of image (%d sectors)", lba, img.sectors)
	}

	buf := make([]byte, cdrom.SectorSize)
	if _, err := img.file.ReadAt(buf, int64(lba)*cdrom.SectorSize); err != nil && err != io.EOF {
		return nil, fmt.Errorf("cdimage: %w", err)
	}
	return buf, nil
}
