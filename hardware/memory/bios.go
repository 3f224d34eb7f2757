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

package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/redcrab/gostation/logger"
)

// BIOSSize is the size of every known console BIOS image. 512KB.
const BIOSSize = 512 * 1024

// BIOS is the read-only boot ROM of the console. The CPU begins execution at
// the top of this region after reset.
type BIOS struct {
	data []byte
}

// NewBIOS is the preferred method of initialisation for the BIOS type. The
// supplied data must be exactly BIOSSize bytes, as delivered by the
// biosloader package.
func NewBIOS(data []byte) (*BIOS, error) {
	if len(data) != BIOSSize {
		return nil, fmt.Errorf("bios: wrong image size (%d bytes)", len(data))
	}

	// copy so the caller can't mutate the ROM underneath us
	bios := &BIOS{data: make([]byte, BIOSSize)}
	copy(bios.data, data)

	return bios, nil
}

// Load8 returns the byte at offset.
func (bios *BIOS) Load8(offset uint32) uint8 {
	if offset >= BIOSSize {
		logger.Logf("bios", "out of bounds read (%08x)", offset)
		return 0
	}
	return bios.data[offset]
}

// Load16 returns the little-endian halfword at offset.
func (bios *BIOS) Load16(offset uint32) uint16 {
	if offset+1 >= BIOSSize {
		logger.Logf("bios", "out of bounds read (%08x)", offset)
		return 0
	}
	return binary.LittleEndian.Uint16(bios.data[offset:])
}

// Load32 returns the little-endian word at offset.
func (bios *BIOS) Load32(offset uint32) uint32 {
	if offset+3 >= BIOSSize {
		logger.Logf("bios", "out of bounds read (%08x)", offset)
		return 0
	}
	return binary.LittleEndian.Uint32(bios.data[offset:])
}
