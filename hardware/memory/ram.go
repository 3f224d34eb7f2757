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

	"github.com/redcrab/gostation/logger"
)

// RAMSize is the amount of main memory in the console. 2MB and not a byte
// more.
const RAMSize = 2 * 1024 * 1024

// RAM is the main byte-addressable store of the console.
type RAM struct {
	data []byte
}

// NewRAM is the preferred method of initialisation for the RAM type. The
// contents are deliberately filled with a garbage pattern. Real hardware
// does not clear memory on power-up and software should not rely on it.
func NewRAM() *RAM {
	ram := &RAM{
		data: make([]byte, RAMSize),
	}
	for i := range ram.data {
		ram.data[i] = 0xca
	}
	return ram
}

// Load8 returns the byte at offset.
func (ram *RAM) Load8(offset uint32) uint8 {
	if offset >= RAMSize {
		logger.Logf("ram", "out of bounds read (%08x)", offset)
		return 0
	}
	return ram.data[offset]
}

// Load16 returns the little-endian halfword at offset.
func (ram *RAM) Load16(offset uint32) uint16 {
	if offset+1 >= RAMSize {
		logger.Logf("ram", "out of bounds read (%08x)", offset)
		return 0
	}
	return binary.LittleEndian.Uint16(ram.data[offset:])
}

// Load32 returns the little-endian word at offset.
func (ram *RAM) Load32(offset uint32) uint32 {
	if offset+3 >= RAMSize {
		logger.Logf("ram", "out of bounds read (%08x)", offset)
		return 0
	}
	return binary.LittleEndian.Uint32(ram.data[offset:])
}

// Store8 writes a byte at offset.
func (ram *RAM) Store8(offset uint32, val uint8) {
	if offset >= RAMSize {
		logger.Logf("ram", "out of bounds write (%08x)", offset)
		return
	}
	ram.data[offset] = val
}

// Store16 writes a little-endian halfword at offset.
func (ram *RAM) Store16(offset uint32, val uint16) {
	if offset+1 >= RAMSize {
		logger.Logf("ram", "out of bounds write (%08x)", offset)
		return
	}
	binary.LittleEndian.PutUint16(ram.data[offset:], val)
}

// Store32 writes a little-endian word at offset.
func (ram *RAM) Store32(offset uint32, val uint32) {
	if offset+3 >= RAMSize {
		logger.Logf("ram", "out of bounds write (%08x)", offset)
		return
	}
	binary.LittleEndian.PutUint32(ram.data[offset:], val)
}
