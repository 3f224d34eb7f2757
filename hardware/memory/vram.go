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

// VRAM dimensions. The GPU sees video memory as a 1024x512 grid of 16bpp
// pixels.
const (
	VRAMWidth  = 1024
	VRAMHeight = 512
	VRAMSize   = VRAMWidth * VRAMHeight * 2
)

// VRAM is the video memory of the console. It is accessed only by the GPU;
// the CPU reaches it indirectly through the GP0 transfer commands.
type VRAM struct {
	data []byte
}

// NewVRAM is the preferred method of initialisation for the VRAM type.
func NewVRAM() *VRAM {
	return &VRAM{
		data: make([]byte, VRAMSize),
	}
}

// Load16 returns the little-endian halfword at offset.
func (vram *VRAM) Load16(offset uint32) uint16 {
	if offset+1 >= VRAMSize {
		logger.Logf("vram", "out of bounds read (%08x)", offset)
		return 0
	}
	return binary.LittleEndian.Uint16(vram.data[offset:])
}

// Store16 writes a little-endian halfword at offset.
func (vram *VRAM) Store16(offset uint32, val uint16) {
	if offset+1 >= VRAMSize {
		logger.Logf("vram", "out of bounds write (%08x)", offset)
		return
	}
	binary.LittleEndian.PutUint16(vram.data[offset:], val)
}

// GetPixel returns the 16bpp pixel at the given coordinates. Coordinates
// wrap at the VRAM boundary.
func (vram *VRAM) GetPixel(x, y uint16) uint16 {
	x %= VRAMWidth
	y %= VRAMHeight
	return vram.Load16((uint32(y)*VRAMWidth + uint32(x)) * 2)
}

// SetPixel writes the 16bpp pixel at the given coordinates. Coordinates
// wrap at the VRAM boundary.
func (vram *VRAM) SetPixel(x, y uint16, val uint16) {
	x %= VRAMWidth
	y %= VRAMHeight
	vram.Store16((uint32(y)*VRAMWidth+uint32(x))*2, val)
}
