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

package gpu

// WriteGP1 executes a control command. Unlike GP0, every GP1 command is a
// single word and takes effect immediately.
func (g *GPU) WriteGP1(word uint32) {
	op := uint8(word >> 24)

	switch op {
	case 0x00:
		g.softReset()
	case 0x01:
		// reset command fifo. drops any half-assembled command and
		// abandons an in-flight image load
		g.clearCommandState()
	case 0x02:
		g.interrupt = false
	case 0x03:
		g.displayDisabled = word&1 != 0
	case 0x04:
		g.dmaDirection = DMADirection(word & 3)
	case 0x05:
		g.displayVRAMStartX = uint16(word) & 0x3fe
		g.displayVRAMStartY = uint16(word>>10) & 0x1ff
	case 0x06:
		g.displayHorizStart = uint16(word) & 0xfff
		g.displayHorizEnd = uint16(word>>12) & 0xfff
	case 0x07:
		g.displayLineStart = uint16(word) & 0x3ff
		g.displayLineEnd = uint16(word>>10) & 0x3ff
	case 0x08:
		g.gp1DisplayMode(word)
	default:
		unimplementedGP1(g, uint32(op), word)
	}
}

func (g *GPU) gp1DisplayMode(val uint32) {
	h1 := uint8(val & 3)
	h2 := uint8(val >> 6 & 1)
	g.hres = hresFromFields(h1, h2)

	g.vres224 = val&(1<<2) == 0
	if val&(1<<3) != 0 {
		g.vmode = PAL
	} else {
		g.vmode = NTSC
	}
	g.displayDepth24 = val&(1<<4) != 0
	g.interlaced = val&(1<<5) != 0
}
