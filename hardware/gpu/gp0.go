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

import (
	"github.com/redcrab/gostation/logger"
	"github.com/redcrab/gostation/rendering"
)

// commandBuffer assembles the words of a multi-word GP0 command. The longest
// command is the 12-word shaded textured quad.
type commandBuffer struct {
	words [16]uint32
	len   int
}

func (cb *commandBuffer) clear() {
	cb.len = 0
}

func (cb *commandBuffer) push(word uint32) {
	cb.words[cb.len] = word
	cb.len++
}

// gp0Command describes one GP0 opcode: how many words it takes and what to
// do once they have all arrived.
type gp0Command struct {
	words   uint32
	handler func(*GPU)
}

// gp0Commands is the opcode dispatch table. Unlisted opcodes fall back to a
// logged one-word no-op so an unknown command cannot wedge the stream.
var gp0Commands = map[uint8]gp0Command{
	0x00: {1, (*GPU).gp0NOP},
	0x01: {1, (*GPU).gp0ClearCache},
	0x02: {3, (*GPU).gp0FillRect},
	0x28: {5, (*GPU).gp0QuadMonoOpaque},
	0x2c: {9, (*GPU).gp0QuadTextureBlendOpaque},
	0x30: {6, (*GPU).gp0TriangleShadedOpaque},
	0x38: {8, (*GPU).gp0QuadShadedOpaque},
	0xa0: {3, (*GPU).gp0ImageLoad},
	0xc0: {3, (*GPU).gp0ImageStore},
	0xe1: {1, (*GPU).gp0DrawMode},
	0xe2: {1, (*GPU).gp0TextureWindow},
	0xe3: {1, (*GPU).gp0DrawingAreaTopLeft},
	0xe4: {1, (*GPU).gp0DrawingAreaBottomRight},
	0xe5: {1, (*GPU).gp0DrawingOffset},
	0xe6: {1, (*GPU).gp0MaskBitSetting},
}

// WriteGP0 feeds one word to the GP0 port. Depending on the port's state the
// word is an opcode, a parameter of a command being assembled, or image data.
func (g *GPU) WriteGP0(word uint32) {
	if g.mode == modeImageLoad {
		g.imageLoadWord(word)
		return
	}
	if g.mode == modeImageStore {
		// the port is busy draining a VRAM read through GPUREAD
		logger.Logf("gpu", "GP0 write %08x during VRAM read", word)
		return
	}

	if g.remaining == 0 {
		op := uint8(word >> 24)
		cmd, ok := gp0Commands[op]
		if !ok {
			logger.Logf("gpu", "unhandled GP0 command %02x (%08x)", op, word)
			cmd = gp0Command{1, (*GPU).gp0NOP}
		}
		g.buffer.clear()
		g.remaining = cmd.words
		g.handler = cmd.handler
	}

	g.buffer.push(word)
	g.remaining--

	if g.remaining == 0 {
		g.handler(g)
	}
}

func (g *GPU) imageLoadWord(word uint32) {
	x, y := g.load.next()
	g.vram.SetPixel(x, y, uint16(word))
	x, y = g.load.next()
	g.vram.SetPixel(x, y, uint16(word>>16))

	g.load.remaining--
	if g.load.remaining == 0 {
		g.mode = modeCommand
	}
}

func (g *GPU) gp0NOP() {
}

// gp0ClearCache would invalidate the texture cache. There is no texture
// cache here.
func (g *GPU) gp0ClearCache() {
}

// gp0FillRect fills a VRAM rectangle with a solid colour. The fill goes
// straight to VRAM, bypassing the drawing area and mask settings, which is
// what the hardware's fill does too.
func (g *GPU) gp0FillRect() {
	color := g.buffer.words[0] & 0xffffff
	x := uint16(g.buffer.words[1]) & 0x3f0
	y := uint16(g.buffer.words[1]>>16) & 0x1ff
	w := uint16(g.buffer.words[2]) & 0x7ff
	h := uint16(g.buffer.words[2]>>16) & 0x1ff

	// fill width rounds up to a multiple of 16 pixels
	w = (w + 0xf) & ^uint16(0xf)

	pixel := pack15(color)
	for dy := uint16(0); dy < h; dy++ {
		for dx := uint16(0); dx < w; dx++ {
			g.vram.SetPixel(x+dx, y+dy, pixel)
		}
	}
}

// pack15 converts a 24-bit BGR colour word to the 15-bit VRAM pixel format.
func pack15(color uint32) uint16 {
	r := uint16(color>>3) & 0x1f
	gr := uint16(color>>11) & 0x1f
	b := uint16(color>>19) & 0x1f
	return b<<10 | gr<<5 | r
}

func (g *GPU) gp0QuadMonoOpaque() {
	positions := [4]rendering.Position{
		rendering.PositionFromWord(g.buffer.words[1]),
		rendering.PositionFromWord(g.buffer.words[2]),
		rendering.PositionFromWord(g.buffer.words[3]),
		rendering.PositionFromWord(g.buffer.words[4]),
	}
	color := rendering.ColorFromWord(g.buffer.words[0])
	colors := [4]rendering.Color{color, color, color, color}

	g.backend.PushQuad(positions, colors)
}

// gp0QuadTextureBlendOpaque draws a textured quad. Texture sampling is not
// implemented; the quad is drawn in the blend colour from the command word,
// which keeps the geometry visible.
func (g *GPU) gp0QuadTextureBlendOpaque() {
	positions := [4]rendering.Position{
		rendering.PositionFromWord(g.buffer.words[1]),
		rendering.PositionFromWord(g.buffer.words[3]),
		rendering.PositionFromWord(g.buffer.words[5]),
		rendering.PositionFromWord(g.buffer.words[7]),
	}
	color := rendering.ColorFromWord(g.buffer.words[0])
	colors := [4]rendering.Color{color, color, color, color}

	g.backend.PushQuad(positions, colors)
}

func (g *GPU) gp0TriangleShadedOpaque() {
	positions := [3]rendering.Position{
		rendering.PositionFromWord(g.buffer.words[1]),
		rendering.PositionFromWord(g.buffer.words[3]),
		rendering.PositionFromWord(g.buffer.words[5]),
	}
	colors := [3]rendering.Color{
		rendering.ColorFromWord(g.buffer.words[0]),
		rendering.ColorFromWord(g.buffer.words[2]),
		rendering.ColorFromWord(g.buffer.words[4]),
	}

	g.backend.PushTriangle(positions, colors)
}

func (g *GPU) gp0QuadShadedOpaque() {
	positions := [4]rendering.Position{
		rendering.PositionFromWord(g.buffer.words[1]),
		rendering.PositionFromWord(g.buffer.words[3]),
		rendering.PositionFromWord(g.buffer.words[5]),
		rendering.PositionFromWord(g.buffer.words[7]),
	}
	colors := [4]rendering.Color{
		rendering.ColorFromWord(g.buffer.words[0]),
		rendering.ColorFromWord(g.buffer.words[2]),
		rendering.ColorFromWord(g.buffer.words[4]),
		rendering.ColorFromWord(g.buffer.words[6]),
	}

	g.backend.PushQuad(positions, colors)
}

// gp0ImageLoad sets up a CPU to VRAM rectangle copy. Subsequent GP0 words
// are pixel data until the rectangle is full.
func (g *GPU) gp0ImageLoad() {
	x := uint16(g.buffer.words[1]) & 0x3ff
	y := uint16(g.buffer.words[1]>>16) & 0x1ff
	w := uint16(g.buffer.words[2]) & 0x7ff
	h := uint16(g.buffer.words[2]>>16) & 0x1ff

	if w == 0 || h == 0 {
		logger.Logf("gpu", "image load with degenerate size %dx%d", w, h)
		return
	}

	g.load.start(x, y, w, h)
	g.mode = modeImageLoad
}

// gp0ImageStore sets up a VRAM to CPU rectangle copy. The pixel words are
// then popped from GPUREAD.
func (g *GPU) gp0ImageStore() {
	x := uint16(g.buffer.words[1]) & 0x3ff
	y := uint16(g.buffer.words[1]>>16) & 0x1ff
	w := uint16(g.buffer.words[2]) & 0x7ff
	h := uint16(g.buffer.words[2]>>16) & 0x1ff

	if w == 0 || h == 0 {
		logger.Logf("gpu", "image store with degenerate size %dx%d", w, h)
		return
	}

	g.read.start(x, y, w, h)
	g.mode = modeImageStore
}

func (g *GPU) gp0DrawMode() {
	val := g.buffer.words[0]

	g.pageBaseX = uint8(val & 0xf)
	g.pageBaseY = uint8(val >> 4 & 1)
	g.semiTransparency = uint8(val >> 5 & 3)

	switch val >> 7 & 3 {
	case 0:
		g.textureDepth = Texture4Bit
	case 1:
		g.textureDepth = Texture8Bit
	case 2:
		g.textureDepth = Texture15Bit
	default:
		logger.Logf("gpu", "reserved texture depth in draw mode %08x", val)
		g.textureDepth = Texture15Bit
	}

	g.dithering = val>>9&1 != 0
	g.drawToDisplay = val>>10&1 != 0
	g.textureDisable = val>>11&1 != 0
	g.rectTextureXFlip = val>>12&1 != 0
	g.rectTextureYFlip = val>>13&1 != 0
}

func (g *GPU) gp0TextureWindow() {
	val := g.buffer.words[0]
	g.textureWindowXMask = uint8(val & 0x1f)
	g.textureWindowYMask = uint8(val >> 5 & 0x1f)
	g.textureWindowXOffset = uint8(val >> 10 & 0x1f)
	g.textureWindowYOffset = uint8(val >> 15 & 0x1f)
}

func (g *GPU) gp0DrawingAreaTopLeft() {
	val := g.buffer.words[0]
	g.drawingAreaLeft = uint16(val & 0x3ff)
	g.drawingAreaTop = uint16(val >> 10 & 0x3ff)
}

func (g *GPU) gp0DrawingAreaBottomRight() {
	val := g.buffer.words[0]
	g.drawingAreaRight = uint16(val & 0x3ff)
	g.drawingAreaBottom = uint16(val >> 10 & 0x3ff)
}

func (g *GPU) gp0DrawingOffset() {
	val := g.buffer.words[0]

	// both fields are 11-bit signed
	x := int16(uint16(val&0x7ff)<<5) >> 5
	y := int16(uint16(val>>11&0x7ff)<<5) >> 5

	g.drawingOffsetX = x
	g.drawingOffsetY = y
	g.backend.SetDrawOffset(x, y)
}

func (g *GPU) gp0MaskBitSetting() {
	val := g.buffer.words[0]
	g.forceMaskBit = val&1 != 0
	g.preserveMasked = val&2 != 0
}
