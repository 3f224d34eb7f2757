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
	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/logger"
	"github.com/redcrab/gostation/rendering"
)

// TextureDepth is the colour depth of the active texture page.
type TextureDepth uint8

// List of valid TextureDepth values.
const (
	Texture4Bit TextureDepth = iota
	Texture8Bit
	Texture15Bit
)

// VMode is the video standard of the display output.
type VMode uint8

// List of valid VMode values.
const (
	NTSC VMode = iota
	PAL
)

// DMADirection is the GPU's DMA routing as set by GP1(0x04).
type DMADirection uint8

// List of valid DMADirection values.
const (
	DMAOff DMADirection = iota
	DMAFifo
	DMACPUToGP0
	DMAVRAMToCPU
)

// gp0Mode says what the next word written to GP0 means.
type gp0Mode int

const (
	// words are command words, assembled into the command buffer
	modeCommand gp0Mode = iota

	// words are pixel data for an image load set up by GP0(0xA0)
	modeImageLoad

	// an image store set up by GP0(0xC0) is draining through GPUREAD
	modeImageStore
)

// transfer tracks the VRAM rectangle of an in-flight image load or store.
type transfer struct {
	x, y uint16
	w, h uint16

	// number of pixels written or read so far
	cursor uint32

	// words still to move
	remaining uint32
}

func (tr *transfer) start(x, y, w, h uint16) {
	tr.x = x
	tr.y = y
	tr.w = w
	tr.h = h
	tr.cursor = 0

	// round the pixel count up, each word carries two 16-bit pixels
	tr.remaining = (uint32(w)*uint32(h) + 1) / 2
}

// next returns the VRAM coordinates of the transfer's next pixel and steps
// the cursor, wrapping to the next row at the rectangle edge.
func (tr *transfer) next() (uint16, uint16) {
	x := tr.x + uint16(tr.cursor%uint32(tr.w))
	y := tr.y + uint16(tr.cursor/uint32(tr.w))
	tr.cursor++
	return x, y
}

// GPU emulates the console's video chip: the GP0 drawing/transfer port, the
// GP1 control port and the status register.
type GPU struct {
	vram    *memory.VRAM
	backend rendering.Backend

	// GP0(0xE1) draw mode state
	pageBaseX        uint8
	pageBaseY        uint8
	semiTransparency uint8
	textureDepth     TextureDepth
	dithering        bool
	drawToDisplay    bool
	textureDisable   bool
	rectTextureXFlip bool
	rectTextureYFlip bool

	// GP0(0xE6)
	forceMaskBit   bool
	preserveMasked bool

	// GP0(0xE2)
	textureWindowXMask   uint8
	textureWindowYMask   uint8
	textureWindowXOffset uint8
	textureWindowYOffset uint8

	// GP0(0xE3)/(0xE4)
	drawingAreaLeft   uint16
	drawingAreaTop    uint16
	drawingAreaRight  uint16
	drawingAreaBottom uint16

	// GP0(0xE5)
	drawingOffsetX int16
	drawingOffsetY int16

	// GP1 display state
	displayDisabled     bool
	interrupt           bool
	dmaDirection        DMADirection
	displayVRAMStartX   uint16
	displayVRAMStartY   uint16
	displayHorizStart   uint16
	displayHorizEnd     uint16
	displayLineStart    uint16
	displayLineEnd      uint16
	hres                hres
	vres224             bool
	vmode               VMode
	displayDepth24      bool
	interlaced          bool

	// GP0 command assembly
	mode      gp0Mode
	buffer    commandBuffer
	remaining uint32
	handler   func(*GPU)

	load transfer

	// words queued for GPUREAD by GP0(0xC0)
	read transfer
}

// hres packs the two horizontal resolution fields into the form they take in
// the status register, bits [18:16].
type hres uint8

func hresFromFields(h1 uint8, h2 uint8) hres {
	return hres((h2&1)<<2 | h1&3)
}

// NewGPU is the preferred method of initialisation for the GPU type. The
// backend receives the primitives pushed by draw commands; the Null backend
// from the rendering package works fine for headless use.
func NewGPU(vram *memory.VRAM, backend rendering.Backend) *GPU {
	g := &GPU{vram: vram, backend: backend}
	g.softReset()
	return g
}

// VRAM gives access to the GPU's video memory. Used by tests and by the
// frame renderer.
func (g *GPU) VRAM() *memory.VRAM {
	return g.vram
}

// Status assembles the GPUSTAT register.
//
// Two bits lie deliberately. Bit 19 reads as zero whatever the vertical
// resolution, and bit 31 (interlace field) is pinned to zero; the BIOS spins
// on both during boot if they are reported faithfully at instruction
// granularity.
func (g *GPU) Status() uint32 {
	var v uint32

	v |= uint32(g.pageBaseX)
	v |= uint32(g.pageBaseY) << 4
	v |= uint32(g.semiTransparency) << 5
	v |= uint32(g.textureDepth) << 7
	if g.dithering {
		v |= 1 << 9
	}
	if g.drawToDisplay {
		v |= 1 << 10
	}
	if g.forceMaskBit {
		v |= 1 << 11
	}
	if g.preserveMasked {
		v |= 1 << 12
	}
	// bit 13: interlace field, always "even" here
	if g.textureDisable {
		v |= 1 << 15
	}
	v |= uint32(g.hres) << 16
	// bit 19 forced low, see above
	if g.vmode == PAL {
		v |= 1 << 20
	}
	if g.displayDepth24 {
		v |= 1 << 21
	}
	if g.interlaced {
		v |= 1 << 22
	}
	if g.displayDisabled {
		v |= 1 << 23
	}
	if g.interrupt {
		v |= 1 << 24
	}

	// readiness. commands are accepted whenever no multi-word command is
	// half assembled and no image transfer, in either direction, is in
	// flight
	if g.mode == modeCommand && g.remaining == 0 {
		v |= 1 << 26
	}
	if g.mode == modeImageStore {
		v |= 1 << 27
	}
	v |= 1 << 28

	v |= uint32(g.dmaDirection) << 29

	// bit 25 mirrors the ready bit selected by the DMA direction
	switch g.dmaDirection {
	case DMAFifo:
		v |= 1 << 25
	case DMACPUToGP0:
		v |= (v >> 28 & 1) << 25
	case DMAVRAMToCPU:
		v |= (v >> 27 & 1) << 25
	}

	return v
}

// Read returns the next word of the GPUREAD register. Words come from a
// VRAM read set up with GP0(0xC0); with no read in flight the register
// reads zero.
func (g *GPU) Read() uint32 {
	if g.mode != modeImageStore {
		return 0
	}

	lo := uint32(g.readPixel())
	hi := uint32(g.readPixel())
	if g.read.remaining > 0 {
		g.read.remaining--
	}
	if g.read.remaining == 0 {
		g.mode = modeCommand
	}
	return hi<<16 | lo
}

func (g *GPU) readPixel() uint16 {
	x, y := g.read.next()
	return g.vram.GetPixel(x, y)
}

// softReset implements GP1(0x00): all draw mode, texture and display state
// to defaults, command assembly abandoned.
func (g *GPU) softReset() {
	g.pageBaseX = 0
	g.pageBaseY = 0
	g.semiTransparency = 0
	g.textureDepth = Texture4Bit
	g.dithering = false
	g.drawToDisplay = false
	g.textureDisable = false
	g.rectTextureXFlip = false
	g.rectTextureYFlip = false
	g.forceMaskBit = false
	g.preserveMasked = false
	g.textureWindowXMask = 0
	g.textureWindowYMask = 0
	g.textureWindowXOffset = 0
	g.textureWindowYOffset = 0
	g.drawingAreaLeft = 0
	g.drawingAreaTop = 0
	g.drawingAreaRight = 0
	g.drawingAreaBottom = 0
	g.drawingOffsetX = 0
	g.drawingOffsetY = 0
	g.displayDisabled = true
	g.interrupt = false
	g.dmaDirection = DMAOff
	g.displayVRAMStartX = 0
	g.displayVRAMStartY = 0
	g.displayHorizStart = 0x200
	g.displayHorizEnd = 0xc00
	g.displayLineStart = 0x10
	g.displayLineEnd = 0x100
	g.hres = hresFromFields(0, 0)
	g.vres224 = true
	g.vmode = NTSC
	g.displayDepth24 = false
	g.interlaced = false

	g.clearCommandState()

	if g.backend != nil {
		g.backend.SetDrawOffset(0, 0)
	}
}

func (g *GPU) clearCommandState() {
	g.mode = modeCommand
	g.buffer.clear()
	g.remaining = 0
	g.handler = nil
}

func unimplementedGP1(g *GPU, op uint32, val uint32) {
	logger.Logf("gpu", "unhandled GP1 command %02x (%08x)", op, val)
}
