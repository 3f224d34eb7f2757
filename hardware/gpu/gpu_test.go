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

package gpu_test

import (
	"testing"

	"github.com/redcrab/gostation/hardware/gpu"
	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/rendering"
	"github.com/redcrab/gostation/test"
)

// recordingBackend captures pushed primitives for inspection.
type recordingBackend struct {
	triangles int
	quads     int

	lastPositions [4]rendering.Position
	lastColors    [4]rendering.Color

	offsetX int16
	offsetY int16
}

func (r *recordingBackend) PushTriangle(positions [3]rendering.Position, colors [3]rendering.Color) {
	r.triangles++
	copy(r.lastPositions[:], positions[:])
	copy(r.lastColors[:], colors[:])
}

func (r *recordingBackend) PushQuad(positions [4]rendering.Position, colors [4]rendering.Color) {
	r.quads++
	r.lastPositions = positions
	r.lastColors = colors
}

func (r *recordingBackend) SetDrawOffset(x int16, y int16) {
	r.offsetX = x
	r.offsetY = y
}

func (r *recordingBackend) Present() {
}

func newTestGPU() (*gpu.GPU, *recordingBackend) {
	backend := &recordingBackend{}
	return gpu.NewGPU(memory.NewVRAM(), backend), backend
}

func TestStatusAfterReset(t *testing.T) {
	g, _ := newTestGPU()
	stat := g.Status()

	// ready for commands and DMA words, display disabled
	test.ExpectEquality(t, stat&(1<<26), uint32(1<<26))
	test.ExpectEquality(t, stat&(1<<28), uint32(1<<28))
	test.ExpectEquality(t, stat&(1<<23), uint32(1<<23))

	// interlace field and vres bits are pinned low
	test.ExpectEquality(t, stat&(1<<19), 0)
	test.ExpectEquality(t, stat&(1<<31), 0)
}

func TestCommandAssemblyReadiness(t *testing.T) {
	g, backend := newTestGPU()

	// first word of a 5-word monochrome quad. not ready for a new
	// command until the remaining words arrive
	g.WriteGP0(0x28ff0000)
	test.ExpectEquality(t, g.Status()&(1<<26), 0)

	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00000040)
	test.ExpectEquality(t, g.Status()&(1<<26), 0)

	g.WriteGP0(0x00400040)
	g.WriteGP0(0x00400000)
	test.ExpectEquality(t, g.Status()&(1<<26), uint32(1<<26))
	test.ExpectEquality(t, backend.quads, 1)
}

func TestQuadVerticesAndColor(t *testing.T) {
	g, backend := newTestGPU()

	g.WriteGP0(0x280000ff) // red
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00000040) // (64, 0)
	g.WriteGP0(0x00400040) // (64, 64)
	g.WriteGP0(0x00400000) // (0, 64)

	test.ExpectEquality(t, backend.lastPositions[1], rendering.Position{X: 64, Y: 0})
	test.ExpectEquality(t, backend.lastPositions[2], rendering.Position{X: 64, Y: 64})
	test.ExpectEquality(t, backend.lastColors[0], rendering.Color{R: 0xff, G: 0, B: 0})
}

func TestShadedTriangle(t *testing.T) {
	g, backend := newTestGPU()

	g.WriteGP0(0x300000ff)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x0000ff00)
	g.WriteGP0(0x00000080)
	g.WriteGP0(0x00ff0000)
	g.WriteGP0(0x00800080)

	test.ExpectEquality(t, backend.triangles, 1)
	test.ExpectEquality(t, backend.lastColors[1], rendering.Color{R: 0, G: 0xff, B: 0})
	test.ExpectEquality(t, backend.lastPositions[2], rendering.Position{X: 0x80, Y: 0x80})
}

func TestTexturedQuadUsesBlendColor(t *testing.T) {
	g, backend := newTestGPU()

	g.WriteGP0(0x2c808080)
	for _, w := range []uint32{
		0x00000000, 0x00000000,
		0x00000040, 0x00000000,
		0x00400040, 0x00000000,
		0x00400000, 0x00000000,
	} {
		g.WriteGP0(w)
	}

	test.ExpectEquality(t, backend.quads, 1)
	test.ExpectEquality(t, backend.lastColors[0], rendering.Color{R: 0x80, G: 0x80, B: 0x80})
	test.ExpectEquality(t, backend.lastPositions[3], rendering.Position{X: 0, Y: 64})
}

func TestUnknownOpcodeDoesNotWedge(t *testing.T) {
	g, backend := newTestGPU()

	g.WriteGP0(0x7f000000)
	test.ExpectEquality(t, g.Status()&(1<<26), uint32(1<<26))

	// a real command still works afterwards
	g.WriteGP0(0x28ff0000)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00000040)
	g.WriteGP0(0x00400040)
	g.WriteGP0(0x00400000)
	test.ExpectEquality(t, backend.quads, 1)
}

func TestGP1ResetAbandonsCommand(t *testing.T) {
	g, backend := newTestGPU()

	g.WriteGP0(0x28ff0000)
	g.WriteGP0(0x00000000)
	test.ExpectEquality(t, g.Status()&(1<<26), 0)

	g.WriteGP1(0x01000000)
	test.ExpectEquality(t, g.Status()&(1<<26), uint32(1<<26))
	test.ExpectEquality(t, backend.quads, 0)
}

func TestGP1FullReset(t *testing.T) {
	g, _ := newTestGPU()

	// disturb a spread of state: draw mode, DMA direction, display
	// enable, and half a quad command
	g.WriteGP0(0xe1000205)
	g.WriteGP1(0x04000002)
	g.WriteGP1(0x03000000)
	g.WriteGP0(0x28ff0000)
	g.WriteGP0(0x00000000)

	g.WriteGP1(0x00000000)

	stat := g.Status()
	test.ExpectEquality(t, stat&(1<<23), uint32(1<<23))
	test.ExpectEquality(t, stat&(1<<24), 0)
	test.ExpectEquality(t, stat&(1<<26), uint32(1<<26))
	test.ExpectEquality(t, stat>>29&3, 0)
	test.ExpectEquality(t, stat&0xf, 0)
}

func TestFillThenStoreRoundtrip(t *testing.T) {
	g, _ := newTestGPU()

	// fill a 32x16 rectangle at (0,0) with solid red
	g.WriteGP0(0x020000ff)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00100020)

	// 24-bit 0x0000ff packs to 15-bit 0x001f
	test.ExpectEquality(t, g.VRAM().GetPixel(0, 0), 0x001f)
	test.ExpectEquality(t, g.VRAM().GetPixel(31, 15), 0x001f)
	test.ExpectEquality(t, g.VRAM().GetPixel(32, 0), 0)

	// read the rectangle back through GPUREAD
	g.WriteGP0(0xc0000000)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00100020)

	test.ExpectEquality(t, g.Status()&(1<<27), uint32(1<<27))
	test.ExpectEquality(t, g.Read(), 0x001f001f)
}

func TestStoreBlocksCommandReadiness(t *testing.T) {
	g, _ := newTestGPU()

	// a 2x1 store: one word to drain
	g.WriteGP0(0xc0000000)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00010002)

	// a VRAM read in flight is its own port mode: not ready for
	// commands, read words pending
	stat := g.Status()
	test.ExpectEquality(t, stat&(1<<26), 0)
	test.ExpectEquality(t, stat&(1<<27), uint32(1<<27))

	// command words written meanwhile are dropped, not assembled
	g.WriteGP0(0x28ff0000)

	g.Read()
	stat = g.Status()
	test.ExpectEquality(t, stat&(1<<26), uint32(1<<26))
	test.ExpectEquality(t, stat&(1<<27), 0)
}

func TestImageLoadRoundtrip(t *testing.T) {
	g, _ := newTestGPU()

	// load a 4x2 rectangle at (16, 16)
	g.WriteGP0(0xa0000000)
	g.WriteGP0(0x00100010)
	g.WriteGP0(0x00020004)

	test.ExpectEquality(t, g.Status()&(1<<26), 0)

	words := []uint32{0x22221111, 0x44443333, 0x66665555, 0x88887777}
	for _, w := range words {
		g.WriteGP0(w)
	}
	test.ExpectEquality(t, g.Status()&(1<<26), uint32(1<<26))

	test.ExpectEquality(t, g.VRAM().GetPixel(16, 16), 0x1111)
	test.ExpectEquality(t, g.VRAM().GetPixel(17, 16), 0x2222)
	test.ExpectEquality(t, g.VRAM().GetPixel(19, 16), 0x4444)
	test.ExpectEquality(t, g.VRAM().GetPixel(16, 17), 0x5555)
	test.ExpectEquality(t, g.VRAM().GetPixel(19, 17), 0x8888)

	// store it back and compare
	g.WriteGP0(0xc0000000)
	g.WriteGP0(0x00100010)
	g.WriteGP0(0x00020004)

	for _, w := range words {
		test.ExpectEquality(t, g.Read(), w)
	}
	test.ExpectEquality(t, g.Status()&(1<<27), 0)
	test.ExpectEquality(t, g.Read(), 0)
}

func TestDrawingOffsetSignExtension(t *testing.T) {
	g, backend := newTestGPU()

	// -1, -2 in the two 11-bit fields
	g.WriteGP0(0xe5000000 | 0x7ff | 0x7fe<<11)

	test.ExpectEquality(t, backend.offsetX, -1)
	test.ExpectEquality(t, backend.offsetY, -2)
}

func TestDrawMode(t *testing.T) {
	g, _ := newTestGPU()

	// page base x=5, dithering on
	g.WriteGP0(0xe1000205)

	stat := g.Status()
	test.ExpectEquality(t, stat&0xf, 5)
	test.ExpectEquality(t, stat&(1<<9), uint32(1<<9))
}

func TestDMADirectionStatus(t *testing.T) {
	g, _ := newTestGPU()

	g.WriteGP1(0x04000002)
	stat := g.Status()
	test.ExpectEquality(t, stat>>29&3, 2)

	// direction 2 mirrors bit 28 into bit 25
	test.ExpectEquality(t, stat&(1<<25), uint32(1<<25))

	g.WriteGP1(0x04000000)
	test.ExpectEquality(t, g.Status()&(1<<25), 0)
}

func TestDisplayEnable(t *testing.T) {
	g, _ := newTestGPU()

	g.WriteGP1(0x03000000)
	test.ExpectEquality(t, g.Status()&(1<<23), 0)

	g.WriteGP1(0x03000001)
	test.ExpectEquality(t, g.Status()&(1<<23), uint32(1<<23))
}
