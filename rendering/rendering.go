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

// Package rendering defines the interface between the GPU emulation and
// whatever is actually drawing the picture. The GPU pushes primitives at the
// backend as it decodes the GP0 command stream; the backend batches them
// however it likes and presents the batch once per frame.
//
// Implementations should not interpret the primitives beyond what the types
// in this package describe. In particular, positions are PSX VRAM
// coordinates and any scaling to the host display is the backend's business.
package rendering

// Position is a point in PSX VRAM coordinates. The GPU works with signed
// 16-bit values even though the visible framebuffer is only 1024x512.
type Position struct {
	X int16
	Y int16
}

// PositionFromWord unpacks a Position from a GP0 vertex word. X is in the low
// half of the word, Y in the high half.
func PositionFromWord(word uint32) Position {
	return Position{
		X: int16(word),
		Y: int16(word >> 16),
	}
}

// Color is an 8-bit-per-channel RGB color.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// ColorFromWord unpacks a Color from the low 24 bits of a GP0 command word.
func ColorFromWord(word uint32) Color {
	return Color{
		R: uint8(word),
		G: uint8(word >> 8),
		B: uint8(word >> 16),
	}
}

// Backend implementations receive primitives from the GPU.
//
// PushQuad must behave as though the quad had been submitted as two triangles
// with vertex order (0,1,2) and (0,2,3). Winding depends on it.
//
// SetDrawOffset must flush any buffered primitives before the new offset
// takes effect. Present flushes and swaps.
type Backend interface {
	PushTriangle(positions [3]Position, colors [3]Color)
	PushQuad(positions [4]Position, colors [4]Color)
	SetDrawOffset(x int16, y int16)
	Present()
}
