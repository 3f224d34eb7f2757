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

// Package gpu emulates the video chip's two ports. GP0 takes drawing and
// VRAM transfer commands, GP1 takes control commands, and the status
// register reports readiness to whatever is pacing the command stream,
// usually DMA channel 2.
//
// Rasterisation is delegated: draw commands are decoded into vertex and
// colour data and pushed to a rendering.Backend. VRAM fills and image
// transfers on the other hand operate on VRAM directly, so data round-trips
// through GP0(0xA0)/GP0(0xC0) work without any backend involvement.
package gpu
