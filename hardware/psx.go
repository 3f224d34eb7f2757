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

// Package hardware assembles the console from its parts and runs it. The
// console is single threaded and cooperative: a frame is a fixed budget of
// CPU steps, followed by catching the peripherals up by the same number of
// cycles and presenting the rendered frame.
package hardware

import (
	"github.com/redcrab/gostation/hardware/bus"
	"github.com/redcrab/gostation/hardware/cdrom"
	"github.com/redcrab/gostation/hardware/cpu"
	"github.com/redcrab/gostation/hardware/gpu"
	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/rendering"
)

// CPUHz is the CPU clock rate.
const CPUHz = 33868800

// CyclesPerFrame is the CPU step budget of one NTSC video frame.
const CyclesPerFrame = 565480

// PSX is the assembled console.
type PSX struct {
	CPU *cpu.CPU
	Bus *bus.Bus

	backend rendering.Backend
}

// NewPSX is the preferred method of initialisation for the PSX type. The
// BIOS is required; a disc is optional and can be inserted later with
// LoadDisc.
func NewPSX(bios *memory.BIOS, backend rendering.Backend) *PSX {
	g := gpu.NewGPU(memory.NewVRAM(), backend)
	b := bus.NewBus(bios, g, cdrom.NewCDROM())

	return &PSX{
		CPU:     cpu.NewCPU(b),
		Bus:     b,
		backend: backend,
	}
}

// LoadDisc inserts a disc into the drive.
func (psx *PSX) LoadDisc(src cdrom.SectorSource) {
	psx.Bus.CDROM().LoadDisc(src)
}

// RunFrame emulates one video frame: the CPU step budget, then the
// peripheral clocks, the vertical blank interrupt, and presentation.
func (psx *PSX) RunFrame() {
	for i := 0; i < CyclesPerFrame; i++ {
		psx.CPU.Step()
	}

	psx.Bus.Step(CyclesPerFrame)
	psx.Bus.RequestIRQ(bus.IRQVBlank)

	psx.backend.Present()
}
