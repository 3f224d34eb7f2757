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

package hardware_test

import (
	"encoding/binary"
	"testing"

	"github.com/redcrab/gostation/hardware"
	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/rendering"
	"github.com/redcrab/gostation/test"
)

// newTestBIOS builds a BIOS image from a short program placed at the reset
// vector.
func newTestBIOS(t *testing.T, program []uint32) *memory.BIOS {
	t.Helper()

	data := make([]byte, memory.BIOSSize)
	for i, instr := range program {
		binary.LittleEndian.PutUint32(data[i*4:], instr)
	}

	bios, err := memory.NewBIOS(data)
	if err != nil {
		t.Fatal(err)
	}
	return bios
}

func TestRunFrame(t *testing.T) {
	// store 0x42 to RAM address 0x100, then spin
	program := []uint32{
		0x24010042, // ADDIU r1, r0, 0x42
		0xac010100, // SW r1, 0x100(r0)
		0x0bf00002, // J 0xbfc00008
		0x00000000, // NOP
	}

	psx := hardware.NewPSX(newTestBIOS(t, program), &rendering.Null{})
	psx.RunFrame()

	test.ExpectEquality(t, psx.Bus.RAM().Load32(0x100), 0x42)

	// the CPU ends the frame inside the spin loop
	pc := psx.CPU.PC
	if pc != 0xbfc00008 && pc != 0xbfc0000c {
		t.Errorf("PC outside spin loop: %08x", pc)
	}

	// the frame raised the vertical blank
	test.ExpectEquality(t, psx.Bus.Load32(0x1f801070)&1, 1)
}

func TestVBlankInterruptTaken(t *testing.T) {
	// unmask VBlank in I_MASK and enable interrupts in SR, then spin.
	// the second frame's VBlank must divert the CPU to the exception
	// vector
	program := []uint32{
		0x24010001, // ADDIU r1, r0, 1
		0x3c021f80, // LUI r2, 0x1f80
		0xa4411074, // SH r1, 0x1074(r2)
		0x24010401, // ADDIU r1, r0, 0x401
		0x40816000, // MTC0 r1, SR
		0x0bf00005, // J 0xbfc00014
		0x00000000, // NOP
	}

	psx := hardware.NewPSX(newTestBIOS(t, program), &rendering.Null{})

	// first frame: program runs, VBlank latched at frame end
	psx.RunFrame()

	// the very next step takes the interrupt. BEV is clear so the RAM
	// vector is used
	psx.CPU.Step()
	test.ExpectEquality(t, psx.CPU.PC&0x1fffffff, 0x80)
	test.ExpectEquality(t, (psx.CPU.COP0.Cause>>2)&0x1f, 0)
}

func TestFrameBudget(t *testing.T) {
	test.ExpectEquality(t, hardware.CyclesPerFrame, 565480)
}
