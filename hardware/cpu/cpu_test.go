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

package cpu_test

import (
	"testing"

	"github.com/redcrab/gostation/hardware/cpu"
	"github.com/redcrab/gostation/test"
)

// mockBus is a sparse memory with no address decoding at all. good enough
// for instruction level testing of the CPU.
type mockBus struct {
	mem map[uint32]uint8
	irq bool
}

func newMockBus() *mockBus {
	return &mockBus{mem: make(map[uint32]uint8)}
}

func (bus *mockBus) Load8(addr uint32) uint8 {
	return bus.mem[addr]
}

func (bus *mockBus) Load16(addr uint32) uint16 {
	return uint16(bus.mem[addr]) | uint16(bus.mem[addr+1])<<8
}

func (bus *mockBus) Load32(addr uint32) uint32 {
	return uint32(bus.Load16(addr)) | uint32(bus.Load16(addr+2))<<16
}

func (bus *mockBus) Store8(addr uint32, val uint8) {
	bus.mem[addr] = val
}

func (bus *mockBus) Store16(addr uint32, val uint16) {
	bus.mem[addr] = uint8(val)
	bus.mem[addr+1] = uint8(val >> 8)
}

func (bus *mockBus) Store32(addr uint32, val uint32) {
	bus.Store16(addr, uint16(val))
	bus.Store16(addr+2, uint16(val>>16))
}

func (bus *mockBus) PendingIRQ() bool {
	return bus.irq
}

// putInstructions assembles a program, one word per instruction, starting at
// origin. returns the address after the last instruction.
func (bus *mockBus) putInstructions(origin uint32, words ...uint32) uint32 {
	for i, w := range words {
		bus.Store32(origin+uint32(i)*4, w)
	}
	return origin + uint32(len(words))*4
}

// the first instruction the BIOS executes is LUI r8, 0x1f00. make sure the
// fetch/advance machinery agrees with the documented boot sequence.
func TestBootFetch(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	// 3C 08 00 1F at the top of the BIOS, read as little-endian
	bus.Store32(cpu.ResetPC, 0x3c081f00)
	test.ExpectEquality(t, bus.Load32(cpu.ResetPC), 0x3c081f00)

	mc.Step()
	test.ExpectEquality(t, mc.PC, uint32(0xbfc00004))
	test.ExpectEquality(t, mc.NextPC, uint32(0xbfc00008))
	test.ExpectEquality(t, mc.Reg(8), 0x1f000000)
}

func TestORIAfterLUI(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x3c081f00, // LUI r8, 0x1f00
		0x35080fff, // ORI r8, r8, 0x0fff
	)

	mc.Step()
	mc.Step()
	test.ExpectEquality(t, mc.Reg(8), 0x1f000fff)
}

// a load's value must not be visible to the instruction in the load delay
// slot.
func TestLoadDelaySlot(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.Store32(0x0, 0x00001234)
	bus.putInstructions(cpu.ResetPC,
		0x8c020000, // LW r2, 0(r0)
		0x34430000, // ORI r3, r2, 0
		0x00000000, // NOP
	)

	// r2 holds a known value before the load
	mc.SetReg(2, 0xaaaaaaaa)
	mc.Step() // LW. r2 unchanged until the delay slot has passed
	test.ExpectEquality(t, mc.Reg(2), 0xaaaaaaaa)

	mc.Step() // ORI reads the pre-load value of r2
	test.ExpectEquality(t, mc.Reg(3), 0xaaaaaaaa)
	test.ExpectEquality(t, mc.Reg(2), 0x00001234)
}

// a register write in the delay slot of a load of the same register must
// win over the delayed load.
func TestLoadDelayOverwrite(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.Store32(0x0, 0x00001234)
	bus.putInstructions(cpu.ResetPC,
		0x8c020000, // LW r2, 0(r0)
		0x34020042, // ORI r2, r0, 0x42
		0x00000000, // NOP
	)

	mc.Step()
	mc.Step() // ORI targets the same register as the pending load
	mc.Step()
	test.ExpectEquality(t, mc.Reg(2), 0x42)
}

func TestRegisterZero(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x3c011f00, // LUI r1, 0x1f00
		0x34001234, // ORI r0, r0, 0x1234
		0x8c000000, // LW r0, 0(r0)
		0x00000000, // NOP
	)

	for i := 0; i < 4; i++ {
		mc.Step()
		test.ExpectEquality(t, mc.Reg(0), 0)
	}
}

func TestBranchDelaySlot(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x10000002, // BEQ r0, r0, +2 (target = 0xbfc0000c)
		0x34020001, // ORI r2, r0, 1 (delay slot, executes)
		0x34030001, // ORI r3, r0, 1 (skipped)
		0x34040001, // ORI r4, r0, 1 (branch target)
	)

	mc.Step() // BEQ
	mc.Step() // delay slot
	test.ExpectEquality(t, mc.Reg(2), 1)
	test.ExpectEquality(t, mc.PC, uint32(0xbfc0000c))

	mc.Step()
	test.ExpectEquality(t, mc.Reg(3), 0)
	test.ExpectEquality(t, mc.Reg(4), 1)
}

func TestJALReturnAddress(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x0ff00100, // JAL 0xbfc00400
		0x00000000, // NOP (delay slot)
	)

	mc.Step()
	// return address is the instruction after the delay slot
	test.ExpectEquality(t, mc.Reg(31), uint32(0xbfc00008))

	mc.Step()
	test.ExpectEquality(t, mc.PC, uint32(0xbfc00400))
}

func TestADDIOverflow(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x20420001, // ADDI r2, r2, 1
	)

	mc.SetReg(2, 0x7fffffff)
	mc.Step()

	// the destination register is not written and the overflow exception
	// (code 12) is taken
	test.ExpectEquality(t, mc.Reg(2), 0x7fffffff)
	test.ExpectEquality(t, (mc.COP0.Cause>>2)&0x1f, uint32(cpu.ExcOverflow))
	test.ExpectEquality(t, mc.PC, uint32(0x80000080))
	test.ExpectEquality(t, mc.COP0.EPC, uint32(0xbfc00000))
}

func TestDivByZero(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	// DIV r2, r3 with r3 = 0
	bus.putInstructions(cpu.ResetPC,
		0x0043001a, // DIV r2, r3
		0x0043001b, // DIVU r2, r3
	)

	mc.SetReg(2, 100)
	mc.SetReg(3, 0)
	mc.Step()
	test.ExpectEquality(t, mc.LO, 0xffffffff)
	test.ExpectEquality(t, mc.HI, 100)

	mc.Step()
	test.ExpectEquality(t, mc.LO, 0xffffffff)
	test.ExpectEquality(t, mc.HI, 100)
}

func TestDivSignedEdge(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	// INT_MIN / -1 is not representable
	bus.putInstructions(cpu.ResetPC,
		0x0043001a, // DIV r2, r3
	)

	mc.SetReg(2, 0x80000000)
	mc.SetReg(3, 0xffffffff)
	mc.Step()
	test.ExpectEquality(t, mc.LO, 0x80000000)
	test.ExpectEquality(t, mc.HI, 0)
}

func TestSyscallAndRFE(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x0000000c, // SYSCALL
	)
	// exception handler: RFE then jump back through EPC is what a real
	// kernel does. here we only check the SR stack shuffle
	bus.putInstructions(0x80000080,
		0x42000010, // RFE
	)

	// interrupts enabled before the exception
	mc.COP0.SR = 0x1
	mc.Step()

	test.ExpectEquality(t, mc.PC, uint32(0x80000080))
	test.ExpectEquality(t, (mc.COP0.Cause>>2)&0x1f, uint32(cpu.ExcSyscall))
	test.ExpectEquality(t, mc.COP0.EPC, uint32(0xbfc00000))
	// interrupt enable pushed two places left
	test.ExpectEquality(t, mc.COP0.SR&0x3f, uint32(0x4))

	mc.Step() // RFE
	test.ExpectEquality(t, mc.COP0.SR&0x3f, uint32(0x1))
}

func TestExceptionInDelaySlot(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x10000004, // BEQ r0, r0, +4
		0x0000000c, // SYSCALL in the delay slot
	)

	mc.Step() // BEQ
	mc.Step() // SYSCALL

	// EPC points at the branch, CAUSE bit 31 is set
	test.ExpectEquality(t, mc.COP0.EPC, uint32(0xbfc00000))
	test.ExpectEquality(t, mc.COP0.Cause>>31, uint32(1))
}

func TestBEVSelectsROMVector(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x0000000c, // SYSCALL
	)

	mc.COP0.SR = 1 << 22
	mc.Step()
	test.ExpectEquality(t, mc.PC, uint32(0xbfc00180))
}

func TestMisalignedLoadTraps(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x8c220000, // LW r2, 0(r1)
	)

	mc.SetReg(1, 0xfffffffd)
	mc.Step()
	test.ExpectEquality(t, (mc.COP0.Cause>>2)&0x1f, uint32(cpu.ExcLoadAddressError))
	test.ExpectEquality(t, mc.COP0.BadVAddr, uint32(0xfffffffd))
}

func TestMisalignedStoreTraps(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0xac220002, // SW r2, 2(r1)
	)

	mc.SetReg(1, 0x0)
	mc.Step()
	test.ExpectEquality(t, (mc.COP0.Cause>>2)&0x1f, uint32(cpu.ExcStoreAddressError))
	test.ExpectEquality(t, mc.COP0.BadVAddr, uint32(0x2))
}

func TestCacheIsolationDropsStores(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0xac020100, // SW r2, 0x100(r0)
	)

	mc.SetReg(2, 0xdeadbeef)
	mc.COP0.SR = 0x10000
	mc.Step()
	test.ExpectEquality(t, bus.Load32(0x100), 0)
}

func TestInterruptTakenBeforeFetch(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x34020001, // ORI r2, r0, 1
	)

	// enable interrupts and unmask the external line (bit 10)
	mc.COP0.SR = 0x401
	bus.irq = true
	mc.Step()

	// the ORI did not execute; the interrupt took its place
	test.ExpectEquality(t, mc.Reg(2), uint32(0xdeadbeef))
	test.ExpectEquality(t, mc.PC, uint32(0x80000080))
	test.ExpectEquality(t, (mc.COP0.Cause>>2)&0x1f, uint32(cpu.ExcInterrupt))
	test.ExpectEquality(t, mc.COP0.EPC, uint32(0xbfc00000))
}

func TestInterruptMasked(t *testing.T) {
	bus := newMockBus()
	mc := cpu.NewCPU(bus)

	bus.putInstructions(cpu.ResetPC,
		0x34020001, // ORI r2, r0, 1
	)

	// interrupts enabled but the external line is masked
	mc.COP0.SR = 0x1
	bus.irq = true
	mc.Step()
	test.ExpectEquality(t, mc.Reg(2), 1)
}
