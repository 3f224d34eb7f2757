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

package cpu

import (
	"fmt"

	"github.com/redcrab/gostation/logger"
)

// ResetPC is the value of the program counter after reset. It points at the
// top of the BIOS ROM through the uncached KSEG1 segment.
const ResetPC = 0xbfc00000

// Bus is the memory interface required by the CPU. The bus package provides
// the real implementation; tests provide mocks.
//
// PendingIRQ reports the aggregated interrupt line, ie. whether any unmasked
// bit of I_STAT is set. It is polled once per instruction, before fetch.
type Bus interface {
	Load8(addr uint32) uint8
	Load16(addr uint32) uint16
	Load32(addr uint32) uint32
	Store8(addr uint32, val uint8)
	Store16(addr uint32, val uint16)
	Store32(addr uint32, val uint32)
	PendingIRQ() bool
}

type pendingLoad struct {
	reg uint32
	val uint32
}

// CPU implements the MIPS R3000A integer core found in the console.
type CPU struct {
	// PC of the instruction being executed, the instruction to execute
	// next, and the one after that. The divergence between NextPC and
	// PC+4 is what encodes the branch delay slot.
	PC        uint32
	NextPC    uint32
	CurrentPC uint32

	// the input register file. instruction operands always read from here
	Regs [32]uint32

	// the output register file. instruction results are written here and
	// copied to Regs at the end of the step. splitting the two is what
	// makes the load delay slot work: a delayed load lands in outRegs
	// before execution, so an instruction writing the same register
	// simply wins
	outRegs [32]uint32

	// load enqueued by the current instruction, applied at the start of
	// the next step
	load pendingLoad

	// multiply/divide result pair
	HI uint32
	LO uint32

	COP0 COP0

	mem Bus

	// branch bookkeeping for the COP0 delay-slot indicator. branching is
	// set by any taken branch or jump; delaySlot is its value from the
	// previous step
	branching bool
	delaySlot bool
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(mem Bus) *CPU {
	mc := &CPU{mem: mem}
	mc.Reset()
	return mc
}

// Plumb a new bus implementation into the CPU.
func (mc *CPU) Plumb(mem Bus) {
	mc.mem = mem
}

// Reset puts the CPU in its power-on state. The general purpose registers
// and HI/LO are filled with junk; real hardware does not clear them and
// software must not depend on their contents.
func (mc *CPU) Reset() {
	mc.PC = ResetPC
	mc.NextPC = mc.PC + 4
	mc.CurrentPC = mc.PC
	for i := 1; i < len(mc.Regs); i++ {
		mc.Regs[i] = 0xdeadbeef
		mc.outRegs[i] = 0xdeadbeef
	}
	mc.Regs[0] = 0
	mc.outRegs[0] = 0
	mc.HI = 0xdeadbeef
	mc.LO = 0xdeadbeef
	mc.load = pendingLoad{}
	mc.COP0 = COP0{}
	mc.branching = false
	mc.delaySlot = false
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%08x HI=%08x LO=%08x SR=%08x", mc.PC, mc.HI, mc.LO, mc.COP0.SR)
}

// Reg returns the current value of a general purpose register.
func (mc *CPU) Reg(index uint32) uint32 {
	return mc.Regs[index]
}

// SetReg writes a general purpose register, with the value visible
// immediately. It is intended for tools and tests; instructions write
// through the output register file instead. Writes to register zero are
// suppressed.
func (mc *CPU) SetReg(index uint32, val uint32) {
	mc.Regs[index] = val
	mc.outRegs[index] = val
	mc.Regs[0] = 0
	mc.outRegs[0] = 0
}

// setReg is the register write used by instructions. The value lands in the
// output register file and becomes visible at the end of the step.
func (mc *CPU) setReg(index uint32, val uint32) {
	mc.outRegs[index] = val
	mc.outRegs[0] = 0
}

// Step executes a single instruction. All memory traffic, exceptions and
// enqueued loads for that instruction are complete when it returns.
func (mc *CPU) Step() {
	// poll the aggregated interrupt line before fetching. the interrupt
	// replaces the instruction that was about to execute
	if mc.COP0.IRQPending(mc.mem.PendingIRQ()) {
		mc.CurrentPC = mc.PC
		mc.delaySlot = mc.branching
		mc.branching = false
		mc.exception(ExcInterrupt)
		mc.Regs = mc.outRegs
		return
	}

	mc.CurrentPC = mc.PC

	// a misaligned PC can only come from a bad jump target
	if mc.CurrentPC&3 != 0 {
		mc.delaySlot = mc.branching
		mc.branching = false
		mc.COP0.BadVAddr = mc.CurrentPC
		mc.exception(ExcLoadAddressError)
		mc.Regs = mc.outRegs
		return
	}

	instr := Instruction(mc.mem.Load32(mc.CurrentPC))

	mc.PC = mc.NextPC
	mc.NextPC = mc.PC + 4

	// apply the pending load. if there is none this writes register zero,
	// which is a no-op
	mc.setReg(mc.load.reg, mc.load.val)
	mc.load = pendingLoad{}

	mc.delaySlot = mc.branching
	mc.branching = false

	mc.execute(instr)

	// make the output register file visible to the next instruction
	mc.Regs = mc.outRegs
}

// exception diverts execution to one of the two COP0 exception vectors.
func (mc *CPU) exception(code ExceptionCode) {
	mc.PC = mc.COP0.EnterException(code, mc.CurrentPC, mc.delaySlot)
	mc.NextPC = mc.PC + 4
}

// branch adjusts NextPC by the given (unshifted) offset. PC has already been
// advanced to the delay slot address when any branch executes, so the target
// works out to branch address + 4 + offset*4.
func (mc *CPU) branch(offset uint32) {
	mc.NextPC = mc.PC + offset<<2
	mc.branching = true
}

// enqueueLoad registers a delayed load. The value becomes visible after the
// next instruction has read its operands.
func (mc *CPU) enqueueLoad(reg uint32, val uint32) {
	mc.load = pendingLoad{reg: reg, val: val}
}

func (mc *CPU) load8(addr uint32) uint8 {
	return mc.mem.Load8(addr)
}

func (mc *CPU) load16(addr uint32) uint16 {
	return mc.mem.Load16(addr)
}

func (mc *CPU) load32(addr uint32) uint32 {
	return mc.mem.Load32(addr)
}

func (mc *CPU) store8(addr uint32, val uint8) {
	if mc.COP0.CacheIsolated() {
		logger.Log("cpu", "ignoring store while cache is isolated")
		return
	}
	mc.mem.Store8(addr, val)
}

func (mc *CPU) store16(addr uint32, val uint16) {
	if mc.COP0.CacheIsolated() {
		logger.Log("cpu", "ignoring store while cache is isolated")
		return
	}
	mc.mem.Store16(addr, val)
}

func (mc *CPU) store32(addr uint32, val uint32) {
	if mc.COP0.CacheIsolated() {
		logger.Log("cpu", "ignoring store while cache is isolated")
		return
	}
	mc.mem.Store32(addr, val)
}
