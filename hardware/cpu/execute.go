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
	"github.com/redcrab/gostation/logger"
)

// execute decodes and executes a single instruction. Decoding is an
// exhaustive switch on the primary opcode, with a nested switch on the
// function field for register-type instructions. Anything unrecognised
// raises the reserved instruction exception and lets the guest kernel deal
// with it.
func (mc *CPU) execute(instr Instruction) {
	switch instr.Opcode() {
	case 0x00:
		switch instr.Function() {
		case 0x00:
			mc.opSLL(instr)
		case 0x02:
			mc.opSRL(instr)
		case 0x03:
			mc.opSRA(instr)
		case 0x04:
			mc.opSLLV(instr)
		case 0x06:
			mc.opSRLV(instr)
		case 0x07:
			mc.opSRAV(instr)
		case 0x08:
			mc.opJR(instr)
		case 0x09:
			mc.opJALR(instr)
		case 0x0c:
			mc.exception(ExcSyscall)
		case 0x0d:
			mc.exception(ExcBreak)
		case 0x10:
			mc.opMFHI(instr)
		case 0x11:
			mc.opMTHI(instr)
		case 0x12:
			mc.opMFLO(instr)
		case 0x13:
			mc.opMTLO(instr)
		case 0x18:
			mc.opMULT(instr)
		case 0x19:
			mc.opMULTU(instr)
		case 0x1a:
			mc.opDIV(instr)
		case 0x1b:
			mc.opDIVU(instr)
		case 0x20:
			mc.opADD(instr)
		case 0x21:
			mc.opADDU(instr)
		case 0x22:
			mc.opSUB(instr)
		case 0x23:
			mc.opSUBU(instr)
		case 0x24:
			mc.opAND(instr)
		case 0x25:
			mc.opOR(instr)
		case 0x26:
			mc.opXOR(instr)
		case 0x27:
			mc.opNOR(instr)
		case 0x2a:
			mc.opSLT(instr)
		case 0x2b:
			mc.opSLTU(instr)
		default:
			mc.opIllegal(instr)
		}
	case 0x01:
		mc.opBcond(instr)
	case 0x02:
		mc.opJ(instr)
	case 0x03:
		mc.opJAL(instr)
	case 0x04:
		mc.opBEQ(instr)
	case 0x05:
		mc.opBNE(instr)
	case 0x06:
		mc.opBLEZ(instr)
	case 0x07:
		mc.opBGTZ(instr)
	case 0x08:
		mc.opADDI(instr)
	case 0x09:
		mc.opADDIU(instr)
	case 0x0a:
		mc.opSLTI(instr)
	case 0x0b:
		mc.opSLTIU(instr)
	case 0x0c:
		mc.opANDI(instr)
	case 0x0d:
		mc.opORI(instr)
	case 0x0e:
		mc.opXORI(instr)
	case 0x0f:
		mc.opLUI(instr)
	case 0x10:
		mc.opCOP0(instr)
	case 0x11, 0x13:
		// COP1 and COP3 do not exist on this hardware
		mc.exception(ExcCopUnusable)
	case 0x12:
		// the GTE. not emulated; the guest sees an unusable coprocessor
		logger.Logf("cpu", "GTE instruction %s not implemented", instr)
		mc.exception(ExcCopUnusable)
	case 0x20:
		mc.opLB(instr)
	case 0x21:
		mc.opLH(instr)
	case 0x23:
		mc.opLW(instr)
	case 0x24:
		mc.opLBU(instr)
	case 0x25:
		mc.opLHU(instr)
	case 0x28:
		mc.opSB(instr)
	case 0x29:
		mc.opSH(instr)
	case 0x2b:
		mc.opSW(instr)
	default:
		mc.opIllegal(instr)
	}
}

func (mc *CPU) opIllegal(instr Instruction) {
	logger.Logf("cpu", "illegal instruction %s at %08x", instr, mc.CurrentPC)
	mc.exception(ExcIllegal)
}

// addOverflow returns the signed sum and whether it overflowed.
func addOverflow(a, b int32) (int32, bool) {
	v := a + b
	overflow := (a >= 0 && b >= 0 && v < 0) || (a < 0 && b < 0 && v >= 0)
	return v, overflow
}

// subOverflow returns the signed difference and whether it overflowed.
func subOverflow(a, b int32) (int32, bool) {
	v := a - b
	overflow := (a >= 0 && b < 0 && v < 0) || (a < 0 && b >= 0 && v >= 0)
	return v, overflow
}

// load upper immediate
func (mc *CPU) opLUI(instr Instruction) {
	mc.setReg(instr.Rt(), instr.Imm()<<16)
}

// bitwise or immediate
func (mc *CPU) opORI(instr Instruction) {
	mc.setReg(instr.Rt(), mc.Reg(instr.Rs())|instr.Imm())
}

// bitwise and immediate
func (mc *CPU) opANDI(instr Instruction) {
	mc.setReg(instr.Rt(), mc.Reg(instr.Rs())&instr.Imm())
}

// bitwise exclusive or immediate
func (mc *CPU) opXORI(instr Instruction) {
	mc.setReg(instr.Rt(), mc.Reg(instr.Rs())^instr.Imm())
}

// add immediate, trapping on signed overflow
func (mc *CPU) opADDI(instr Instruction) {
	v, overflow := addOverflow(int32(mc.Reg(instr.Rs())), int32(instr.ImmSE()))
	if overflow {
		mc.exception(ExcOverflow)
		return
	}
	mc.setReg(instr.Rt(), uint32(v))
}

// add immediate unsigned. "unsigned" is a misnomer: the immediate is sign
// extended but no overflow trap is taken
func (mc *CPU) opADDIU(instr Instruction) {
	mc.setReg(instr.Rt(), mc.Reg(instr.Rs())+instr.ImmSE())
}

// set on less than immediate (signed)
func (mc *CPU) opSLTI(instr Instruction) {
	if int32(mc.Reg(instr.Rs())) < int32(instr.ImmSE()) {
		mc.setReg(instr.Rt(), 1)
	} else {
		mc.setReg(instr.Rt(), 0)
	}
}

// set on less than immediate unsigned
func (mc *CPU) opSLTIU(instr Instruction) {
	if mc.Reg(instr.Rs()) < instr.ImmSE() {
		mc.setReg(instr.Rt(), 1)
	} else {
		mc.setReg(instr.Rt(), 0)
	}
}

// shift left logical
func (mc *CPU) opSLL(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rt())<<instr.Shamt())
}

// shift right logical
func (mc *CPU) opSRL(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rt())>>instr.Shamt())
}

// shift right arithmetic
func (mc *CPU) opSRA(instr Instruction) {
	mc.setReg(instr.Rd(), uint32(int32(mc.Reg(instr.Rt()))>>instr.Shamt()))
}

// shift left logical variable
func (mc *CPU) opSLLV(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rt())<<(mc.Reg(instr.Rs())&0x1f))
}

// shift right logical variable
func (mc *CPU) opSRLV(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rt())>>(mc.Reg(instr.Rs())&0x1f))
}

// shift right arithmetic variable
func (mc *CPU) opSRAV(instr Instruction) {
	mc.setReg(instr.Rd(), uint32(int32(mc.Reg(instr.Rt()))>>(mc.Reg(instr.Rs())&0x1f)))
}

// add, trapping on signed overflow
func (mc *CPU) opADD(instr Instruction) {
	v, overflow := addOverflow(int32(mc.Reg(instr.Rs())), int32(mc.Reg(instr.Rt())))
	if overflow {
		mc.exception(ExcOverflow)
		return
	}
	mc.setReg(instr.Rd(), uint32(v))
}

// add unsigned
func (mc *CPU) opADDU(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rs())+mc.Reg(instr.Rt()))
}

// subtract, trapping on signed overflow
func (mc *CPU) opSUB(instr Instruction) {
	v, overflow := subOverflow(int32(mc.Reg(instr.Rs())), int32(mc.Reg(instr.Rt())))
	if overflow {
		mc.exception(ExcOverflow)
		return
	}
	mc.setReg(instr.Rd(), uint32(v))
}

// subtract unsigned
func (mc *CPU) opSUBU(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rs())-mc.Reg(instr.Rt()))
}

// bitwise and
func (mc *CPU) opAND(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rs())&mc.Reg(instr.Rt()))
}

// bitwise or
func (mc *CPU) opOR(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rs())|mc.Reg(instr.Rt()))
}

// bitwise exclusive or
func (mc *CPU) opXOR(instr Instruction) {
	mc.setReg(instr.Rd(), mc.Reg(instr.Rs())^mc.Reg(instr.Rt()))
}

// bitwise not-or
func (mc *CPU) opNOR(instr Instruction) {
	mc.setReg(instr.Rd(), ^(mc.Reg(instr.Rs()) | mc.Reg(instr.Rt())))
}

// set on less than (signed)
func (mc *CPU) opSLT(instr Instruction) {
	if int32(mc.Reg(instr.Rs())) < int32(mc.Reg(instr.Rt())) {
		mc.setReg(instr.Rd(), 1)
	} else {
		mc.setReg(instr.Rd(), 0)
	}
}

// set on less than unsigned
func (mc *CPU) opSLTU(instr Instruction) {
	if mc.Reg(instr.Rs()) < mc.Reg(instr.Rt()) {
		mc.setReg(instr.Rd(), 1)
	} else {
		mc.setReg(instr.Rd(), 0)
	}
}

// multiply (signed). the product lands in the HI/LO pair
func (mc *CPU) opMULT(instr Instruction) {
	v := int64(int32(mc.Reg(instr.Rs()))) * int64(int32(mc.Reg(instr.Rt())))
	mc.HI = uint32(uint64(v) >> 32)
	mc.LO = uint32(uint64(v))
}

// multiply unsigned
func (mc *CPU) opMULTU(instr Instruction) {
	v := uint64(mc.Reg(instr.Rs())) * uint64(mc.Reg(instr.Rt()))
	mc.HI = uint32(v >> 32)
	mc.LO = uint32(v)
}

// divide (signed). division by zero and INT_MIN/-1 don't trap on MIPS, they
// produce the documented garbage instead
func (mc *CPU) opDIV(instr Instruction) {
	n := int32(mc.Reg(instr.Rs()))
	d := int32(mc.Reg(instr.Rt()))

	switch {
	case d == 0:
		mc.HI = uint32(n)
		if n >= 0 {
			mc.LO = 0xffffffff
		} else {
			mc.LO = 1
		}
	case uint32(n) == 0x80000000 && d == -1:
		mc.HI = 0
		mc.LO = 0x80000000
	default:
		mc.HI = uint32(n % d)
		mc.LO = uint32(n / d)
	}
}

// divide unsigned
func (mc *CPU) opDIVU(instr Instruction) {
	n := mc.Reg(instr.Rs())
	d := mc.Reg(instr.Rt())

	if d == 0 {
		mc.HI = n
		mc.LO = 0xffffffff
	} else {
		mc.HI = n % d
		mc.LO = n / d
	}
}

// move from HI
func (mc *CPU) opMFHI(instr Instruction) {
	mc.setReg(instr.Rd(), mc.HI)
}

// move to HI
func (mc *CPU) opMTHI(instr Instruction) {
	mc.HI = mc.Reg(instr.Rs())
}

// move from LO
func (mc *CPU) opMFLO(instr Instruction) {
	mc.setReg(instr.Rd(), mc.LO)
}

// move to LO
func (mc *CPU) opMTLO(instr Instruction) {
	mc.LO = mc.Reg(instr.Rs())
}

// jump
func (mc *CPU) opJ(instr Instruction) {
	mc.NextPC = (mc.PC & 0xf0000000) | instr.Target()<<2
	mc.branching = true
}

// jump and link. the return address is the instruction after the delay slot
func (mc *CPU) opJAL(instr Instruction) {
	ra := mc.NextPC
	mc.opJ(instr)
	mc.setReg(31, ra)
}

// jump register
func (mc *CPU) opJR(instr Instruction) {
	mc.NextPC = mc.Reg(instr.Rs())
	mc.branching = true
}

// jump and link register
func (mc *CPU) opJALR(instr Instruction) {
	ra := mc.NextPC
	mc.NextPC = mc.Reg(instr.Rs())
	mc.branching = true
	mc.setReg(instr.Rd(), ra)
}

// branch if equal
func (mc *CPU) opBEQ(instr Instruction) {
	if mc.Reg(instr.Rs()) == mc.Reg(instr.Rt()) {
		mc.branch(instr.ImmSE())
	}
}

// branch if not equal
func (mc *CPU) opBNE(instr Instruction) {
	if mc.Reg(instr.Rs()) != mc.Reg(instr.Rt()) {
		mc.branch(instr.ImmSE())
	}
}

// branch if less than or equal to zero
func (mc *CPU) opBLEZ(instr Instruction) {
	if int32(mc.Reg(instr.Rs())) <= 0 {
		mc.branch(instr.ImmSE())
	}
}

// branch if greater than zero
func (mc *CPU) opBGTZ(instr Instruction) {
	if int32(mc.Reg(instr.Rs())) > 0 {
		mc.branch(instr.ImmSE())
	}
}

// BLTZ, BGEZ, BLTZAL and BGEZAL share primary opcode 0x01 and are selected
// by the rt field. Bit 16 flips the test and bits [20:17] == 8 requests the
// link. The link register is written whether or not the branch is taken.
func (mc *CPU) opBcond(instr Instruction) {
	isBGEZ := (uint32(instr) >> 16) & 1
	isLink := (uint32(instr)>>17)&0xf == 8

	var test uint32
	if int32(mc.Reg(instr.Rs())) < 0 {
		test = 1
	}
	test ^= isBGEZ

	if isLink {
		mc.setReg(31, mc.NextPC)
	}
	if test != 0 {
		mc.branch(instr.ImmSE())
	}
}

// coprocessor zero. the rs field selects the sub-operation
func (mc *CPU) opCOP0(instr Instruction) {
	switch instr.Rs() {
	case 0x00:
		// MFC0. the value arrives through the load delay slot
		mc.enqueueLoad(instr.Rt(), mc.COP0.Read(instr.Rd()))
	case 0x04:
		// MTC0
		mc.COP0.Write(instr.Rd(), mc.Reg(instr.Rt()))
	case 0x10:
		// RFE is the only virtual-memory instruction the R3000A has
		if instr.Function() != 0x10 {
			mc.opIllegal(instr)
			return
		}
		mc.COP0.ReturnFromException()
	default:
		mc.opIllegal(instr)
	}
}

// load word
func (mc *CPU) opLW(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	if addr&3 != 0 {
		mc.COP0.BadVAddr = addr
		mc.exception(ExcLoadAddressError)
		return
	}
	mc.enqueueLoad(instr.Rt(), mc.load32(addr))
}

// load halfword (sign extended)
func (mc *CPU) opLH(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	if addr&1 != 0 {
		mc.COP0.BadVAddr = addr
		mc.exception(ExcLoadAddressError)
		return
	}
	mc.enqueueLoad(instr.Rt(), uint32(int32(int16(mc.load16(addr)))))
}

// load halfword unsigned
func (mc *CPU) opLHU(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	if addr&1 != 0 {
		mc.COP0.BadVAddr = addr
		mc.exception(ExcLoadAddressError)
		return
	}
	mc.enqueueLoad(instr.Rt(), uint32(mc.load16(addr)))
}

// load byte (sign extended)
func (mc *CPU) opLB(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	mc.enqueueLoad(instr.Rt(), uint32(int32(int8(mc.load8(addr)))))
}

// load byte unsigned
func (mc *CPU) opLBU(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	mc.enqueueLoad(instr.Rt(), uint32(mc.load8(addr)))
}

// store word
func (mc *CPU) opSW(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	if addr&3 != 0 {
		mc.COP0.BadVAddr = addr
		mc.exception(ExcStoreAddressError)
		return
	}
	mc.store32(addr, mc.Reg(instr.Rt()))
}

// store halfword
func (mc *CPU) opSH(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	if addr&1 != 0 {
		mc.COP0.BadVAddr = addr
		mc.exception(ExcStoreAddressError)
		return
	}
	mc.store16(addr, uint16(mc.Reg(instr.Rt())))
}

// store byte
func (mc *CPU) opSB(instr Instruction) {
	addr := mc.Reg(instr.Rs()) + instr.ImmSE()
	mc.store8(addr, uint8(mc.Reg(instr.Rt())))
}
