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

import "github.com/redcrab/gostation/logger"

// ExceptionCode is the COP0 CAUSE exception code, as stored in CAUSE bits
// [6:2].
type ExceptionCode uint32

// List of exception codes raised by this implementation.
const (
	ExcInterrupt         ExceptionCode = 0x0
	ExcLoadAddressError  ExceptionCode = 0x4
	ExcStoreAddressError ExceptionCode = 0x5
	ExcSyscall           ExceptionCode = 0x8
	ExcBreak             ExceptionCode = 0x9
	ExcIllegal           ExceptionCode = 0xa
	ExcCopUnusable       ExceptionCode = 0xb
	ExcOverflow          ExceptionCode = 0xc
)

// COP0 is the system control coprocessor. Only the four registers the kernel
// actually relies on are modelled.
type COP0 struct {
	// register 12. bit 0 is the current interrupt enable, bits [15:8] the
	// interrupt mask, bit 16 isolates the data cache, bit 22 selects the
	// boot exception vectors. bits [5:0] are a three-deep stack of
	// interrupt-enable/kernel-mode pairs
	SR uint32

	// register 13. bits [6:2] are the exception code, bits [15:8] the
	// pending interrupts, bit 31 the branch-delay indicator
	Cause uint32

	// register 14. address the exception handler returns to
	EPC uint32

	// register 8. faulting address of the most recent address error
	BadVAddr uint32
}

// Read a coprocessor register in response to MFC0.
func (cop *COP0) Read(reg uint32) uint32 {
	switch reg {
	case 8:
		return cop.BadVAddr
	case 12:
		return cop.SR
	case 13:
		return cop.Cause
	case 14:
		return cop.EPC
	}
	logger.Logf("cop0", "read from unhandled register %d", reg)
	return 0
}

// Write a coprocessor register in response to MTC0.
func (cop *COP0) Write(reg uint32, val uint32) {
	switch reg {
	case 3, 5, 6, 7, 9, 11:
		// breakpoint registers. the BIOS zeroes these during boot
		if val != 0 {
			logger.Logf("cop0", "write of %08x to breakpoint register %d", val, reg)
		}
	case 12:
		cop.SR = val
	case 13:
		// only the two software interrupt bits are writable
		cop.Cause = (cop.Cause &^ 0x300) | (val & 0x300)
	default:
		logger.Logf("cop0", "write of %08x to unhandled register %d", val, reg)
	}
}

// CacheIsolated returns true when SR bit 16 is set. Stores are dropped while
// the cache is isolated.
func (cop *COP0) CacheIsolated() bool {
	return cop.SR&0x10000 != 0
}

// IRQPending returns true if an interrupt exception should be taken before
// the next instruction. The external interrupt line appears as CAUSE bit 10;
// the two software interrupts live in CAUSE bits [9:8]. All are gated by the
// SR mask bits and by the master enable in SR bit 0.
func (cop *COP0) IRQPending(externalIRQ bool) bool {
	cause := cop.Cause
	if externalIRQ {
		cause |= 1 << 10
	}
	return cop.SR&1 == 1 && cause&cop.SR&0xff00 != 0
}

// EnterException updates SR, CAUSE and EPC for the given exception and
// returns the handler address.
//
// Bits [5:0] of SR are three pairs of interrupt-enable/user-mode bits
// behaving like a three-entry stack. Entering an exception pushes a pair of
// zeroes, disabling interrupts and putting the CPU in kernel mode. The
// oldest entry is discarded.
func (cop *COP0) EnterException(code ExceptionCode, pc uint32, inDelaySlot bool) uint32 {
	mode := cop.SR & 0x3f
	cop.SR &^= 0x3f
	cop.SR |= (mode << 2) & 0x3f

	cop.Cause &^= 0x7c
	cop.Cause |= uint32(code) << 2

	if inDelaySlot {
		// the exception hit a branch delay slot. EPC points at the branch
		// and CAUSE bit 31 tells the handler to re-run it
		cop.EPC = pc - 4
		cop.Cause |= 1 << 31
	} else {
		cop.EPC = pc
		cop.Cause &^= 1 << 31
	}

	if cop.SR&(1<<22) != 0 {
		return 0xbfc00180
	}
	return 0x80000080
}

// ReturnFromException pops the SR interrupt-enable/user-mode stack. The top
// four bits of the [5:0] field are preserved.
func (cop *COP0) ReturnFromException() {
	mode := cop.SR & 0x3f
	cop.SR &^= 0xf
	cop.SR |= mode >> 2
}
