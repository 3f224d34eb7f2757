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

import "fmt"

// Instruction is a single 32-bit MIPS instruction word. The methods extract
// the standard encoding fields.
type Instruction uint32

// Opcode returns the primary opcode in bits [31:26].
func (ins Instruction) Opcode() uint32 {
	return uint32(ins) >> 26
}

// Function returns the secondary function field in bits [5:0]. Only
// meaningful when Opcode() is zero.
func (ins Instruction) Function() uint32 {
	return uint32(ins) & 0x3f
}

// Rs returns the source register index in bits [25:21].
func (ins Instruction) Rs() uint32 {
	return (uint32(ins) >> 21) & 0x1f
}

// Rt returns the target register index in bits [20:16].
func (ins Instruction) Rt() uint32 {
	return (uint32(ins) >> 16) & 0x1f
}

// Rd returns the destination register index in bits [15:11].
func (ins Instruction) Rd() uint32 {
	return (uint32(ins) >> 11) & 0x1f
}

// Shamt returns the shift amount in bits [10:6].
func (ins Instruction) Shamt() uint32 {
	return (uint32(ins) >> 6) & 0x1f
}

// Imm returns the zero-extended 16-bit immediate.
func (ins Instruction) Imm() uint32 {
	return uint32(ins) & 0xffff
}

// ImmSE returns the sign-extended 16-bit immediate. Bit 15 is extended
// through bits [31:16].
func (ins Instruction) ImmSE() uint32 {
	return uint32(int32(int16(uint16(ins))))
}

// Target returns the 26-bit jump target in bits [25:0].
func (ins Instruction) Target() uint32 {
	return uint32(ins) & 0x3ffffff
}

func (ins Instruction) String() string {
	return fmt.Sprintf("%08x", uint32(ins))
}
