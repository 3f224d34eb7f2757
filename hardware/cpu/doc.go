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

// Package cpu emulates the MIPS R3000A integer core. Emulation is at
// instruction granularity: one call to Step() fetches, decodes and executes
// one instruction, including any exception it raises.
//
// The two architectural oddities of the R3000A are modelled faithfully. The
// branch delay slot falls out of the PC/NextPC pair: a taken branch only
// changes NextPC, so the instruction after the branch always executes. The
// load delay slot is modelled with a pending load slot and a second register
// file; see the comments in cpu.go.
//
// The coprocessor zero implementation covers what the kernel and BIOS
// actually use: SR, CAUSE, EPC and BadVAddr, the exception entry/return
// sequence, and the cache isolation bit.
package cpu
