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

package dma

import "fmt"

// Direction of a transfer relative to main RAM.
type Direction int

// List of valid Direction values.
const (
	ToRAM Direction = iota
	FromRAM
)

// Step is the address increment applied after each word of a block transfer.
type Step int

// List of valid Step values.
const (
	Increment Step = iota
	Decrement
)

// Sync describes how a channel's transfer is paced.
type Sync int

// List of valid Sync values.
const (
	// the whole transfer happens at once, started by the trigger bit
	Manual Sync = iota

	// transfer of blocks paced by the peripheral's request line
	Request

	// linked list of headers, used for GPU command lists
	LinkedList
)

func (s Sync) String() string {
	switch s {
	case Manual:
		return "manual"
	case Request:
		return "request"
	case LinkedList:
		return "linked list"
	}
	return "unknown"
}

// Channel is the register state of a single DMA channel. The transfer engine
// itself lives with the bus, which is the only component that can see both
// RAM and the peripheral ports.
type Channel struct {
	direction Direction
	step      Step
	sync      Sync

	// unhandled control bits, kept so reads return what was written
	chopping       bool
	chopDMAWindow  uint8
	chopCPUWindow  uint8
	enable         bool
	trigger        bool
	unknownControl uint8

	base uint32

	blockSize  uint16
	blockCount uint16
}

func (ch *Channel) String() string {
	return fmt.Sprintf("base=%08x sync=%v enable=%v", ch.base, ch.sync, ch.enable)
}

// Base returns the channel's start address in RAM.
func (ch *Channel) Base() uint32 {
	return ch.base
}

// SetBase writes the channel's start address. Only the low 24 bits are
// significant.
func (ch *Channel) SetBase(val uint32) {
	ch.base = val & 0xffffff
}

// BlockControl returns the block control register: block count in the high
// half, block size in the low half.
func (ch *Channel) BlockControl() uint32 {
	return uint32(ch.blockCount)<<16 | uint32(ch.blockSize)
}

// SetBlockControl writes the block control register.
func (ch *Channel) SetBlockControl(val uint32) {
	ch.blockSize = uint16(val)
	ch.blockCount = uint16(val >> 16)
}

// Control returns the channel control register.
func (ch *Channel) Control() uint32 {
	var v uint32
	if ch.direction == FromRAM {
		v |= 1 << 0
	}
	if ch.step == Decrement {
		v |= 1 << 1
	}
	if ch.chopping {
		v |= 1 << 8
	}
	v |= uint32(ch.sync) << 9
	v |= uint32(ch.chopDMAWindow&0x7) << 16
	v |= uint32(ch.chopCPUWindow&0x7) << 20
	if ch.enable {
		v |= 1 << 24
	}
	if ch.trigger {
		v |= 1 << 28
	}
	v |= uint32(ch.unknownControl&0x3) << 29
	return v
}

// SetControl writes the channel control register. An unknown sync mode value
// returns an error and leaves the channel untouched.
func (ch *Channel) SetControl(val uint32) error {
	sync := Sync((val >> 9) & 0x3)
	if sync != Manual && sync != Request && sync != LinkedList {
		return fmt.Errorf("dma: unknown sync mode %d", sync)
	}

	if val&(1<<0) != 0 {
		ch.direction = FromRAM
	} else {
		ch.direction = ToRAM
	}
	if val&(1<<1) != 0 {
		ch.step = Decrement
	} else {
		ch.step = Increment
	}
	ch.chopping = val&(1<<8) != 0
	ch.sync = sync
	ch.chopDMAWindow = uint8((val >> 16) & 0x7)
	ch.chopCPUWindow = uint8((val >> 20) & 0x7)
	ch.enable = val&(1<<24) != 0
	ch.trigger = val&(1<<28) != 0
	ch.unknownControl = uint8((val >> 29) & 0x3)

	return nil
}

// Direction of the channel's next transfer.
func (ch *Channel) Direction() Direction {
	return ch.direction
}

// StepDelta returns the per-word address delta, +4 or -4.
func (ch *Channel) StepDelta() uint32 {
	if ch.step == Decrement {
		// two's complement -4
		return 0xfffffffc
	}
	return 4
}

// Sync mode of the channel.
func (ch *Channel) Sync() Sync {
	return ch.sync
}

// Active indicates whether the channel wants a transfer. In manual sync the
// trigger bit must also be set.
func (ch *Channel) Active() bool {
	if !ch.enable {
		return false
	}
	if ch.sync == Manual {
		return ch.trigger
	}
	return true
}

// TransferSize returns the number of words to move, or false for a linked
// list transfer whose length is only known by walking the list.
func (ch *Channel) TransferSize() (uint32, bool) {
	switch ch.sync {
	case Manual:
		if ch.blockSize == 0 {
			return 0x10000, true
		}
		return uint32(ch.blockSize), true
	case Request:
		return uint32(ch.blockSize) * uint32(ch.blockCount), true
	}
	return 0, false
}

// Done marks the transfer complete, clearing the enable and trigger bits.
func (ch *Channel) Done() {
	ch.enable = false
	ch.trigger = false
}
