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

// Package bus implements the interconnect: the physical address decoder that
// routes CPU and DMA accesses to the devices, the interrupt controller, and
// the DMA transfer engine. The bus owns every peripheral; the CPU only holds
// an interface to the bus.
package bus

import (
	"github.com/redcrab/gostation/hardware/cdrom"
	"github.com/redcrab/gostation/hardware/dma"
	"github.com/redcrab/gostation/hardware/gpu"
	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/hardware/timers"
	"github.com/redcrab/gostation/logger"
)

// Interrupt lines of the interrupt controller, ie. bit positions in I_STAT.
const (
	IRQVBlank = iota
	IRQGPU
	IRQCDROM
	IRQDMA
	IRQTimer0
	IRQTimer1
	IRQTimer2
	IRQSIO
	IRQSPU
	IRQPIO
	IRQController
)

// irqBits masks I_STAT and I_MASK to the lines that exist.
const irqBits = 0x7ff

// regionMask strips the segment bits from a virtual address, indexed by the
// top three bits. KUSEG and KSEG2 pass through, KSEG0 clears bit 31, KSEG1
// clears the top three.
var regionMask = [8]uint32{
	0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	0x7fffffff,
	0x1fffffff,
	0xffffffff, 0xffffffff,
}

func maskRegion(addr uint32) uint32 {
	return addr & regionMask[addr>>29]
}

// addrRange is a window of the physical address map.
type addrRange struct {
	start  uint32
	length uint32
}

// contains returns the offset of addr into the range, if it falls inside.
func (r addrRange) contains(addr uint32) (uint32, bool) {
	if addr >= r.start && addr < r.start+r.length {
		return addr - r.start, true
	}
	return 0, false
}

// the physical device map
var (
	ramRange        = addrRange{0x00000000, memory.RAMSize}
	expansion1Range = addrRange{0x1f000000, 0x800000}
	memControlRange = addrRange{0x1f801000, 36}
	ramSizeRange    = addrRange{0x1f801060, 4}
	irqControlRange = addrRange{0x1f801070, 8}
	dmaRange        = addrRange{0x1f801080, 0x80}
	timersRange     = addrRange{0x1f801100, 0x30}
	cdromRange      = addrRange{0x1f801800, 4}
	gpuRange        = addrRange{0x1f801810, 8}
	spuRange        = addrRange{0x1f801c00, 640}
	expansion2Range = addrRange{0x1f802000, 66}
	biosRange       = addrRange{0x1fc00000, memory.BIOSSize}
	cacheCtrlRange  = addrRange{0xfffe0130, 4}
)

// Bus is the interconnect. It owns the peripherals exclusively; everything
// reaches them through the address map.
type Bus struct {
	ram  *memory.RAM
	bios *memory.BIOS

	dma    *dma.DMA
	gpu    *gpu.GPU
	cdrom  *cdrom.CDROM
	timers *timers.Timers

	istat uint16
	imask uint16

	// previous level of the CD-ROM interrupt line, for edge detection
	cdromIRQ bool
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(bios *memory.BIOS, gpu *gpu.GPU, cdrom *cdrom.CDROM) *Bus {
	return &Bus{
		ram:    memory.NewRAM(),
		bios:   bios,
		dma:    dma.NewDMA(),
		gpu:    gpu,
		cdrom:  cdrom,
		timers: timers.NewTimers(),
	}
}

// RAM gives access to main memory, for tools that side-load executables.
func (b *Bus) RAM() *memory.RAM {
	return b.ram
}

// GPU gives access to the video chip.
func (b *Bus) GPU() *gpu.GPU {
	return b.gpu
}

// CDROM gives access to the disc drive.
func (b *Bus) CDROM() *cdrom.CDROM {
	return b.cdrom
}

// RequestIRQ latches an interrupt line in I_STAT. The bit stays set until
// software acknowledges it.
func (b *Bus) RequestIRQ(line int) {
	b.istat |= 1 << line
}

// PendingIRQ reports whether any unmasked interrupt line is pending. The
// CPU polls this before every fetch.
func (b *Bus) PendingIRQ() bool {
	return b.istat&b.imask != 0
}

// Step distributes elapsed CPU cycles to the peripherals that keep time and
// latches any interrupts they raise.
func (b *Bus) Step(cycles uint32) {
	line := b.cdrom.Step(cycles)
	if line && !b.cdromIRQ {
		b.RequestIRQ(IRQCDROM)
	}
	b.cdromIRQ = line

	irq := b.timers.Step(cycles)
	for i := 0; i < timers.NumTimers; i++ {
		if irq&(1<<i) != 0 {
			b.RequestIRQ(IRQTimer0 + i)
		}
	}
}

// Load32 reads a word from the given virtual address.
func (b *Bus) Load32(addr uint32) uint32 {
	addr = maskRegion(addr)

	if offset, ok := ramRange.contains(addr); ok {
		return b.ram.Load32(offset)
	}
	if offset, ok := biosRange.contains(addr); ok {
		return b.bios.Load32(offset)
	}
	if offset, ok := irqControlRange.contains(addr); ok {
		if offset == 0 {
			return uint32(b.istat)
		}
		return uint32(b.imask)
	}
	if offset, ok := dmaRange.contains(addr); ok {
		return b.dmaLoad(offset)
	}
	if offset, ok := gpuRange.contains(addr); ok {
		if offset == 0 {
			return b.gpu.Read()
		}
		return b.gpu.Status()
	}
	if offset, ok := timersRange.contains(addr); ok {
		return b.timers.Load(offset)
	}
	if _, ok := expansion1Range.contains(addr); ok {
		return 0xffffffff
	}
	if _, ok := spuRange.contains(addr); ok {
		return 0
	}
	if _, ok := memControlRange.contains(addr); ok {
		return 0
	}
	if _, ok := ramSizeRange.contains(addr); ok {
		return 0
	}
	if _, ok := cacheCtrlRange.contains(addr); ok {
		return 0
	}

	logger.Logf("bus", "unhandled 32-bit read (%08x)", addr)
	return 0
}

// Load16 reads a halfword.
func (b *Bus) Load16(addr uint32) uint16 {
	addr = maskRegion(addr)

	if offset, ok := ramRange.contains(addr); ok {
		return b.ram.Load16(offset)
	}
	if offset, ok := biosRange.contains(addr); ok {
		return b.bios.Load16(offset)
	}
	if offset, ok := irqControlRange.contains(addr); ok {
		if offset == 0 {
			return b.istat
		}
		return b.imask
	}
	if offset, ok := timersRange.contains(addr); ok {
		return uint16(b.timers.Load(offset))
	}
	if _, ok := spuRange.contains(addr); ok {
		return 0
	}
	if _, ok := expansion1Range.contains(addr); ok {
		return 0xffff
	}

	logger.Logf("bus", "unhandled 16-bit read (%08x)", addr)
	return 0
}

// Load8 reads a byte.
func (b *Bus) Load8(addr uint32) uint8 {
	addr = maskRegion(addr)

	if offset, ok := ramRange.contains(addr); ok {
		return b.ram.Load8(offset)
	}
	if offset, ok := biosRange.contains(addr); ok {
		return b.bios.Load8(offset)
	}
	if offset, ok := cdromRange.contains(addr); ok {
		return b.cdrom.Load(offset)
	}
	if _, ok := expansion1Range.contains(addr); ok {
		return 0xff
	}

	logger.Logf("bus", "unhandled 8-bit read (%08x)", addr)
	return 0
}

// Store32 writes a word to the given virtual address.
func (b *Bus) Store32(addr uint32, val uint32) {
	addr = maskRegion(addr)

	if offset, ok := ramRange.contains(addr); ok {
		b.ram.Store32(offset, val)
		return
	}
	if offset, ok := irqControlRange.contains(addr); ok {
		b.irqControlStore(offset, uint16(val))
		return
	}
	if offset, ok := dmaRange.contains(addr); ok {
		b.dmaStore(offset, val)
		return
	}
	if offset, ok := gpuRange.contains(addr); ok {
		if offset == 0 {
			b.gpu.WriteGP0(val)
		} else {
			b.gpu.WriteGP1(val)
		}
		return
	}
	if offset, ok := timersRange.contains(addr); ok {
		b.timers.Store(offset, val)
		return
	}
	if _, ok := biosRange.contains(addr); ok {
		// the ROM ignores writes
		return
	}
	if offset, ok := memControlRange.contains(addr); ok {
		b.memControlStore(offset, val)
		return
	}
	if _, ok := ramSizeRange.contains(addr); ok {
		return
	}
	if _, ok := cacheCtrlRange.contains(addr); ok {
		return
	}
	if _, ok := spuRange.contains(addr); ok {
		return
	}

	logger.Logf("bus", "unhandled 32-bit write (%08x <- %08x)", addr, val)
}

// Store16 writes a halfword.
func (b *Bus) Store16(addr uint32, val uint16) {
	addr = maskRegion(addr)

	if offset, ok := ramRange.contains(addr); ok {
		b.ram.Store16(offset, val)
		return
	}
	if offset, ok := irqControlRange.contains(addr); ok {
		b.irqControlStore(offset, val)
		return
	}
	if offset, ok := timersRange.contains(addr); ok {
		b.timers.Store(offset, uint32(val))
		return
	}
	if _, ok := spuRange.contains(addr); ok {
		return
	}
	if _, ok := biosRange.contains(addr); ok {
		return
	}

	logger.Logf("bus", "unhandled 16-bit write (%08x <- %04x)", addr, val)
}

// Store8 writes a byte.
func (b *Bus) Store8(addr uint32, val uint8) {
	addr = maskRegion(addr)

	if offset, ok := ramRange.contains(addr); ok {
		b.ram.Store8(offset, val)
		return
	}
	if offset, ok := cdromRange.contains(addr); ok {
		b.cdrom.Store(offset, val)
		return
	}
	if _, ok := expansion2Range.contains(addr); ok {
		// the BIOS pokes the expansion 2 debug registers on boot
		return
	}
	if _, ok := biosRange.contains(addr); ok {
		return
	}

	logger.Logf("bus", "unhandled 8-bit write (%08x <- %02x)", addr, val)
}

// irqControlStore handles I_STAT and I_MASK writes. Writing I_STAT
// acknowledges the set bits.
func (b *Bus) irqControlStore(offset uint32, val uint16) {
	if offset == 0 {
		b.istat &= ^(val & irqBits)
		return
	}
	b.imask = val & irqBits
}

// memControlStore accepts the boot-time expansion base and timing registers.
// Anything other than the values the BIOS writes is logged; the registers
// have no behavioural effect here.
func (b *Bus) memControlStore(offset uint32, val uint32) {
	switch offset {
	case 0:
		if val != 0x1f000000 {
			logger.Logf("bus", "unexpected expansion 1 base (%08x)", val)
		}
	case 4:
		if val != 0x1f802000 {
			logger.Logf("bus", "unexpected expansion 2 base (%08x)", val)
		}
	}
}
