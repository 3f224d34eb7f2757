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

package bus

import (
	"github.com/redcrab/gostation/hardware/dma"
	"github.com/redcrab/gostation/logger"
)

// ramAddrMask aligns and bounds a DMA address for RAM access.
const ramAddrMask = 0x1ffffc

// dmaLoad reads a DMA register. Offset is relative to the DMA block; each
// channel owns a 16-byte window, the shared registers sit above them.
func (b *Bus) dmaLoad(offset uint32) uint32 {
	major := offset >> 4
	minor := offset & 0xf

	switch {
	case major < uint32(dma.NumPorts):
		ch := b.dma.Channel(dma.Port(major))
		switch minor {
		case 0:
			return ch.Base()
		case 4:
			return ch.BlockControl()
		case 8:
			return ch.Control()
		}
	case major == 7:
		switch minor {
		case 0:
			return b.dma.Control()
		case 4:
			return b.dma.Interrupt()
		}
	}

	logger.Logf("bus", "unhandled DMA read (offset %02x)", offset)
	return 0
}

// dmaStore writes a DMA register. A channel control write that makes the
// channel active runs the whole transfer synchronously before returning;
// from the CPU's point of view DMA is atomic.
func (b *Bus) dmaStore(offset uint32, val uint32) {
	major := offset >> 4
	minor := offset & 0xf

	switch {
	case major < uint32(dma.NumPorts):
		port := dma.Port(major)
		ch := b.dma.Channel(port)
		switch minor {
		case 0:
			ch.SetBase(val)
		case 4:
			ch.SetBlockControl(val)
		case 8:
			if err := ch.SetControl(val); err != nil {
				logger.Logf("bus", "%v", err)
				return
			}
			if ch.Active() {
				b.runDMA(port)
			}
		default:
			logger.Logf("bus", "unhandled DMA write (offset %02x <- %08x)", offset, val)
		}
	case major == 7:
		switch minor {
		case 0:
			b.dma.SetControl(val)
		case 4:
			b.dma.SetInterrupt(val)
		default:
			logger.Logf("bus", "unhandled DMA write (offset %02x <- %08x)", offset, val)
		}
	default:
		logger.Logf("bus", "unhandled DMA write (offset %02x <- %08x)", offset, val)
	}
}

// runDMA performs a full transfer on the given port and flags completion.
// A transfer on a port the engine cannot serve leaves the channel and the
// interrupt register untouched, so the guest never sees a completion for a
// transfer that moved nothing.
func (b *Bus) runDMA(port dma.Port) {
	ch := b.dma.Channel(port)

	var ok bool
	if ch.Sync() == dma.LinkedList {
		ok = b.dmaLinkedList(port)
	} else {
		ok = b.dmaBlock(port)
	}
	if !ok {
		return
	}

	ch.Done()
	b.dma.FlagTransferDone(port)
	if b.dma.PollIRQ() {
		b.RequestIRQ(IRQDMA)
	}
}

// dmaBlock runs a manual or request mode transfer: a straight copy between
// RAM and the peripheral port.
func (b *Bus) dmaBlock(port dma.Port) bool {
	ch := b.dma.Channel(port)

	addr := ch.Base()
	remaining, _ := ch.TransferSize()
	step := ch.StepDelta()

	for remaining > 0 {
		cur := addr & ramAddrMask

		switch ch.Direction() {
		case dma.FromRAM:
			word := b.ram.Load32(cur)
			switch port {
			case dma.PortGPU:
				b.gpu.WriteGP0(word)
			default:
				logger.Logf("bus", "DMA from RAM to unhandled port %v", port)
				return false
			}

		case dma.ToRAM:
			var word uint32
			switch port {
			case dma.PortOTC:
				// build the ordering table: each entry points
				// at the previous address, the last entry
				// carries the end marker
				if remaining == 1 {
					word = 0xffffff
				} else {
					word = (addr - 4) & 0xfffffc
				}
			case dma.PortGPU:
				word = b.gpu.Read()
			case dma.PortCDROM:
				// the drive's data buffer drains a byte at a
				// time, least significant byte first
				word = uint32(b.cdrom.ReadData())
				word |= uint32(b.cdrom.ReadData()) << 8
				word |= uint32(b.cdrom.ReadData()) << 16
				word |= uint32(b.cdrom.ReadData()) << 24
			default:
				logger.Logf("bus", "DMA to RAM from unhandled port %v", port)
				return false
			}
			b.ram.Store32(cur, word)
		}

		addr += step
		remaining--
	}

	return true
}

// dmaLinkedList walks a GPU command list in RAM, pushing each packet's words
// into GP0.
func (b *Bus) dmaLinkedList(port dma.Port) bool {
	ch := b.dma.Channel(port)

	if port != dma.PortGPU || ch.Direction() != dma.FromRAM {
		logger.Logf("bus", "linked list DMA on unsupported port %v", port)
		return false
	}

	addr := ch.Base() & ramAddrMask
	for {
		header := b.ram.Load32(addr)

		words := header >> 24
		for words > 0 {
			addr = (addr + 4) & ramAddrMask
			b.gpu.WriteGP0(b.ram.Load32(addr))
			words--
		}

		// the end-of-list marker is officially 0xffffff but testing the
		// sign bit of the 24-bit address is what the hardware does
		if header&0x800000 != 0 {
			break
		}
		addr = header & ramAddrMask
	}

	return true
}
