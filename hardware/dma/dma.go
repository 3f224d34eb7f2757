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

// Package dma implements the register state of the seven channel DMA
// controller. The package decodes the per-channel control registers and the
// shared DPCR and DICR registers, and decides when a transfer should run and
// when the DMA interrupt fires.
//
// The word-moving side of a transfer is not here. Only the bus can see main
// RAM and the peripheral ports at the same time, so the transfer engine lives
// with the bus and consults this package for what to move.
package dma

import (
	"github.com/redcrab/gostation/logger"
)

// Port identifies a DMA channel by the peripheral it serves.
type Port int

// List of valid Port values.
const (
	PortMDECin Port = iota
	PortMDECout
	PortGPU
	PortCDROM
	PortSPU
	PortPIO
	PortOTC
	NumPorts
)

func (p Port) String() string {
	switch p {
	case PortMDECin:
		return "MDECin"
	case PortMDECout:
		return "MDECout"
	case PortGPU:
		return "GPU"
	case PortCDROM:
		return "CDROM"
	case PortSPU:
		return "SPU"
	case PortPIO:
		return "PIO"
	case PortOTC:
		return "OTC"
	}
	return "unknown"
}

// resetDPCR is the priority register value after reset.
const resetDPCR = 0x07654321

// DMA is the controller's register file.
type DMA struct {
	// DPCR. priority and enable bits, stored but not acted on; all
	// transfers complete instantly
	control uint32

	// DICR pieces
	irqForce      bool
	irqEnables    uint8
	irqMasterEn   bool
	irqFlags      uint8
	irqDummy      uint8
	irqMasterPrev bool

	channels [NumPorts]Channel
}

// NewDMA is the preferred method of initialisation for the DMA type.
func NewDMA() *DMA {
	return &DMA{control: resetDPCR}
}

// Channel returns the channel serving the given port.
func (d *DMA) Channel(port Port) *Channel {
	return &d.channels[port]
}

// Control returns the DPCR register.
func (d *DMA) Control() uint32 {
	return d.control
}

// SetControl writes the DPCR register.
func (d *DMA) SetControl(val uint32) {
	d.control = val
}

// irqMaster derives the DICR master flag, bit 31.
func (d *DMA) irqMaster() bool {
	return d.irqForce || (d.irqMasterEn && d.irqFlags&d.irqEnables != 0)
}

// Interrupt returns the DICR register.
func (d *DMA) Interrupt() uint32 {
	var v uint32
	v |= uint32(d.irqDummy)
	if d.irqForce {
		v |= 1 << 15
	}
	v |= uint32(d.irqEnables) << 16
	if d.irqMasterEn {
		v |= 1 << 23
	}
	v |= uint32(d.irqFlags) << 24
	if d.irqMaster() {
		v |= 1 << 31
	}
	return v
}

// SetInterrupt writes the DICR register. Writing 1 to a flag bit in [30:24]
// acknowledges it; the master flag in bit 31 is derived and ignores writes.
func (d *DMA) SetInterrupt(val uint32) {
	d.irqDummy = uint8(val & 0x3f)
	d.irqForce = val&(1<<15) != 0
	d.irqEnables = uint8((val >> 16) & 0x7f)
	d.irqMasterEn = val&(1<<23) != 0
	d.irqFlags &= ^uint8((val >> 24) & 0x7f)

	if val&0x7fc0 != 0 {
		logger.Logf("dma", "write to unknown DICR bits: %08x", val)
	}
}

// FlagTransferDone latches the per-channel interrupt flag for a completed
// transfer, if the channel's interrupt is enabled.
func (d *DMA) FlagTransferDone(port Port) {
	if d.irqEnables&(1<<uint(port)) != 0 {
		d.irqFlags |= 1 << uint(port)
	}
}

// PollIRQ reports whether the DMA interrupt line should be raised. The line
// is edge triggered on the derived master flag, so the pulse fires once per
// rising edge.
func (d *DMA) PollIRQ() bool {
	master := d.irqMaster()
	rising := master && !d.irqMasterPrev
	d.irqMasterPrev = master
	return rising
}
