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

package cdrom

import (
	"github.com/redcrab/gostation/logger"
)

// SectorSize is the raw size of one sector on disc, including sync, header
// and error correction data.
const SectorSize = 2352

// SectorsPerSecond at single speed. Double speed doubles it.
const SectorsPerSecond = 75

// cpuHz is the CPU clock, used to convert drive timings to cycle counts.
const cpuHz = 33868800

// Command and sector timings, in CPU cycles. Loose approximations of a
// drive that is much slower than the CPU; software only requires that the
// acknowledge comes "later" and that sectors arrive at the drive's read
// rate.
const (
	ackDelay      = 2000
	completeDelay = 4000
	seekDelay     = 20000
)

// SectorSource supplies raw disc sectors. The cdimage package provides an
// implementation backed by a .bin file.
type SectorSource interface {
	// ReadSector returns the SectorSize bytes of the given sector.
	// Addressing starts at LBA 0, which is minute 0, second 2 on disc.
	ReadSector(lba uint32) ([]byte, error)
}

// host status register bits (offset 0 read)
const (
	hstsParamEmpty      = 1 << 3
	hstsParamNotFull    = 1 << 4
	hstsResponseNotEmpty = 1 << 5
	hstsDataNotEmpty    = 1 << 6
	hstsBusy            = 1 << 7
)

// drive status byte bits, as returned in command responses
const (
	statError   = 1 << 0
	statMotorOn = 1 << 1
	statIDError = 1 << 3
	statReading = 1 << 5
	statSeeking = 1 << 6
)

// drive error codes
const (
	errWrongParams = 0x40
	errInvalid     = 0x20
	errNoDisc      = 0x80
)

type driveState int

const (
	// no command in flight
	stateIdle driveState = iota

	// command accepted, waiting to deliver the first (acknowledge)
	// response
	stateAck

	// acknowledge delivered, waiting to deliver the terminal response
	stateComplete

	// delivering a data sector every sector period until told to stop
	stateReading
)

// CDROM emulates the CD-ROM controller and drive. The register file is four
// byte-wide ports multiplexed by an index register; commands run through a
// delay-driven state machine advanced by Step.
type CDROM struct {
	index uint8

	params   fifo
	response fifo

	irqEnable uint8
	irqFlags  uint8

	// sector payload staged by a read, moved to data by the request
	// register
	staged []uint8
	data   []uint8

	mode uint8

	state   driveState
	delay   uint32
	command uint8

	disc      SectorSource
	targetLBA uint32
}

// NewCDROM is the preferred method of initialisation for the CDROM type.
// The drive starts with no disc; use LoadDisc to bind one.
func NewCDROM() *CDROM {
	return &CDROM{}
}

// LoadDisc binds a sector source as the inserted disc and resets the drive
// state. The ISO-9660 primary volume descriptor is parsed for the log; a
// disc without a recognisable filesystem is still accepted, audio discs
// do not have one.
func (cd *CDROM) LoadDisc(src SectorSource) {
	cd.disc = src
	cd.params.clear()
	cd.response.clear()
	cd.staged = nil
	cd.data = nil
	cd.state = stateIdle
	cd.delay = 0
	cd.mode = 0
	cd.targetLBA = 0

	pvd, err := ReadPVD(src)
	if err != nil {
		logger.Logf("cdrom", "disc loaded, no ISO-9660 filesystem: %v", err)
		return
	}
	logger.Logf("cdrom", "disc loaded: volume %q, %d files in root directory",
		pvd.VolumeID, len(pvd.RootFiles))
}

// HasDisc indicates whether a sector source is bound.
func (cd *CDROM) HasDisc() bool {
	return cd.disc != nil
}

// status assembles the drive status byte used in command responses. This is
// not the host status register; the two are distinct on hardware and
// conflating them is a classic emulator bug.
func (cd *CDROM) status() uint8 {
	var v uint8
	if cd.disc != nil {
		v |= statMotorOn
	}
	if cd.state == stateReading {
		v |= statReading
	}
	return v
}

// hostStatus assembles the host status register, read at offset 0.
func (cd *CDROM) hostStatus() uint8 {
	v := cd.index & 3
	if cd.params.empty() {
		v |= hstsParamEmpty
	}
	if !cd.params.full() {
		v |= hstsParamNotFull
	}
	if !cd.response.empty() {
		v |= hstsResponseNotEmpty
	}
	if len(cd.data) > 0 {
		v |= hstsDataNotEmpty
	}
	if cd.state == stateAck {
		v |= hstsBusy
	}
	return v
}

// Load reads one of the four byte registers. Offset is relative to the
// register base.
func (cd *CDROM) Load(offset uint32) uint8 {
	switch offset {
	case 0:
		return cd.hostStatus()
	case 1:
		return cd.response.pop()
	case 2:
		return cd.popData()
	case 3:
		if cd.index&1 == 0 {
			return 0xe0 | cd.irqEnable
		}
		return 0xe0 | cd.irqFlags
	}
	logger.Logf("cdrom", "read from unmapped offset %d", offset)
	return 0
}

// Store writes one of the four byte registers.
func (cd *CDROM) Store(offset uint32, val uint8) {
	switch offset {
	case 0:
		cd.index = val & 3
	case 1:
		if cd.index == 0 {
			cd.startCommand(val)
		} else {
			logger.Logf("cdrom", "write %02x to offset 1 index %d", val, cd.index)
		}
	case 2:
		switch cd.index {
		case 0:
			cd.params.push(val)
		case 1:
			cd.irqEnable = val & 0x1f
		default:
			logger.Logf("cdrom", "write %02x to offset 2 index %d", val, cd.index)
		}
	case 3:
		switch cd.index {
		case 0:
			cd.writeRequest(val)
		case 1:
			cd.ackInterrupt(val)
		default:
			logger.Logf("cdrom", "write %02x to offset 3 index %d", val, cd.index)
		}
	default:
		logger.Logf("cdrom", "write %02x to unmapped offset %d", val, offset)
	}
}

// writeRequest handles the request register. Bit 7 moves the staged sector
// into the readable data buffer; clearing it empties the buffer. The
// parameter FIFO is cleared either way.
func (cd *CDROM) writeRequest(val uint8) {
	if val&0x80 != 0 {
		if cd.staged != nil {
			cd.data = cd.staged
			cd.staged = nil
		}
	} else {
		cd.data = nil
	}
	cd.params.clear()
}

// ackInterrupt clears the flag bits set in the written value. Writing bit 6
// clears every flag.
func (cd *CDROM) ackInterrupt(val uint8) {
	if val&0x40 != 0 {
		cd.irqFlags = 0
		return
	}
	cd.irqFlags &= ^(val & 0x1f)
}

// ReadData pops one byte of the current sector's data buffer. This is the
// path the DMA controller drains the buffer through, four bytes per word; an
// empty buffer reads zero.
func (cd *CDROM) ReadData() uint8 {
	return cd.popData()
}

func (cd *CDROM) popData() uint8 {
	if len(cd.data) == 0 {
		return 0
	}
	v := cd.data[0]
	cd.data = cd.data[1:]
	return v
}

// IRQFlags returns the pending interrupt flag bits. Bit n means INT(n+1).
func (cd *CDROM) IRQFlags() uint8 {
	return cd.irqFlags
}

// trigger latches response interrupt code 1 to 5.
func (cd *CDROM) trigger(code uint8) {
	cd.irqFlags |= 1 << (code - 1)
}

// irqAsserted indicates whether the controller's interrupt line (line 2)
// should be raised.
func (cd *CDROM) irqAsserted() bool {
	return cd.irqEnable&cd.irqFlags != 0
}

// startCommand begins executing a command. A command written while another
// is pending replaces it, abandoning the pending delay.
func (cd *CDROM) startCommand(op uint8) {
	cd.command = op
	cd.state = stateAck
	cd.delay = ackDelay
}

// Step advances the drive by the given number of CPU cycles. Returns true
// if the interrupt line should be raised.
func (cd *CDROM) Step(cycles uint32) bool {
	for cycles > 0 && cd.state != stateIdle {
		if cd.delay > cycles {
			cd.delay -= cycles
			break
		}
		cycles -= cd.delay
		cd.delay = 0

		switch cd.state {
		case stateAck:
			cd.acknowledge()
		case stateComplete:
			cd.complete()
		case stateReading:
			cd.deliverSector()
		}
	}
	return cd.irqAsserted()
}

// sectorPeriod is the cycle count between delivered sectors at the current
// drive speed.
func (cd *CDROM) sectorPeriod() uint32 {
	period := uint32(cpuHz / SectorsPerSecond)
	if cd.mode&0x80 != 0 {
		period /= 2
	}
	return period
}
