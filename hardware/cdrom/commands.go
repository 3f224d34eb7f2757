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

// command opcodes
const (
	cmdGetStat = 0x01
	cmdSetLoc  = 0x02
	cmdReadN   = 0x06
	cmdStop    = 0x08
	cmdPause   = 0x09
	cmdInit    = 0x0a
	cmdSetMode = 0x0e
	cmdSeekL   = 0x15
	cmdTest    = 0x19
	cmdGetID   = 0x1a
)

// acknowledge runs the first stage of the pending command: the INT3 response
// and any synchronous work. Commands with a second stage move to
// stateComplete; the rest return to idle.
func (cd *CDROM) acknowledge() {
	// whatever happens next, the parameter FIFO is consumed by the
	// command
	defer cd.params.clear()

	switch cd.command {
	case cmdGetStat:
		cd.respond(cd.status())
		cd.state = stateIdle

	case cmdSetLoc:
		if cd.params.len < 3 {
			cd.fail(errWrongParams)
			return
		}
		m := fromBCD(cd.params.pop())
		s := fromBCD(cd.params.pop())
		f := fromBCD(cd.params.pop())
		cd.targetLBA = (uint32(m)*60+uint32(s))*SectorsPerSecond + uint32(f) - 150
		cd.respond(cd.status())
		cd.schedule(stateComplete, completeDelay)

	case cmdReadN:
		if cd.disc == nil {
			cd.fail(errNoDisc)
			return
		}
		cd.respond(cd.status() | statReading)
		cd.schedule(stateReading, cd.sectorPeriod())

	case cmdStop, cmdPause:
		cd.respond(cd.status())
		cd.staged = nil
		cd.data = nil
		cd.schedule(stateComplete, completeDelay)

	case cmdInit:
		cd.mode = 0
		cd.staged = nil
		cd.data = nil
		cd.respond(cd.status())
		cd.schedule(stateComplete, completeDelay)

	case cmdSetMode:
		if cd.params.len < 1 {
			cd.fail(errWrongParams)
			return
		}
		cd.mode = cd.params.pop()
		if cd.mode & ^uint8(0xa0) != 0 {
			logger.Logf("cdrom", "unhandled mode bits in %02x", cd.mode)
		}
		cd.respond(cd.status())
		cd.state = stateIdle

	case cmdTest:
		cd.test()
		cd.state = stateIdle

	case cmdSeekL:
		cd.respond(cd.status() | statSeeking)
		cd.schedule(stateComplete, seekDelay)

	case cmdGetID:
		cd.respond(cd.status())
		cd.schedule(stateComplete, completeDelay)

	default:
		logger.Logf("cdrom", "unhandled command %02x", cd.command)
		cd.fail(errInvalid)
	}
}

// complete runs the terminal stage of a two-stage command. The response
// FIFO is cleared first so the terminal response is all software sees.
func (cd *CDROM) complete() {
	cd.state = stateIdle

	switch cd.command {
	case cmdGetID:
		cd.response.clear()
		if cd.disc == nil {
			cd.response.push(cd.status() | statIDError)
			cd.response.push(errNoDisc)
			for i := 0; i < 6; i++ {
				cd.response.push(0)
			}
			cd.trigger(5)
			return
		}
		cd.response.push(cd.status())
		cd.response.push(0x02)
		cd.response.push(0x00)
		cd.response.push(0x00)
		for _, b := range []uint8{'S', 'C', 'E', 'A'} {
			cd.response.push(b)
		}
		cd.trigger(2)

	default:
		cd.response.clear()
		cd.response.push(cd.status())
		cd.trigger(2)
	}
}

// deliverSector reads the sector at the target position into the staging
// buffer and raises INT1. The drive keeps delivering until a Pause, Stop or
// Init command, or a new command replaces the read.
func (cd *CDROM) deliverSector() {
	raw, err := cd.disc.ReadSector(cd.targetLBA)
	if err != nil {
		logger.Logf("cdrom", "read of sector %d failed: %v", cd.targetLBA, err)
		cd.fail(errNoDisc)
		return
	}

	// mode bit 5 selects whole sectors (2340 bytes from the header) over
	// the 2048-byte Mode 2 Form 1 payload
	if cd.mode&0x20 != 0 {
		cd.staged = append([]uint8(nil), raw[12:12+2340]...)
	} else {
		cd.staged = append([]uint8(nil), raw[24:24+2048]...)
	}

	cd.targetLBA++
	cd.response.push(cd.status())
	cd.trigger(1)

	cd.schedule(stateReading, cd.sectorPeriod())
}

// test runs the 0x19 subcommands. Only the version query is meaningful.
func (cd *CDROM) test() {
	sub := cd.params.pop()
	switch sub {
	case 0x20:
		// BCD date 97/01/10, version C2
		cd.respond(0x97, 0x01, 0x10, 0xc2)
	default:
		logger.Logf("cdrom", "unhandled test subcommand %02x", sub)
		cd.fail(errInvalid)
	}
}

// respond pushes a response and raises INT3.
func (cd *CDROM) respond(bytes ...uint8) {
	for _, b := range bytes {
		cd.response.push(b)
	}
	cd.trigger(3)
}

// fail pushes an error response and raises INT5. The command is over.
func (cd *CDROM) fail(code uint8) {
	cd.response.clear()
	cd.response.push(cd.status() | statError)
	cd.response.push(code)
	cd.trigger(5)
	cd.state = stateIdle
}

func (cd *CDROM) schedule(state driveState, delay uint32) {
	cd.state = state
	cd.delay = delay
}

// fromBCD converts a binary coded decimal byte.
func fromBCD(v uint8) uint8 {
	return (v>>4)*10 + v&0xf
}
