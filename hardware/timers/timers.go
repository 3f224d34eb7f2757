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

package timers

import (
	"fmt"

	"github.com/redcrab/gostation/logger"
)

// Clock rates used for the source-clock conversion. The dotclock varies with
// the horizontal resolution on real hardware; the standard NTSC rate is a
// good enough approximation at the precision this emulation works to.
const (
	CPUHz    = 33868800.0
	DotHz    = 25175000.0
	HBlankHz = 15734.0
)

// NumTimers is the number of counters in the timer block.
const NumTimers = 3

// Timer is one of the three 16-bit interval timers.
type Timer struct {
	// which of the three timers this is. the clock source table depends
	// on it
	id int

	counter uint32
	target  uint16

	// mode register bits [9:0] as written
	syncEnable    bool
	syncMode      uint8
	resetOnTarget bool
	irqOnTarget   bool
	irqOnOverflow bool
	irqRepeat     bool
	irqPulse      bool
	clockSource   uint8

	// sticky status bits, live in mode register reads
	reachedTarget   bool
	reachedOverflow bool

	// the request latch. in one-shot mode a fired request stays latched
	// until the mode register is rewritten
	irqFired bool

	// fractional source ticks carried over to the next step. always in
	// [0, 1)
	frac float64
}

func (tmr *Timer) String() string {
	return fmt.Sprintf("timer%d: counter=%04x target=%04x src=%d", tmr.id, tmr.counter, tmr.target, tmr.clockSource)
}

// sourceHz returns the tick rate selected by the clock source field. The
// mapping differs per timer.
func (tmr *Timer) sourceHz() float64 {
	switch tmr.id {
	case 0:
		// sources 1 and 3 are the dotclock
		if tmr.clockSource == 1 || tmr.clockSource == 3 {
			return DotHz
		}
		return CPUHz
	case 1:
		switch tmr.clockSource {
		case 1:
			return DotHz
		case 3:
			return HBlankHz
		}
		return CPUHz
	default:
		// timer 2 has no video-derived sources, only system/8
		if tmr.clockSource >= 1 {
			return CPUHz / 8
		}
		return CPUHz
	}
}

// mode assembles the mode register value: the stored low bits plus the live
// status bits in [12:10].
func (tmr *Timer) mode() uint16 {
	var v uint16
	if tmr.syncEnable {
		v |= 1 << 0
	}
	v |= uint16(tmr.syncMode&0x3) << 1
	if tmr.resetOnTarget {
		v |= 1 << 3
	}
	if tmr.irqOnTarget {
		v |= 1 << 4
	}
	if tmr.irqOnOverflow {
		v |= 1 << 5
	}
	if tmr.irqRepeat {
		v |= 1 << 6
	}
	if tmr.irqPulse {
		v |= 1 << 7
	}
	v |= uint16(tmr.clockSource&0x3) << 8
	if tmr.irqFired {
		v |= 1 << 10
	}
	if tmr.reachedTarget {
		v |= 1 << 11
	}
	if tmr.reachedOverflow {
		v |= 1 << 12
	}
	return v
}

// setMode replaces mode bits [9:0], clears the sticky status flags and
// resets the counter. Rewriting the mode is also how software rearms a
// one-shot interrupt.
func (tmr *Timer) setMode(v uint16) {
	tmr.syncEnable = v&(1<<0) != 0
	tmr.syncMode = uint8((v >> 1) & 0x3)
	tmr.resetOnTarget = v&(1<<3) != 0
	tmr.irqOnTarget = v&(1<<4) != 0
	tmr.irqOnOverflow = v&(1<<5) != 0
	tmr.irqRepeat = v&(1<<6) != 0
	tmr.irqPulse = v&(1<<7) != 0
	tmr.clockSource = uint8((v >> 8) & 0x3)

	tmr.reachedTarget = false
	tmr.reachedOverflow = false
	tmr.irqFired = false
	tmr.counter = 0
	tmr.frac = 0

	if tmr.syncEnable {
		logger.Logf("timers", "timer%d: sync mode %d not implemented, free running", tmr.id, tmr.syncMode)
	}
}

// step advances the timer by the given number of CPU cycles. Returns true if
// the timer's interrupt line should be raised.
func (tmr *Timer) step(cycles uint32) bool {
	ticks := tmr.frac + float64(cycles)*tmr.sourceHz()/CPUHz
	whole := uint32(ticks)
	tmr.frac = ticks - float64(whole)

	if whole == 0 {
		return false
	}

	trigger := false

	next := tmr.counter + whole
	target := uint32(tmr.target)

	// target check against the pre-wrap count so a target crossed
	// mid-step is still seen. landing exactly on the target counts as
	// reaching it
	if (tmr.counter < target && next >= target) || (target == 0 && tmr.counter == 0) {
		tmr.reachedTarget = true
		if tmr.irqOnTarget {
			trigger = true
		}
		if tmr.resetOnTarget && next > target {
			next = (next - target - 1) % (target + 1)
		}
	}

	if next > 0xffff {
		tmr.reachedOverflow = true
		if tmr.irqOnOverflow {
			trigger = true
		}
		next &= 0xffff
	}

	tmr.counter = next

	if !trigger {
		return false
	}

	// one-shot fires once and stays quiet until the mode is rewritten.
	// repeat re-fires on every triggering edge
	if tmr.irqFired && !tmr.irqRepeat {
		return false
	}
	tmr.irqFired = true
	return true
}

// Timers is the block of three interval timers.
type Timers struct {
	timers [NumTimers]Timer
}

// NewTimers is the preferred method of initialisation for the Timers type.
func NewTimers() *Timers {
	tm := &Timers{}
	for i := range tm.timers {
		tm.timers[i].id = i
	}
	return tm
}

// Step advances all three timers by the given number of CPU cycles. The
// returned value has bit i set if timer i requests its interrupt (interrupt
// lines 4, 5 and 6 respectively).
func (tm *Timers) Step(cycles uint32) uint32 {
	var irq uint32
	for i := range tm.timers {
		if tm.timers[i].step(cycles) {
			irq |= 1 << i
		}
	}
	return irq
}

// Counter returns the current counter value of a timer.
func (tm *Timers) Counter(id int) uint16 {
	return uint16(tm.timers[id].counter)
}

// Load reads a timer register. Offset is relative to the start of the timer
// block; each timer occupies 16 bytes.
func (tm *Timers) Load(offset uint32) uint32 {
	id := int(offset >> 4)
	if id >= NumTimers {
		logger.Logf("timers", "read from unmapped offset %02x", offset)
		return 0
	}
	tmr := &tm.timers[id]

	switch offset & 0xf {
	case 0x0:
		return tmr.counter
	case 0x4:
		return uint32(tmr.mode())
	case 0x8:
		return uint32(tmr.target)
	}
	logger.Logf("timers", "read from unmapped offset %02x", offset)
	return 0
}

// Store writes a timer register.
func (tm *Timers) Store(offset uint32, val uint32) {
	id := int(offset >> 4)
	if id >= NumTimers {
		logger.Logf("timers", "write to unmapped offset %02x", offset)
		return
	}
	tmr := &tm.timers[id]

	switch offset & 0xf {
	case 0x0:
		tmr.counter = val & 0xffff
	case 0x4:
		tmr.setMode(uint16(val))
	case 0x8:
		tmr.target = uint16(val)
	default:
		logger.Logf("timers", "write to unmapped offset %02x", offset)
	}
}
