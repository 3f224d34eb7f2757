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

package bus_test

import (
	"testing"

	"github.com/redcrab/gostation/hardware/bus"
	"github.com/redcrab/gostation/hardware/cdrom"
	"github.com/redcrab/gostation/hardware/gpu"
	"github.com/redcrab/gostation/hardware/memory"
	"github.com/redcrab/gostation/rendering"
	"github.com/redcrab/gostation/test"
)

func newTestBus(t *testing.T) *bus.Bus {
	t.Helper()

	bios, err := memory.NewBIOS(make([]byte, memory.BIOSSize))
	if err != nil {
		t.Fatal(err)
	}

	g := gpu.NewGPU(memory.NewVRAM(), &rendering.Null{})
	return bus.NewBus(bios, g, cdrom.NewCDROM())
}

func TestRegionMasking(t *testing.T) {
	b := newTestBus(t)

	// the same RAM word through KUSEG, KSEG0 and KSEG1
	b.Store32(0x00001000, 0xcafe1234)
	test.ExpectEquality(t, b.Load32(0x80001000), 0xcafe1234)
	test.ExpectEquality(t, b.Load32(0xa0001000), 0xcafe1234)

	b.Store32(0xa0001000, 0x56781234)
	test.ExpectEquality(t, b.Load32(0x00001000), 0x56781234)
}

func TestBIOSWritesDropped(t *testing.T) {
	b := newTestBus(t)

	before := b.Load32(0xbfc00000)
	b.Store32(0x1fc00000, 0xffffffff)
	b.Store32(0xbfc00000, 0xffffffff)
	test.ExpectEquality(t, b.Load32(0xbfc00000), before)
}

func TestExpansion1ReadsOnes(t *testing.T) {
	b := newTestBus(t)

	test.ExpectEquality(t, b.Load8(0x1f000000), 0xff)
	test.ExpectEquality(t, b.Load8(0xbf000084), 0xff)
}

func TestSPUReadsZero(t *testing.T) {
	b := newTestBus(t)

	b.Store16(0x1f801c00, 0xffff)
	test.ExpectEquality(t, b.Load16(0x1f801c00), 0)
}

func TestIMaskRoundtrip(t *testing.T) {
	b := newTestBus(t)

	b.Store32(0x1f801074, 0xffffffff)
	test.ExpectEquality(t, b.Load32(0x1f801074), 0x7ff)

	b.Store16(0x1f801074, 0x0005)
	test.ExpectEquality(t, b.Load16(0x1f801074), 0x0005)
}

func TestIStatAcknowledge(t *testing.T) {
	b := newTestBus(t)

	b.Store32(0x1f801074, 0x7ff)
	test.ExpectEquality(t, b.PendingIRQ(), false)

	b.RequestIRQ(bus.IRQVBlank)
	b.RequestIRQ(bus.IRQCDROM)
	test.ExpectEquality(t, b.Load32(0x1f801070), 0b101)
	test.ExpectEquality(t, b.PendingIRQ(), true)

	// acknowledge VBlank only
	b.Store32(0x1f801070, 1)
	test.ExpectEquality(t, b.Load32(0x1f801070), 0b100)
	test.ExpectEquality(t, b.PendingIRQ(), true)

	b.Store32(0x1f801070, 0b100)
	test.ExpectEquality(t, b.PendingIRQ(), false)
}

func TestMaskGatesPending(t *testing.T) {
	b := newTestBus(t)

	b.RequestIRQ(bus.IRQTimer1)
	test.ExpectEquality(t, b.PendingIRQ(), false)

	b.Store32(0x1f801074, 1<<bus.IRQTimer1)
	test.ExpectEquality(t, b.PendingIRQ(), true)
}

func TestOTCTransfer(t *testing.T) {
	b := newTestBus(t)

	// clear the words the transfer will write
	for addr := uint32(0x10); addr <= 0x20; addr += 4 {
		b.Store32(addr, 0xdeadbeef)
	}

	// channel 6, base 0x20, 4 words, manual backward transfer
	b.Store32(0x1f8010e0, 0x20)
	b.Store32(0x1f8010e4, 4)
	b.Store32(0x1f8010e8, 0x11000002)

	// each entry points at the previous one, the head carries the end
	// marker
	test.ExpectEquality(t, b.Load32(0x20), 0x1c)
	test.ExpectEquality(t, b.Load32(0x1c), 0x18)
	test.ExpectEquality(t, b.Load32(0x18), 0x14)
	test.ExpectEquality(t, b.Load32(0x14), 0xffffff)

	// enable and trigger clear on completion
	test.ExpectEquality(t, b.Load32(0x1f8010e8)&(1<<24), 0)
	test.ExpectEquality(t, b.Load32(0x1f8010e8)&(1<<28), 0)
}

func TestManualGPUTransfer(t *testing.T) {
	b := newTestBus(t)

	// a fill rectangle command staged in RAM: 16x16 at (0,0), solid red
	b.Store32(0x200, 0x020000ff)
	b.Store32(0x204, 0x00000000)
	b.Store32(0x208, 0x00100010)

	// channel 2, manual, from RAM, 3 words
	b.Store32(0x1f8010a0, 0x200)
	b.Store32(0x1f8010a4, 3)
	b.Store32(0x1f8010a8, 0x11000001)

	test.ExpectEquality(t, b.GPU().VRAM().GetPixel(0, 0), 0x001f)
	test.ExpectEquality(t, b.GPU().VRAM().GetPixel(15, 15), 0x001f)
}

func TestLinkedListTransfer(t *testing.T) {
	b := newTestBus(t)

	// two packets: a draw mode command, then a drawing area command,
	// then the terminator
	b.Store32(0x100, 0x01<<24|0x110)
	b.Store32(0x104, 0xe1000005)
	b.Store32(0x110, 0x01<<24|0xffffff)
	b.Store32(0x114, 0xe3000000)

	b.Store32(0x1f8010a0, 0x100)
	b.Store32(0x1f8010a8, 0x01000401)

	// both packets reached GP0: page base from the first command, and
	// the GPU is back to accepting commands
	stat := b.Load32(0x1f801814)
	test.ExpectEquality(t, stat&0xf, 5)
	test.ExpectEquality(t, stat&(1<<26), uint32(1<<26))
}

func TestLinkedListZeroLengthPackets(t *testing.T) {
	b := newTestBus(t)

	// a chain of empty packets must terminate on the sign bit
	b.Store32(0x100, 0x110)
	b.Store32(0x110, 0x120)
	b.Store32(0x120, 0xffffff)

	b.Store32(0x1f8010a0, 0x100)
	b.Store32(0x1f8010a8, 0x01000401)

	test.ExpectEquality(t, b.Load32(0x1f8010a8)&(1<<24), 0)
}

// patternDisc is a sector source whose bytes follow their offset, so a DMA
// copy of a sector is recognisable in RAM.
type patternDisc struct{}

func (patternDisc) ReadSector(lba uint32) ([]byte, error) {
	s := make([]byte, cdrom.SectorSize)
	for i := range s {
		s[i] = byte(i) + byte(lba)
	}
	return s, nil
}

func TestCDROMDMATransfer(t *testing.T) {
	b := newTestBus(t)
	b.CDROM().LoadDisc(patternDisc{})

	// SetLoc 00:02:00 (LBA 0) then ReadN
	b.Store8(0x1f801800, 0)
	b.Store8(0x1f801802, 0x00)
	b.Store8(0x1f801802, 0x02)
	b.Store8(0x1f801802, 0x00)
	b.Store8(0x1f801801, 0x02)
	b.Step(10000)

	b.Store8(0x1f801801, 0x06)
	b.Step(460000)

	// request the staged sector
	b.Store8(0x1f801800, 0)
	b.Store8(0x1f801803, 0x80)

	// channel 3, manual, to RAM, 8 words
	b.Store32(0x1f8010b0, 0x1000)
	b.Store32(0x1f8010b4, 8)
	b.Store32(0x1f8010b8, 0x11000000)

	// the payload starts at raw sector offset 24
	test.ExpectEquality(t, b.Load32(0x1000), 0x1b1a1918)
	test.ExpectEquality(t, b.Load32(0x101c), 0x37363534)
	test.ExpectEquality(t, b.Load32(0x1f8010b8)&(1<<24), 0)
}

func TestUnhandledPortDMALeavesChannel(t *testing.T) {
	b := newTestBus(t)

	// enable channel 0 completion flagging in DICR
	b.Store32(0x1f8010f4, 1<<16|1<<23)
	b.Store32(0x1000, 0xcacacaca)

	// channel 0 (MDEC in) to RAM: no word source exists for it
	b.Store32(0x1f801080, 0x1000)
	b.Store32(0x1f801084, 4)
	b.Store32(0x1f801088, 0x11000000)

	// nothing moved, nothing completed: RAM untouched, enable and
	// trigger still set, no DICR flag
	test.ExpectEquality(t, b.Load32(0x1000), 0xcacacaca)
	test.ExpectEquality(t, b.Load32(0x1f801088)&(1<<24), uint32(1<<24))
	test.ExpectEquality(t, b.Load32(0x1f801088)&(1<<28), uint32(1<<28))
	test.ExpectEquality(t, b.Load32(0x1f8010f4)&(1<<24), 0)
}

func TestDMACompletionInterrupt(t *testing.T) {
	b := newTestBus(t)

	// unmask the DMA line, enable channel 6 and the master enable in
	// DICR
	b.Store32(0x1f801074, 1<<bus.IRQDMA)
	b.Store32(0x1f8010f4, 1<<23|1<<22)

	b.Store32(0x1f8010e0, 0x20)
	b.Store32(0x1f8010e4, 4)
	b.Store32(0x1f8010e8, 0x11000002)

	test.ExpectEquality(t, b.PendingIRQ(), true)
	test.ExpectEquality(t, b.Load32(0x1f8010f4)&(1<<30), uint32(1<<30))
	test.ExpectEquality(t, b.Load32(0x1f8010f4)&(1<<31), uint32(1<<31))
}

func TestDPCRRoundtrip(t *testing.T) {
	b := newTestBus(t)

	test.ExpectEquality(t, b.Load32(0x1f8010f0), 0x07654321)
	b.Store32(0x1f8010f0, 0x12345678)
	test.ExpectEquality(t, b.Load32(0x1f8010f0), 0x12345678)
}

func TestCDROMRegistersReachable(t *testing.T) {
	b := newTestBus(t)

	// index register write and host status read
	b.Store8(0x1f801800, 1)
	test.ExpectEquality(t, b.Load8(0x1f801800)&3, 1)
}

func TestTimerRegistersReachable(t *testing.T) {
	b := newTestBus(t)

	b.Store32(0x1f801108, 0x1234)
	test.ExpectEquality(t, b.Load32(0x1f801108), 0x1234)

	b.Store16(0x1f801120, 0x42)
	test.ExpectEquality(t, b.Load16(0x1f801120), 0x42)
}

func TestBusStepLatchesTimerIRQ(t *testing.T) {
	b := newTestBus(t)

	// timer 2 at system clock, IRQ on target
	b.Store32(0x1f801128, 100)
	b.Store32(0x1f801124, 0x0010)

	b.Step(101)
	test.ExpectEquality(t, b.Load32(0x1f801070)&(1<<bus.IRQTimer2), uint32(1<<bus.IRQTimer2))
}

func TestBusStepLatchesCDROMIRQ(t *testing.T) {
	b := newTestBus(t)

	// enable the drive's interrupts, then issue GetStat
	b.Store8(0x1f801800, 1)
	b.Store8(0x1f801802, 0x1f)
	b.Store8(0x1f801800, 0)
	b.Store8(0x1f801801, 0x01)

	b.Step(10000)
	test.ExpectEquality(t, b.Load32(0x1f801070)&(1<<bus.IRQCDROM), uint32(1<<bus.IRQCDROM))
}
