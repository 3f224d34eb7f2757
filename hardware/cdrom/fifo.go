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

// fifoCapacity is the depth of the parameter and response FIFOs.
const fifoCapacity = 16

// fifo is a small byte queue used for the parameter and response registers.
// Pushing past capacity drops the byte; popping empty returns zero. Both
// follow what the hardware does rather than reporting an error.
type fifo struct {
	data [fifoCapacity]uint8
	head int
	len  int
}

func (f *fifo) clear() {
	f.head = 0
	f.len = 0
}

func (f *fifo) empty() bool {
	return f.len == 0
}

func (f *fifo) full() bool {
	return f.len == fifoCapacity
}

func (f *fifo) push(v uint8) {
	if f.full() {
		return
	}
	f.data[(f.head+f.len)%fifoCapacity] = v
	f.len++
}

func (f *fifo) pop() uint8 {
	if f.empty() {
		return 0
	}
	v := f.data[f.head]
	f.head = (f.head + 1) % fifoCapacity
	f.len--
	return v
}
