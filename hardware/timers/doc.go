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

// Package timers emulates the three 16-bit root counters. Each timer selects
// one of four clock sources; sources slower than the CPU clock are modelled
// with a per-timer fractional accumulator so that no ticks are lost across
// Step() calls, whatever the step size.
//
// Synchronisation modes (mode register bit 0) are not implemented. Timers
// always free run; a write that enables synchronisation is logged.
package timers
