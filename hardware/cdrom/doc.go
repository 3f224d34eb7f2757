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

// Package cdrom emulates the CD-ROM controller and drive. Software talks to
// four byte-wide registers multiplexed by an index register; commands move
// through a small state machine whose stage transitions are delayed by CPU
// cycle counts, fed in through Step. The drive itself reads from a
// SectorSource, so a disc can be a .bin image on the host or a synthetic
// image in a test.
//
// The package also carries a minimal ISO-9660 reader, enough to validate
// the primary volume descriptor and list the root directory of a data disc
// when it is loaded.
package cdrom
