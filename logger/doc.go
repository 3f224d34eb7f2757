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

// Package logger is the central log for the emulation. Hardware components
// use it to record unhandled register accesses and other curiosities of the
// running software, without any of them holding a process-wide file handle.
//
// The hardware packages log through the package level functions. An
// individual Logger value can be created for tests or for tools that want a
// log of their own.
package logger
