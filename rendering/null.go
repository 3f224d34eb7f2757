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

package rendering

// Null is a Backend that discards everything it is given. It is used for
// headless runs and is convenient as an embedded type in test backends.
type Null struct{}

// PushTriangle implements the Backend interface.
func (*Null) PushTriangle(_ [3]Position, _ [3]Color) {
}

// PushQuad implements the Backend interface.
func (*Null) PushQuad(_ [4]Position, _ [4]Color) {
}

// SetDrawOffset implements the Backend interface.
func (*Null) SetDrawOffset(_ int16, _ int16) {
}

// Present implements the Backend interface.
func (*Null) Present() {
}
