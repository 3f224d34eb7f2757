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

//go:build statsview

// Package statsview optionally serves a live view of the Go runtime, the
// heap, the GC and the goroutine count over HTTP. It is behind the
// statsview build tag because the dependency pulls in a web server that has
// no place in a normal build.
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Available indicates that the build carries the stats server.
func Available() bool {
	return true
}

// Launch the stats server. The view is served at the returned address.
func Launch(addr string) string {
	viewer.SetConfiguration(viewer.WithAddr(addr))

	mgr := statsview.New()
	go mgr.Start()

	return "http://" + addr + "/debug/statsview"
}
