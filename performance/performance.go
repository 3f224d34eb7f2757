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

// Package performance measures how fast the console emulates compared to
// the real hardware's 60 frames per second.
package performance

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/redcrab/gostation/hardware"
)

// Check runs the console flat out for the given duration and returns the
// achieved frame rate. With a profile path, a CPU profile of the run is
// written there.
func Check(psx *hardware.PSX, duration time.Duration, profilePath string) (float64, error) {
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return 0, fmt.Errorf("performance: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return 0, fmt.Errorf("performance: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	frames := 0
	start := time.Now()
	deadline := start.Add(duration)

	for time.Now().Before(deadline) {
		psx.RunFrame()
		frames++
	}

	elapsed := time.Since(start).Seconds()
	if elapsed == 0 {
		return 0, nil
	}
	return float64(frames) / elapsed, nil
}
