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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redcrab/gostation/biosloader"
	"github.com/redcrab/gostation/cdimage"
	"github.com/redcrab/gostation/gui/sdlgl"
	"github.com/redcrab/gostation/hardware"
	"github.com/redcrab/gostation/logger"
	"github.com/redcrab/gostation/performance"
	"github.com/redcrab/gostation/rendering"
	"github.com/redcrab/gostation/statsview"
	"github.com/redcrab/gostation/version"
)

const defaultBIOS = "roms/SCPH1001.BIN"

func main() {
	discPath := flag.String("disc", "", "disc image to insert (.bin)")
	headless := flag.Bool("headless", false, "run without a window")
	scale := flag.Int("scale", 2, "window scale factor")
	fpsCap := flag.Bool("fpscap", true, "limit emulation to 60 frames per second")
	perf := flag.Duration("performance", 0, "measure frame rate for the given duration, then exit")
	profile := flag.String("profile", "", "write a CPU profile of a -performance run to this file")
	stats := flag.Bool("statsview", false, "serve runtime statistics on localhost:1929")
	echoLog := flag.Bool("log", false, "echo log entries to stderr")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("gostation", version.Version())
		return
	}

	if *echoLog {
		logger.SetEcho(os.Stderr)
	}

	if *stats {
		if statsview.Available() {
			addr := statsview.Launch("localhost:1929")
			logger.Logf("main", "statsview at %s", addr)
		} else {
			fmt.Fprintln(os.Stderr, "this build does not include statsview (build with -tags statsview)")
		}
	}

	if err := run(flag.Arg(0), *discPath, *headless, *scale, *fpsCap, *perf, *profile); err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(1)
	}
}

func run(biosPath string, discPath string, headless bool, scale int, fpsCap bool, perf time.Duration, profile string) error {
	if biosPath == "" {
		biosPath = defaultBIOS
	}

	bios, err := biosloader.Load(biosPath)
	if err != nil {
		return err
	}

	var backend rendering.Backend
	var window *sdlgl.Window

	if headless || perf > 0 {
		backend = &rendering.Null{}
	} else {
		window, err = sdlgl.NewWindow(scale)
		if err != nil {
			return err
		}
		defer window.Destroy()
		backend = window
	}

	psx := hardware.NewPSX(bios, backend)

	if discPath != "" {
		img, err := cdimage.Open(discPath)
		if err != nil {
			return err
		}
		defer img.Close()
		psx.LoadDisc(img)
	}

	if perf > 0 {
		fps, err := performance.Check(psx, perf, profile)
		if err != nil {
			return err
		}
		fmt.Printf("%.2f fps (%.1f%% of real hardware)\n", fps, fps/60*100)
		return nil
	}

	frameTime := time.Second / 60
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		if window != nil && !window.Service() {
			return nil
		}

		psx.RunFrame()

		if fpsCap {
			<-ticker.C
		}
	}
}
