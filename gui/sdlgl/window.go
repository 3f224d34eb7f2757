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

// Package sdlgl is the windowed rendering backend: an SDL window with an
// OpenGL 3.2 core context, drawing the primitives the GPU emulation pushes.
// The rendering is deliberately simple, a single shader program and one
// vertex buffer flushed on every present.
package sdlgl

import (
	"fmt"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/veandco/go-sdl2/sdl"
)

// native display size in VRAM pixels
const (
	displayWidth  = 1024
	displayHeight = 512
)

// Window is an SDL window holding a GL context and the renderer that draws
// into it. It implements the rendering.Backend interface.
type Window struct {
	window  *sdl.Window
	context sdl.GLContext

	renderer *renderer

	quit bool
}

// NewWindow is the preferred method of initialisation for the Window type.
func NewWindow(scale int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdlgl: %w", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 2)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	window, err := sdl.CreateWindow("GoStation",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(displayWidth*scale/2), int32(displayHeight*scale/2),
		sdl.WINDOW_OPENGL)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdlgl: %w", err)
	}

	context, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlgl: %w", err)
	}

	if err := gl.Init(); err != nil {
		sdl.GLDeleteContext(context)
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlgl: %w", err)
	}

	rnd, err := newRenderer()
	if err != nil {
		sdl.GLDeleteContext(context)
		window.Destroy()
		sdl.Quit()
		return nil, err
	}

	return &Window{
		window:   window,
		context:  context,
		renderer: rnd,
	}, nil
}

// Destroy releases the GL context and the window.
func (win *Window) Destroy() {
	win.renderer.destroy()
	sdl.GLDeleteContext(win.context)
	win.window.Destroy()
	sdl.Quit()
}

// Service pumps the SDL event queue. Returns false when the user has asked
// to quit.
func (win *Window) Service() bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			win.quit = true
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				win.quit = true
			}
		}
	}
	return !win.quit
}
