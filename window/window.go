// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package window provides the native window the harness renders into,
// using glfw.
//
// Init, New, PollEvents and Terminate must all be called on the main
// initial thread.
package window

import (
	"fmt"
	"image"
	"log/slog"

	"cogentcore.org/core/base/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Init initializes glfw. Must be called before [New].
func Init() error {
	return errors.Log(glfw.Init())
}

// Terminate shuts down glfw; call as the last thing before quitting.
func Terminate() {
	glfw.Terminate()
}

// Window is a fixed-size native window with no client graphics API,
// so that a WebGPU surface can be created for it.
type Window struct {
	// Title is the window title.
	Title string

	// Size is the requested size of the window in screen coordinates.
	Size image.Point

	glw *glfw.Window
}

// New creates a new non-resizable window of the given size.
func New(title string, size image.Point) (*Window, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("window: invalid size %v", size)
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glw, err := glfw.CreateWindow(size.X, size.Y, title, nil, nil)
	if err != nil {
		return nil, errors.Log(fmt.Errorf("window: could not create %q: %w", title, err))
	}
	w := &Window{Title: title, Size: size, glw: glw}
	slog.Info("window created", "title", title, "size", size, "framebuffer", w.FramebufferSize())
	return w, nil
}

// GLFW returns the underlying glfw window.
func (w *Window) GLFW() *glfw.Window {
	return w.glw
}

// ShouldClose returns whether the user has asked to close the window.
func (w *Window) ShouldClose() bool {
	if w.glw == nil {
		return true
	}
	return w.glw.ShouldClose()
}

// PollEvents processes pending window events.
func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// FramebufferSize returns the size of the window in pixels,
// which can differ from Size on high-DPI displays.
func (w *Window) FramebufferSize() image.Point {
	if w.glw == nil {
		return image.Point{}
	}
	x, y := w.glw.GetFramebufferSize()
	return image.Point{x, y}
}

// Destroy destroys the window. It is safe to call more than once.
func (w *Window) Destroy() {
	if w.glw == nil {
		return
	}
	w.glw.Destroy()
	w.glw = nil
}
