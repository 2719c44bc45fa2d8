// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package harness runs a demo variant: it opens a window and a GPU
// session for it, and renders frames until the window is closed.
package harness

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"cogentcore.org/hellogpu/gpu"
	"cogentcore.org/hellogpu/hal"
	"cogentcore.org/hellogpu/variant"
	"cogentcore.org/hellogpu/webgpu"
	"cogentcore.org/hellogpu/window"
	"github.com/gogpu/gputypes"
)

//go:generate core generate

// Window is the window collaborator of the main loop.
type Window interface {
	// ShouldClose returns whether the loop should stop.
	ShouldClose() bool

	// PollEvents processes pending window events.
	PollEvents()
}

// FramebufferSizer is implemented by windows whose size in pixels can
// differ from the configured size, as on high-DPI displays.
// The surface is then configured with the framebuffer size.
type FramebufferSizer interface {
	FramebufferSize() image.Point
}

// Stats are the frame counts of a finished run.
type Stats struct {
	// Frames is the number of frames attempted.
	Frames int

	// Presented is the number of frames presented.
	Presented int

	// Skipped is the number of frames skipped because the surface
	// texture could not be acquired.
	Skipped int

	// WorkDone is the number of queue work done notifications received.
	WorkDone int
}

// Run opens a window and draws the configured variant in it
// until the window is closed or MaxFrames is reached.
func Run(c *Config) error { //cli:cmd -root
	if err := c.Validate(); err != nil {
		return err
	}
	if err := window.Init(); err != nil {
		return err
	}
	defer window.Terminate()
	w, err := window.New(c.Title, c.Size())
	if err != nil {
		return err
	}
	defer w.Destroy()
	st, err := RunWith(c, webgpu.NewBackend(), webgpu.NewWindowSurface(w.GLFW()), w)
	if err != nil {
		return err
	}
	slog.Info("Application ran successfully", "frames", st.Frames, "presented", st.Presented, "skipped", st.Skipped)
	return nil
}

// RunWith runs the main loop on the given backend, rendering to the
// surface from provider, polling win for events. The surface is sized
// from win if it is a [FramebufferSizer], and from c otherwise.
// The session is released before it returns.
func RunWith(c *Config, backend hal.Backend, provider hal.SurfaceProvider, win Window) (*Stats, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	gpu.Debug = c.Debug
	v, err := variant.Get(c.Variant, c.VariantFile)
	if err != nil {
		return nil, err
	}
	sc := c.SessionConfig(v)
	if fs, ok := win.(FramebufferSizer); ok {
		if sz := fs.FramebufferSize(); sz.X > 0 && sz.Y > 0 {
			sc.Size = sz
		}
	}
	se, err := gpu.OpenSession(backend, provider, sc)
	if err != nil {
		return nil, err
	}
	defer se.Release()

	cl, _ := c.Clear()
	opts := &gpu.FrameOptions{
		ClearColor:    cl,
		VertexCount:   v.VertexCount,
		TrackWorkDone: c.TrackWorkDone,
	}
	if data := v.VertexData(); data != nil {
		vb, err := se.NewBufferInit("vertices", data, gputypes.BufferUsageVertex)
		if err != nil {
			return nil, err
		}
		opts.VertexBuffers = []*gpu.Buffer{vb}
	}
	fd, err := se.NewFrameDriver(opts)
	if err != nil {
		return nil, err
	}
	slog.Info("running", "variant", v.Name, "vertices", v.VertexCount, "size", se.Surface.Size)
	lp := &loop{config: c, session: se, frames: fd, window: win}
	err = lp.run()
	return &lp.stats, err
}

// loop is the main render loop state.
type loop struct {
	config  *Config
	session *gpu.Session
	frames  *gpu.FrameDriver
	window  Window
	stats   Stats

	fpsStart  time.Time
	fpsFrames int
}

func (lp *loop) run() error {
	var tick <-chan time.Time
	if lp.config.FrameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(lp.config.FrameRate))
		defer ticker.Stop()
		tick = ticker.C
	}
	lp.fpsStart = time.Now()
	for {
		if tick != nil {
			<-tick
		}
		if lp.window.ShouldClose() {
			return nil
		}
		lp.window.PollEvents()
		if err := lp.notifications(); err != nil {
			return err
		}
		if err := lp.frame(); err != nil {
			return err
		}
		if lp.config.MaxFrames > 0 && lp.stats.Frames >= lp.config.MaxFrames {
			return lp.notifications()
		}
	}
}

// frame renders one frame and updates the stats.
func (lp *loop) frame() error {
	res, err := lp.frames.RenderFrame()
	lp.stats.Frames++
	if err != nil {
		return fmt.Errorf("harness: frame %d: %w", lp.stats.Frames, err)
	}
	if res.Skipped {
		lp.stats.Skipped++
		if gpu.Debug {
			slog.Info("frame skipped", "frame", lp.stats.Frames, "status", res.Status)
		}
		return nil
	}
	lp.stats.Presented++
	lp.fps()
	return nil
}

// fps logs the frame rate every FPSInterval seconds.
func (lp *loop) fps() {
	if lp.config.FPSInterval <= 0 {
		return
	}
	lp.fpsFrames++
	now := time.Now()
	dur := now.Sub(lp.fpsStart)
	if dur < time.Duration(lp.config.FPSInterval)*time.Second {
		return
	}
	slog.Info("fps", "fps", fmt.Sprintf("%.0f", float64(lp.fpsFrames)/dur.Seconds()))
	lp.fpsFrames = 0
	lp.fpsStart = now
}

// notifications delivers and handles all pending device notifications.
// A fatal device loss ends the loop with [gpu.ErrDeviceLost].
func (lp *loop) notifications() error {
	lp.session.Device.Poll()
	for _, n := range lp.session.Notifications().Drain() {
		switch n.Kind {
		case gpu.WorkDoneNotification:
			lp.stats.WorkDone++
			if gpu.Debug {
				slog.Info(n.String())
			}
		case gpu.DeviceLostNotification:
			if n.IsFatal() {
				slog.Error(n.String())
				return fmt.Errorf("harness: %w: %s", gpu.ErrDeviceLost, n.Message)
			}
			slog.Info(n.String())
		}
	}
	return nil
}
