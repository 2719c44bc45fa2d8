// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image/color"
	"log/slog"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/colors"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
)

// FrameStates are the states of the [FrameDriver] state machine.
type FrameStates int32

const (
	// FrameIdle is the state between frames.
	FrameIdle FrameStates = iota

	// FrameAcquired means the current surface texture has been acquired.
	FrameAcquired

	// FrameEncoding means the render pass is being encoded.
	FrameEncoding

	// FrameSubmitted means the command buffer has been submitted to the queue.
	FrameSubmitted

	// FramePresented means the surface has been presented.
	FramePresented
)

func (s FrameStates) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquired:
		return "acquired"
	case FrameEncoding:
		return "encoding"
	case FrameSubmitted:
		return "submitted"
	case FramePresented:
		return "presented"
	}
	return fmt.Sprintf("FrameStates(%d)", int32(s))
}

// FrameOptions are the fixed per-frame drawing parameters.
type FrameOptions struct {
	// ClearColor is the color the target is cleared to; black if nil.
	ClearColor color.Color

	// VertexCount is the number of vertices drawn by the single draw call.
	VertexCount uint32

	// InstanceCount is the number of instances drawn; 1 if 0.
	InstanceCount uint32

	// VertexBuffers are bound to consecutive slots starting at 0.
	VertexBuffers []*Buffer

	// TrackWorkDone registers a queue work done notification after
	// every submission.
	TrackWorkDone bool
}

// FrameResult reports the outcome of one [FrameDriver.RenderFrame].
type FrameResult struct {
	// State is the final state reached: FramePresented for an
	// accepted frame, FrameIdle for a skipped one.
	State FrameStates

	// Skipped is set when the surface texture could not be acquired.
	Skipped bool

	// Status is the surface texture acquisition status.
	Status hal.SurfaceStatus
}

// FrameDriver renders frames to a configured [Surface] with a single
// immutable [Pipeline]. Each call to [FrameDriver.RenderFrame] runs
// one full cycle of the frame state machine.
type FrameDriver struct {
	// Device is the device whose queue receives the command buffers.
	Device *Device

	// Surface is the presentation target.
	Surface *Surface

	// Pipeline is the pipeline used for every frame.
	Pipeline *Pipeline

	// Options are the fixed drawing parameters.
	Options FrameOptions

	// State is the current state, FrameIdle between frames.
	State FrameStates

	clear     gputypes.Color
	presented uint64
	skipped   uint64
}

// NewFrameDriver returns a new FrameDriver.
func NewFrameDriver(dev *Device, sf *Surface, pl *Pipeline, opts *FrameOptions) *FrameDriver {
	fd := &FrameDriver{Device: dev, Surface: sf, Pipeline: pl}
	if opts != nil {
		fd.Options = *opts
	}
	if fd.Options.InstanceCount == 0 {
		fd.Options.InstanceCount = 1
	}
	fd.clear = clearValue(fd.Options.ClearColor)
	return fd
}

// clearValue converts a color to a render pass clear value.
func clearValue(c color.Color) gputypes.Color {
	if c == nil {
		return gputypes.Color{A: 1}
	}
	rc := colors.AsRGBA(c)
	return gputypes.Color{
		R: float64(rc.R) / 255,
		G: float64(rc.G) / 255,
		B: float64(rc.B) / 255,
		A: float64(rc.A) / 255,
	}
}

// Presented returns the number of frames presented.
func (fd *FrameDriver) Presented() uint64 {
	return fd.presented
}

// Skipped returns the number of frames skipped because the surface
// texture could not be acquired.
func (fd *FrameDriver) Skipped() uint64 {
	return fd.skipped
}

func (fd *FrameDriver) setState(s FrameStates) {
	fd.State = s
	if Debug {
		slog.Info("gpu frame", "state", s)
	}
}

// frame holds the transient objects of one frame.
type frame struct {
	texture hal.Texture
	view    hal.TextureView
	encoder hal.CommandEncoder
	cmds    hal.CommandBuffer
}

// release releases the view, the texture, the command buffer and the
// encoder, in that order, skipping any not acquired.
func (fr *frame) release() {
	if fr.view != nil {
		fr.view.Release()
	}
	if fr.texture != nil {
		fr.texture.Release()
	}
	if fr.cmds != nil {
		fr.cmds.Release()
	}
	if fr.encoder != nil {
		fr.encoder.Release()
	}
}

// RenderFrame renders one frame: it acquires the current surface
// texture, encodes one render pass that clears the target and draws
// with the pipeline, submits it and presents the surface, and then
// releases the transient objects of the frame.
//
// If the surface texture cannot be acquired, the frame is skipped with
// no draw and no submission and the result has Skipped set; this is not
// an error and the caller simply tries again on the next tick.
// An error is returned only if encoding or submission fails, after
// releasing whatever had been acquired.
func (fd *FrameDriver) RenderFrame() (FrameResult, error) {
	if fd.Surface == nil || !fd.Surface.IsConfigured() {
		return FrameResult{}, errors.Log(ErrSurfaceNotConfigured)
	}
	if fd.Device == nil || fd.Device.Device == nil {
		return FrameResult{}, errors.Log(ErrNoDevice)
	}
	if fd.Pipeline == nil || fd.Pipeline.RenderPipeline() == nil {
		return FrameResult{}, errors.Log(fmt.Errorf("%w: no pipeline", ErrPipeline))
	}
	fd.setState(FrameIdle)
	st := fd.Surface.Surface.CurrentTexture()
	if st.Status != hal.SurfaceStatusSuccess || st.Texture == nil {
		if st.Texture != nil {
			st.Texture.Release()
		}
		fd.skipped++
		if Debug {
			slog.Info("gpu frame skipped", "status", st.Status)
		}
		return FrameResult{State: FrameIdle, Skipped: true, Status: st.Status}, nil
	}
	fr := &frame{texture: st.Texture}
	fd.setState(FrameAcquired)

	err := fd.encode(fr)
	if err != nil {
		fr.release()
		fd.setState(FrameIdle)
		return FrameResult{State: FrameIdle, Status: st.Status}, errors.Log(err)
	}
	fd.Device.Queue.Submit(fr.cmds)
	fd.setState(FrameSubmitted)
	if fd.Options.TrackWorkDone {
		fd.Device.OnWorkDone()
	}

	err = fd.Surface.Surface.Present()
	fr.release()
	if err != nil {
		fd.setState(FrameIdle)
		return FrameResult{State: FrameSubmitted, Status: st.Status}, errors.Log(fmt.Errorf("gpu.FrameDriver: present: %w", err))
	}
	fd.presented++
	fd.setState(FramePresented)
	fd.State = FrameIdle
	return FrameResult{State: FramePresented, Status: st.Status}, nil
}

// encode records the single render pass of the frame into a new
// command buffer in fr.
func (fd *FrameDriver) encode(fr *frame) error {
	view, err := fr.texture.CreateView(&hal.TextureViewDescriptor{
		Label:     "frame view",
		Format:    fd.Surface.Format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("gpu.FrameDriver: texture view: %w", err)
	}
	fr.view = view
	enc, err := fd.Device.Device.CreateCommandEncoder("frame encoder")
	if err != nil {
		return fmt.Errorf("gpu.FrameDriver: command encoder: %w", err)
	}
	fr.encoder = enc
	fd.setState(FrameEncoding)

	rp, err := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: fd.clear,
		}},
	})
	if err != nil {
		return fmt.Errorf("gpu.FrameDriver: render pass: %w", err)
	}
	rp.SetPipeline(fd.Pipeline.RenderPipeline())
	for i, vb := range fd.Options.VertexBuffers {
		rp.SetVertexBuffer(uint32(i), vb.Buffer, 0, vb.Size)
	}
	rp.Draw(fd.Options.VertexCount, fd.Options.InstanceCount, 0, 0)
	err = rp.End()
	rp.Release() // must release before Finish
	if err != nil {
		return fmt.Errorf("gpu.FrameDriver: end render pass: %w", err)
	}
	cmds, err := enc.Finish("frame commands")
	if err != nil {
		return fmt.Errorf("gpu.FrameDriver: finish: %w", err)
	}
	fr.cmds = cmds
	return nil
}
