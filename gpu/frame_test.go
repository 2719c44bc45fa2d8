// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"cogentcore.org/hellogpu/gpu/gputest"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T, b *gputest.Backend) *Session {
	t.Helper()
	se, err := OpenSession(b, b, testSessionConfig())
	require.NoError(t, err)
	t.Cleanup(se.Release)
	return se
}

func TestFrameSkipsOnSurfaceStatus(t *testing.T) {
	b := gputest.NewBackend()
	b.SurfaceStatuses = []hal.SurfaceStatus{
		hal.SurfaceStatusOutdated,
		hal.SurfaceStatusLost,
		hal.SurfaceStatusTimeout,
		hal.SurfaceStatusOutOfMemory,
		hal.SurfaceStatusDeviceLost,
		hal.SurfaceStatusError,
	}
	se := testSession(t, b)
	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
	require.NoError(t, err)

	for i, st := range []hal.SurfaceStatus{
		hal.SurfaceStatusOutdated,
		hal.SurfaceStatusLost,
		hal.SurfaceStatusTimeout,
		hal.SurfaceStatusOutOfMemory,
		hal.SurfaceStatusDeviceLost,
		hal.SurfaceStatusError,
	} {
		res, err := fd.RenderFrame()
		require.NoError(t, err, "frame %d", i)
		assert.True(t, res.Skipped)
		assert.Equal(t, FrameIdle, res.State)
		assert.Equal(t, st, res.Status)
		assert.Equal(t, FrameIdle, fd.State)
	}
	assert.Empty(t, b.Draws)
	assert.Zero(t, b.Count("submit"))
	assert.Zero(t, b.Count("present"))
	assert.Equal(t, uint64(6), fd.Skipped())

	res, err := fd.RenderFrame()
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, FramePresented, res.State)
	assert.Equal(t, []uint32{3}, b.Draws)
	assert.Equal(t, 1, b.Count("submit"))
	assert.Equal(t, 1, b.Count("present"))
	assert.Equal(t, uint64(1), fd.Presented())
}

func TestFramePipelineReused(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
	require.NoError(t, err)

	for range 5 {
		_, err := fd.RenderFrame()
		require.NoError(t, err)
	}
	require.Len(t, b.Pipelines, 1)
	assert.Same(t, se.Pipeline, fd.Pipeline)
	pid := id(se.Pipeline.RenderPipeline())
	assert.Equal(t, 5, b.Count("set-pipeline"))
	for _, ev := range b.Events() {
		if len(ev) > 12 && ev[:12] == "set-pipeline" {
			assert.Equal(t, "set-pipeline "+pid, ev)
		}
	}
}

func TestFrameSubmitBeforePresent(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
	require.NoError(t, err)

	for range 3 {
		_, err := fd.RenderFrame()
		require.NoError(t, err)
	}
	var ops []string
	for _, ev := range b.Events() {
		switch {
		case len(ev) >= 6 && ev[:6] == "submit":
			ops = append(ops, "submit")
		case len(ev) >= 7 && ev[:7] == "present":
			ops = append(ops, "present")
		}
	}
	assert.Equal(t, []string{"submit", "present", "submit", "present", "submit", "present"}, ops)
}

func TestFrameReleaseOrder(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
	require.NoError(t, err)
	_, err = fd.RenderFrame()
	require.NoError(t, err)

	assertOrder(t, b,
		"create texture#1",
		"create view#1",
		"create encoder#1",
		"create pass#1",
		"set-pipeline pipeline#1",
		"draw pass#1",
		"end pass#1",
		"release pass#1",
		"create commands#1",
		"submit commands#1",
		"present surface#1",
		"release view#1",
		"release texture#1",
		"release commands#1",
		"release encoder#1",
	)
	assert.Empty(t, b.DoubleReleases())
}

func TestFrameRenderPass(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	vb, err := se.NewBufferInit("vertices", ToBytes([]float32{0, 1, -1, -1, 1, -1}), gputypes.BufferUsageVertex)
	require.NoError(t, err)
	fd, err := se.NewFrameDriver(&FrameOptions{
		ClearColor:    color.RGBA{R: 255, G: 0, B: 0, A: 255},
		VertexCount:   3,
		VertexBuffers: []*Buffer{vb},
	})
	require.NoError(t, err)
	_, err = fd.RenderFrame()
	require.NoError(t, err)

	require.Len(t, b.RenderPasses, 1)
	rp := b.RenderPasses[0]
	require.Len(t, rp.ColorAttachments, 1)
	ca := rp.ColorAttachments[0]
	assert.Equal(t, gputypes.LoadOpClear, ca.LoadOp)
	assert.Equal(t, gputypes.StoreOpStore, ca.StoreOp)
	assert.Equal(t, gputypes.Color{R: 1, G: 0, B: 0, A: 1}, ca.ClearValue)
	assert.Equal(t, "view#1", id(ca.View))
	assert.GreaterOrEqual(t, b.Index("set-vertex-buffer "+id(vb.Buffer)), 0)
}

func TestFrameWorkDone(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3, TrackWorkDone: true})
	require.NoError(t, err)
	_, err = fd.RenderFrame()
	require.NoError(t, err)
	se.Device.WaitDone()

	ns := se.Notifications().Drain()
	require.Len(t, ns, 1)
	assert.Equal(t, WorkDoneNotification, ns[0].Kind)
	assert.Equal(t, hal.QueueWorkDoneStatusSuccess, ns[0].Status)
	assert.False(t, ns[0].IsFatal())
}

func TestFramePresentError(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	b.PresentError = errors.New("swapchain gone")
	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
	require.NoError(t, err)
	res, err := fd.RenderFrame()
	assert.Error(t, err)
	assert.Equal(t, FrameSubmitted, res.State)
	assert.Equal(t, FrameIdle, fd.State)
	assert.True(t, b.Released("view#1"))
	assert.True(t, b.Released("texture#1"))
	assert.True(t, b.Released("commands#1"))
	assert.True(t, b.Released("encoder#1"))
	assert.Zero(t, fd.Presented())
}

func TestFrameEncodeErrorReleases(t *testing.T) {
	tests := []struct {
		name     string
		set      func(b *gputest.Backend, err error)
		released []string
	}{
		{"view", func(b *gputest.Backend, err error) { b.ViewError = err },
			[]string{"release texture#1"}},
		{"encoder", func(b *gputest.Backend, err error) { b.EncoderError = err },
			[]string{"release view#1", "release texture#1"}},
		{"render pass", func(b *gputest.Backend, err error) { b.RenderPassError = err },
			[]string{"release view#1", "release texture#1", "release encoder#1"}},
		{"end", func(b *gputest.Backend, err error) { b.EndError = err },
			[]string{"release pass#1", "release view#1", "release texture#1", "release encoder#1"}},
		{"finish", func(b *gputest.Backend, err error) { b.FinishError = err },
			[]string{"release pass#1", "release view#1", "release texture#1", "release encoder#1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := gputest.NewBackend()
			se := testSession(t, b)
			fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
			require.NoError(t, err)
			fail := errors.New(tt.name + " failed")
			tt.set(b, fail)

			res, err := fd.RenderFrame()
			assert.ErrorIs(t, err, fail)
			assert.False(t, res.Skipped)
			assert.Equal(t, FrameIdle, res.State)
			assert.Equal(t, FrameIdle, fd.State)
			assert.Zero(t, b.Count("submit"))
			assert.Zero(t, b.Count("present"))
			assert.Zero(t, fd.Presented())
			assertOrder(t, b, tt.released...)
			assert.Equal(t, -1, b.Index("create commands#1"))
			for _, live := range b.Live() {
				kind, _, _ := strings.Cut(live, "#")
				assert.NotContains(t, []string{"texture", "view", "encoder", "pass"}, kind, "%s not released", live)
			}
			assert.Empty(t, b.DoubleReleases())
		})
	}
}

func TestFrameNotConfigured(t *testing.T) {
	b := gputest.NewBackend()
	se := testSession(t, b)
	se.Surface.Unconfigure()
	fd := NewFrameDriver(se.Device, se.Surface, se.Pipeline, nil)
	_, err := fd.RenderFrame()
	assert.ErrorIs(t, err, ErrSurfaceNotConfigured)
	assert.Zero(t, b.Count("submit"))
}

func TestFrameStatesString(t *testing.T) {
	assert.Equal(t, "idle", FrameIdle.String())
	assert.Equal(t, "presented", FramePresented.String())
	assert.Equal(t, "FrameStates(9)", FrameStates(9).String())
}
