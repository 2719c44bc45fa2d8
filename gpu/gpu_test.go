// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"errors"
	"image"
	"testing"

	"cogentcore.org/hellogpu/gpu/gputest"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShader = `
@vertex
fn vs_main(@builtin(vertex_index) in_vertex_index: u32) -> @builtin(position) vec4<f32> {
	let x = f32(i32(in_vertex_index) - 1);
	let y = f32(i32(in_vertex_index & 1u) * 2 - 1);
	return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

// testDevice resolves an adapter and opens a device on the fake backend.
func testDevice(t *testing.T, b *gputest.Backend) (*Adapter, *Device) {
	t.Helper()
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	ad, err := ResolveAdapter(inst, nil, nil)
	require.NoError(t, err)
	inst.Release()
	dev, err := OpenDevice(ad, nil)
	require.NoError(t, err)
	return ad, dev
}

func testSessionConfig() *SessionConfig {
	return &SessionConfig{
		Label: "test",
		Size:  image.Point{640, 480},
		Pipeline: PipelineConfig{
			Label:  "triangle",
			Shader: testShader,
		},
	}
}

// id returns the event log id of a fake object.
func id(obj any) string {
	return obj.(interface{ ID() string }).ID()
}

// assertOrder asserts that the events all occur, in the given order.
func assertOrder(t *testing.T, b *gputest.Backend, events ...string) {
	t.Helper()
	last := -1
	for _, ev := range events {
		i := b.Index(ev)
		if !assert.GreaterOrEqual(t, i, 0, "missing event %q", ev) {
			return
		}
		assert.Greater(t, i, last, "event %q out of order", ev)
		last = i
	}
}

func TestSessionEndToEnd(t *testing.T) {
	b := gputest.NewBackend()
	se, err := OpenSession(b, b, testSessionConfig())
	require.NoError(t, err)
	require.NotNil(t, se.Device)
	require.NotNil(t, se.Pipeline)
	assert.True(t, se.Surface.IsConfigured())
	assert.Equal(t, "Fake Adapter", se.AdapterInfo.Name)

	fd, err := se.NewFrameDriver(&FrameOptions{VertexCount: 3})
	require.NoError(t, err)
	res, err := fd.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, FramePresented, res.State)
	assert.False(t, res.Skipped)
	assert.Equal(t, FrameIdle, fd.State)

	assertOrder(t, b,
		"create instance#1",
		"create surface#1",
		"request-adapter instance#1",
		"create adapter#1",
		"release instance#1",
		"request-device adapter#1",
		"create device#1",
		"configure surface#1",
		"release adapter#1",
		"create shader#1",
		"create pipeline#1",
		"create texture#1",
		"draw pass#1",
		"submit commands#1",
		"present surface#1",
	)

	se.Release()
	assertOrder(t, b,
		"present surface#1",
		"release pipeline#1",
		"release shader#1",
		"unconfigure surface#1",
		"release queue#1",
		"release device#1",
		"release surface#1",
	)
	assert.Empty(t, b.DoubleReleases())
	assert.Empty(t, b.Live())

	se.Release()
	assert.Empty(t, b.DoubleReleases())
}

func TestSessionSurfaceSize(t *testing.T) {
	b := gputest.NewBackend()
	cfg := testSessionConfig()
	cfg.Size = image.Point{800, 600}
	se, err := OpenSession(b, b, cfg)
	require.NoError(t, err)
	defer se.Release()

	require.NotNil(t, b.SurfaceConfig)
	assert.Equal(t, uint32(800), b.SurfaceConfig.Width)
	assert.Equal(t, uint32(600), b.SurfaceConfig.Height)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, b.SurfaceConfig.Format)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, se.Pipeline.Format)
	assert.Equal(t, gputypes.TextureUsageRenderAttachment, b.SurfaceConfig.Usage)
}

func TestSessionFailureReleases(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *gputest.Backend)
		err   error
	}{
		{"adapter", func(b *gputest.Backend) { b.AdapterStatus = hal.RequestStatusUnavailable }, ErrAdapterRequest},
		{"device", func(b *gputest.Backend) { b.DeviceStatus = hal.RequestStatusError }, ErrDeviceRequest},
		{"shader", func(b *gputest.Backend) { b.ShaderError = errors.New("syntax error") }, ErrPipeline},
		{"pipeline", func(b *gputest.Backend) { b.PipelineError = errors.New("bad layout") }, ErrPipeline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := gputest.NewBackend()
			tt.setup(b)
			se, err := OpenSession(b, b, testSessionConfig())
			assert.Nil(t, se)
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, b.Live())
			assert.Empty(t, b.DoubleReleases())
		})
	}
}

func TestSessionHeadless(t *testing.T) {
	b := gputest.NewBackend()
	se, err := OpenSession(b, nil, testSessionConfig())
	require.NoError(t, err)
	assert.Nil(t, se.Surface)
	assert.Nil(t, se.Pipeline)

	_, err = se.NewFrameDriver(nil)
	assert.ErrorIs(t, err, ErrSurfaceNotConfigured)

	bf, err := se.NewBufferInit("data", []byte{1, 2, 3, 4}, gputypes.BufferUsageCopySrc)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), bf.Size)

	se.Release()
	assert.Empty(t, b.Live())
	assert.Empty(t, b.DoubleReleases())
}

func TestSessionNilConfig(t *testing.T) {
	b := gputest.NewBackend()
	se, err := OpenSession(b, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, se.Device)
	se.Release()
	assert.Empty(t, b.Live())

	b = gputest.NewBackend()
	se, err = OpenSession(b, b, nil)
	assert.Nil(t, se)
	assert.ErrorContains(t, err, "invalid size")
	assert.Empty(t, b.Live())
	assert.Empty(t, b.DoubleReleases())
}

func TestSessionDeviceLostNotification(t *testing.T) {
	b := gputest.NewBackend()
	se, err := OpenSession(b, b, testSessionConfig())
	require.NoError(t, err)
	defer se.Release()

	b.Device().Lose(hal.DeviceLostReasonUnknown, "driver reset")
	ns := se.Notifications().Drain()
	require.Len(t, ns, 1)
	assert.Equal(t, DeviceLostNotification, ns[0].Kind)
	assert.True(t, ns[0].IsFatal())
	assert.Equal(t, "device lost: unknown: driver reset", ns[0].String())
}
