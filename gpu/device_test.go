// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"testing"

	"cogentcore.org/hellogpu/gpu/gputest"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAdapter(t *testing.T) {
	b := gputest.NewBackend()
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	defer inst.Release()

	ad, err := ResolveAdapter(inst, nil, &AdapterOptions{PowerPreference: hal.PowerPreferenceHighPerformance})
	require.NoError(t, err)
	require.NotNil(t, ad)
	assert.Equal(t, "Fake Adapter", ad.Info.Name)
	assert.True(t, ad.HasFeature("timestamp-query"))
	assert.False(t, ad.HasFeature("shader-f16"))
	assert.Equal(t, hal.DefaultLimits(), ad.Limits)

	ad.Release()
	ad.Release()
	assert.Empty(t, b.DoubleReleases())
}

func TestResolveAdapterErrors(t *testing.T) {
	_, err := ResolveAdapter(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoInstance)

	b := gputest.NewBackend()
	b.AdapterStatus = hal.RequestStatusUnavailable
	b.AdapterMessage = "no compatible adapter"
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	ad, err := ResolveAdapter(inst, nil, nil)
	assert.Nil(t, ad)
	assert.ErrorIs(t, err, ErrAdapterRequest)
	assert.ErrorContains(t, err, "no compatible adapter")
}

func TestOpenDeviceNilAdapter(t *testing.T) {
	dev, err := OpenDevice(nil, nil)
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, ErrNoAdapter)

	dev, err = OpenDevice(&Adapter{}, nil)
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestOpenDeviceLimits(t *testing.T) {
	b := gputest.NewBackend()
	_, dev := testDevice(t, b)
	require.NotNil(t, dev)
	require.NotNil(t, b.DeviceDescriptor.RequiredLimits)
	assert.Equal(t, hal.UndefinedLimits(), *b.DeviceDescriptor.RequiredLimits)
	assert.Equal(t, b.AdapterLimits, dev.Limits)
	dev.Release()

	b = gputest.NewBackend()
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	ad, err := ResolveAdapter(inst, nil, nil)
	require.NoError(t, err)

	lim := RequiredLimits()
	lim.MaxVertexBuffers = ad.Limits.MaxVertexBuffers + 1
	dev, err = OpenDevice(ad, &DeviceRequest{RequiredLimits: &lim})
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.ErrorContains(t, err, "MaxVertexBuffers")
	assert.Equal(t, -1, b.Index("request-device "+id(ad.Adapter)))

	lim = RequiredLimits()
	lim.MinUniformBufferOffsetAlignment = ad.Limits.MinUniformBufferOffsetAlignment / 2
	_, err = OpenDevice(ad, &DeviceRequest{RequiredLimits: &lim})
	assert.ErrorIs(t, err, ErrLimitExceeded)

	lim = RequiredLimits()
	lim.MaxVertexBuffers = 1
	lim.MaxBufferSize = 1024
	dev, err = OpenDevice(ad, &DeviceRequest{RequiredLimits: &lim})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), b.DeviceDescriptor.RequiredLimits.MaxVertexBuffers)
	dev.Release()
}

func TestOpenDeviceFeatures(t *testing.T) {
	b := gputest.NewBackend()
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	ad, err := ResolveAdapter(inst, nil, nil)
	require.NoError(t, err)

	_, err = OpenDevice(ad, &DeviceRequest{RequiredFeatures: []hal.FeatureName{"shader-f16"}})
	assert.ErrorIs(t, err, ErrFeatureUnsupported)

	dev, err := OpenDevice(ad, &DeviceRequest{RequiredFeatures: []hal.FeatureName{"timestamp-query"}})
	require.NoError(t, err)
	assert.Equal(t, []hal.FeatureName{"timestamp-query"}, dev.Features)
	dev.Release()
}

func TestOpenDeviceDenied(t *testing.T) {
	b := gputest.NewBackend()
	b.DeviceStatus = hal.RequestStatusError
	b.DeviceMessage = "out of memory"
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	ad, err := ResolveAdapter(inst, nil, nil)
	require.NoError(t, err)
	dev, err := OpenDevice(ad, nil)
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, ErrDeviceRequest)
	assert.ErrorContains(t, err, "out of memory")
}

func TestDeviceReleaseNotifies(t *testing.T) {
	b := gputest.NewBackend()
	_, dev := testDevice(t, b)
	nt := dev.Notifications
	dev.Release()
	dev.Release()
	assert.Empty(t, b.DoubleReleases())
	assertOrder(t, b, "release queue#1", "release device#1")

	ns := nt.Drain()
	require.Len(t, ns, 1)
	assert.Equal(t, hal.DeviceLostReasonDestroyed, ns[0].Reason)
	assert.False(t, ns[0].IsFatal())
}

func TestLimitViolations(t *testing.T) {
	sup := hal.DefaultLimits()
	assert.Empty(t, LimitViolations(RequiredLimits(), sup))
	assert.NoError(t, CheckLimits(RequiredLimits(), sup))

	req := RequiredLimits()
	req.MaxBufferSize = sup.MaxBufferSize * 2
	req.MaxTextureDimension2D = sup.MaxTextureDimension2D
	req.MinStorageBufferOffsetAlignment = 512
	vs := LimitViolations(req, sup)
	require.Len(t, vs, 1)
	assert.Equal(t, "MaxBufferSize", vs[0].Name)
	assert.Equal(t, "MaxBufferSize: required 536870912 > supported 268435456", vs[0].String())

	req.MinStorageBufferOffsetAlignment = 64
	vs = LimitViolations(req, sup)
	require.Len(t, vs, 2)
	assert.Equal(t, "MinStorageBufferOffsetAlignment: required 64 < supported 256", vs[0].String())
	assert.Equal(t, "MaxBufferSize", vs[1].Name)

	err := CheckLimits(req, sup)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.ErrorContains(t, err, "MinStorageBufferOffsetAlignment")
}

func TestSurfaceConfigure(t *testing.T) {
	b := gputest.NewBackend()
	b.PresentModes = []hal.PresentMode{hal.PresentModeFifo}
	ad, dev := testDevice(t, b)
	defer dev.Release()
	inst, err := b.CreateInstance(nil)
	require.NoError(t, err)
	hs, err := b.CreateSurface(inst)
	require.NoError(t, err)
	sf := NewSurface(hs)
	defer sf.Release()

	pf, err := sf.PreferredFormat(ad)
	require.NoError(t, err)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, pf)

	err = sf.Configure(ad, dev, &SurfaceConfig{Size: image.Point{0, 480}})
	assert.Error(t, err)
	assert.False(t, sf.IsConfigured())

	err = sf.Configure(nil, dev, &SurfaceConfig{Size: image.Point{640, 480}})
	assert.ErrorIs(t, err, ErrNoAdapter)

	err = sf.Configure(ad, dev, nil)
	assert.ErrorContains(t, err, "invalid size")
	assert.False(t, sf.IsConfigured())

	err = sf.Configure(ad, dev, &SurfaceConfig{
		Size:        image.Point{1024, 256},
		Format:      gputypes.TextureFormatRGBA8Unorm,
		PresentMode: hal.PresentModeMailbox,
		AlphaMode:   hal.AlphaModeInherit,
	})
	require.NoError(t, err)
	assert.True(t, sf.IsConfigured())
	assert.Equal(t, hal.PresentModeFifo, sf.PresentMode)
	assert.Equal(t, hal.AlphaModeOpaque, sf.AlphaMode)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, b.SurfaceConfig.Format)
	assert.Equal(t, uint32(1024), b.SurfaceConfig.Width)
	assert.Equal(t, uint32(256), b.SurfaceConfig.Height)
}
