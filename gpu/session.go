// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"
	"log/slog"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
)

// SessionConfig holds all the parameters for [OpenSession].
type SessionConfig struct {
	// Label is used to label the instance and device.
	Label string

	// Size is the surface size in pixels.
	Size image.Point

	// Format is the surface format; undefined selects the preferred one.
	Format gputypes.TextureFormat

	PresentMode hal.PresentMode
	AlphaMode   hal.AlphaMode

	// Adapter has the adapter preferences.
	Adapter AdapterOptions

	// RequiredFeatures and RequiredLimits are passed to [OpenDevice].
	RequiredFeatures []hal.FeatureName
	RequiredLimits   *hal.Limits

	// Pipeline configures the pipeline. Its Format is set from the
	// configured surface.
	Pipeline PipelineConfig

	// NotificationCapacity is the capacity of the device notifications;
	// [DefaultNotificationCapacity] if 0.
	NotificationCapacity int
}

// Session is an open GPU session: a device with its queue, a configured
// surface and a render pipeline, with all the resources acquired to
// build them registered for release in reverse order.
type Session struct {
	// Backend is the name of the backend the session runs on.
	Backend string

	// AdapterInfo, AdapterFeatures and AdapterLimits are a snapshot of
	// the adapter, which is released once startup has completed.
	AdapterInfo     hal.AdapterInfo
	AdapterFeatures []hal.FeatureName
	AdapterLimits   hal.Limits

	Device   *Device
	Surface  *Surface
	Pipeline *Pipeline

	rel Releaser
}

// OpenSession runs the startup sequence in its required order: it creates
// the instance and the surface, resolves an adapter for the surface and
// releases the instance, opens the device, configures the surface,
// releases the adapter and builds the pipeline.
//
// If provider is nil the session is headless: no surface is created or
// configured and no pipeline is built, which is sufficient for buffer
// operations and adapter introspection.
//
// On any failure everything acquired so far is released, in reverse
// order, and the error is returned. A nil cfg is the zero [SessionConfig].
func OpenSession(backend hal.Backend, provider hal.SurfaceProvider, cfg *SessionConfig) (*Session, error) {
	if backend == nil {
		return nil, errors.Log(ErrNoInstance)
	}
	if cfg == nil {
		cfg = &SessionConfig{}
	}
	se := &Session{Backend: backend.Name()}
	err := se.open(backend, provider, cfg)
	if err != nil {
		se.Release()
		return nil, err
	}
	return se, nil
}

func (se *Session) open(backend hal.Backend, provider hal.SurfaceProvider, cfg *SessionConfig) error {
	inst, err := backend.CreateInstance(&hal.InstanceDescriptor{Label: cfg.Label})
	if err != nil {
		return errors.Log(fmt.Errorf("gpu.OpenSession: %w: %w", ErrNoInstance, err))
	}
	se.rel.AddReleaser("instance", inst)

	var hs hal.Surface
	if provider != nil {
		hs, err = provider.CreateSurface(inst)
		if err != nil {
			return errors.Log(fmt.Errorf("gpu.OpenSession: surface: %w", err))
		}
		se.Surface = NewSurface(hs)
		se.rel.Add("surface", se.Surface.Release)
	}

	ad, err := ResolveAdapter(inst, hs, &cfg.Adapter)
	if err != nil {
		return err
	}
	se.rel.Add("adapter", ad.Release)
	se.AdapterInfo = ad.Info
	se.AdapterFeatures = ad.Features
	se.AdapterLimits = ad.Limits
	se.rel.ReleaseNow("instance")

	capacity := cfg.NotificationCapacity
	if capacity <= 0 {
		capacity = DefaultNotificationCapacity
	}
	dev, err := OpenDevice(ad, &DeviceRequest{
		Label:            cfg.Label,
		RequiredFeatures: cfg.RequiredFeatures,
		RequiredLimits:   cfg.RequiredLimits,
		Notifications:    NewNotifications(capacity),
	})
	if err != nil {
		return err
	}
	se.Device = dev
	se.rel.Add("device", dev.Release)

	if se.Surface != nil {
		err = se.Surface.Configure(ad, dev, &SurfaceConfig{
			Size:        cfg.Size,
			Format:      cfg.Format,
			PresentMode: cfg.PresentMode,
			AlphaMode:   cfg.AlphaMode,
		})
		if err != nil {
			return err
		}
		se.rel.Add("surface configuration", se.Surface.Unconfigure)
	}
	se.rel.ReleaseNow("adapter")

	if se.Surface == nil {
		return nil
	}
	pc := cfg.Pipeline
	pc.Format = se.Surface.Format
	pl, err := BuildPipeline(dev, &pc)
	if err != nil {
		return err
	}
	se.Pipeline = pl
	se.rel.Add("pipeline", pl.Release)
	slog.Info("gpu session", "backend", se.Backend, "adapter", se.AdapterInfo.String(),
		"format", se.Surface.Format, "size", se.Surface.Size, "present", se.Surface.PresentMode)
	return nil
}

// Notifications returns the out-of-band device notifications.
func (se *Session) Notifications() *Notifications {
	if se.Device == nil {
		return nil
	}
	return se.Device.Notifications
}

// NewFrameDriver returns a new [FrameDriver] rendering to the session
// surface with the session pipeline.
func (se *Session) NewFrameDriver(opts *FrameOptions) (*FrameDriver, error) {
	if se.Surface == nil || se.Pipeline == nil {
		return nil, errors.Log(fmt.Errorf("gpu.Session: %w: session is headless", ErrSurfaceNotConfigured))
	}
	return NewFrameDriver(se.Device, se.Surface, se.Pipeline, opts), nil
}

// NewBuffer creates a new buffer owned by the session, released
// with it.
func (se *Session) NewBuffer(name string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	bf, err := NewBuffer(se.Device, name, size, usage)
	if err != nil {
		return nil, err
	}
	se.rel.Add("buffer "+name, bf.Release)
	return bf, nil
}

// NewBufferInit creates a new buffer owned by the session holding
// the given contents, released with the session.
func (se *Session) NewBufferInit(name string, contents []byte, usage gputypes.BufferUsage) (*Buffer, error) {
	bf, err := NewBufferInit(se.Device, name, contents, usage)
	if err != nil {
		return nil, err
	}
	se.rel.Add("buffer "+name, bf.Release)
	return bf, nil
}

// Release waits for the device to be idle and then releases
// everything in reverse order of acquisition: buffers, the pipeline,
// the surface configuration, the queue and device, and the surface.
// It is safe to call more than once.
func (se *Session) Release() {
	if se.rel.Len() == 0 {
		return
	}
	se.Device.WaitDone()
	se.rel.Release()
}
