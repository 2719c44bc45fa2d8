// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
)

// SurfaceConfig holds the presentation parameters of a [Surface].
// Width and height are configured independently.
type SurfaceConfig struct {
	// Size of the surface in pixels, normally the window size.
	Size image.Point

	// Format is the pixel format; TextureFormatUndefined selects
	// the adapter's preferred format for this surface.
	Format gputypes.TextureFormat

	// PresentMode defaults to Fifo, which is always supported.
	PresentMode hal.PresentMode

	// AlphaMode defaults to Auto; if it is not supported the first
	// supported mode is used.
	AlphaMode hal.AlphaMode
}

// Surface is the presentable drawing target of a window.
// It must be configured before the first frame.
type Surface struct {
	// Surface is the backend surface handle.
	Surface hal.Surface

	// Format is the configured pixel format, which is also
	// the color target format of the pipeline.
	Format gputypes.TextureFormat

	// Size is the configured size.
	Size image.Point

	// PresentMode is the configured present mode.
	PresentMode hal.PresentMode

	// AlphaMode is the configured alpha mode.
	AlphaMode hal.AlphaMode

	configured bool
}

// NewSurface returns a new Surface for the given backend surface.
func NewSurface(sf hal.Surface) *Surface {
	return &Surface{Surface: sf}
}

// IsConfigured returns whether [Surface.Configure] has succeeded.
func (sf *Surface) IsConfigured() bool {
	return sf.configured
}

// PreferredFormat returns the adapter's preferred pixel format for this surface.
func (sf *Surface) PreferredFormat(ad *Adapter) (gputypes.TextureFormat, error) {
	if ad == nil || ad.Adapter == nil {
		return gputypes.TextureFormatUndefined, errors.Log(ErrNoAdapter)
	}
	caps := sf.Surface.Capabilities(ad.Adapter)
	if len(caps.Formats) == 0 {
		return gputypes.TextureFormatUndefined, errors.Log(fmt.Errorf("gpu.Surface: adapter %q reports no formats for the surface", ad.Info.Name))
	}
	return caps.Formats[0], nil
}

// Configure configures the surface for presentation with the given
// device, using the adapter to query surface capabilities.
// It must be called before the first frame, and again if any of
// the parameters change.
func (sf *Surface) Configure(ad *Adapter, dev *Device, cfg *SurfaceConfig) error {
	if ad == nil || ad.Adapter == nil {
		return errors.Log(ErrNoAdapter)
	}
	if dev == nil || dev.Device == nil {
		return errors.Log(ErrNoDevice)
	}
	if cfg == nil {
		cfg = &SurfaceConfig{}
	}
	if cfg.Size.X <= 0 || cfg.Size.Y <= 0 {
		return errors.Log(fmt.Errorf("gpu.Surface: invalid size %v", cfg.Size))
	}
	caps := sf.Surface.Capabilities(ad.Adapter)
	format := cfg.Format
	if format == gputypes.TextureFormatUndefined {
		if len(caps.Formats) == 0 {
			return errors.Log(fmt.Errorf("gpu.Surface: adapter %q reports no formats for the surface", ad.Info.Name))
		}
		format = caps.Formats[0]
	}
	pm := cfg.PresentMode
	if len(caps.PresentModes) > 0 && !slices.Contains(caps.PresentModes, pm) {
		slog.Warn("gpu.Surface: present mode not supported, using fifo", "mode", pm)
		pm = hal.PresentModeFifo
	}
	am := cfg.AlphaMode
	if len(caps.AlphaModes) > 0 && am != hal.AlphaModeAuto && !slices.Contains(caps.AlphaModes, am) {
		am = caps.AlphaModes[0]
	}
	hc := &hal.SurfaceConfiguration{
		Usage:       gputypes.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(cfg.Size.X),
		Height:      uint32(cfg.Size.Y),
		PresentMode: pm,
		AlphaMode:   am,
	}
	if err := sf.Surface.Configure(ad.Adapter, dev.Device, hc); errors.Log(err) != nil {
		return err
	}
	sf.Format = format
	sf.Size = cfg.Size
	sf.PresentMode = pm
	sf.AlphaMode = am
	sf.configured = true
	if Debug {
		slog.Info("gpu surface configured", "size", sf.Size, "format", format, "present", pm, "alpha", am)
	}
	return nil
}

// Unconfigure returns the surface to the unconfigured state.
func (sf *Surface) Unconfigure() {
	if !sf.configured {
		return
	}
	sf.Surface.Unconfigure()
	sf.configured = false
}

// Release unconfigures and releases the surface.
// It is safe to call more than once.
func (sf *Surface) Release() {
	if sf == nil || sf.Surface == nil {
		return
	}
	sf.Unconfigure()
	sf.Surface.Release()
	sf.Surface = nil
}
