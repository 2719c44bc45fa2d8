// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package harness

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"cogentcore.org/core/colors"
	"cogentcore.org/hellogpu/gpu"
	"cogentcore.org/hellogpu/hal"
	"cogentcore.org/hellogpu/variant"
	"github.com/gogpu/gputypes"
)

// Config is the configuration of a harness run. It is filled in once,
// from defaults, a config file and flags, and not changed afterwards.
type Config struct {

	// Title is the window title.
	Title string `default:"WebGPU Hello Triangle"`

	// Width is the window width in screen coordinates.
	Width int `default:"640"`

	// Height is the window height in screen coordinates.
	Height int `default:"480"`

	// Variant is the name of the built-in variant to draw.
	Variant string `default:"triangle"`

	// VariantFile is an optional TOML or YAML variant file,
	// used instead of Variant if set.
	VariantFile string

	// ClearColor is the hex color the surface is cleared to every frame.
	ClearColor string `default:"#0d0d1a"`

	// PresentMode is one of fifo, fifo-relaxed, immediate or mailbox.
	PresentMode string `default:"fifo"`

	// PowerPreference is one of low-power, high-performance or undefined.
	PowerPreference string `default:"high-performance"`

	// ForceFallback requests a software adapter.
	ForceFallback bool

	// TrackWorkDone records a queue work done notification for every frame.
	TrackWorkDone bool

	// MaxFrames stops the run after this many frames; 0 is unlimited.
	MaxFrames int

	// FrameRate is the maximum number of frames per second;
	// 0 renders as fast as presentation allows.
	FrameRate int `default:"60"`

	// FPSInterval is the number of seconds between frame rate reports;
	// 0 turns them off.
	FPSInterval int `default:"10"`

	// Debug turns on verbose GPU logging.
	Debug bool
}

// Size returns the configured window size in screen coordinates.
// Width and height are independent.
func (c *Config) Size() image.Point {
	return image.Point{c.Width, c.Height}
}

// Validate checks the values that cannot be checked later.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("harness: invalid size %dx%d", c.Width, c.Height)
	}
	if c.MaxFrames < 0 || c.FrameRate < 0 || c.FPSInterval < 0 {
		return fmt.Errorf("harness: MaxFrames, FrameRate and FPSInterval must not be negative")
	}
	if _, err := c.Clear(); err != nil {
		return err
	}
	if _, err := ParsePresentMode(c.PresentMode); err != nil {
		return err
	}
	_, err := ParsePowerPreference(c.PowerPreference)
	return err
}

// Clear returns the parsed clear color.
func (c *Config) Clear() (color.RGBA, error) {
	cl, err := colors.FromHex(c.ClearColor)
	if err != nil {
		return cl, fmt.Errorf("harness: clear color: %w", err)
	}
	return cl, nil
}

var presentModes = map[string]hal.PresentMode{
	"fifo":         hal.PresentModeFifo,
	"fifo-relaxed": hal.PresentModeFifoRelaxed,
	"immediate":    hal.PresentModeImmediate,
	"mailbox":      hal.PresentModeMailbox,
}

// ParsePresentMode returns the present mode with the given name;
// empty is fifo.
func ParsePresentMode(s string) (hal.PresentMode, error) {
	if s == "" {
		return hal.PresentModeFifo, nil
	}
	if pm, ok := presentModes[strings.ToLower(s)]; ok {
		return pm, nil
	}
	return hal.PresentModeFifo, fmt.Errorf("harness: unknown present mode %q", s)
}

// ParsePowerPreference returns the power preference with the given
// name; empty is undefined.
func ParsePowerPreference(s string) (hal.PowerPreference, error) {
	switch strings.ToLower(s) {
	case "", "undefined":
		return hal.PowerPreferenceUndefined, nil
	case "low-power":
		return hal.PowerPreferenceLowPower, nil
	case "high-performance":
		return hal.PowerPreferenceHighPerformance, nil
	}
	return hal.PowerPreferenceUndefined, fmt.Errorf("harness: unknown power preference %q", s)
}

// SessionConfig returns the session configuration for drawing the
// given variant. Config must be valid.
func (c *Config) SessionConfig(v *variant.Variant) *gpu.SessionConfig {
	pm, _ := ParsePresentMode(c.PresentMode)
	pp, _ := ParsePowerPreference(c.PowerPreference)
	return &gpu.SessionConfig{
		Label:       "hellogpu " + v.Name,
		Size:        c.Size(),
		PresentMode: pm,
		Adapter: gpu.AdapterOptions{
			PowerPreference: pp,
			ForceFallback:   c.ForceFallback,
		},
		RequiredLimits: RequiredLimits(v),
		Pipeline:       v.PipelineConfig(gputypes.TextureFormatUndefined),
	}
}

// RequiredLimits returns the limits needed to draw the variant:
// nil if it has no vertex data, and otherwise the vertex buffer,
// attribute and size limits of its data, leaving all others undefined.
func RequiredLimits(v *variant.Variant) *hal.Limits {
	ly := v.Layout()
	if ly == nil {
		return nil
	}
	l := gpu.RequiredLimits()
	l.MaxVertexBuffers = 1
	l.MaxVertexAttributes = uint32(len(ly.Attributes))
	l.MaxVertexBufferArrayStride = uint32(ly.ArrayStride)
	l.MaxBufferSize = uint64(gpu.MemSizeAlign(len(v.VertexData()), gpu.CopyAlign))
	return &l
}
