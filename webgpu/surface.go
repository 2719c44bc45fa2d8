// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webgpu

import (
	"fmt"
	"strings"

	"cogentcore.org/hellogpu/hal"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowSurface is a [hal.SurfaceProvider] for a glfw window.
type WindowSurface struct {
	Window *glfw.Window
}

// NewWindowSurface returns a new WindowSurface for the given window.
func NewWindowSurface(w *glfw.Window) *WindowSurface {
	return &WindowSurface{Window: w}
}

// CreateSurface creates the presentable surface of the window.
// inst must be an [Instance] of this package.
func (ws *WindowSurface) CreateSurface(inst hal.Instance) (hal.Surface, error) {
	in, ok := inst.(*Instance)
	if !ok || in.inst == nil {
		return nil, fmt.Errorf("webgpu: CreateSurface: not a webgpu instance")
	}
	if ws.Window == nil {
		return nil, fmt.Errorf("webgpu: CreateSurface: no window")
	}
	s := in.inst.CreateSurface(wgpuglfw.GetSurfaceDescriptor(ws.Window))
	if s == nil {
		return nil, fmt.Errorf("webgpu: could not create surface")
	}
	return &Surface{s: s}, nil
}

// Surface is a [hal.Surface].
type Surface struct {
	s *wgpu.Surface
}

// Release releases the surface.
func (sf *Surface) Release() {
	if sf.s == nil {
		return
	}
	sf.s.Release()
	sf.s = nil
}

// Capabilities returns the formats and modes the adapter supports for the surface.
func (sf *Surface) Capabilities(adapter hal.Adapter) hal.SurfaceCapabilities {
	caps := sf.s.GetCapabilities(adapter.(*Adapter).a)
	var hc hal.SurfaceCapabilities
	for _, f := range caps.Formats {
		if hf, ok := textureFormatFromWGPU(f); ok {
			hc.Formats = append(hc.Formats, hf)
		}
	}
	for _, m := range caps.PresentModes {
		if hm, ok := presentModeFromWGPU(m); ok {
			hc.PresentModes = append(hc.PresentModes, hm)
		}
	}
	for _, m := range caps.AlphaModes {
		if hm, ok := alphaModeFromWGPU(m); ok {
			hc.AlphaModes = append(hc.AlphaModes, hm)
		}
	}
	return hc
}

// Configure configures the surface for presentation.
func (sf *Surface) Configure(adapter hal.Adapter, device hal.Device, config *hal.SurfaceConfiguration) error {
	format, ok := textureFormatToWGPU(config.Format)
	if !ok {
		return fmt.Errorf("webgpu: unsupported surface format %v", config.Format)
	}
	sf.s.Configure(adapter.(*Adapter).a, device.(*Device).d, &wgpu.SurfaceConfiguration{
		Usage:       textureUsage(config.Usage),
		Format:      format,
		Width:       config.Width,
		Height:      config.Height,
		PresentMode: presentMode(config.PresentMode),
		AlphaMode:   alphaMode(config.AlphaMode),
	})
	return nil
}

// Unconfigure removes the surface configuration.
func (sf *Surface) Unconfigure() {
	sf.s.Unconfigure()
}

// CurrentTexture acquires the next texture. The binding reports a
// non-success acquisition as an error, which is mapped back to a status.
func (sf *Surface) CurrentTexture() hal.SurfaceTexture {
	tx, err := sf.s.GetCurrentTexture()
	if err != nil {
		return hal.SurfaceTexture{Status: surfaceStatus(err)}
	}
	if tx == nil {
		return hal.SurfaceTexture{Status: hal.SurfaceStatusError}
	}
	return hal.SurfaceTexture{Texture: &Texture{t: tx}, Status: hal.SurfaceStatusSuccess}
}

// surfaceStatus maps a current texture error to its status.
func surfaceStatus(err error) hal.SurfaceStatus {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return hal.SurfaceStatusTimeout
	case strings.Contains(msg, "outdated"):
		return hal.SurfaceStatusOutdated
	case strings.Contains(msg, "out of memory"), strings.Contains(msg, "outofmemory"):
		return hal.SurfaceStatusOutOfMemory
	case strings.Contains(msg, "device lost"), strings.Contains(msg, "devicelost"):
		return hal.SurfaceStatusDeviceLost
	case strings.Contains(msg, "lost"):
		return hal.SurfaceStatusLost
	}
	return hal.SurfaceStatusError
}

// Present presents the current texture.
func (sf *Surface) Present() error {
	sf.s.Present()
	return nil
}

// Texture is a [hal.Texture].
type Texture struct {
	t *wgpu.Texture
}

// Release releases the texture.
func (tx *Texture) Release() {
	if tx.t == nil {
		return
	}
	tx.t.Release()
	tx.t = nil
}

// CreateView creates a view of the texture.
func (tx *Texture) CreateView(desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	var wd *wgpu.TextureViewDescriptor
	if desc != nil {
		format, _ := textureFormatToWGPU(desc.Format)
		wd = &wgpu.TextureViewDescriptor{
			Label:           desc.Label,
			Format:          format,
			Dimension:       textureViewDimension(desc.Dimension),
			Aspect:          textureAspect(desc.Aspect),
			BaseMipLevel:    desc.BaseMipLevel,
			MipLevelCount:   countOrUndefined(desc.MipLevelCount, wgpu.MipLevelCountUndefined),
			BaseArrayLayer:  desc.BaseArrayLayer,
			ArrayLayerCount: countOrUndefined(desc.ArrayLayerCount, wgpu.ArrayLayerCountUndefined),
		}
	}
	v, err := tx.t.CreateView(wd)
	if err != nil {
		return nil, err
	}
	return &TextureView{v: v}, nil
}

// countOrUndefined returns undefined for a zero count, meaning the
// full remaining range.
func countOrUndefined(n, undefined uint32) uint32 {
	if n == 0 {
		return undefined
	}
	return n
}

// TextureView is a [hal.TextureView].
type TextureView struct {
	v *wgpu.TextureView
}

// Release releases the view.
func (tv *TextureView) Release() {
	if tv.v == nil {
		return
	}
	tv.v.Release()
	tv.v = nil
}
