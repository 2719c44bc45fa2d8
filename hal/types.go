// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hal

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// MapMode selects read or write host mapping of a Buffer.
type MapMode = gputypes.MapMode

// FeatureName is an opaque optional device capability.
type FeatureName string

// InstanceDescriptor configures instance creation.
type InstanceDescriptor struct {
	Label string
}

// PowerPreference is a hint for which adapter to choose.
type PowerPreference int32

const (
	PowerPreferenceUndefined PowerPreference = iota
	PowerPreferenceLowPower
	PowerPreferenceHighPerformance
)

func (p PowerPreference) String() string {
	switch p {
	case PowerPreferenceLowPower:
		return "low-power"
	case PowerPreferenceHighPerformance:
		return "high-performance"
	}
	return "undefined"
}

// RequestAdapterOptions constrains the adapter search.
type RequestAdapterOptions struct {
	// CompatibleSurface, if set, requires the adapter to be able to
	// present to this surface.
	CompatibleSurface Surface

	PowerPreference PowerPreference

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool
}

// RequestStatus is the completion status of an adapter or device request.
type RequestStatus int32

const (
	RequestStatusSuccess RequestStatus = iota
	RequestStatusUnavailable
	RequestStatusError
	RequestStatusUnknown
)

func (s RequestStatus) String() string {
	switch s {
	case RequestStatusSuccess:
		return "success"
	case RequestStatusUnavailable:
		return "unavailable"
	case RequestStatusError:
		return "error"
	}
	return "unknown"
}

// RequestAdapterCallback receives the result of Instance.RequestAdapter.
// adapter is nil unless status is RequestStatusSuccess.
type RequestAdapterCallback func(status RequestStatus, adapter Adapter, message string)

// RequestDeviceCallback receives the result of Adapter.RequestDevice.
// device is nil unless status is RequestStatusSuccess.
type RequestDeviceCallback func(status RequestStatus, device Device, message string)

// AdapterInfo describes an adapter.
type AdapterInfo struct {
	Name        string
	Vendor      string
	Driver      string
	Backend     string
	AdapterType string
}

func (ai AdapterInfo) String() string {
	if ai.Backend == "" {
		return ai.Name
	}
	return fmt.Sprintf("%s (%s, %s)", ai.Name, ai.AdapterType, ai.Backend)
}

// DeviceLostReason is the reason code of a device-lost notification.
type DeviceLostReason int32

const (
	DeviceLostReasonUnknown DeviceLostReason = iota
	DeviceLostReasonDestroyed
)

func (r DeviceLostReason) String() string {
	if r == DeviceLostReasonDestroyed {
		return "destroyed"
	}
	return "unknown"
}

// DeviceLostCallback is invoked out of band when a device is lost.
// It must not panic.
type DeviceLostCallback func(reason DeviceLostReason, message string)

// DeviceDescriptor configures device creation.
type DeviceDescriptor struct {
	Label            string
	RequiredFeatures []FeatureName

	// RequiredLimits, if non-nil, are the limits the device must support.
	// Fields set to LimitU32Undefined / LimitU64Undefined accept the
	// adapter's value.
	RequiredLimits *Limits

	// DeviceLost is registered for the lifetime of the device.
	DeviceLost DeviceLostCallback
}

// QueueWorkDoneStatus is the status delivered to a QueueWorkDoneCallback.
type QueueWorkDoneStatus int32

const (
	QueueWorkDoneStatusSuccess QueueWorkDoneStatus = iota
	QueueWorkDoneStatusError
	QueueWorkDoneStatusUnknown
	QueueWorkDoneStatusDeviceLost
)

func (s QueueWorkDoneStatus) String() string {
	switch s {
	case QueueWorkDoneStatusSuccess:
		return "success"
	case QueueWorkDoneStatusError:
		return "error"
	case QueueWorkDoneStatusDeviceLost:
		return "device-lost"
	}
	return "unknown"
}

// QueueWorkDoneCallback is invoked once submitted work has completed.
type QueueWorkDoneCallback func(status QueueWorkDoneStatus)

// BufferMapStatus is the status delivered to a BufferMapCallback.
type BufferMapStatus int32

const (
	BufferMapStatusSuccess BufferMapStatus = iota
	BufferMapStatusError
	BufferMapStatusUnknown
	BufferMapStatusDeviceLost
	BufferMapStatusDestroyedBeforeCallback
	BufferMapStatusUnmappedBeforeCallback
)

func (s BufferMapStatus) String() string {
	switch s {
	case BufferMapStatusSuccess:
		return "success"
	case BufferMapStatusError:
		return "error"
	case BufferMapStatusDeviceLost:
		return "device-lost"
	case BufferMapStatusDestroyedBeforeCallback:
		return "destroyed-before-callback"
	case BufferMapStatusUnmappedBeforeCallback:
		return "unmapped-before-callback"
	}
	return "unknown"
}

// BufferMapCallback receives the result of Buffer.MapAsync.
type BufferMapCallback func(status BufferMapStatus)

// BufferDescriptor configures buffer creation.
type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            gputypes.BufferUsage
	MappedAtCreation bool
}

// ShaderModuleDescriptor configures shader module creation from WGSL source.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

// VertexState is the vertex stage of a render pipeline.
type VertexState struct {
	Module     ShaderModule
	EntryPoint string
	Buffers    []gputypes.VertexBufferLayout
}

// FragmentState is the fragment stage of a render pipeline.
type FragmentState struct {
	Module     ShaderModule
	EntryPoint string
	Targets    []gputypes.ColorTargetState
}

// RenderPipelineDescriptor configures render pipeline creation.
// A nil DepthStencil is implied: no depth/stencil attachment is supported.
type RenderPipelineDescriptor struct {
	Label       string
	Vertex      VertexState
	Primitive   gputypes.PrimitiveState
	Multisample gputypes.MultisampleState
	Fragment    *FragmentState
}

// PresentMode selects how frames are queued for display.
type PresentMode int32

const (
	PresentModeFifo PresentMode = iota
	PresentModeFifoRelaxed
	PresentModeImmediate
	PresentModeMailbox
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	}
	return fmt.Sprintf("PresentMode(%d)", int32(m))
}

// AlphaMode selects how the surface alpha channel is composited.
type AlphaMode int32

const (
	AlphaModeAuto AlphaMode = iota
	AlphaModeOpaque
	AlphaModePremultiplied
	AlphaModeUnpremultiplied
	AlphaModeInherit
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaModeAuto:
		return "auto"
	case AlphaModeOpaque:
		return "opaque"
	case AlphaModePremultiplied:
		return "premultiplied"
	case AlphaModeUnpremultiplied:
		return "unpremultiplied"
	case AlphaModeInherit:
		return "inherit"
	}
	return fmt.Sprintf("AlphaMode(%d)", int32(m))
}

// SurfaceCapabilities lists what a surface supports with an adapter.
type SurfaceCapabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []PresentMode
	AlphaModes   []AlphaMode
}

// SurfaceConfiguration configures a Surface for presentation.
type SurfaceConfiguration struct {
	Usage       gputypes.TextureUsage
	Format      gputypes.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
	AlphaMode   AlphaMode
}

// SurfaceStatus is the status of a current-texture acquisition.
type SurfaceStatus int32

const (
	SurfaceStatusSuccess SurfaceStatus = iota
	SurfaceStatusTimeout
	SurfaceStatusOutdated
	SurfaceStatusLost
	SurfaceStatusOutOfMemory
	SurfaceStatusDeviceLost
	SurfaceStatusError
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceStatusSuccess:
		return "success"
	case SurfaceStatusTimeout:
		return "timeout"
	case SurfaceStatusOutdated:
		return "outdated"
	case SurfaceStatusLost:
		return "lost"
	case SurfaceStatusOutOfMemory:
		return "out-of-memory"
	case SurfaceStatusDeviceLost:
		return "device-lost"
	}
	return "error"
}

// SurfaceTexture is the result of Surface.CurrentTexture.
type SurfaceTexture struct {
	Texture Texture
	Status  SurfaceStatus
}

// TextureViewDescriptor configures texture view creation.
// Zero counts mean the full remaining range.
type TextureViewDescriptor struct {
	Label           string
	Format          gputypes.TextureFormat
	Dimension       gputypes.TextureViewDimension
	Aspect          gputypes.TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// RenderPassColorAttachment is one color target of a render pass.
type RenderPassColorAttachment struct {
	View       TextureView
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color
}

// RenderPassDescriptor configures a render pass. Depth/stencil
// attachments are not supported.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []RenderPassColorAttachment
}
