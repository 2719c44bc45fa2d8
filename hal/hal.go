// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hal defines the hardware abstraction layer used by package gpu:
// a minimal, backend-neutral view of a WebGPU-style graphics API.
//
// The [webgpu] package provides the native implementation on top of
// wgpu-native, and [gputest] provides a recording in-memory implementation
// for tests. Enumerations and plain descriptor structs come from
// github.com/gogpu/gputypes, so that this package does not depend on cgo.
//
// Asynchronous requests (adapter, device, buffer mapping, queue work done)
// complete through callbacks, which a backend may invoke either before the
// request method returns or later from inside [Instance.ProcessEvents] or
// [Device.Poll]. Callers must pump those entry points until the callback fires.
package hal

// Releaser is any backend object that holds native resources.
// Release must be called exactly once.
type Releaser interface {
	Release()
}

// Backend creates instances of a graphics API implementation.
type Backend interface {
	// Name is a short human-readable name for the backend.
	Name() string

	// CreateInstance creates the process-wide API instance.
	CreateInstance(desc *InstanceDescriptor) (Instance, error)
}

// SurfaceProvider yields a presentable drawing target for a window,
// created from the given instance.
type SurfaceProvider interface {
	CreateSurface(inst Instance) (Surface, error)
}

// Instance is the process-wide handle to the graphics API.
type Instance interface {
	Releaser

	// RequestAdapter asks the driver stack for an adapter matching opts.
	// The callback is invoked exactly once.
	RequestAdapter(opts *RequestAdapterOptions, callback RequestAdapterCallback)

	// ProcessEvents runs the instance's internal event processing,
	// which is where pending request callbacks are delivered.
	ProcessEvents()
}

// Adapter is one candidate GPU.
type Adapter interface {
	Releaser

	Info() AdapterInfo
	Features() []FeatureName
	Limits() Limits

	// RequestDevice upgrades the adapter into a logical device.
	// The callback is invoked exactly once.
	RequestDevice(desc *DeviceDescriptor, callback RequestDeviceCallback)

	// ProcessEvents runs the event processing of the instance the
	// adapter came from, which stays valid inside the adapter after the
	// instance handle itself has been released.
	ProcessEvents()
}

// Device is a logical GPU session.
type Device interface {
	Releaser

	Features() []FeatureName
	Limits() Limits

	// Queue returns the default queue of the device.
	Queue() Queue

	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)

	// Poll processes device events such as buffer map and queue
	// work done callbacks. If wait is true it blocks until the queue
	// is empty. It returns true if the queue is empty.
	Poll(wait bool) bool
}

// Queue is the ordered submission channel of a Device.
type Queue interface {
	Releaser

	// Submit submits the command buffers, in order.
	Submit(cmds ...CommandBuffer)

	// WriteBuffer schedules a write of data into buffer at offset.
	WriteBuffer(buffer Buffer, offset uint64, data []byte) error

	// OnSubmittedWorkDone registers a callback invoked once all
	// work submitted so far has completed.
	OnSubmittedWorkDone(callback QueueWorkDoneCallback)
}

// Surface is a presentable drawing target bound to one window.
type Surface interface {
	Releaser

	// Capabilities returns the formats, present modes and alpha modes
	// supported when presenting with the given adapter. The first
	// format is the preferred one.
	Capabilities(adapter Adapter) SurfaceCapabilities

	Configure(adapter Adapter, device Device, config *SurfaceConfiguration) error
	Unconfigure()

	// CurrentTexture acquires the texture to render the next frame into.
	// Texture is nil unless Status is SurfaceStatusSuccess.
	CurrentTexture() SurfaceTexture

	Present() error
}

// Texture is a GPU texture.
type Texture interface {
	Releaser
	CreateView(desc *TextureViewDescriptor) (TextureView, error)
}

// TextureView is a view into a Texture usable as a render attachment.
type TextureView interface {
	Releaser
}

// ShaderModule is a compiled shader program.
type ShaderModule interface {
	Releaser
}

// RenderPipeline is an immutable compiled render pipeline.
type RenderPipeline interface {
	Releaser
}

// CommandEncoder records GPU commands into a CommandBuffer.
type CommandEncoder interface {
	Releaser

	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset uint64, size uint64) error
	Finish(label string) (CommandBuffer, error)
}

// RenderPass records draw commands for one render pass.
type RenderPass interface {
	Releaser

	SetPipeline(pipeline RenderPipeline)
	SetVertexBuffer(slot uint32, buffer Buffer, offset, size uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	End() error
}

// CommandBuffer is a finished, submittable list of commands.
type CommandBuffer interface {
	Releaser
}

// Buffer is a linear GPU memory allocation.
type Buffer interface {
	Releaser

	Size() uint64

	// MapAsync maps the given range for host access. The callback is
	// invoked exactly once, during a later Device.Poll.
	MapAsync(mode MapMode, offset, size uint64, callback BufferMapCallback) error

	// MappedRange returns the mapped bytes. Only valid while mapped.
	MappedRange(offset, size uint64) []byte

	Unmap() error
}
