// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package webgpu implements the [hal] interfaces on the native
// WebGPU implementation, through github.com/cogentcore/webgpu.
//
// The binding completes adapter and device requests synchronously,
// so request callbacks are invoked before the request call returns
// and ProcessEvents has nothing to do.
package webgpu

import (
	"fmt"
	"slices"

	"cogentcore.org/hellogpu/hal"
	"github.com/cogentcore/webgpu/wgpu"
)

// Backend is the native WebGPU [hal.Backend].
type Backend struct{}

// NewBackend returns a new native WebGPU backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns "webgpu".
func (b *Backend) Name() string { return "webgpu" }

// CreateInstance creates the WebGPU instance.
func (b *Backend) CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error) {
	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("webgpu: could not create instance")
	}
	return &Instance{inst: inst}, nil
}

// Instance is a [hal.Instance].
type Instance struct {
	inst *wgpu.Instance
}

// WGPU returns the underlying instance.
func (in *Instance) WGPU() *wgpu.Instance { return in.inst }

// Release releases the instance.
func (in *Instance) Release() {
	if in.inst == nil {
		return
	}
	in.inst.Release()
	in.inst = nil
}

// RequestAdapter requests an adapter, calling callback before it returns.
func (in *Instance) RequestAdapter(opts *hal.RequestAdapterOptions, callback hal.RequestAdapterCallback) {
	wo := &wgpu.RequestAdapterOptions{}
	if opts != nil {
		wo.PowerPreference = powerPreference(opts.PowerPreference)
		wo.ForceFallbackAdapter = opts.ForceFallbackAdapter
		if sf, ok := opts.CompatibleSurface.(*Surface); ok && sf != nil {
			wo.CompatibleSurface = sf.s
		}
	}
	a, err := in.inst.RequestAdapter(wo)
	if err != nil {
		callback(hal.RequestStatusUnavailable, nil, err.Error())
		return
	}
	if a == nil {
		callback(hal.RequestStatusUnavailable, nil, "no adapter found")
		return
	}
	callback(hal.RequestStatusSuccess, &Adapter{a: a}, "")
}

// ProcessEvents does nothing: requests complete synchronously.
func (in *Instance) ProcessEvents() {}

// Adapter is a [hal.Adapter].
type Adapter struct {
	a *wgpu.Adapter
}

// WGPU returns the underlying adapter.
func (ad *Adapter) WGPU() *wgpu.Adapter { return ad.a }

// Release releases the adapter.
func (ad *Adapter) Release() {
	if ad.a == nil {
		return
	}
	ad.a.Release()
	ad.a = nil
}

// Info returns the adapter properties.
func (ad *Adapter) Info() hal.AdapterInfo {
	info := ad.a.GetInfo()
	return hal.AdapterInfo{
		Name:        info.Name,
		Vendor:      info.VendorName,
		Driver:      info.DriverDescription,
		Backend:     info.BackendType.String(),
		AdapterType: info.AdapterType.String(),
	}
}

// Features returns the names of the adapter features.
func (ad *Adapter) Features() []hal.FeatureName {
	return featureNames(ad.a.EnumerateFeatures())
}

// Limits returns the adapter limits.
func (ad *Adapter) Limits() hal.Limits {
	return limitsFromWGPU(ad.a.GetLimits().Limits)
}

// ProcessEvents does nothing: requests complete synchronously.
func (ad *Adapter) ProcessEvents() {}

// RequestDevice requests a device, calling callback before it returns.
func (ad *Adapter) RequestDevice(desc *hal.DeviceDescriptor, callback hal.RequestDeviceCallback) {
	wd := &wgpu.DeviceDescriptor{}
	if desc != nil {
		wd.Label = desc.Label
		if desc.RequiredLimits != nil {
			wd.RequiredLimits = &wgpu.RequiredLimits{Limits: limitsToWGPU(*desc.RequiredLimits)}
		}
		if len(desc.RequiredFeatures) > 0 {
			avail := ad.a.EnumerateFeatures()
			for _, f := range desc.RequiredFeatures {
				i := slices.IndexFunc(avail, func(wf wgpu.FeatureName) bool { return wf.String() == string(f) })
				if i < 0 {
					callback(hal.RequestStatusError, nil, fmt.Sprintf("feature %s not supported", f))
					return
				}
				wd.RequiredFeatures = append(wd.RequiredFeatures, avail[i])
			}
		}
		if lost := desc.DeviceLost; lost != nil {
			wd.DeviceLostCallback = func(reason wgpu.DeviceLostReason, message string) {
				lost(deviceLostReason(reason), message)
			}
		}
	}
	d, err := ad.a.RequestDevice(wd)
	if err != nil {
		callback(hal.RequestStatusError, nil, err.Error())
		return
	}
	dv := &Device{d: d}
	dv.queue = &Queue{q: d.GetQueue()}
	callback(hal.RequestStatusSuccess, dv, "")
}

// Device is a [hal.Device].
type Device struct {
	d     *wgpu.Device
	queue *Queue
}

// WGPU returns the underlying device.
func (dv *Device) WGPU() *wgpu.Device { return dv.d }

// Release releases the device.
func (dv *Device) Release() {
	if dv.d == nil {
		return
	}
	dv.d.Release()
	dv.d = nil
}

// Features returns the names of the enabled features.
func (dv *Device) Features() []hal.FeatureName {
	return featureNames(dv.d.EnumerateFeatures())
}

// Limits returns the limits granted to the device.
func (dv *Device) Limits() hal.Limits {
	return limitsFromWGPU(dv.d.GetLimits().Limits)
}

// Queue returns the device queue.
func (dv *Device) Queue() hal.Queue { return dv.queue }

// Poll runs pending callbacks, waiting for the queue to be empty if wait
// is set, and reports whether the queue is empty.
func (dv *Device) Poll(wait bool) bool {
	return dv.d.Poll(wait, nil)
}

// CreateShaderModule compiles a WGSL shader module.
func (dv *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	sm, err := dv.d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.WGSL},
	})
	if err != nil {
		return nil, err
	}
	return &ShaderModule{sm: sm}, nil
}

// CreateRenderPipeline creates a render pipeline.
func (dv *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	vm, ok := desc.Vertex.Module.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("webgpu: pipeline %q: vertex module is not a webgpu module", desc.Label)
	}
	pd := &wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		Vertex: wgpu.VertexState{
			Module:     vm.sm,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    vertexBufferLayouts(desc.Vertex.Buffers),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(desc.Primitive.Topology),
			FrontFace: frontFace(desc.Primitive.FrontFace),
			CullMode:  cullMode(desc.Primitive.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: desc.Multisample.Count,
			Mask:  uint32(desc.Multisample.Mask),
		},
	}
	if fs := desc.Fragment; fs != nil {
		fm, ok := fs.Module.(*ShaderModule)
		if !ok {
			return nil, fmt.Errorf("webgpu: pipeline %q: fragment module is not a webgpu module", desc.Label)
		}
		pd.Fragment = &wgpu.FragmentState{
			Module:     fm.sm,
			EntryPoint: fs.EntryPoint,
			Targets:    colorTargets(fs.Targets),
		}
	}
	rp, err := dv.d.CreateRenderPipeline(pd)
	if err != nil {
		return nil, err
	}
	return &RenderPipeline{rp: rp}, nil
}

// CreateCommandEncoder creates a command encoder.
func (dv *Device) CreateCommandEncoder(label string) (hal.CommandEncoder, error) {
	ce, err := dv.d.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &CommandEncoder{ce: ce}, nil
}

// CreateBuffer creates a buffer.
func (dv *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	b, err := dv.d.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            bufferUsage(desc.Usage),
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{b: b, size: desc.Size}, nil
}

// Queue is a [hal.Queue].
type Queue struct {
	q *wgpu.Queue
}

// Release releases the queue.
func (qu *Queue) Release() {
	if qu.q == nil {
		return
	}
	qu.q.Release()
	qu.q = nil
}

// Submit submits the command buffers for execution, in order.
func (qu *Queue) Submit(cmds ...hal.CommandBuffer) {
	wc := make([]*wgpu.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		wc = append(wc, c.(*CommandBuffer).cb)
	}
	qu.q.Submit(wc...)
}

// WriteBuffer writes data into the buffer at offset.
func (qu *Queue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	return qu.q.WriteBuffer(buffer.(*Buffer).b, offset, data)
}

// OnSubmittedWorkDone calls callback once all submitted work is done.
func (qu *Queue) OnSubmittedWorkDone(callback hal.QueueWorkDoneCallback) {
	qu.q.OnSubmittedWorkDone(func(status wgpu.QueueWorkDoneStatus) {
		callback(queueWorkDoneStatus(status))
	})
}

// ShaderModule is a [hal.ShaderModule].
type ShaderModule struct {
	sm *wgpu.ShaderModule
}

// Release releases the shader module.
func (sm *ShaderModule) Release() {
	if sm.sm == nil {
		return
	}
	sm.sm.Release()
	sm.sm = nil
}

// RenderPipeline is a [hal.RenderPipeline].
type RenderPipeline struct {
	rp *wgpu.RenderPipeline
}

// Release releases the pipeline.
func (rp *RenderPipeline) Release() {
	if rp.rp == nil {
		return
	}
	rp.rp.Release()
	rp.rp = nil
}
