// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gputest provides an in-memory fake implementation of the
// [hal] interfaces for testing code that drives a GPU without
// needing one. It records every operation in an ordered event log,
// detects double releases, and can inject failures.
//
// Asynchronous requests complete during the next ProcessEvents or
// Poll call, as they do with a real backend.
package gputest

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
)

// Backend is a fake [hal.Backend] that is also a [hal.SurfaceProvider].
// Set the exported fields before use to configure its behavior.
type Backend struct {
	// InstanceError, if set, is returned by CreateInstance.
	InstanceError error

	// SurfaceError, if set, is returned by CreateSurface.
	SurfaceError error

	// AdapterStatus is the status delivered to RequestAdapter.
	AdapterStatus hal.RequestStatus

	// AdapterMessage is the message delivered with a failed AdapterStatus.
	AdapterMessage string

	// DeviceStatus is the status delivered to RequestDevice.
	DeviceStatus hal.RequestStatus

	// DeviceMessage is the message delivered with a failed DeviceStatus.
	DeviceMessage string

	// ShaderError, if set, is returned by CreateShaderModule.
	ShaderError error

	// PipelineError, if set, is returned by CreateRenderPipeline.
	PipelineError error

	// PresentError, if set, is returned by Surface.Present.
	PresentError error

	// ViewError, if set, is returned by Texture.CreateView.
	ViewError error

	// EncoderError, if set, is returned by CreateCommandEncoder.
	EncoderError error

	// RenderPassError, if set, is returned by BeginRenderPass.
	RenderPassError error

	// EndError, if set, is returned by RenderPass.End.
	EndError error

	// FinishError, if set, is returned by CommandEncoder.Finish.
	FinishError error

	// SurfaceStatuses are returned by successive CurrentTexture calls;
	// once they are used up every call succeeds.
	SurfaceStatuses []hal.SurfaceStatus

	// AdapterInfo is reported by the adapter.
	AdapterInfo hal.AdapterInfo

	// AdapterFeatures are the features offered by the adapter.
	AdapterFeatures []hal.FeatureName

	// AdapterLimits are the limits offered by the adapter and granted
	// to the device.
	AdapterLimits hal.Limits

	// Formats are the surface formats, the first being preferred.
	Formats []gputypes.TextureFormat

	// PresentModes are the supported present modes.
	PresentModes []hal.PresentMode

	// AlphaModes are the supported alpha modes.
	AlphaModes []hal.AlphaMode

	// SurfaceConfig is the last surface configuration.
	SurfaceConfig *hal.SurfaceConfiguration

	// DeviceDescriptor is the last device descriptor.
	DeviceDescriptor *hal.DeviceDescriptor

	// Pipelines are the descriptors of every pipeline created.
	Pipelines []*hal.RenderPipelineDescriptor

	// RenderPasses are the descriptors of every render pass begun.
	RenderPasses []*hal.RenderPassDescriptor

	// Draws has the vertex count of every draw call.
	Draws []uint32

	mu       sync.Mutex
	events   []string
	released map[string]bool
	doubles  []string
	counts   map[string]int
	pending  []func()
	device   *Device
}

// NewBackend returns a new Backend that succeeds at everything,
// with baseline limits and two surface formats.
func NewBackend() *Backend {
	return &Backend{
		AdapterInfo: hal.AdapterInfo{
			Name:        "Fake Adapter",
			Vendor:      "gputest",
			Driver:      "gputest",
			Backend:     "fake",
			AdapterType: "cpu",
		},
		AdapterFeatures: []hal.FeatureName{"depth-clip-control", "timestamp-query"},
		AdapterLimits:   hal.DefaultLimits(),
		Formats:         []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm},
		PresentModes:    []hal.PresentMode{hal.PresentModeFifo, hal.PresentModeImmediate, hal.PresentModeMailbox},
		AlphaModes:      []hal.AlphaMode{hal.AlphaModeOpaque, hal.AlphaModePremultiplied},
		released:        map[string]bool{},
		counts:          map[string]int{},
	}
}

// Name returns "fake".
func (b *Backend) Name() string { return "fake" }

// record appends an event to the log.
func (b *Backend) record(op string, ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := op
	if len(ids) > 0 {
		ev += " " + strings.Join(ids, " ")
	}
	b.events = append(b.events, ev)
}

// newID returns a new unique object id of the given kind,
// recording its creation.
func (b *Backend) newID(kind string) string {
	b.mu.Lock()
	b.counts[kind]++
	id := fmt.Sprintf("%s#%d", kind, b.counts[kind])
	b.mu.Unlock()
	b.record("create", id)
	return id
}

// release records the release of id, and whether it had already been released.
func (b *Backend) release(id string) {
	b.mu.Lock()
	if b.released[id] {
		b.doubles = append(b.doubles, id)
	}
	b.released[id] = true
	b.mu.Unlock()
	b.record("release", id)
}

// later queues a callback to be run by the next processEvents.
func (b *Backend) later(fn func()) {
	b.mu.Lock()
	b.pending = append(b.pending, fn)
	b.mu.Unlock()
}

// processEvents runs all queued callbacks, including any they queue.
func (b *Backend) processEvents() {
	for {
		b.mu.Lock()
		fns := b.pending
		b.pending = nil
		b.mu.Unlock()
		if len(fns) == 0 {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

// Events returns a copy of the event log, one "op id..." string per event.
func (b *Backend) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}

// Index returns the index of the first event equal to ev, or -1.
func (b *Backend) Index(ev string) int {
	return slices.Index(b.Events(), ev)
}

// Count returns the number of events whose op (the first word) is op.
func (b *Backend) Count(op string) int {
	n := 0
	for _, ev := range b.Events() {
		if ev == op || strings.HasPrefix(ev, op+" ") {
			n++
		}
	}
	return n
}

// Released returns whether the object with the given id has been released.
func (b *Backend) Released(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released[id]
}

// Live returns the ids of every created object not yet released, sorted.
func (b *Backend) Live() []string {
	var live []string
	for _, ev := range b.Events() {
		id, ok := strings.CutPrefix(ev, "create ")
		if ok && !b.Released(id) {
			live = append(live, id)
		}
	}
	slices.Sort(live)
	return live
}

// DoubleReleases returns the ids of every object released more than once.
func (b *Backend) DoubleReleases() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.doubles)
}

// Device returns the last device created, or nil.
func (b *Backend) Device() *Device {
	return b.device
}

// CreateInstance returns a new fake instance.
func (b *Backend) CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error) {
	if b.InstanceError != nil {
		return nil, b.InstanceError
	}
	return &Instance{object: object{b: b, id: b.newID("instance")}}, nil
}

// CreateSurface returns a new fake surface for the instance.
func (b *Backend) CreateSurface(inst hal.Instance) (hal.Surface, error) {
	if b.SurfaceError != nil {
		return nil, b.SurfaceError
	}
	if inst == nil {
		return nil, fmt.Errorf("gputest: CreateSurface: nil instance")
	}
	return &Surface{object: object{b: b, id: b.newID("surface")}}, nil
}

// object is the common part of every fake object.
type object struct {
	b  *Backend
	id string
}

// ID returns the unique id of the object in the event log.
func (o *object) ID() string { return o.id }

// Release records the release of the object.
func (o *object) Release() { o.b.release(o.id) }

// Instance is a fake [hal.Instance].
type Instance struct {
	object
}

func (in *Instance) RequestAdapter(opts *hal.RequestAdapterOptions, callback hal.RequestAdapterCallback) {
	b := in.b
	b.record("request-adapter", in.id)
	b.later(func() {
		if b.AdapterStatus != hal.RequestStatusSuccess {
			callback(b.AdapterStatus, nil, b.AdapterMessage)
			return
		}
		callback(hal.RequestStatusSuccess, &Adapter{object: object{b: b, id: b.newID("adapter")}}, "")
	})
}

func (in *Instance) ProcessEvents() { in.b.processEvents() }

// Adapter is a fake [hal.Adapter].
type Adapter struct {
	object
}

func (ad *Adapter) Info() hal.AdapterInfo       { return ad.b.AdapterInfo }
func (ad *Adapter) Features() []hal.FeatureName { return slices.Clone(ad.b.AdapterFeatures) }
func (ad *Adapter) Limits() hal.Limits          { return ad.b.AdapterLimits }
func (ad *Adapter) ProcessEvents()              { ad.b.processEvents() }

func (ad *Adapter) RequestDevice(desc *hal.DeviceDescriptor, callback hal.RequestDeviceCallback) {
	b := ad.b
	b.record("request-device", ad.id)
	b.DeviceDescriptor = desc
	b.later(func() {
		if b.DeviceStatus != hal.RequestStatusSuccess {
			callback(b.DeviceStatus, nil, b.DeviceMessage)
			return
		}
		dv := &Device{object: object{b: b, id: b.newID("device")}}
		if desc != nil {
			dv.lost = desc.DeviceLost
		}
		dv.queue = &Queue{object: object{b: b, id: b.newID("queue")}}
		b.device = dv
		callback(hal.RequestStatusSuccess, dv, "")
	})
}

// Device is a fake [hal.Device].
type Device struct {
	object
	queue *Queue
	lost  hal.DeviceLostCallback
}

func (dv *Device) Features() []hal.FeatureName {
	if d := dv.b.DeviceDescriptor; d != nil {
		return slices.Clone(d.RequiredFeatures)
	}
	return nil
}

func (dv *Device) Limits() hal.Limits { return dv.b.AdapterLimits }
func (dv *Device) Queue() hal.Queue   { return dv.queue }

// Lose simulates the loss of the device, invoking its device-lost callback.
func (dv *Device) Lose(reason hal.DeviceLostReason, message string) {
	dv.b.record("lose", dv.id)
	if dv.lost != nil {
		dv.lost(reason, message)
	}
}

// Release releases the device, reporting it as destroyed.
func (dv *Device) Release() {
	dv.b.release(dv.id)
	if dv.lost != nil {
		dv.lost(hal.DeviceLostReasonDestroyed, "device released")
		dv.lost = nil
	}
}

func (dv *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if dv.b.ShaderError != nil {
		return nil, dv.b.ShaderError
	}
	if strings.TrimSpace(desc.WGSL) == "" {
		return nil, fmt.Errorf("gputest: shader %q: empty source", desc.Label)
	}
	return &object{b: dv.b, id: dv.b.newID("shader")}, nil
}

func (dv *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if dv.b.PipelineError != nil {
		return nil, dv.b.PipelineError
	}
	if desc.Fragment == nil || len(desc.Fragment.Targets) == 0 {
		return nil, fmt.Errorf("gputest: pipeline %q: no color target", desc.Label)
	}
	dv.b.Pipelines = append(dv.b.Pipelines, desc)
	return &object{b: dv.b, id: dv.b.newID("pipeline")}, nil
}

func (dv *Device) CreateCommandEncoder(label string) (hal.CommandEncoder, error) {
	if dv.b.EncoderError != nil {
		return nil, dv.b.EncoderError
	}
	return &CommandEncoder{object: object{b: dv.b, id: dv.b.newID("encoder")}}, nil
}

func (dv *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if desc.Size > dv.b.AdapterLimits.MaxBufferSize {
		return nil, fmt.Errorf("gputest: buffer %q: size %d exceeds MaxBufferSize", desc.Label, desc.Size)
	}
	return &Buffer{
		object: object{b: dv.b, id: dv.b.newID("buffer")},
		usage:  desc.Usage,
		data:   make([]byte, desc.Size),
	}, nil
}

// Poll runs pending callbacks. The fake queue always completes
// immediately, so it is always empty.
func (dv *Device) Poll(wait bool) bool {
	dv.b.processEvents()
	return true
}

// Queue is a fake [hal.Queue]. Submitted commands execute immediately.
type Queue struct {
	object
}

func (qu *Queue) Submit(cmds ...hal.CommandBuffer) {
	for _, c := range cmds {
		cb := c.(*CommandBuffer)
		qu.b.record("submit", cb.id)
		for _, op := range cb.ops {
			op()
		}
	}
}

func (qu *Queue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	bf := buffer.(*Buffer)
	if offset+uint64(len(data)) > uint64(len(bf.data)) {
		return fmt.Errorf("gputest: write of %d bytes at %d overflows %s", len(data), offset, bf.id)
	}
	qu.b.record("write", bf.id)
	copy(bf.data[offset:], data)
	return nil
}

func (qu *Queue) OnSubmittedWorkDone(callback hal.QueueWorkDoneCallback) {
	qu.b.later(func() { callback(hal.QueueWorkDoneStatusSuccess) })
}

// Surface is a fake [hal.Surface].
type Surface struct {
	object
	configured bool
}

func (sf *Surface) Capabilities(adapter hal.Adapter) hal.SurfaceCapabilities {
	return hal.SurfaceCapabilities{
		Formats:      slices.Clone(sf.b.Formats),
		PresentModes: slices.Clone(sf.b.PresentModes),
		AlphaModes:   slices.Clone(sf.b.AlphaModes),
	}
}

func (sf *Surface) Configure(adapter hal.Adapter, device hal.Device, config *hal.SurfaceConfiguration) error {
	if adapter == nil || device == nil {
		return fmt.Errorf("gputest: configure %s: nil adapter or device", sf.id)
	}
	if config.Width == 0 || config.Height == 0 {
		return fmt.Errorf("gputest: configure %s: zero size", sf.id)
	}
	if !slices.Contains(sf.b.Formats, config.Format) {
		return fmt.Errorf("gputest: configure %s: unsupported format %v", sf.id, config.Format)
	}
	cfg := *config
	sf.b.SurfaceConfig = &cfg
	sf.configured = true
	sf.b.record("configure", sf.id)
	return nil
}

func (sf *Surface) Unconfigure() {
	sf.configured = false
	sf.b.record("unconfigure", sf.id)
}

func (sf *Surface) CurrentTexture() hal.SurfaceTexture {
	b := sf.b
	if !sf.configured {
		return hal.SurfaceTexture{Status: hal.SurfaceStatusError}
	}
	if len(b.SurfaceStatuses) > 0 {
		st := b.SurfaceStatuses[0]
		b.SurfaceStatuses = b.SurfaceStatuses[1:]
		if st != hal.SurfaceStatusSuccess {
			b.record("acquire-failed", sf.id, st.String())
			return hal.SurfaceTexture{Status: st}
		}
	}
	return hal.SurfaceTexture{Texture: &Texture{object: object{b: b, id: b.newID("texture")}}, Status: hal.SurfaceStatusSuccess}
}

func (sf *Surface) Present() error {
	if sf.b.PresentError != nil {
		return sf.b.PresentError
	}
	if !sf.configured {
		return fmt.Errorf("gputest: present %s: not configured", sf.id)
	}
	sf.b.record("present", sf.id)
	return nil
}

// Texture is a fake [hal.Texture].
type Texture struct {
	object
}

func (tx *Texture) CreateView(desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if tx.b.ViewError != nil {
		return nil, tx.b.ViewError
	}
	if desc != nil && desc.Dimension != gputypes.TextureViewDimension2D {
		return nil, fmt.Errorf("gputest: view of %s: only 2D views are supported", tx.id)
	}
	return &object{b: tx.b, id: tx.b.newID("view")}, nil
}

// CommandEncoder is a fake [hal.CommandEncoder] that records
// operations to run when the finished command buffer is submitted.
type CommandEncoder struct {
	object
	ops      []func()
	finished bool
}

func (ce *CommandEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) (hal.RenderPass, error) {
	if ce.finished {
		return nil, fmt.Errorf("gputest: %s already finished", ce.id)
	}
	if ce.b.RenderPassError != nil {
		return nil, ce.b.RenderPassError
	}
	if len(desc.ColorAttachments) == 0 {
		return nil, fmt.Errorf("gputest: render pass with no color attachment")
	}
	ce.b.RenderPasses = append(ce.b.RenderPasses, desc)
	return &RenderPass{object: object{b: ce.b, id: ce.b.newID("pass")}}, nil
}

func (ce *CommandEncoder) CopyBufferToBuffer(src hal.Buffer, srcOffset uint64, dst hal.Buffer, dstOffset uint64, size uint64) error {
	if ce.finished {
		return fmt.Errorf("gputest: %s already finished", ce.id)
	}
	sb, db := src.(*Buffer), dst.(*Buffer)
	if size%4 != 0 || srcOffset%4 != 0 || dstOffset%4 != 0 {
		return fmt.Errorf("gputest: copy %s to %s: unaligned size or offset", sb.id, db.id)
	}
	if srcOffset+size > uint64(len(sb.data)) || dstOffset+size > uint64(len(db.data)) {
		return fmt.Errorf("gputest: copy %s to %s: out of range", sb.id, db.id)
	}
	if sb.usage&gputypes.BufferUsageCopySrc == 0 || db.usage&gputypes.BufferUsageCopyDst == 0 {
		return fmt.Errorf("gputest: copy %s to %s: missing CopySrc or CopyDst usage", sb.id, db.id)
	}
	ce.b.record("copy", sb.id, db.id)
	ce.ops = append(ce.ops, func() {
		copy(db.data[dstOffset:dstOffset+size], sb.data[srcOffset:srcOffset+size])
	})
	return nil
}

func (ce *CommandEncoder) Finish(label string) (hal.CommandBuffer, error) {
	if ce.finished {
		return nil, fmt.Errorf("gputest: %s already finished", ce.id)
	}
	ce.finished = true
	if ce.b.FinishError != nil {
		return nil, ce.b.FinishError
	}
	return &CommandBuffer{object: object{b: ce.b, id: ce.b.newID("commands")}, ops: ce.ops}, nil
}

// CommandBuffer is a fake [hal.CommandBuffer].
type CommandBuffer struct {
	object
	ops []func()
}

// RenderPass is a fake [hal.RenderPass].
type RenderPass struct {
	object
	pipeline hal.RenderPipeline
}

func (rp *RenderPass) SetPipeline(pipeline hal.RenderPipeline) {
	rp.pipeline = pipeline
	rp.b.record("set-pipeline", pipeline.(*object).id)
}

func (rp *RenderPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset, size uint64) {
	rp.b.record("set-vertex-buffer", buffer.(*Buffer).id)
}

func (rp *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	rp.b.Draws = append(rp.b.Draws, vertexCount)
	rp.b.record("draw", rp.id)
}

func (rp *RenderPass) End() error {
	if rp.b.EndError != nil {
		return rp.b.EndError
	}
	if rp.pipeline == nil {
		return fmt.Errorf("gputest: %s: no pipeline set", rp.id)
	}
	rp.b.record("end", rp.id)
	return nil
}

// Buffer is a fake [hal.Buffer] backed by host memory.
type Buffer struct {
	object
	usage  gputypes.BufferUsage
	data   []byte
	mapped bool
}

func (bf *Buffer) Size() uint64 { return uint64(len(bf.data)) }

// Data returns the current contents of the buffer.
func (bf *Buffer) Data() []byte { return bf.data }

func (bf *Buffer) MapAsync(mode hal.MapMode, offset, size uint64, callback hal.BufferMapCallback) error {
	if mode&gputypes.MapModeRead != 0 && bf.usage&gputypes.BufferUsageMapRead == 0 {
		return fmt.Errorf("gputest: map %s: missing MapRead usage", bf.id)
	}
	if offset+size > uint64(len(bf.data)) {
		return fmt.Errorf("gputest: map %s: out of range", bf.id)
	}
	bf.b.record("map", bf.id)
	bf.b.later(func() {
		bf.mapped = true
		callback(hal.BufferMapStatusSuccess)
	})
	return nil
}

func (bf *Buffer) MappedRange(offset, size uint64) []byte {
	if !bf.mapped {
		return nil
	}
	return bf.data[offset : offset+size]
}

func (bf *Buffer) Unmap() error {
	if !bf.mapped {
		return fmt.Errorf("gputest: unmap %s: not mapped", bf.id)
	}
	bf.mapped = false
	bf.b.record("unmap", bf.id)
	return nil
}
