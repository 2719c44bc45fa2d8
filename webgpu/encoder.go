// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webgpu

import (
	"fmt"

	"cogentcore.org/hellogpu/hal"
	"github.com/cogentcore/webgpu/wgpu"
)

// CommandEncoder is a [hal.CommandEncoder].
type CommandEncoder struct {
	ce *wgpu.CommandEncoder
}

// Release releases the encoder.
func (ce *CommandEncoder) Release() {
	if ce.ce == nil {
		return
	}
	ce.ce.Release()
	ce.ce = nil
}

// BeginRenderPass begins a render pass.
func (ce *CommandEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) (hal.RenderPass, error) {
	rd := &wgpu.RenderPassDescriptor{Label: desc.Label}
	for _, ca := range desc.ColorAttachments {
		tv, ok := ca.View.(*TextureView)
		if !ok || tv.v == nil {
			return nil, fmt.Errorf("webgpu: render pass %q: invalid color attachment view", desc.Label)
		}
		rd.ColorAttachments = append(rd.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:    tv.v,
			LoadOp:  loadOp(ca.LoadOp),
			StoreOp: storeOp(ca.StoreOp),
			ClearValue: wgpu.Color{
				R: ca.ClearValue.R,
				G: ca.ClearValue.G,
				B: ca.ClearValue.B,
				A: ca.ClearValue.A,
			},
		})
	}
	rp := ce.ce.BeginRenderPass(rd)
	if rp == nil {
		return nil, fmt.Errorf("webgpu: could not begin render pass %q", desc.Label)
	}
	return &RenderPass{rp: rp}, nil
}

// CopyBufferToBuffer records a copy of size bytes from src to dst.
func (ce *CommandEncoder) CopyBufferToBuffer(src hal.Buffer, srcOffset uint64, dst hal.Buffer, dstOffset uint64, size uint64) error {
	return ce.ce.CopyBufferToBuffer(src.(*Buffer).b, srcOffset, dst.(*Buffer).b, dstOffset, size)
}

// Finish finishes recording into a command buffer.
func (ce *CommandEncoder) Finish(label string) (hal.CommandBuffer, error) {
	cb, err := ce.ce.Finish(&wgpu.CommandBufferDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &CommandBuffer{cb: cb}, nil
}

// CommandBuffer is a [hal.CommandBuffer].
type CommandBuffer struct {
	cb *wgpu.CommandBuffer
}

// Release releases the command buffer.
func (cb *CommandBuffer) Release() {
	if cb.cb == nil {
		return
	}
	cb.cb.Release()
	cb.cb = nil
}

// RenderPass is a [hal.RenderPass].
type RenderPass struct {
	rp *wgpu.RenderPassEncoder
}

// Release releases the render pass.
func (rp *RenderPass) Release() {
	if rp.rp == nil {
		return
	}
	rp.rp.Release()
	rp.rp = nil
}

// SetPipeline sets the pipeline for subsequent draws.
func (rp *RenderPass) SetPipeline(pipeline hal.RenderPipeline) {
	rp.rp.SetPipeline(pipeline.(*RenderPipeline).rp)
}

// SetVertexBuffer binds buffer to the vertex buffer slot.
func (rp *RenderPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset, size uint64) {
	if size == 0 {
		size = wgpu.WholeSize
	}
	rp.rp.SetVertexBuffer(slot, buffer.(*Buffer).b, offset, size)
}

// Draw draws primitives.
func (rp *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	rp.rp.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// End ends the render pass.
func (rp *RenderPass) End() error {
	rp.rp.End()
	return nil
}

// Buffer is a [hal.Buffer].
type Buffer struct {
	b    *wgpu.Buffer
	size uint64
}

// Release releases the buffer.
func (bf *Buffer) Release() {
	if bf.b == nil {
		return
	}
	bf.b.Release()
	bf.b = nil
}

// Size returns the size of the buffer in bytes.
func (bf *Buffer) Size() uint64 { return bf.size }

// MapAsync maps the range of the buffer, calling callback when done.
func (bf *Buffer) MapAsync(mode hal.MapMode, offset, size uint64, callback hal.BufferMapCallback) error {
	return bf.b.MapAsync(mapMode(mode), offset, size, func(status wgpu.BufferMapAsyncStatus) {
		callback(bufferMapStatus(status))
	})
}

// MappedRange returns the mapped range of the buffer.
func (bf *Buffer) MappedRange(offset, size uint64) []byte {
	return bf.b.GetMappedRange(uint(offset), uint(size))
}

// Unmap unmaps the buffer.
func (bf *Buffer) Unmap() error {
	return bf.b.Unmap()
}
