// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webgpu

import (
	"cogentcore.org/hellogpu/hal"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// conversions between the backend-neutral types and the wgpu binding

var textureFormats = map[gputypes.TextureFormat]wgpu.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8UnormSrgb,
}

func textureFormatToWGPU(f gputypes.TextureFormat) (wgpu.TextureFormat, bool) {
	wf, ok := textureFormats[f]
	return wf, ok
}

func textureFormatFromWGPU(f wgpu.TextureFormat) (gputypes.TextureFormat, bool) {
	for hf, wf := range textureFormats {
		if wf == f {
			return hf, true
		}
	}
	return gputypes.TextureFormatUndefined, false
}

var presentModes = map[hal.PresentMode]wgpu.PresentMode{
	hal.PresentModeFifo:        wgpu.PresentModeFifo,
	hal.PresentModeFifoRelaxed: wgpu.PresentModeFifoRelaxed,
	hal.PresentModeImmediate:   wgpu.PresentModeImmediate,
	hal.PresentModeMailbox:     wgpu.PresentModeMailbox,
}

func presentMode(m hal.PresentMode) wgpu.PresentMode {
	if wm, ok := presentModes[m]; ok {
		return wm
	}
	return wgpu.PresentModeFifo
}

func presentModeFromWGPU(m wgpu.PresentMode) (hal.PresentMode, bool) {
	for hm, wm := range presentModes {
		if wm == m {
			return hm, true
		}
	}
	return hal.PresentModeFifo, false
}

var alphaModes = map[hal.AlphaMode]wgpu.CompositeAlphaMode{
	hal.AlphaModeAuto:            wgpu.CompositeAlphaModeAuto,
	hal.AlphaModeOpaque:          wgpu.CompositeAlphaModeOpaque,
	hal.AlphaModePremultiplied:   wgpu.CompositeAlphaModePremultiplied,
	hal.AlphaModeUnpremultiplied: wgpu.CompositeAlphaModeUnpremultiplied,
	hal.AlphaModeInherit:         wgpu.CompositeAlphaModeInherit,
}

func alphaMode(m hal.AlphaMode) wgpu.CompositeAlphaMode {
	if wm, ok := alphaModes[m]; ok {
		return wm
	}
	return wgpu.CompositeAlphaModeAuto
}

func alphaModeFromWGPU(m wgpu.CompositeAlphaMode) (hal.AlphaMode, bool) {
	for hm, wm := range alphaModes {
		if wm == m {
			return hm, true
		}
	}
	return hal.AlphaModeAuto, false
}

func powerPreference(p hal.PowerPreference) wgpu.PowerPreference {
	switch p {
	case hal.PowerPreferenceLowPower:
		return wgpu.PowerPreferenceLowPower
	case hal.PowerPreferenceHighPerformance:
		return wgpu.PowerPreferenceHighPerformance
	}
	return wgpu.PowerPreferenceUndefined
}

func deviceLostReason(r wgpu.DeviceLostReason) hal.DeviceLostReason {
	if r == wgpu.DeviceLostReasonDestroyed {
		return hal.DeviceLostReasonDestroyed
	}
	return hal.DeviceLostReasonUnknown
}

func queueWorkDoneStatus(s wgpu.QueueWorkDoneStatus) hal.QueueWorkDoneStatus {
	switch s {
	case wgpu.QueueWorkDoneStatusSuccess:
		return hal.QueueWorkDoneStatusSuccess
	case wgpu.QueueWorkDoneStatusError:
		return hal.QueueWorkDoneStatusError
	case wgpu.QueueWorkDoneStatusDeviceLost:
		return hal.QueueWorkDoneStatusDeviceLost
	}
	return hal.QueueWorkDoneStatusUnknown
}

func bufferMapStatus(s wgpu.BufferMapAsyncStatus) hal.BufferMapStatus {
	switch s {
	case wgpu.BufferMapAsyncStatusSuccess:
		return hal.BufferMapStatusSuccess
	case wgpu.BufferMapAsyncStatusDeviceLost:
		return hal.BufferMapStatusDeviceLost
	case wgpu.BufferMapAsyncStatusDestroyedBeforeCallback:
		return hal.BufferMapStatusDestroyedBeforeCallback
	case wgpu.BufferMapAsyncStatusUnmappedBeforeCallback:
		return hal.BufferMapStatusUnmappedBeforeCallback
	}
	return hal.BufferMapStatusError
}

func featureNames(fs []wgpu.FeatureName) []hal.FeatureName {
	names := make([]hal.FeatureName, len(fs))
	for i, f := range fs {
		names[i] = hal.FeatureName(f.String())
	}
	return names
}

func limitsFromWGPU(l wgpu.Limits) hal.Limits {
	return hal.Limits{
		MaxTextureDimension1D:                     l.MaxTextureDimension1D,
		MaxTextureDimension2D:                     l.MaxTextureDimension2D,
		MaxTextureDimension3D:                     l.MaxTextureDimension3D,
		MaxTextureArrayLayers:                     l.MaxTextureArrayLayers,
		MaxBindGroups:                             l.MaxBindGroups,
		MaxBindingsPerBindGroup:                   l.MaxBindingsPerBindGroup,
		MaxDynamicUniformBuffersPerPipelineLayout: l.MaxDynamicUniformBuffersPerPipelineLayout,
		MaxDynamicStorageBuffersPerPipelineLayout: l.MaxDynamicStorageBuffersPerPipelineLayout,
		MaxSampledTexturesPerShaderStage:          l.MaxSampledTexturesPerShaderStage,
		MaxSamplersPerShaderStage:                 l.MaxSamplersPerShaderStage,
		MaxStorageBuffersPerShaderStage:           l.MaxStorageBuffersPerShaderStage,
		MaxStorageTexturesPerShaderStage:          l.MaxStorageTexturesPerShaderStage,
		MaxUniformBuffersPerShaderStage:           l.MaxUniformBuffersPerShaderStage,
		MaxUniformBufferBindingSize:               l.MaxUniformBufferBindingSize,
		MaxStorageBufferBindingSize:               l.MaxStorageBufferBindingSize,
		MinUniformBufferOffsetAlignment:           l.MinUniformBufferOffsetAlignment,
		MinStorageBufferOffsetAlignment:           l.MinStorageBufferOffsetAlignment,
		MaxVertexBuffers:                          l.MaxVertexBuffers,
		MaxBufferSize:                             l.MaxBufferSize,
		MaxVertexAttributes:                       l.MaxVertexAttributes,
		MaxVertexBufferArrayStride:                l.MaxVertexBufferArrayStride,
		MaxInterStageShaderVariables:              l.MaxInterStageShaderVariables,
		MaxColorAttachments:                       l.MaxColorAttachments,
		MaxColorAttachmentBytesPerSample:          l.MaxColorAttachmentBytesPerSample,
		MaxComputeWorkgroupStorageSize:            l.MaxComputeWorkgroupStorageSize,
		MaxComputeInvocationsPerWorkgroup:         l.MaxComputeInvocationsPerWorkgroup,
		MaxComputeWorkgroupSizeX:                  l.MaxComputeWorkgroupSizeX,
		MaxComputeWorkgroupSizeY:                  l.MaxComputeWorkgroupSizeY,
		MaxComputeWorkgroupSizeZ:                  l.MaxComputeWorkgroupSizeZ,
		MaxComputeWorkgroupsPerDimension:          l.MaxComputeWorkgroupsPerDimension,
	}
}

// limitsToWGPU starts from the binding's default limits, so that
// any limit not known here keeps its default, and sets every other
// field from l. The undefined sentinels have the same values in both.
func limitsToWGPU(l hal.Limits) wgpu.Limits {
	w := wgpu.DefaultLimits()
	w.MaxTextureDimension1D = l.MaxTextureDimension1D
	w.MaxTextureDimension2D = l.MaxTextureDimension2D
	w.MaxTextureDimension3D = l.MaxTextureDimension3D
	w.MaxTextureArrayLayers = l.MaxTextureArrayLayers
	w.MaxBindGroups = l.MaxBindGroups
	w.MaxBindingsPerBindGroup = l.MaxBindingsPerBindGroup
	w.MaxDynamicUniformBuffersPerPipelineLayout = l.MaxDynamicUniformBuffersPerPipelineLayout
	w.MaxDynamicStorageBuffersPerPipelineLayout = l.MaxDynamicStorageBuffersPerPipelineLayout
	w.MaxSampledTexturesPerShaderStage = l.MaxSampledTexturesPerShaderStage
	w.MaxSamplersPerShaderStage = l.MaxSamplersPerShaderStage
	w.MaxStorageBuffersPerShaderStage = l.MaxStorageBuffersPerShaderStage
	w.MaxStorageTexturesPerShaderStage = l.MaxStorageTexturesPerShaderStage
	w.MaxUniformBuffersPerShaderStage = l.MaxUniformBuffersPerShaderStage
	w.MaxUniformBufferBindingSize = l.MaxUniformBufferBindingSize
	w.MaxStorageBufferBindingSize = l.MaxStorageBufferBindingSize
	w.MinUniformBufferOffsetAlignment = l.MinUniformBufferOffsetAlignment
	w.MinStorageBufferOffsetAlignment = l.MinStorageBufferOffsetAlignment
	w.MaxVertexBuffers = l.MaxVertexBuffers
	w.MaxBufferSize = l.MaxBufferSize
	w.MaxVertexAttributes = l.MaxVertexAttributes
	w.MaxVertexBufferArrayStride = l.MaxVertexBufferArrayStride
	w.MaxInterStageShaderVariables = l.MaxInterStageShaderVariables
	w.MaxColorAttachments = l.MaxColorAttachments
	w.MaxColorAttachmentBytesPerSample = l.MaxColorAttachmentBytesPerSample
	w.MaxComputeWorkgroupStorageSize = l.MaxComputeWorkgroupStorageSize
	w.MaxComputeInvocationsPerWorkgroup = l.MaxComputeInvocationsPerWorkgroup
	w.MaxComputeWorkgroupSizeX = l.MaxComputeWorkgroupSizeX
	w.MaxComputeWorkgroupSizeY = l.MaxComputeWorkgroupSizeY
	w.MaxComputeWorkgroupSizeZ = l.MaxComputeWorkgroupSizeZ
	w.MaxComputeWorkgroupsPerDimension = l.MaxComputeWorkgroupsPerDimension
	return w
}

var vertexFormats = map[gputypes.VertexFormat]wgpu.VertexFormat{
	gputypes.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	gputypes.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	gputypes.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	gputypes.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
}

func vertexBufferLayouts(ls []gputypes.VertexBufferLayout) []wgpu.VertexBufferLayout {
	if len(ls) == 0 {
		return nil
	}
	wl := make([]wgpu.VertexBufferLayout, len(ls))
	for i, l := range ls {
		step := wgpu.VertexStepModeVertex
		if l.StepMode == gputypes.VertexStepModeInstance {
			step = wgpu.VertexStepModeInstance
		}
		attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
		for j, a := range l.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         vertexFormats[a.Format],
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		wl[i] = wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    step,
			Attributes:  attrs,
		}
	}
	return wl
}

var primitiveTopologies = map[gputypes.PrimitiveTopology]wgpu.PrimitiveTopology{
	gputypes.PrimitiveTopologyPointList:     wgpu.PrimitiveTopologyPointList,
	gputypes.PrimitiveTopologyLineList:      wgpu.PrimitiveTopologyLineList,
	gputypes.PrimitiveTopologyLineStrip:     wgpu.PrimitiveTopologyLineStrip,
	gputypes.PrimitiveTopologyTriangleList:  wgpu.PrimitiveTopologyTriangleList,
	gputypes.PrimitiveTopologyTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}

func primitiveTopology(t gputypes.PrimitiveTopology) wgpu.PrimitiveTopology {
	if wt, ok := primitiveTopologies[t]; ok {
		return wt
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func frontFace(f gputypes.FrontFace) wgpu.FrontFace {
	if f == gputypes.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func cullMode(c gputypes.CullMode) wgpu.CullMode {
	switch c {
	case gputypes.CullModeFront:
		return wgpu.CullModeFront
	case gputypes.CullModeBack:
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

var blendFactors = map[gputypes.BlendFactor]wgpu.BlendFactor{
	gputypes.BlendFactorZero:             wgpu.BlendFactorZero,
	gputypes.BlendFactorOne:              wgpu.BlendFactorOne,
	gputypes.BlendFactorSrcAlpha:         wgpu.BlendFactorSrcAlpha,
	gputypes.BlendFactorOneMinusSrcAlpha: wgpu.BlendFactorOneMinusSrcAlpha,
	gputypes.BlendFactorDstAlpha:         wgpu.BlendFactorDstAlpha,
	gputypes.BlendFactorOneMinusDstAlpha: wgpu.BlendFactorOneMinusDstAlpha,
}

var blendOperations = map[gputypes.BlendOperation]wgpu.BlendOperation{
	gputypes.BlendOperationAdd:             wgpu.BlendOperationAdd,
	gputypes.BlendOperationSubtract:        wgpu.BlendOperationSubtract,
	gputypes.BlendOperationReverseSubtract: wgpu.BlendOperationReverseSubtract,
	gputypes.BlendOperationMin:             wgpu.BlendOperationMin,
	gputypes.BlendOperationMax:             wgpu.BlendOperationMax,
}

func blendComponent(c gputypes.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		SrcFactor: blendFactors[c.SrcFactor],
		DstFactor: blendFactors[c.DstFactor],
		Operation: blendOperations[c.Operation],
	}
}

func colorTargets(ts []gputypes.ColorTargetState) []wgpu.ColorTargetState {
	wt := make([]wgpu.ColorTargetState, len(ts))
	for i, t := range ts {
		format, _ := textureFormatToWGPU(t.Format)
		wt[i] = wgpu.ColorTargetState{
			Format:    format,
			WriteMask: wgpu.ColorWriteMask(t.WriteMask),
		}
		if t.Blend != nil {
			wt[i].Blend = &wgpu.BlendState{
				Color: blendComponent(t.Blend.Color),
				Alpha: blendComponent(t.Blend.Alpha),
			}
		}
	}
	return wt
}

func textureUsage(u gputypes.TextureUsage) wgpu.TextureUsage {
	var w wgpu.TextureUsage
	if u&gputypes.TextureUsageCopySrc != 0 {
		w |= wgpu.TextureUsageCopySrc
	}
	if u&gputypes.TextureUsageCopyDst != 0 {
		w |= wgpu.TextureUsageCopyDst
	}
	if u&gputypes.TextureUsageTextureBinding != 0 {
		w |= wgpu.TextureUsageTextureBinding
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		w |= wgpu.TextureUsageRenderAttachment
	}
	return w
}

var bufferUsages = []struct {
	h gputypes.BufferUsage
	w wgpu.BufferUsage
}{
	{gputypes.BufferUsageMapRead, wgpu.BufferUsageMapRead},
	{gputypes.BufferUsageMapWrite, wgpu.BufferUsageMapWrite},
	{gputypes.BufferUsageCopySrc, wgpu.BufferUsageCopySrc},
	{gputypes.BufferUsageCopyDst, wgpu.BufferUsageCopyDst},
	{gputypes.BufferUsageVertex, wgpu.BufferUsageVertex},
	{gputypes.BufferUsageUniform, wgpu.BufferUsageUniform},
	{gputypes.BufferUsageStorage, wgpu.BufferUsageStorage},
}

func bufferUsage(u gputypes.BufferUsage) wgpu.BufferUsage {
	var w wgpu.BufferUsage
	for _, bu := range bufferUsages {
		if u&bu.h != 0 {
			w |= bu.w
		}
	}
	return w
}

func mapMode(m hal.MapMode) wgpu.MapMode {
	var w wgpu.MapMode
	if m&gputypes.MapModeRead != 0 {
		w |= wgpu.MapModeRead
	}
	if m&gputypes.MapModeWrite != 0 {
		w |= wgpu.MapModeWrite
	}
	return w
}

func textureViewDimension(d gputypes.TextureViewDimension) wgpu.TextureViewDimension {
	switch d {
	case gputypes.TextureViewDimension1D:
		return wgpu.TextureViewDimension1D
	case gputypes.TextureViewDimension3D:
		return wgpu.TextureViewDimension3D
	}
	return wgpu.TextureViewDimension2D
}

func textureAspect(a gputypes.TextureAspect) wgpu.TextureAspect {
	switch a {
	case gputypes.TextureAspectStencilOnly:
		return wgpu.TextureAspectStencilOnly
	case gputypes.TextureAspectDepthOnly:
		return wgpu.TextureAspectDepthOnly
	}
	return wgpu.TextureAspectAll
}

func loadOp(op gputypes.LoadOp) wgpu.LoadOp {
	if op == gputypes.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func storeOp(op gputypes.StoreOp) wgpu.StoreOp {
	if op == gputypes.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}
