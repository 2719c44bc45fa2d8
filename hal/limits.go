// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hal

import "math"

const (
	// LimitU32Undefined marks a 32-bit limit as unconstrained:
	// accept whatever the adapter offers.
	LimitU32Undefined uint32 = math.MaxUint32

	// LimitU64Undefined marks a 64-bit limit as unconstrained.
	LimitU64Undefined uint64 = math.MaxUint64
)

// Limits are the numeric resource limits of an adapter or device.
// Fields named Max* are upper bounds; fields named Min* are alignment
// requirements, where a smaller value is more capable.
type Limits struct {
	MaxTextureDimension1D                     uint32
	MaxTextureDimension2D                     uint32
	MaxTextureDimension3D                     uint32
	MaxTextureArrayLayers                     uint32
	MaxBindGroups                             uint32
	MaxBindingsPerBindGroup                   uint32
	MaxDynamicUniformBuffersPerPipelineLayout uint32
	MaxDynamicStorageBuffersPerPipelineLayout uint32
	MaxSampledTexturesPerShaderStage          uint32
	MaxSamplersPerShaderStage                 uint32
	MaxStorageBuffersPerShaderStage           uint32
	MaxStorageTexturesPerShaderStage          uint32
	MaxUniformBuffersPerShaderStage           uint32
	MaxUniformBufferBindingSize               uint64
	MaxStorageBufferBindingSize               uint64
	MinUniformBufferOffsetAlignment           uint32
	MinStorageBufferOffsetAlignment           uint32
	MaxVertexBuffers                          uint32
	MaxBufferSize                             uint64
	MaxVertexAttributes                       uint32
	MaxVertexBufferArrayStride                uint32
	MaxInterStageShaderVariables              uint32
	MaxColorAttachments                       uint32
	MaxColorAttachmentBytesPerSample          uint32
	MaxComputeWorkgroupStorageSize            uint32
	MaxComputeInvocationsPerWorkgroup         uint32
	MaxComputeWorkgroupSizeX                  uint32
	MaxComputeWorkgroupSizeY                  uint32
	MaxComputeWorkgroupSizeZ                  uint32
	MaxComputeWorkgroupsPerDimension          uint32
}

// UndefinedLimits returns Limits with every field set to the
// undefined sentinel, i.e. no requirement at all.
func UndefinedLimits() Limits {
	u := LimitU32Undefined
	return Limits{
		MaxTextureDimension1D:                     u,
		MaxTextureDimension2D:                     u,
		MaxTextureDimension3D:                     u,
		MaxTextureArrayLayers:                     u,
		MaxBindGroups:                             u,
		MaxBindingsPerBindGroup:                   u,
		MaxDynamicUniformBuffersPerPipelineLayout: u,
		MaxDynamicStorageBuffersPerPipelineLayout: u,
		MaxSampledTexturesPerShaderStage:          u,
		MaxSamplersPerShaderStage:                 u,
		MaxStorageBuffersPerShaderStage:           u,
		MaxStorageTexturesPerShaderStage:          u,
		MaxUniformBuffersPerShaderStage:           u,
		MaxUniformBufferBindingSize:               LimitU64Undefined,
		MaxStorageBufferBindingSize:               LimitU64Undefined,
		MinUniformBufferOffsetAlignment:           u,
		MinStorageBufferOffsetAlignment:           u,
		MaxVertexBuffers:                          u,
		MaxBufferSize:                             LimitU64Undefined,
		MaxVertexAttributes:                       u,
		MaxVertexBufferArrayStride:                u,
		MaxInterStageShaderVariables:              u,
		MaxColorAttachments:                       u,
		MaxColorAttachmentBytesPerSample:          u,
		MaxComputeWorkgroupStorageSize:            u,
		MaxComputeInvocationsPerWorkgroup:         u,
		MaxComputeWorkgroupSizeX:                  u,
		MaxComputeWorkgroupSizeY:                  u,
		MaxComputeWorkgroupSizeZ:                  u,
		MaxComputeWorkgroupsPerDimension:          u,
	}
}

// DefaultLimits returns the WebGPU baseline limits that every
// conforming adapter supports.
func DefaultLimits() Limits {
	return Limits{
		MaxTextureDimension1D:                     8192,
		MaxTextureDimension2D:                     8192,
		MaxTextureDimension3D:                     2048,
		MaxTextureArrayLayers:                     256,
		MaxBindGroups:                             4,
		MaxBindingsPerBindGroup:                   1000,
		MaxDynamicUniformBuffersPerPipelineLayout: 8,
		MaxDynamicStorageBuffersPerPipelineLayout: 4,
		MaxSampledTexturesPerShaderStage:          16,
		MaxSamplersPerShaderStage:                 16,
		MaxStorageBuffersPerShaderStage:           8,
		MaxStorageTexturesPerShaderStage:          4,
		MaxUniformBuffersPerShaderStage:           12,
		MaxUniformBufferBindingSize:               64 << 10,
		MaxStorageBufferBindingSize:               128 << 20,
		MinUniformBufferOffsetAlignment:           256,
		MinStorageBufferOffsetAlignment:           256,
		MaxVertexBuffers:                          8,
		MaxBufferSize:                             256 << 20,
		MaxVertexAttributes:                       16,
		MaxVertexBufferArrayStride:                2048,
		MaxInterStageShaderVariables:              16,
		MaxColorAttachments:                       8,
		MaxColorAttachmentBytesPerSample:          32,
		MaxComputeWorkgroupStorageSize:            16384,
		MaxComputeInvocationsPerWorkgroup:         256,
		MaxComputeWorkgroupSizeX:                  256,
		MaxComputeWorkgroupSizeY:                  256,
		MaxComputeWorkgroupSizeZ:                  64,
		MaxComputeWorkgroupsPerDimension:          65535,
	}
}
