// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/hellogpu/hal"
	"github.com/gogpu/gputypes"
)

// PipelineConfig holds everything needed to build a [Pipeline].
type PipelineConfig struct {
	// optional name of the pipeline, used as a label
	Label string

	// Shader is the WGSL source containing both entry points.
	Shader string

	// VertexEntry is the vertex stage entry point: vs_main if empty.
	VertexEntry string

	// FragmentEntry is the fragment stage entry point: fs_main if empty.
	FragmentEntry string

	// VertexLayout is the optional layout of the single vertex buffer.
	// If nil, the vertex shader takes no vertex buffer input.
	VertexLayout *gputypes.VertexBufferLayout

	// Format is the color target format, normally [Surface.Format].
	Format gputypes.TextureFormat
}

// Pipeline is an immutable compiled render pipeline.
// It is built once by [BuildPipeline] and used unmodified for every frame.
type Pipeline struct {
	// Name of the pipeline
	Name string

	// Format is the color target format the pipeline was built for.
	Format gputypes.TextureFormat

	// VertexLayout is the vertex buffer layout, nil if none.
	VertexLayout *gputypes.VertexBufferLayout

	module         hal.ShaderModule
	renderPipeline hal.RenderPipeline
}

// AlphaBlend returns the standard alpha blending state:
// color = src * srcAlpha + dst * (1 - srcAlpha), alpha = dst.
func AlphaBlend() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorZero,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// BuildPipeline compiles the shader and builds the render pipeline
// with fixed-function state: triangle list, counter-clockwise front
// face, no culling, alpha blending into a single color target,
// no depth/stencil and a single sample.
// Any failure is returned wrapping [ErrPipeline] and leaves nothing
// allocated: there is no partial pipeline.
func BuildPipeline(dev *Device, cfg *PipelineConfig) (*Pipeline, error) {
	if dev == nil || dev.Device == nil {
		return nil, errors.Log(ErrNoDevice)
	}
	if cfg == nil {
		cfg = &PipelineConfig{}
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		return nil, errors.Log(fmt.Errorf("%w: %q: undefined color target format", ErrPipeline, cfg.Label))
	}
	if cfg.VertexLayout != nil && len(cfg.VertexLayout.Attributes) > int(dev.Limits.MaxVertexAttributes) {
		return nil, errors.Log(fmt.Errorf("%w: %q: %d vertex attributes exceeds device limit %d", ErrPipeline, cfg.Label, len(cfg.VertexLayout.Attributes), dev.Limits.MaxVertexAttributes))
	}
	module, err := dev.Device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: cfg.Label,
		WGSL:  cfg.Shader,
	})
	if err != nil {
		return nil, errors.Log(fmt.Errorf("%w: %q: shader: %w", ErrPipeline, cfg.Label, err))
	}
	pd := pipelineDescriptor(cfg, module)
	rp, err := dev.Device.CreateRenderPipeline(pd)
	if err != nil {
		module.Release()
		return nil, errors.Log(fmt.Errorf("%w: %q: %w", ErrPipeline, cfg.Label, err))
	}
	pl := &Pipeline{
		Name:           cfg.Label,
		Format:         cfg.Format,
		VertexLayout:   cfg.VertexLayout,
		module:         module,
		renderPipeline: rp,
	}
	return pl, nil
}

// pipelineDescriptor assembles the descriptor for the given config and
// compiled module.
func pipelineDescriptor(cfg *PipelineConfig, module hal.ShaderModule) *hal.RenderPipelineDescriptor {
	ve := cfg.VertexEntry
	if ve == "" {
		ve = "vs_main"
	}
	fe := cfg.FragmentEntry
	if fe == "" {
		fe = "fs_main"
	}
	var buffers []gputypes.VertexBufferLayout
	if cfg.VertexLayout != nil {
		buffers = []gputypes.VertexBufferLayout{*cfg.VertexLayout}
	}
	blend := AlphaBlend()
	return &hal.RenderPipelineDescriptor{
		Label: cfg.Label,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: ve,
			Buffers:    buffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: fe,
			Targets: []gputypes.ColorTargetState{{
				Format:    cfg.Format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	}
}

// RenderPipeline returns the backend pipeline handle.
func (pl *Pipeline) RenderPipeline() hal.RenderPipeline {
	return pl.renderPipeline
}

// Release releases the pipeline and then its shader module.
// It is safe to call more than once.
func (pl *Pipeline) Release() {
	if pl == nil {
		return
	}
	if pl.renderPipeline != nil {
		pl.renderPipeline.Release()
		pl.renderPipeline = nil
	}
	if pl.module != nil {
		pl.module.Release()
		pl.module = nil
	}
}
