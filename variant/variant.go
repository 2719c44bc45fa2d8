// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package variant defines the demo variants the harness can draw:
// a shader program with optional vertex data. Variants are either
// built in (see [Names]) or loaded from TOML or YAML files.
package variant

import (
	"fmt"

	"cogentcore.org/hellogpu/gpu"
	"github.com/gogpu/gputypes"
)

// DefaultVertexCount is the vertex count of a variant
// without vertex data that does not specify one.
const DefaultVertexCount = 3

// Variant is one demo: a WGSL shader with both entry points and
// the vertex data it draws, if any.
type Variant struct {
	// Name of the variant.
	Name string `toml:"name" yaml:"name"`

	// Doc is a short description.
	Doc string `toml:"doc" yaml:"doc"`

	// Shader is the WGSL source.
	Shader string `toml:"shader" yaml:"shader"`

	// ShaderFile is a file to read the WGSL source from, relative
	// to the variant file. Only one of Shader and ShaderFile can be set.
	ShaderFile string `toml:"shader_file" yaml:"shader_file"`

	// VertexEntry and FragmentEntry are the entry points,
	// vs_main and fs_main if empty.
	VertexEntry   string `toml:"vertex_entry" yaml:"vertex_entry"`
	FragmentEntry string `toml:"fragment_entry" yaml:"fragment_entry"`

	// Attributes are the number of float32 components of each vertex
	// attribute, at consecutive shader locations starting at 0, e.g.
	// [2, 3] for a vec2 position followed by a vec3 color.
	// Empty if the shader takes no vertex input.
	Attributes []int `toml:"attributes" yaml:"attributes"`

	// Vertices is the interleaved vertex data.
	Vertices []float32 `toml:"vertices" yaml:"vertices"`

	// VertexCount is the number of vertices drawn. It defaults to the
	// number of vertices in Vertices, or DefaultVertexCount without them.
	VertexCount uint32 `toml:"vertex_count" yaml:"vertex_count"`
}

// Components returns the number of float32 components per vertex.
func (v *Variant) Components() int {
	n := 0
	for _, a := range v.Attributes {
		n += a
	}
	return n
}

// Validate checks the variant and fills in the default vertex count.
func (v *Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variant: missing name")
	}
	if v.Shader == "" {
		return fmt.Errorf("variant %q: missing shader", v.Name)
	}
	if len(v.Attributes) == 0 {
		if len(v.Vertices) > 0 {
			return fmt.Errorf("variant %q: vertices without attributes", v.Name)
		}
		if v.VertexCount == 0 {
			v.VertexCount = DefaultVertexCount
		}
		return nil
	}
	for i, a := range v.Attributes {
		if a < 1 || a > 4 {
			return fmt.Errorf("variant %q: attribute %d has %d components, must be 1 to 4", v.Name, i, a)
		}
	}
	nc := v.Components()
	if len(v.Vertices) == 0 || len(v.Vertices)%nc != 0 {
		return fmt.Errorf("variant %q: %d vertex values is not a multiple of %d components", v.Name, len(v.Vertices), nc)
	}
	nv := uint32(len(v.Vertices) / nc)
	if v.VertexCount == 0 {
		v.VertexCount = nv
	}
	if v.VertexCount > nv {
		return fmt.Errorf("variant %q: vertex count %d exceeds the %d vertices given", v.Name, v.VertexCount, nv)
	}
	return nil
}

var vertexFormats = [...]gputypes.VertexFormat{
	1: gputypes.VertexFormatFloat32,
	2: gputypes.VertexFormatFloat32x2,
	3: gputypes.VertexFormatFloat32x3,
	4: gputypes.VertexFormatFloat32x4,
}

// Layout returns the vertex buffer layout of the variant,
// nil if it has no vertex data.
func (v *Variant) Layout() *gputypes.VertexBufferLayout {
	if len(v.Attributes) == 0 {
		return nil
	}
	ly := &gputypes.VertexBufferLayout{StepMode: gputypes.VertexStepModeVertex}
	off := uint64(0)
	for i, a := range v.Attributes {
		ly.Attributes = append(ly.Attributes, gputypes.VertexAttribute{
			Format:         vertexFormats[a],
			Offset:         off,
			ShaderLocation: uint32(i),
		})
		off += uint64(a) * 4
	}
	ly.ArrayStride = off
	return ly
}

// VertexData returns the vertex data as bytes, nil if none.
func (v *Variant) VertexData() []byte {
	return gpu.ToBytes(v.Vertices)
}

// PipelineConfig returns the pipeline configuration of the variant
// for the given color target format.
func (v *Variant) PipelineConfig(format gputypes.TextureFormat) gpu.PipelineConfig {
	return gpu.PipelineConfig{
		Label:         v.Name,
		Shader:        v.Shader,
		VertexEntry:   v.VertexEntry,
		FragmentEntry: v.FragmentEntry,
		VertexLayout:  v.Layout(),
		Format:        format,
	}
}
