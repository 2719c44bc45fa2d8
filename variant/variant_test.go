// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"buffer", "color", "triangle"}, Names())
	for _, nm := range Names() {
		v, err := Builtin(nm)
		require.NoError(t, err, nm)
		require.NoError(t, v.Validate(), nm)
		assert.Equal(t, uint32(3), v.VertexCount, nm)
		assert.Contains(t, v.Shader, "fn vs_main", nm)
		assert.Contains(t, v.Shader, "fn fs_main", nm)
	}
	_, err := Builtin("square")
	assert.ErrorContains(t, err, "square")
}

func TestBuiltinCopies(t *testing.T) {
	a, err := Builtin("buffer")
	require.NoError(t, err)
	a.Vertices[0] = 99
	b, err := Builtin("buffer")
	require.NoError(t, err)
	assert.Equal(t, float32(0), b.Vertices[0])
}

func TestTriangleLayout(t *testing.T) {
	v, err := Builtin("triangle")
	require.NoError(t, err)
	assert.Nil(t, v.Layout())
	assert.Nil(t, v.VertexData())
}

func TestColorLayout(t *testing.T) {
	v, err := Builtin("color")
	require.NoError(t, err)
	assert.Equal(t, 5, v.Components())
	ly := v.Layout()
	require.NotNil(t, ly)
	assert.Equal(t, uint64(20), ly.ArrayStride)
	assert.Equal(t, gputypes.VertexStepModeVertex, ly.StepMode)
	require.Len(t, ly.Attributes, 2)
	assert.Equal(t, gputypes.VertexFormatFloat32x2, ly.Attributes[0].Format)
	assert.Equal(t, uint64(0), ly.Attributes[0].Offset)
	assert.Equal(t, gputypes.VertexFormatFloat32x3, ly.Attributes[1].Format)
	assert.Equal(t, uint64(8), ly.Attributes[1].Offset)
	assert.Equal(t, uint32(1), ly.Attributes[1].ShaderLocation)
	assert.Len(t, v.VertexData(), 3*20)

	pc := v.PipelineConfig(gputypes.TextureFormatBGRA8Unorm)
	assert.Equal(t, "color", pc.Label)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, pc.Format)
	assert.Equal(t, ly, pc.VertexLayout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		v    Variant
		err  string
	}{
		{"no name", Variant{Shader: "x"}, "missing name"},
		{"no shader", Variant{Name: "a"}, "missing shader"},
		{"vertices without attributes", Variant{Name: "a", Shader: "x", Vertices: []float32{1}}, "without attributes"},
		{"bad attribute", Variant{Name: "a", Shader: "x", Attributes: []int{5}, Vertices: []float32{1}}, "must be 1 to 4"},
		{"partial vertex", Variant{Name: "a", Shader: "x", Attributes: []int{2}, Vertices: []float32{1, 2, 3}}, "not a multiple"},
		{"too many", Variant{Name: "a", Shader: "x", Attributes: []int{2}, Vertices: []float32{1, 2}, VertexCount: 2}, "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.v.Validate(), tt.err)
		})
	}

	v := Variant{Name: "a", Shader: "x"}
	require.NoError(t, v.Validate())
	assert.Equal(t, uint32(DefaultVertexCount), v.VertexCount)

	v = Variant{Name: "a", Shader: "x", Attributes: []int{1}, Vertices: []float32{1, 2, 3, 4}}
	require.NoError(t, v.Validate())
	assert.Equal(t, uint32(4), v.VertexCount)
}

func TestOpenTOML(t *testing.T) {
	v, err := Open("testdata/gradient.toml")
	require.NoError(t, err)
	assert.Equal(t, "gradient", v.Name)
	assert.Equal(t, []int{2, 3}, v.Attributes)
	assert.Len(t, v.Vertices, 15)
	assert.Equal(t, uint32(3), v.VertexCount)
	assert.True(t, strings.Contains(v.Shader, "struct VertexOutput"))
}

func TestOpenYAML(t *testing.T) {
	v, err := Open("testdata/inline.yaml")
	require.NoError(t, err)
	assert.Equal(t, "inline", v.Name)
	assert.Equal(t, "vert", v.VertexEntry)
	assert.Equal(t, "frag", v.FragmentEntry)
	assert.Equal(t, uint32(6), v.VertexCount)
	assert.Contains(t, v.Shader, "fn frag()")
	assert.Nil(t, v.Layout())
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("testdata/bad.yaml")
	assert.ErrorContains(t, err, "not a multiple")

	_, err = Open("testdata/gradient.wgsl")
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = Open("testdata/missing.toml")
	assert.Error(t, err)

	_, err = Parse([]byte("name = \"x\"\nshader = \"a\"\nshader_file = \"b.wgsl\"\n"), TOML, "testdata")
	assert.ErrorContains(t, err, "only one of")

	_, err = Parse([]byte("name = \"x\"\nshader_file = \"none.wgsl\"\n"), TOML, "testdata")
	assert.ErrorContains(t, err, "reading shader")

	_, err = Parse([]byte("name: [\n"), YAML, "")
	assert.ErrorContains(t, err, "decoding")
}

func TestGet(t *testing.T) {
	v, err := Get("buffer", "")
	require.NoError(t, err)
	assert.Equal(t, "buffer", v.Name)

	v, err = Get("buffer", "testdata/gradient.toml")
	require.NoError(t, err)
	assert.Equal(t, "gradient", v.Name)
}
