// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	_ "embed"
	"fmt"
	"slices"

	"cogentcore.org/core/math32"
)

//go:embed shaders/triangle.wgsl
var triangleShader string

//go:embed shaders/buffer.wgsl
var bufferShader string

//go:embed shaders/color.wgsl
var colorShader string

// trianglePositions are the corners of the triangle, counter-clockwise.
var trianglePositions = []math32.Vector2{
	math32.Vec2(0, 0.5),
	math32.Vec2(-0.5, -0.5),
	math32.Vec2(0.5, -0.5),
}

var triangleColors = []math32.Vector3{
	math32.Vec3(1, 0, 0),
	math32.Vec3(0, 1, 0),
	math32.Vec3(0, 0, 1),
}

var builtins = map[string]func() *Variant{
	"triangle": func() *Variant {
		return &Variant{
			Name:        "triangle",
			Doc:         "triangle with positions generated in the vertex shader",
			Shader:      triangleShader,
			VertexCount: 3,
		}
	},
	"buffer": func() *Variant {
		var vs []float32
		for _, p := range trianglePositions {
			vs = append(vs, p.X, p.Y)
		}
		return &Variant{
			Name:        "buffer",
			Doc:         "triangle with positions in a vertex buffer",
			Shader:      bufferShader,
			Attributes:  []int{2},
			Vertices:    vs,
			VertexCount: 3,
		}
	},
	"color": func() *Variant {
		var vs []float32
		for i, p := range trianglePositions {
			c := triangleColors[i]
			vs = append(vs, p.X, p.Y, c.X, c.Y, c.Z)
		}
		return &Variant{
			Name:        "color",
			Doc:         "triangle with interleaved position and color in a vertex buffer",
			Shader:      colorShader,
			Attributes:  []int{2, 3},
			Vertices:    vs,
			VertexCount: 3,
		}
	},
}

// Names returns the sorted names of the built-in variants.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for nm := range builtins {
		names = append(names, nm)
	}
	slices.Sort(names)
	return names
}

// Builtin returns a new copy of the built-in variant with the given name.
func Builtin(name string) (*Variant, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("variant: unknown variant %q, must be one of %v", name, Names())
	}
	return fn(), nil
}
