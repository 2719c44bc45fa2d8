// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/core/base/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a variant file.
type Format int32

const (
	TOML Format = iota
	YAML
)

// FormatFromPath returns the format implied by the file extension:
// .toml, or .yaml / .yml.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return TOML, fmt.Errorf("variant: %s: unsupported file type, must be .toml, .yaml or .yml", path)
}

// Open loads and validates the variant in the given file.
// A ShaderFile is read relative to the directory of the file.
func Open(path string) (*Variant, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Log(err)
	}
	v, err := Parse(b, f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse decodes and validates a variant. dir is the directory
// a ShaderFile is relative to.
func Parse(b []byte, f Format, dir string) (*Variant, error) {
	v := &Variant{}
	var err error
	switch f {
	case TOML:
		err = toml.Unmarshal(b, v)
	case YAML:
		err = yaml.Unmarshal(b, v)
	default:
		err = fmt.Errorf("unknown format %d", f)
	}
	if err != nil {
		return nil, fmt.Errorf("variant: decoding: %w", err)
	}
	if v.ShaderFile != "" {
		if v.Shader != "" {
			return nil, fmt.Errorf("variant %q: only one of shader and shader_file can be set", v.Name)
		}
		sp := v.ShaderFile
		if !filepath.IsAbs(sp) {
			sp = filepath.Join(dir, sp)
		}
		sb, err := os.ReadFile(sp)
		if err != nil {
			return nil, fmt.Errorf("variant %q: reading shader: %w", v.Name, err)
		}
		v.Shader = string(sb)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns the variant to draw: the one in file if it is
// non-empty, and otherwise the built-in variant with the given name.
func Get(name, file string) (*Variant, error) {
	if file != "" {
		return Open(file)
	}
	v, err := Builtin(name)
	if err != nil {
		return nil, err
	}
	return v, v.Validate()
}
