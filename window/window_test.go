// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package window

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidSize(t *testing.T) {
	_, err := New("bad", image.Point{0, 480})
	assert.Error(t, err)
	_, err = New("bad", image.Point{640, -1})
	assert.Error(t, err)
}

func TestZeroWindow(t *testing.T) {
	w := &Window{}
	assert.True(t, w.ShouldClose())
	assert.Equal(t, image.Point{}, w.FramebufferSize())
	w.Destroy()
}

func TestWindow(t *testing.T) {
	t.Skip("Need display on CI")
	require.NoError(t, Init())
	defer Terminate()
	w, err := New("test", image.Point{320, 240})
	require.NoError(t, err)
	defer w.Destroy()
	assert.False(t, w.ShouldClose())
	w.PollEvents()
	assert.NotNil(t, w.GLFW())
}
