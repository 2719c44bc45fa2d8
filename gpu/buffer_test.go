// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"cogentcore.org/hellogpu/gpu/gputest"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferRoundTrip(t *testing.T) {
	b := gputest.NewBackend()
	_, dev := testDevice(t, b)
	defer dev.Release()

	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	src, err := NewBuffer(dev, "src", 16, gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	require.NoError(t, err)
	defer src.Release()
	dst, err := NewBuffer(dev, "dst", 16, gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, src.Write(0, data))
	require.NoError(t, CopyBuffer(dev, src, dst, 16))
	out, err := dst.ReadSync()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, out)

	assertOrder(t, b, "write buffer#1", "copy buffer#1 buffer#2", "submit commands#1", "map buffer#2", "unmap buffer#2")
	assert.True(t, b.Released("commands#1"))
	assert.True(t, b.Released("encoder#1"))
}

func TestNewBufferInit(t *testing.T) {
	b := gputest.NewBackend()
	_, dev := testDevice(t, b)
	defer dev.Release()

	bf, err := NewBufferInit(dev, "odd", []byte{7, 8, 9}, gputypes.BufferUsageVertex)
	require.NoError(t, err)
	defer bf.Release()
	assert.Equal(t, uint64(4), bf.Size)
	assert.NotZero(t, bf.Usage&gputypes.BufferUsageCopyDst)
	assert.Equal(t, []byte{7, 8, 9, 0}, bf.Buffer.(*gputest.Buffer).Data())

	fb, err := NewBufferFrom(dev, "floats", []float32{1, 2, 3}, gputypes.BufferUsageVertex)
	require.NoError(t, err)
	defer fb.Release()
	assert.Equal(t, uint64(12), fb.Size)
}

func TestBufferErrors(t *testing.T) {
	b := gputest.NewBackend()
	_, dev := testDevice(t, b)
	defer dev.Release()

	_, err := NewBuffer(nil, "none", 4, gputypes.BufferUsageVertex)
	assert.ErrorIs(t, err, ErrNoDevice)

	_, err = NewBuffer(dev, "huge", dev.Limits.MaxBufferSize+4, gputypes.BufferUsageVertex)
	assert.Error(t, err)

	src, err := NewBuffer(dev, "src", 16, gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	require.NoError(t, err)
	defer src.Release()
	dst, err := NewBuffer(dev, "dst", 8, gputypes.BufferUsageCopyDst)
	require.NoError(t, err)
	defer dst.Release()

	assert.Error(t, src.Write(2, []byte{1, 2, 3, 4}))
	assert.Error(t, src.Write(0, []byte{1, 2, 3}))
	assert.Error(t, src.Write(16, []byte{1, 2, 3, 4}))
	assert.Error(t, CopyBuffer(dev, src, dst, 6))
	assert.Error(t, CopyBuffer(dev, src, dst, 16))

	_, err = dst.ReadSync()
	assert.ErrorIs(t, err, ErrBufferMap)

	var nb *Buffer
	_, err = nb.ReadSync()
	assert.Error(t, err)
}

func TestMemSizeAlign(t *testing.T) {
	assert.Equal(t, 16, MemSizeAlign(12, 16))
	assert.Equal(t, 16, MemSizeAlign(16, 16))
	assert.Equal(t, 8, MemSizeAlign(5, 4))
}

func TestToBytes(t *testing.T) {
	assert.Nil(t, ToBytes([]float32{}))
	bs := ToBytes([]uint32{1, 2})
	assert.Len(t, bs, 8)
}
