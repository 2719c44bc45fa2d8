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

// CopyAlign is the required alignment in bytes of buffer sizes and
// offsets for queue writes and buffer-to-buffer copies.
const CopyAlign = 4

// note: Queue.WriteBuffer is the preferred method for writing, so we only need to manage Read

// Buffer is a GPU buffer owned by a [Device].
type Buffer struct {
	// Name of the buffer, used as a label
	Name string

	// Buffer is the backend buffer handle.
	Buffer hal.Buffer

	// Size is the allocated size in bytes.
	Size uint64

	// Usage are the usage flags the buffer was created with.
	Usage gputypes.BufferUsage

	device *Device
}

// MemSizeAlign returns the size aligned according to align byte increments
// e.g., if align = 16 and size = 12, it returns 16
func MemSizeAlign(size, align int) int {
	if size%align == 0 {
		return size
	}
	nb := size / align
	return (nb + 1) * align
}

// BufferMapError returns an error wrapping [ErrBufferMap] if the
// status is not success.
func BufferMapError(status hal.BufferMapStatus) error {
	if status != hal.BufferMapStatusSuccess {
		return fmt.Errorf("%w: status is %s", ErrBufferMap, status)
	}
	return nil
}

// NewBuffer creates a new uninitialized buffer of the given size,
// which must not exceed the device MaxBufferSize limit.
func NewBuffer(dev *Device, name string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	if dev == nil || dev.Device == nil {
		return nil, errors.Log(ErrNoDevice)
	}
	if size > dev.Limits.MaxBufferSize {
		return nil, errors.Log(fmt.Errorf("gpu.NewBuffer %s: size %d exceeds MaxBufferSize %d", name, size, dev.Limits.MaxBufferSize))
	}
	hb, err := dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: name,
		Size:  size,
		Usage: usage,
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	return &Buffer{Name: name, Buffer: hb, Size: size, Usage: usage, device: dev}, nil
}

// NewBufferInit creates a new buffer holding the given contents,
// padded with zeros to a multiple of [CopyAlign]. CopyDst is added
// to the usage, as the contents are written through the queue.
func NewBufferInit(dev *Device, name string, contents []byte, usage gputypes.BufferUsage) (*Buffer, error) {
	size := MemSizeAlign(max(len(contents), CopyAlign), CopyAlign)
	bf, err := NewBuffer(dev, name, uint64(size), usage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	data := contents
	if len(data) != size {
		data = make([]byte, size)
		copy(data, contents)
	}
	if err := bf.Write(0, data); err != nil {
		bf.Release()
		return nil, err
	}
	return bf, nil
}

// NewBufferFrom creates a new buffer holding the given values.
func NewBufferFrom[E any](dev *Device, name string, from []E, usage gputypes.BufferUsage) (*Buffer, error) {
	return NewBufferInit(dev, name, ToBytes(from), usage)
}

// Write writes data to the buffer at the given offset through the
// queue. The write is ordered before any later submission.
// Offset and data length must be multiples of [CopyAlign].
func (bf *Buffer) Write(offset uint64, data []byte) error {
	if err := bf.nilCheck(); errors.Log(err) != nil {
		return err
	}
	if offset%CopyAlign != 0 || len(data)%CopyAlign != 0 {
		return errors.Log(fmt.Errorf("gpu.Buffer Write %s: offset %d and size %d must be multiples of %d", bf.Name, offset, len(data), CopyAlign))
	}
	if offset+uint64(len(data)) > bf.Size {
		return errors.Log(fmt.Errorf("gpu.Buffer Write %s: %d bytes at offset %d exceeds size %d", bf.Name, len(data), offset, bf.Size))
	}
	return errors.Log(bf.device.Queue.WriteBuffer(bf.Buffer, offset, data))
}

// CopyBuffer records and submits a copy of size bytes from src to dst,
// both starting at offset 0. The size must be a multiple of [CopyAlign]
// and fit in both buffers.
func CopyBuffer(dev *Device, src, dst *Buffer, size uint64) error {
	if dev == nil || dev.Device == nil {
		return errors.Log(ErrNoDevice)
	}
	if size%CopyAlign != 0 {
		return errors.Log(fmt.Errorf("gpu.CopyBuffer: size %d must be a multiple of %d", size, CopyAlign))
	}
	if size > src.Size || size > dst.Size {
		return errors.Log(fmt.Errorf("gpu.CopyBuffer: size %d exceeds %s (%d) or %s (%d)", size, src.Name, src.Size, dst.Name, dst.Size))
	}
	enc, err := dev.Device.CreateCommandEncoder("copy encoder")
	if errors.Log(err) != nil {
		return err
	}
	defer enc.Release()
	if err := enc.CopyBufferToBuffer(src.Buffer, 0, dst.Buffer, 0, size); errors.Log(err) != nil {
		return err
	}
	cmds, err := enc.Finish("copy commands")
	if errors.Log(err) != nil {
		return err
	}
	dev.Queue.Submit(cmds)
	cmds.Release()
	return nil
}

// ReadSync maps the buffer for reading, waiting on the device until the
// map is complete, and returns a copy of its contents. The buffer must
// have been created with MapRead usage. It is unmapped before returning.
func (bf *Buffer) ReadSync() ([]byte, error) {
	if err := bf.nilCheck(); errors.Log(err) != nil {
		return nil, err
	}
	dv := bf.device.Device
	status, err := await(func() { dv.Poll(true) }, func(complete func(hal.BufferMapStatus, error)) {
		merr := bf.Buffer.MapAsync(gputypes.MapModeRead, 0, bf.Size, func(s hal.BufferMapStatus) {
			complete(s, nil)
		})
		if merr != nil {
			complete(hal.BufferMapStatusError, merr)
		}
	})
	if err != nil {
		return nil, errors.Log(fmt.Errorf("%w: %s: %w", ErrBufferMap, bf.Name, err))
	}
	if err := BufferMapError(status); errors.Log(err) != nil {
		return nil, err
	}
	bm := bf.Buffer.MappedRange(0, bf.Size)
	out := make([]byte, len(bm))
	copy(out, bm)
	return out, errors.Log(bf.Buffer.Unmap())
}

func (bf *Buffer) nilCheck() error {
	if bf == nil || bf.Buffer == nil {
		return fmt.Errorf("gpu.Buffer: buffer is nil")
	}
	return nil
}

// Release releases the buffer. It is safe to call more than once.
func (bf *Buffer) Release() {
	if bf == nil || bf.Buffer == nil {
		return
	}
	bf.Buffer.Release()
	bf.Buffer = nil
}
