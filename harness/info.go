// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"text/tabwriter"

	"cogentcore.org/hellogpu/gpu"
	"cogentcore.org/hellogpu/hal"
	"cogentcore.org/hellogpu/webgpu"
	"github.com/gogpu/gputypes"
)

// Info prints the properties of the adapter and the device
// the configured preferences select.
func Info(c *Config) error {
	return InfoWith(c, webgpu.NewBackend(), os.Stdout)
}

// InfoWith writes the adapter and device properties from the
// given backend to w, using a headless session.
func InfoWith(c *Config, backend hal.Backend, w io.Writer) error {
	se, err := openHeadless(c, backend)
	if err != nil {
		return err
	}
	defer se.Release()

	fmt.Fprintf(w, "Backend:  %s\n", se.Backend)
	fmt.Fprintf(w, "Adapter:  %s\n", se.AdapterInfo.Name)
	fmt.Fprintf(w, "Vendor:   %s\n", se.AdapterInfo.Vendor)
	fmt.Fprintf(w, "Driver:   %s\n", se.AdapterInfo.Driver)
	fmt.Fprintf(w, "Type:     %s\n", se.AdapterInfo.AdapterType)
	fmt.Fprintf(w, "API:      %s\n", se.AdapterInfo.Backend)
	fmt.Fprintf(w, "\nAdapter features:\n")
	for _, f := range se.AdapterFeatures {
		fmt.Fprintf(w, "  - %s\n", f)
	}
	fmt.Fprintf(w, "\nLimits:\n")
	return WriteLimits(w, se.AdapterLimits, se.Device.Limits)
}

// WriteLimits writes a table of the adapter and device limits.
func WriteLimits(w io.Writer, adapter, device hal.Limits) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  Limit\tAdapter\tDevice\n")
	av := reflect.ValueOf(adapter)
	dv := reflect.ValueOf(device)
	for i := 0; i < av.NumField(); i++ {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", av.Type().Field(i).Name, limitString(av.Field(i)), limitString(dv.Field(i)))
	}
	return tw.Flush()
}

func limitString(v reflect.Value) string {
	u := v.Uint()
	if (v.Kind() == reflect.Uint32 && u == uint64(hal.LimitU32Undefined)) || u == hal.LimitU64Undefined {
		return "undefined"
	}
	return fmt.Sprint(u)
}

// Readback runs a buffer round trip on the GPU: data written into a
// source buffer through the queue is copied into a mappable buffer
// and read back.
func Readback(c *Config) error {
	data, err := ReadbackWith(c, webgpu.NewBackend())
	if err != nil {
		return err
	}
	fmt.Println("readback:", data)
	return nil
}

// ReadbackWith runs the buffer round trip of [Readback] on the given
// backend, returning the data read back, which is an error if it
// differs from what was written.
func ReadbackWith(c *Config, backend hal.Backend) ([]byte, error) {
	se, err := openHeadless(c, backend)
	if err != nil {
		return nil, err
	}
	defer se.Release()

	want := make([]byte, 16)
	for i := range want {
		want[i] = byte(i)
	}
	src, err := se.NewBufferInit("readback source", want, gputypes.BufferUsageCopySrc)
	if err != nil {
		return nil, err
	}
	dst, err := se.NewBuffer("readback destination", uint64(len(want)), gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	if err != nil {
		return nil, err
	}
	if err := gpu.CopyBuffer(se.Device, src, dst, uint64(len(want))); err != nil {
		return nil, err
	}
	got, err := dst.ReadSync()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(got, want) {
		return got, fmt.Errorf("harness: readback returned %v, expected %v", got, want)
	}
	return got, nil
}

// openHeadless opens a session without a surface.
func openHeadless(c *Config, backend hal.Backend) (*gpu.Session, error) {
	pp, err := ParsePowerPreference(c.PowerPreference)
	if err != nil {
		return nil, err
	}
	gpu.Debug = c.Debug
	return gpu.OpenSession(backend, nil, &gpu.SessionConfig{
		Label: "hellogpu",
		Adapter: gpu.AdapterOptions{
			PowerPreference: pp,
			ForceFallback:   c.ForceFallback,
		},
	})
}
