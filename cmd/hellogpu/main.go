// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hellogpu opens a window and draws a triangle in it with WebGPU.
package main

import (
	"runtime"

	"cogentcore.org/core/cli"
	"cogentcore.org/hellogpu/harness"
)

func init() {
	// must lock main thread for gpu!
	runtime.LockOSThread()
}

func main() {
	opts := cli.DefaultOptions("hellogpu", "Draws a triangle with WebGPU, and reports on the GPU it runs on.")
	opts.DefaultFiles = []string{"hellogpu.toml"}
	cli.Run(opts, &harness.Config{}, harness.Run, harness.Info, harness.Readback)
}
