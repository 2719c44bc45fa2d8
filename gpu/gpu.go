// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu implements GPU session acquisition and the per-frame
// submission protocol on top of the [hal] graphics abstraction.
//
// Startup is strictly ordered, each step consuming the previous one:
// [ResolveAdapter] turns an instance into an [Adapter] that can present to
// a surface, [OpenDevice] upgrades the adapter into a [Device] with its
// Queue, [Surface.Configure] prepares the surface for presentation, and
// [BuildPipeline] compiles the single immutable [Pipeline]. [OpenSession]
// runs the whole sequence. A [FrameDriver] then renders one frame per
// call to [FrameDriver.RenderFrame].
//
// Everything is single-threaded: asynchronous API requests are bridged
// into blocking calls by pumping the backend until the completion
// callback has fired.
package gpu

import (
	"cogentcore.org/core/base/errors"
)

// Debug turns on verbose logging of adapter properties,
// resource releases and frame state transitions.
var Debug = false

var (
	// ErrNoInstance is returned when a nil instance is passed to [ResolveAdapter].
	ErrNoInstance = errors.New("gpu: no instance")

	// ErrNoAdapter is returned when an operation requires an adapter
	// that has not been resolved.
	ErrNoAdapter = errors.New("gpu: no adapter")

	// ErrAdapterRequest is returned when the driver stack denies the adapter request.
	ErrAdapterRequest = errors.New("gpu: adapter request failed")

	// ErrDeviceRequest is returned when the adapter denies the device request.
	ErrDeviceRequest = errors.New("gpu: device request failed")

	// ErrLimitExceeded is returned when a required limit is tighter
	// than what the adapter supports.
	ErrLimitExceeded = errors.New("gpu: required limit exceeds adapter limit")

	// ErrFeatureUnsupported is returned when a required feature is
	// not offered by the adapter.
	ErrFeatureUnsupported = errors.New("gpu: required feature not supported by adapter")

	// ErrNoDevice is returned when an operation requires a device
	// that has not been opened.
	ErrNoDevice = errors.New("gpu: no device")

	// ErrPipeline is returned when the render pipeline cannot be built.
	ErrPipeline = errors.New("gpu: pipeline build failed")

	// ErrSurfaceNotConfigured is returned when rendering to a surface
	// that has not been configured.
	ErrSurfaceNotConfigured = errors.New("gpu: surface not configured")

	// ErrDeviceLost is returned by callers that stop after a device-lost notification.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrBufferMap is returned when a buffer cannot be mapped.
	ErrBufferMap = errors.New("gpu: buffer map failed")
)
