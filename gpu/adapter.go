// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/hellogpu/hal"
)

// Adapter is a GPU adapter that can present to a given surface,
// with a snapshot of its properties. It is transient: it is only
// used to open a [Device] and to query the surface format,
// and is then released.
type Adapter struct {
	// Adapter is the backend adapter handle.
	Adapter hal.Adapter

	// Info has the name, vendor and backend of the adapter.
	Info hal.AdapterInfo

	// Features are the optional features the adapter offers.
	Features []hal.FeatureName

	// Limits are the best limits the adapter supports.
	Limits hal.Limits
}

// AdapterOptions are optional preferences for [ResolveAdapter].
type AdapterOptions struct {
	PowerPreference hal.PowerPreference

	// ForceFallback requests a software adapter.
	ForceFallback bool
}

// ResolveAdapter requests an adapter from the instance that is compatible
// with the given surface, blocking until the request has completed.
// opts may be nil. Failure is reported as an error wrapping
// [ErrAdapterRequest] with the message from the API; there is no retry.
func ResolveAdapter(inst hal.Instance, surface hal.Surface, opts *AdapterOptions) (*Adapter, error) {
	if inst == nil {
		return nil, errors.Log(ErrNoInstance)
	}
	if opts == nil {
		opts = &AdapterOptions{}
	}
	ro := &hal.RequestAdapterOptions{
		CompatibleSurface:    surface,
		PowerPreference:      opts.PowerPreference,
		ForceFallbackAdapter: opts.ForceFallback,
	}
	ha, err := await(inst.ProcessEvents, func(complete func(hal.Adapter, error)) {
		inst.RequestAdapter(ro, func(status hal.RequestStatus, adapter hal.Adapter, message string) {
			if status != hal.RequestStatusSuccess {
				complete(nil, fmt.Errorf("%w: %s: %s", ErrAdapterRequest, status, message))
				return
			}
			if adapter == nil {
				complete(nil, fmt.Errorf("%w: no adapter returned", ErrAdapterRequest))
				return
			}
			complete(adapter, nil)
		})
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	ad := &Adapter{
		Adapter:  ha,
		Info:     ha.Info(),
		Features: ha.Features(),
		Limits:   ha.Limits(),
	}
	if Debug {
		slog.Info("gpu adapter", "name", ad.Info.String(), "vendor", ad.Info.Vendor, "driver", ad.Info.Driver)
		slog.Info("gpu adapter limits", "MaxBufferSize", ad.Limits.MaxBufferSize,
			"MaxVertexBuffers", ad.Limits.MaxVertexBuffers, "MaxTextureDimension2D", ad.Limits.MaxTextureDimension2D)
	}
	return ad, nil
}

// HasFeature returns whether the adapter offers the given feature.
func (ad *Adapter) HasFeature(f hal.FeatureName) bool {
	return slices.Contains(ad.Features, f)
}

// Release releases the adapter. It is safe to call more than once.
func (ad *Adapter) Release() {
	if ad == nil || ad.Adapter == nil {
		return
	}
	ad.Adapter.Release()
	ad.Adapter = nil
}
