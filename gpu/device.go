// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/hellogpu/hal"
)

// DeviceRequest holds the requirements for [OpenDevice].
type DeviceRequest struct {
	// optional label for the device
	Label string

	// RequiredFeatures must all be offered by the adapter.
	RequiredFeatures []hal.FeatureName

	// RequiredLimits, if nil, is [RequiredLimits]: fully unconstrained.
	RequiredLimits *hal.Limits

	// Notifications receives device-lost notifications.
	// If nil, a new one with [DefaultNotificationCapacity] is made.
	Notifications *Notifications
}

// Device holds the logical device and its default Queue.
// It lives for the whole run of the application.
type Device struct {
	// Device is the backend device handle.
	Device hal.Device

	// Queue is the single default queue of the device.
	Queue hal.Queue

	// Features are the features actually granted.
	Features []hal.FeatureName

	// Limits are the limits actually granted.
	Limits hal.Limits

	// Notifications receives out-of-band device-lost and
	// queue work done notifications.
	Notifications *Notifications
}

// OpenDevice upgrades the adapter into a logical device, blocking until
// the request has completed. A device-lost handler is registered for
// the lifetime of the device, which records the loss to
// [Device.Notifications] and logs it, and never fails the caller.
// Required limits and features are checked against the adapter first,
// so that a request the adapter cannot satisfy is rejected up front.
// req may be nil.
func OpenDevice(ad *Adapter, req *DeviceRequest) (*Device, error) {
	if ad == nil || ad.Adapter == nil {
		return nil, errors.Log(ErrNoAdapter)
	}
	if req == nil {
		req = &DeviceRequest{}
	}
	limits := RequiredLimits()
	if req.RequiredLimits != nil {
		limits = *req.RequiredLimits
	}
	if err := CheckLimits(limits, ad.Limits); err != nil {
		return nil, errors.Log(err)
	}
	for _, f := range req.RequiredFeatures {
		if !ad.HasFeature(f) {
			return nil, errors.Log(fmt.Errorf("%w: %s", ErrFeatureUnsupported, f))
		}
	}
	nt := req.Notifications
	if nt == nil {
		nt = NewNotifications(DefaultNotificationCapacity)
	}
	desc := &hal.DeviceDescriptor{
		Label:            req.Label,
		RequiredFeatures: req.RequiredFeatures,
		RequiredLimits:   &limits,
		DeviceLost: func(reason hal.DeviceLostReason, message string) {
			n := Notification{Kind: DeviceLostNotification, Reason: reason, Message: message}
			nt.Post(n)
			if n.IsFatal() {
				slog.Error("gpu device lost", "reason", reason, "message", message)
			} else if Debug {
				slog.Info("gpu device lost", "reason", reason, "message", message)
			}
		},
	}
	hd, err := await(ad.Adapter.ProcessEvents, func(complete func(hal.Device, error)) {
		ad.Adapter.RequestDevice(desc, func(status hal.RequestStatus, device hal.Device, message string) {
			if status != hal.RequestStatusSuccess {
				complete(nil, fmt.Errorf("%w: %s: %s", ErrDeviceRequest, status, message))
				return
			}
			if device == nil {
				complete(nil, fmt.Errorf("%w: no device returned", ErrDeviceRequest))
				return
			}
			complete(device, nil)
		})
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	dv := &Device{
		Device:        hd,
		Queue:         hd.Queue(),
		Features:      hd.Features(),
		Limits:        hd.Limits(),
		Notifications: nt,
	}
	if Debug {
		slog.Info("gpu device", "label", req.Label, "features", len(dv.Features),
			"MaxBufferSize", dv.Limits.MaxBufferSize, "MaxVertexBuffers", dv.Limits.MaxVertexBuffers)
	}
	return dv, nil
}

// WaitDone waits until the device is done with all submitted work.
func (dv *Device) WaitDone() {
	if dv == nil || dv.Device == nil {
		return
	}
	dv.Device.Poll(true)
}

// Poll delivers any completed callbacks without blocking.
func (dv *Device) Poll() {
	if dv == nil || dv.Device == nil {
		return
	}
	dv.Device.Poll(false)
}

// OnWorkDone registers a queue work done callback that records the
// status to [Device.Notifications]. It is informational only.
func (dv *Device) OnWorkDone() {
	nt := dv.Notifications
	dv.Queue.OnSubmittedWorkDone(func(status hal.QueueWorkDoneStatus) {
		nt.Post(Notification{Kind: WorkDoneNotification, Status: status})
	})
}

// Release releases the queue and then the device.
// It is safe to call more than once.
func (dv *Device) Release() {
	if dv == nil || dv.Device == nil {
		return
	}
	if dv.Queue != nil {
		dv.Queue.Release()
		dv.Queue = nil
	}
	dv.Device.Release()
	dv.Device = nil
}
