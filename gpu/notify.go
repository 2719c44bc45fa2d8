// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"sync/atomic"
	"time"

	"cogentcore.org/hellogpu/hal"
)

// DefaultNotificationCapacity is the buffer size used for
// [Notifications] created by [OpenDevice] when none is given.
const DefaultNotificationCapacity = 64

// NotificationKinds are the kinds of out-of-band device notifications.
type NotificationKinds int32

const (
	// DeviceLostNotification reports that the device has been lost.
	DeviceLostNotification NotificationKinds = iota

	// WorkDoneNotification reports that submitted queue work has completed.
	WorkDoneNotification
)

func (k NotificationKinds) String() string {
	switch k {
	case DeviceLostNotification:
		return "device-lost"
	case WorkDoneNotification:
		return "work-done"
	}
	return fmt.Sprintf("NotificationKinds(%d)", int32(k))
}

// Notification is one out-of-band message from the backend.
type Notification struct {
	Kind NotificationKinds

	// Reason is set for DeviceLostNotification.
	Reason hal.DeviceLostReason

	// Status is set for WorkDoneNotification.
	Status hal.QueueWorkDoneStatus

	Message string
	Time    time.Time
}

func (n Notification) String() string {
	switch n.Kind {
	case DeviceLostNotification:
		if n.Message == "" {
			return fmt.Sprintf("device lost: %s", n.Reason)
		}
		return fmt.Sprintf("device lost: %s: %s", n.Reason, n.Message)
	case WorkDoneNotification:
		return fmt.Sprintf("queue work done: %s", n.Status)
	}
	return n.Kind.String()
}

// IsFatal returns whether the notification means the device can no
// longer be used. A device destroyed by its own release is not fatal.
func (n Notification) IsFatal() bool {
	return n.Kind == DeviceLostNotification && n.Reason != hal.DeviceLostReasonDestroyed
}

// Notifications is a bounded channel of out-of-band notifications,
// filled from backend callbacks and drained by the main loop.
// Posting never blocks: when the channel is full the notification
// is dropped and counted.
type Notifications struct {
	ch      chan Notification
	dropped atomic.Int64
}

// NewNotifications returns a new Notifications with the given capacity.
func NewNotifications(capacity int) *Notifications {
	return &Notifications{ch: make(chan Notification, max(1, capacity))}
}

// Post adds a notification, dropping it if the channel is full.
func (nt *Notifications) Post(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	select {
	case nt.ch <- n:
	default:
		nt.dropped.Add(1)
	}
}

// C returns the receive side of the channel.
func (nt *Notifications) C() <-chan Notification {
	return nt.ch
}

// Drain returns all pending notifications without blocking.
func (nt *Notifications) Drain() []Notification {
	var ns []Notification
	for {
		select {
		case n := <-nt.ch:
			ns = append(ns, n)
		default:
			return ns
		}
	}
}

// Dropped returns the number of notifications dropped because the
// channel was full.
func (nt *Notifications) Dropped() int64 {
	return nt.dropped.Load()
}
