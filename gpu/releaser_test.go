// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"errors"
	"testing"

	"cogentcore.org/hellogpu/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwait(t *testing.T) {
	var pending func()
	pumps := 0
	pump := func() {
		pumps++
		if pumps == 3 && pending != nil {
			pending()
		}
	}
	v, err := await(pump, func(complete func(int, error)) {
		pending = func() {
			complete(42, nil)
			complete(7, errors.New("late"))
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, pumps)
}

func TestAwaitImmediate(t *testing.T) {
	pumps := 0
	v, err := await(func() { pumps++ }, func(complete func(string, error)) {
		complete("", errors.New("denied"))
	})
	assert.EqualError(t, err, "denied")
	assert.Empty(t, v)
	assert.Zero(t, pumps)
}

func TestReleaser(t *testing.T) {
	var order []string
	var rl Releaser
	add := func(name string) {
		rl.Add(name, func() { order = append(order, name) })
	}
	add("instance")
	add("surface")
	add("adapter")
	add("device")
	assert.Equal(t, 4, rl.Len())

	assert.True(t, rl.ReleaseNow("instance"))
	assert.False(t, rl.ReleaseNow("instance"))
	assert.False(t, rl.Has("instance"))
	assert.True(t, rl.Has("adapter"))
	add("pipeline")

	rl.Release()
	rl.Release()
	assert.Equal(t, []string{"instance", "pipeline", "device", "adapter", "surface"}, order)
	assert.Zero(t, rl.Len())
}

type countReleaser struct{ n int }

func (c *countReleaser) Release() { c.n++ }

func TestReleaserHal(t *testing.T) {
	var rl Releaser
	c := &countReleaser{}
	rl.AddReleaser("counted", c)
	rl.AddReleaser("nil", hal.Releaser(nil))
	assert.Equal(t, 1, rl.Len())
	rl.Release()
	rl.Release()
	assert.Equal(t, 1, c.n)
}

func TestNotifications(t *testing.T) {
	nt := NewNotifications(2)
	nt.Post(Notification{Kind: WorkDoneNotification})
	nt.Post(Notification{Kind: DeviceLostNotification, Reason: hal.DeviceLostReasonDestroyed})
	nt.Post(Notification{Kind: DeviceLostNotification, Reason: hal.DeviceLostReasonUnknown})
	assert.Equal(t, int64(1), nt.Dropped())

	ns := nt.Drain()
	require.Len(t, ns, 2)
	assert.Equal(t, WorkDoneNotification, ns[0].Kind)
	assert.False(t, ns[0].Time.IsZero())
	assert.False(t, ns[1].IsFatal())
	assert.Equal(t, "device lost: destroyed", ns[1].String())
	assert.Empty(t, nt.Drain())

	nt.Post(Notification{Kind: DeviceLostNotification, Message: "hung"})
	n := <-nt.C()
	assert.True(t, n.IsFatal())
	assert.Equal(t, "device-lost", n.Kind.String())
}
