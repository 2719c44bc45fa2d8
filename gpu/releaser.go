// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"log/slog"

	"cogentcore.org/hellogpu/hal"
)

// Releaser pairs every acquired resource with its release, and runs
// the releases in reverse order of acquisition. Each resource is
// released at most once, whether through [Releaser.ReleaseNow] or
// [Releaser.Release], so it can be used on every exit path.
type Releaser struct {
	items []releaseItem
}

type releaseItem struct {
	name    string
	release func()
}

// Add registers a release function under the given name.
func (rl *Releaser) Add(name string, release func()) {
	rl.items = append(rl.items, releaseItem{name: name, release: release})
}

// AddReleaser registers a [hal.Releaser] under the given name.
// A nil releaser is ignored.
func (rl *Releaser) AddReleaser(name string, r hal.Releaser) {
	if r == nil {
		return
	}
	rl.Add(name, r.Release)
}

// Len returns the number of resources still pending release.
func (rl *Releaser) Len() int {
	return len(rl.items)
}

// Has returns whether a resource with the given name is pending release.
func (rl *Releaser) Has(name string) bool {
	return rl.index(name) >= 0
}

func (rl *Releaser) index(name string) int {
	for i := len(rl.items) - 1; i >= 0; i-- {
		if rl.items[i].name == name {
			return i
		}
	}
	return -1
}

// ReleaseNow releases the most recently added resource with the given
// name immediately, out of order, and forgets it.
// It returns false if there is no such resource.
func (rl *Releaser) ReleaseNow(name string) bool {
	i := rl.index(name)
	if i < 0 {
		return false
	}
	it := rl.items[i]
	rl.items = append(rl.items[:i], rl.items[i+1:]...)
	rl.run(it)
	return true
}

// Release releases all pending resources, most recent first.
// Calling it again is a no-op.
func (rl *Releaser) Release() {
	for len(rl.items) > 0 {
		n := len(rl.items) - 1
		it := rl.items[n]
		rl.items = rl.items[:n]
		rl.run(it)
	}
}

func (rl *Releaser) run(it releaseItem) {
	if Debug {
		slog.Info("gpu release", "resource", it.name)
	}
	it.release()
}
