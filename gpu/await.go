// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import "sync/atomic"

// await bridges an asynchronous request into a blocking call.
// issue must start the request and arrange for complete to be called
// when it finishes; pump runs the backend's event processing, which is
// where the completion is typically delivered. await returns only after
// complete has been called, and only the first call counts.
// There is no timeout: a backend that never completes hangs the caller.
func await[T any](pump func(), issue func(complete func(T, error))) (T, error) {
	var (
		fired atomic.Bool
		done  atomic.Bool
		value T
		err   error
	)
	issue(func(v T, e error) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		value, err = v, e
		done.Store(true)
	})
	for !done.Load() {
		pump()
	}
	return value, err
}
