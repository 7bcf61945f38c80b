//go:build !mono

// Package mono provides low-level monotonic time
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// NanoTime returns monotonic nanoseconds since an arbitrary reference point.
// Used instead of runtime.nanotime when the mono build tag (go:linkname) is
// unavailable, e.g. on toolchains that restrict linkname targets.
func NanoTime() int64 { return int64(time.Since(start)) }

// start is the reference point; time.Since reads its monotonic clock reading.
var start = time.Now()
