//go:build debug

// Package debug provides assertions that compile out entirely in release
// builds and are enabled with the "debug" build tag.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"
	"sync"
)

func ON() bool { return true }

func Infof(format string, args ...any) { fmt.Printf("[DEBUG] "+format+"\n", args...) }

func Func(f func()) { f() }

func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprintln(append([]any{"assertion failed:"}, args...)...))
	}
}

func AssertFunc(f func() bool, args ...any) { Assert(f(), args...) }

func AssertNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// Mutex lock-state checks rely on the race-detector-safe TryLock probe
// rather than unexported runtime fields.

func AssertMutexLocked(mu *sync.Mutex) {
	Assert(!mu.TryLock(), "mutex not locked")
}

func AssertRWMutexLocked(mu *sync.RWMutex) {
	Assert(!mu.TryLock(), "rwmutex not locked")
}

func AssertRWMutexRLocked(mu *sync.RWMutex) {
	locked := !mu.TryLock()
	if !locked {
		mu.Unlock()
	}
	Assert(locked, "rwmutex not rlocked")
}
