// Package hk provides a mechanism for registering cleanup functions which are
// invoked at specified intervals, so a reaper (or any other periodic job)
// doesn't need to manage its own ticker and goroutine.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"sync"
	"time"

	"github.com/arobinson/mpichan/cmn/nlog"
)

// NameSuffix disambiguates registrations across repeated test runs in the
// same process; production callers leave it empty.
var NameSuffix string

// request is a registered job: cb returns the duration until it should next
// run, so a job can back off (or speed up) based on what it found.
type request struct {
	cb  func() time.Duration
	due time.Time
}

// Housekeeper runs registered jobs on their own schedules from a single
// goroutine; Reg/UnregIf are safe to call concurrently with Run.
type Housekeeper struct {
	mu      sync.Mutex
	jobs    map[string]*request
	started chan struct{}
	stop    chan struct{}
	tick    time.Duration
}

// DefaultHK is the process-wide housekeeper; most callers only ever touch
// this one via the package-level Reg/UnregIf helpers.
var DefaultHK = New(time.Second)

func New(tick time.Duration) *Housekeeper {
	return &Housekeeper{
		jobs:    make(map[string]*request),
		started: make(chan struct{}),
		stop:    make(chan struct{}),
		tick:    tick,
	}
}

// Reg registers name to run cb first once interval has elapsed from now;
// after each run, cb's return value is the delay until the next one.
// interval <= 0 uses the housekeeper's tick as the first delay.
func Reg(name string, cb func() time.Duration, interval time.Duration) {
	DefaultHK.Reg(name, cb, interval)
}

func (hk *Housekeeper) Reg(name string, cb func() time.Duration, interval time.Duration) {
	hk.mu.Lock()
	defer hk.mu.Unlock()
	if interval <= 0 {
		interval = hk.tick
	}
	hk.jobs[name] = &request{cb: cb, due: time.Now().Add(interval)}
}

// UnregIf removes name's registration, if registered.
func UnregIf(name string) { DefaultHK.UnregIf(name) }

func (hk *Housekeeper) UnregIf(name string) {
	hk.mu.Lock()
	delete(hk.jobs, name)
	hk.mu.Unlock()
}

// WaitStarted blocks until Run's first tick has happened. Used by tests that
// register a job and need the housekeeper loop actually running first.
func WaitStarted() { <-DefaultHK.started }

func (hk *Housekeeper) WaitStarted() { <-hk.started }

// Run drives registered jobs until Stop is called. Intended to be started in
// its own goroutine once at process startup.
func (hk *Housekeeper) Run() {
	ticker := time.NewTicker(hk.tick)
	defer ticker.Stop()

	var startedOnce sync.Once
	for {
		select {
		case <-hk.stop:
			return
		case now := <-ticker.C:
			startedOnce.Do(func() { close(hk.started) })
			hk.fire(now)
		}
	}
}

func (hk *Housekeeper) fire(now time.Time) {
	hk.mu.Lock()
	due := make([]string, 0, len(hk.jobs))
	for name, r := range hk.jobs {
		if !now.Before(r.due) {
			due = append(due, name)
		}
	}
	hk.mu.Unlock()

	for _, name := range due {
		hk.mu.Lock()
		r, ok := hk.jobs[name]
		hk.mu.Unlock()
		if !ok {
			continue
		}
		next := func() (d time.Duration) {
			defer func() {
				if p := recover(); p != nil {
					nlog.Errorf("hk: job %q panicked: %v", name, p)
					d = hk.tick
				}
			}()
			return r.cb()
		}()
		hk.mu.Lock()
		if _, ok := hk.jobs[name]; ok {
			r.due = now.Add(next)
		}
		hk.mu.Unlock()
	}
}

func (hk *Housekeeper) Stop() { close(hk.stop) }

// TestInit resets DefaultHK for a fresh test run.
func TestInit() {
	DefaultHK = New(10 * time.Millisecond)
}
