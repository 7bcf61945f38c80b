//go:build linux || darwin

/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Cell is a fixed-size, one-machine-word shared-memory object, mapped once
// at open/attach time and held mapped for the endpoint's lifetime -- unlike
// the body object, a metadata cell never resizes or remaps per message.
type Cell struct {
	region *Region
	word   *int32
}

// OpenCell creates (if create) or attaches to, then permanently maps, a
// 4-byte metadata cell.
func OpenCell(name string, create bool) (*Cell, error) {
	r, err := Open(name, create)
	if err != nil {
		return nil, err
	}
	if create {
		if err := r.Resize(4); err != nil {
			r.Close()
			return nil, err
		}
	}
	data, err := r.Map(4)
	if err != nil {
		r.Close()
		return nil, err
	}
	if len(data) != 4 {
		r.Close()
		return nil, fmt.Errorf("metadata cell %q mapped at unexpected size %d", name, len(data))
	}
	return &Cell{region: r, word: (*int32)(unsafe.Pointer(&data[0]))}, nil
}

// Load reads the cell's current value. Safe to call concurrently with Store
// from the peer process -- the semaphore post/wait edges around a send/recv
// provide the actual ordering; the atomic op here only guarantees the word
// itself is read/written without tearing.
func (c *Cell) Load() int32 { return atomic.LoadInt32(c.word) }

func (c *Cell) Store(v int32) { atomic.StoreInt32(c.word, v) }

func (c *Cell) Close() error { return c.region.Close() }
