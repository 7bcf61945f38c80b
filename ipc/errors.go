/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package ipc

import "fmt"

// ErrResourceFailure reports a semaphore or shared-memory syscall failing
// during send/recv -- per spec.md §7, this is always fatal to the channel:
// the caller's only useful response is to give up and let the controller
// tear the channel down, not retry, so callers only need to distinguish the
// kind and not reconstruct a cause chain.
type ErrResourceFailure struct {
	Op  string
	Err error
}

func (e *ErrResourceFailure) Error() string { return fmt.Sprintf("ipc: %s: %v", e.Op, e.Err) }
func (e *ErrResourceFailure) Unwrap() error { return e.Err }

// ErrMapFailure reports the body object failing to resize or map at the size
// either side's metadata cells claim.
type ErrMapFailure struct {
	Op   string
	Size int
	Err  error
}

func (e *ErrMapFailure) Error() string {
	return fmt.Sprintf("ipc: %s at %d bytes: %v", e.Op, e.Size, e.Err)
}
func (e *ErrMapFailure) Unwrap() error { return e.Err }

// ErrOutOfSpace reports the body object failing to resize because the
// shared-memory filesystem backing it (/dev/shm or its mount) is full. It is
// split out from ErrMapFailure because the caller's useful response differs:
// free space or grow the tmpfs mount, not retry the rendezvous.
type ErrOutOfSpace struct {
	Size int
	Err  error
}

func (e *ErrOutOfSpace) Error() string {
	return fmt.Sprintf("ipc: send: resize body to %d bytes: out of shared-memory space: %v", e.Size, e.Err)
}
func (e *ErrOutOfSpace) Unwrap() error { return e.Err }

// ErrProtocolViolation reports a size/type cell holding a value no correctly
// functioning peer would ever write -- a negative or implausibly large
// length, most likely from an uninitialized cell or a peer that crashed
// mid-write.
type ErrProtocolViolation struct {
	Reason string
}

func (e *ErrProtocolViolation) Error() string { return "ipc: protocol violation: " + e.Reason }
