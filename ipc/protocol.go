/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package ipc

import (
	"fmt"
	"time"

	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/stats"
)

// maxMessageSize bounds a single message body, guarding against a corrupt or
// hostile size cell driving an enormous ftruncate/mmap.
const maxMessageSize = 1 << 30 // 1 GiB

// Send transfers data to the peer and blocks until the peer has taken
// delivery. tag is carried opaquely alongside the body; the channel never
// interprets it.
//
// The sequence below never holds bodyMu across a semaphore wait: Post/Wait
// are the only places this goroutine blocks, and both happen with bodyMu
// released so that a concurrent Recv in the opposite direction is never
// stalled behind this Send's rendezvous.
func (e *Endpoint) Send(data []byte, tag TypeTag) error {
	if len(data) > maxMessageSize {
		return &ErrProtocolViolation{Reason: fmt.Sprintf("message of %d bytes exceeds limit of %d", len(data), maxMessageSize)}
	}

	e.sendMu.Lock()
	defer e.sendMu.Unlock()
	start := time.Now()

	e.bodyMu.Lock()
	if err := e.body.Resize(len(data)); err != nil {
		e.bodyMu.Unlock()
		if cos.IsErrOOS(err) {
			return &ErrOutOfSpace{Size: len(data), Err: err}
		}
		return &ErrMapFailure{Op: "send: resize body", Size: len(data), Err: err}
	}
	mapped, err := e.body.Map(len(data))
	if err != nil {
		e.bodyMu.Unlock()
		return &ErrMapFailure{Op: "send: map body", Size: len(data), Err: err}
	}
	copy(mapped, data)
	e.sizeCell.Store(int32(len(data)))
	e.typeCell.Store(int32(tag))
	e.bodyMu.Unlock()

	if err := e.mySent.Post(); err != nil {
		return &ErrResourceFailure{Op: "send: post", Err: err}
	}
	if err := e.peerReceived.Wait(); err != nil {
		return &ErrResourceFailure{Op: "send: await delivery", Err: err}
	}

	e.bodyMu.Lock()
	unmapErr := e.body.Unmap()
	e.bodyMu.Unlock()
	if unmapErr != nil {
		return &ErrMapFailure{Op: "send: unmap body", Size: len(data), Err: unmapErr}
	}

	e.stats.Observe(e.role.String(), stats.DirSend, len(data), time.Since(start))
	return nil
}

// Recv blocks until the peer sends a message, then returns a private copy of
// its body (whose length is the message size) and its type tag. The returned slice is owned entirely
// by the caller -- it is not backed by the shared mapping, which is unmapped
// again before Recv returns.
func (e *Endpoint) Recv() (data []byte, tag TypeTag, err error) {
	e.recvMu.Lock()
	defer e.recvMu.Unlock()
	start := time.Now()

	if err := e.peerSent.Wait(); err != nil {
		return nil, 0, &ErrResourceFailure{Op: "recv: await send", Err: err}
	}

	e.bodyMu.Lock()
	size := int(e.sizeCell.Load())
	tag = TypeTag(e.typeCell.Load())
	if size < 0 || size > maxMessageSize {
		e.bodyMu.Unlock()
		return nil, 0, &ErrProtocolViolation{Reason: fmt.Sprintf("implausible size cell value %d", size)}
	}
	mapped, mapErr := e.body.Map(size)
	if mapErr != nil {
		e.bodyMu.Unlock()
		return nil, 0, &ErrMapFailure{Op: "recv: map body", Size: size, Err: mapErr}
	}
	data = make([]byte, size)
	copy(data, mapped)
	e.bodyMu.Unlock()

	if err := e.myReceived.Post(); err != nil {
		return nil, 0, &ErrResourceFailure{Op: "recv: post delivery", Err: err}
	}

	e.bodyMu.Lock()
	unmapErr := e.body.Unmap()
	e.bodyMu.Unlock()
	if unmapErr != nil {
		return nil, 0, &ErrMapFailure{Op: "recv: unmap body", Size: size, Err: unmapErr}
	}

	e.stats.Observe(e.role.String(), stats.DirRecv, size, time.Since(start))
	return data, tag, nil
}
