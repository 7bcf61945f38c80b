/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package ipc

import (
	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/ipc/sem"
	"github.com/arobinson/mpichan/ipc/shm"
)

// Purge unconditionally unlinks all seven of a channel's derived names. It
// takes no Endpoint and never blocks on a semaphore -- it exists precisely
// for the case an Endpoint cannot be constructed: a controller that crashed
// before calling Close, leaving named kernel objects behind it. Both the
// mpichan-purge command and hk's reaper call this directly.
//
// Purge is idempotent: unlinking an already-absent name is not an error.
func Purge(channelName string) error {
	n := deriveNames(channelName)
	var errs cos.Errs

	for _, name := range []string{n.controllerSent, n.childReceived, n.childSent, n.controllerReceived} {
		if err := sem.Unlink(name); err != nil {
			errs.Add(err)
		}
	}
	for _, name := range []string{n.body, n.size, n.typ} {
		if err := shm.Unlink(name); err != nil {
			errs.Add(err)
		}
	}

	if errs.Cnt() > 0 {
		return &errs
	}
	return nil
}
