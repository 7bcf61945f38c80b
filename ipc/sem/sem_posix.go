//go:build (linux || darwin) && cgo

// Package sem binds the four POSIX named counting semaphores the channel
// protocol rendezvous on. There is no portable standard-library or
// golang.org/x/sys binding for sem_open/sem_wait/sem_post/sem_unlink, so this
// package goes directly to <semaphore.h> via cgo -- the same calls
// original_source/mpi_controller.h makes.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package sem

// #include <semaphore.h>
// #include <fcntl.h>
// #include <errno.h>
// #include <stdlib.h>
//
// static sem_t *mpichan_sem_create(const char *name, unsigned int initial) {
//     return sem_open(name, O_CREAT, 0666, initial);
// }
// static sem_t *mpichan_sem_attach(const char *name) {
//     return sem_open(name, 0);
// }
import "C"

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Semaphore is a scoped owner for one named POSIX semaphore handle. Close
// releases the process's handle; Unlink additionally removes the name from
// the OS namespace and must only ever be called by the controller.
type Semaphore struct {
	name string
	ptr  *C.sem_t
}

// CreateOrOpen creates the named semaphore with the given initial count, or
// opens it unchanged if it already exists -- per contract, an existing
// object's initial count is not reset.
func CreateOrOpen(name string, initial uint) (*Semaphore, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	ptr, err := C.mpichan_sem_create(cname, C.uint(initial))
	if ptr == C.SEM_FAILED {
		return nil, fmt.Errorf("sem_open(create) %q: %w", name, err)
	}
	return &Semaphore{name: name, ptr: ptr}, nil
}

// Open attaches to an already-created named semaphore. No creation flag is
// passed; the child tolerates the semaphore already existing (it must, since
// the controller creates it first).
func Open(name string) (*Semaphore, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	ptr, err := C.mpichan_sem_attach(cname)
	if ptr == C.SEM_FAILED {
		return nil, fmt.Errorf("sem_open(attach) %q: %w", name, err)
	}
	return &Semaphore{name: name, ptr: ptr}, nil
}

// Wait decrements the semaphore, blocking while it is zero.
func (s *Semaphore) Wait() error {
	for {
		ret, err := C.sem_wait(s.ptr)
		if ret == 0 {
			return nil
		}
		if err == syscall.EINTR {
			continue
		}
		return fmt.Errorf("sem_wait %q: %w", s.name, err)
	}
}

// Post increments the semaphore, waking at most one waiter.
func (s *Semaphore) Post() error {
	ret, err := C.sem_post(s.ptr)
	if ret == 0 {
		return nil
	}
	return fmt.Errorf("sem_post %q: %w", s.name, err)
}

// Close releases this process's handle. Existing handles in other processes
// remain valid; the name stays in the OS namespace until Unlink.
func (s *Semaphore) Close() error {
	ret, err := C.sem_close(s.ptr)
	if ret == 0 {
		return nil
	}
	return fmt.Errorf("sem_close %q: %w", s.name, err)
}

// Unlink removes name from the OS namespace. Controller-only: calling this
// from the child would race the controller's own teardown.
func Unlink(name string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	ret, err := C.sem_unlink(cname)
	if ret == 0 {
		return nil
	}
	if err == syscall.ENOENT {
		return nil // already gone; purge is idempotent
	}
	return fmt.Errorf("sem_unlink %q: %w", name, err)
}
