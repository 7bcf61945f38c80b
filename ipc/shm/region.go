//go:build linux || darwin

// Package shm implements the channel's three named shared-memory objects:
// the resizable message body and the two fixed-size metadata cells. Named
// POSIX shared memory is just a file under a well-known tmpfs mount (that is
// literally what glibc's shm_open does on Linux), so this package goes
// straight through golang.org/x/sys/unix rather than cgo.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package shm

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// shmDir is where POSIX shared-memory objects live on Linux. Darwin has no
// equivalent public mount; callers on Darwin are expected to run under a
// sandbox that provides one, or to substitute a tmpfs-backed directory via
// SetDir in tests.
var shmDir = "/dev/shm"

// SetDir overrides the backing directory for named shared-memory objects.
// Exercised by tests that run inside sandboxes with no /dev/shm mount.
func SetDir(dir string) { shmDir = dir }

// Region is a scoped owner of one named shared-memory object. A Region may
// be resized and (re-)mapped repeatedly over its lifetime; Close releases the
// file descriptor and, if currently mapped, the mapping.
type Region struct {
	name string
	fd   int
	data []byte
}

func path(name string) string {
	return filepath.Join(shmDir, strings.TrimPrefix(name, "/"))
}

// Open creates (if create is true) or attaches to the named shared-memory
// object backing this region. It does not map or resize anything.
func Open(name string, create bool) (*Region, error) {
	flags := unix.O_RDWR
	if create {
		flags |= unix.O_CREAT
	}
	fd, err := unix.Open(path(name), flags, 0o666)
	if err != nil {
		return nil, fmt.Errorf("shm_open %q: %w", name, err)
	}
	return &Region{name: name, fd: fd}, nil
}

// Resize truncates the object to size bytes, growing or shrinking it. The
// sending endpoint calls this with the current message's length immediately
// before mapping; the receiver maps at the size cell's length without resizing.
func (r *Region) Resize(size int) error {
	if err := unix.Ftruncate(r.fd, int64(size)); err != nil {
		return fmt.Errorf("ftruncate %q to %d: %w", r.name, size, err)
	}
	return nil
}

// Map maps the object at the given size, replacing any prior mapping. A
// zero-size map returns an empty, non-nil slice without a syscall --
// mmap(2) rejects a zero-length request, and the protocol must still support
// zero-length messages.
func (r *Region) Map(size int) ([]byte, error) {
	if err := r.Unmap(); err != nil {
		return nil, err
	}
	if size == 0 {
		r.data = []byte{}
		return r.data, nil
	}
	data, err := unix.Mmap(r.fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %q at %d bytes: %w", r.name, size, err)
	}
	r.data = data
	return r.data, nil
}

// Unmap releases the current mapping, if any. Safe to call repeatedly.
func (r *Region) Unmap() error {
	if r.data == nil || len(r.data) == 0 {
		r.data = nil
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	if err != nil {
		return fmt.Errorf("munmap %q: %w", r.name, err)
	}
	return nil
}

// Close releases the file descriptor. It does not unlink the name; only the
// controller's Unlink does that.
func (r *Region) Close() error {
	if err := r.Unmap(); err != nil {
		return err
	}
	if err := unix.Close(r.fd); err != nil {
		return fmt.Errorf("close %q: %w", r.name, err)
	}
	return nil
}

// Unlink removes name from the OS namespace. Controller-only.
func Unlink(name string) error {
	if err := unix.Unlink(path(name)); err != nil && err != unix.ENOENT {
		return fmt.Errorf("shm_unlink %q: %w", name, err)
	}
	return nil
}
