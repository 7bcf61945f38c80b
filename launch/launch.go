// Package launch starts the worker group the controller's channel rendezvous
// with. It is the out-of-scope collaborator spec.md §1/§6 describes: given a
// launch command, start it detached and return.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package launch

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"

	"github.com/arobinson/mpichan/cmn/nlog"
)

// Spawn starts argv as a detached subprocess and returns immediately with
// its PID. It does not wait for the process to exit; the caller's channel
// Open blocks separately on the startup handshake. A background goroutine
// reaps the process on exit so it never becomes a zombie.
//
// Unlike original_source/mpi_controller.h, which passed the launch string
// through a shell (system(3) plus a trailing "&"), Spawn takes an explicit
// argv and uses exec.Cmd.Start directly -- equivalent detached-launch
// semantics without a shell injection surface.
func Spawn(argv []string) (pid int, err error) {
	if len(argv) == 0 {
		return 0, errors.New("launch: empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		return 0, errors.Wrapf(err, "launch: failed to start %q", argv[0])
	}

	pid = cmd.Process.Pid
	go func() {
		if err := cmd.Wait(); err != nil {
			nlog.Warningf("launch: worker group pid %d exited: %v", pid, err)
		} else {
			nlog.Infof("launch: worker group pid %d exited", pid)
		}
	}()
	return pid, nil
}

// Alive reports whether pid still refers to a live process. Used by the
// housekeeper to find channels whose owning controller has died.
func Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On POSIX systems FindProcess always succeeds; signal 0 is the
	// standard existence probe that doesn't actually signal anything.
	return proc.Signal(syscall.Signal(0)) == nil
}
