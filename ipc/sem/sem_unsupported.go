//go:build !((linux || darwin) && cgo)

// Package sem binds the four POSIX named counting semaphores the channel
// protocol rendezvous on.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package sem

import "fmt"

var errUnsupported = fmt.Errorf("ipc/sem: named POSIX semaphores require cgo on linux or darwin")

type Semaphore struct{}

func CreateOrOpen(string, uint) (*Semaphore, error) { return nil, errUnsupported }
func Open(string) (*Semaphore, error)               { return nil, errUnsupported }
func (*Semaphore) Wait() error                      { return errUnsupported }
func (*Semaphore) Post() error                      { return errUnsupported }
func (*Semaphore) Close() error                     { return errUnsupported }
func Unlink(string) error                           { return errUnsupported }
