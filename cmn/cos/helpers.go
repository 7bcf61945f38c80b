// Package cos provides common low-level types and utilities shared by the
// channel, launcher, registry, and housekeeper packages.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"io"
	"os"

	"github.com/arobinson/mpichan/cmn/nlog"
)

func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func GetEnvOrDefault(varName, defaultVal string) string {
	if val := os.Getenv(varName); val != "" {
		return val
	}
	return defaultVal
}

func CreateDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close logs rather than swallows a deferred-Close error -- every caller in
// this repo that doesn't otherwise have a use for the error should route it
// through here instead of `_ = x.Close()`.
func Close(c io.Closer) {
	if err := c.Close(); err != nil {
		nlog.Warningf("failed to close %T: %v", c, err)
	}
}
