// Package nlog - aistore logger, provides buffering, timestamping, writing, and
// flushing/syncing/rotating
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arobinson/mpichan/cmn/nlog"
)

func TestInfofWritesToLogDir(t *testing.T) {
	dir := t.TempDir()
	nlog.SetLogDirRole(dir, "test")
	nlog.Infof("hello %s", "world")
	nlog.Flush(true)

	matches, err := filepath.Glob(filepath.Join(dir, "test.INFO"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one INFO log file, got %d", len(matches))
	}
	b, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatal("expected non-empty log file after Flush")
	}
}
