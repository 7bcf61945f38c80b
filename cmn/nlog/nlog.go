// Package nlog is the channel's own buffered, severity-leveled logger:
// timestamps, writes to per-severity files, and flushes/rotates on demand.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arobinson/mpichan/cmn/mono"
)

const (
	maxSize       = 4 * 1024 * 1024
	maxFlushDelay = 10 * time.Second
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) String() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

type flog struct {
	mw      sync.Mutex
	file    *os.File
	bw      *bufio.Writer
	written int64
	last    atomic.Int64 // mono.NanoTime() of last flush
	sev     severity
}

var (
	toStderr     bool
	alsoToStderr bool
	logDir       string
	role         string
	title        string

	logs = map[severity]*flog{
		sevInfo: {sev: sevInfo},
		sevErr:  {sev: sevErr},
	}
	mu sync.Mutex
)

// InitFlags registers the two glog-style flags on flset. The cmd/* binaries
// do not call it, so they log with both flags left false.
func InitFlags(flset *flag.FlagSet) {
	flset.BoolVar(&toStderr, "logtostderr", false, "log to standard error instead of files")
	flset.BoolVar(&alsoToStderr, "alsologtostderr", false, "log to standard error as well as files")
}

// SetLogDirRole points the logger at a log directory and tags every line
// with a role (e.g. "controller", "child"); called once at process start.
func SetLogDirRole(dir, r string) {
	mu.Lock()
	logDir, role = dir, r
	mu.Unlock()
}

func SetTitle(s string) { title = s }

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

func log(sev severity, depth int, format string, args ...any) {
	line := format1(sev, depth, format, args...)

	if toStderr {
		os.Stderr.WriteString(line)
		return
	}
	if alsoToStderr || sev >= sevWarn {
		os.Stderr.WriteString(line)
	}

	write(logs[sevInfo], line)
	if sev >= sevWarn {
		write(logs[sevErr], line)
	}
}

func format1(sev severity, depth int, format string, args ...any) string {
	var msg string
	if format == "" {
		msg = fmt.Sprintln(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg += "\n"
		}
	}
	_, file, line, ok := runtime.Caller(depth + 2)
	if !ok {
		file, line = "???", 0
	} else {
		file = filepath.Base(file)
	}
	ts := time.Now().Format("0102 15:04:05.000000")
	tag := title
	if role != "" {
		tag = role
	}
	return fmt.Sprintf("%s%s %s %s:%d] %s", sev, ts, tag, file, line, msg)
}

func write(l *flog, line string) {
	l.mw.Lock()
	defer l.mw.Unlock()
	if l.file == nil && logDir != "" {
		if err := open(l); err != nil {
			os.Stderr.WriteString("nlog: " + err.Error() + "\n")
			return
		}
	}
	if l.bw == nil {
		return
	}
	n, _ := l.bw.WriteString(line)
	l.written += int64(n)

	now := mono.NanoTime()
	age := time.Duration(now - l.last.Load())
	if l.written > maxSize {
		rotate(l)
		return
	}
	if age > maxFlushDelay {
		l.bw.Flush()
		l.last.Store(now)
	}
}

func open(l *flog) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(logDir, fmt.Sprintf("%s.%s", sname(), sevName(l.sev)))
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	l.file = f
	l.bw = bufio.NewWriterSize(f, 64*1024)
	l.last.Store(mono.NanoTime())
	return nil
}

// rotate closes a file that has grown past maxSize and renames it to
// <name>.1 (replacing any earlier one), so the next write starts a new file.
func rotate(l *flog) {
	l.bw.Flush()
	name := l.file.Name()
	closeFile(l.file)
	os.Rename(name, name+".1")
	l.file = nil
	l.bw = nil
	l.written = 0
}

func sevName(s severity) string {
	switch s {
	case sevErr:
		return "ERROR"
	default:
		return "INFO"
	}
}

func sname() string {
	if role != "" {
		return role
	}
	return "mpichan"
}

// Flush writes all buffered lines to disk; pass exit=true to also close the
// underlying files (called once, right before os.Exit).
func Flush(exit ...bool) {
	ex := len(exit) > 0 && exit[0]
	for _, l := range logs {
		l.mw.Lock()
		if l.bw != nil {
			l.bw.Flush()
			l.last.Store(mono.NanoTime())
		}
		if ex && l.file != nil {
			l.file.Sync()
			closeFile(l.file)
			l.file, l.bw = nil, nil
		}
		l.mw.Unlock()
	}
}

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}
