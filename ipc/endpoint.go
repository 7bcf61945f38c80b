/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package ipc

import (
	"context"
	"io"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/cmn/debug"
	"github.com/arobinson/mpichan/cmn/nlog"
	"github.com/arobinson/mpichan/ipc/sem"
	"github.com/arobinson/mpichan/ipc/shm"
	"github.com/arobinson/mpichan/launch"
	"github.com/arobinson/mpichan/stats"
)

// Endpoint is a per-process handle to one channel. Both roles carry the same
// shape; Role plus the {mySent, peerReceived, peerSent, myReceived} table
// are the only things that differ, so Send/Recv below have no role branches.
type Endpoint struct {
	channelName string
	role        Role
	names       names
	sessionID   string

	mySent       *sem.Semaphore // posted by me when I send
	peerReceived *sem.Semaphore // waited by me after I send
	peerSent     *sem.Semaphore // waited by me before I recv
	myReceived   *sem.Semaphore // posted by me after I recv

	body     *shm.Region
	sizeCell *shm.Cell
	typeCell *shm.Cell

	// sendMu/recvMu serialize same-direction callers on this endpoint --
	// the protocol assumes a single sender per role (spec.md §4.6), and
	// overlapping callers from the same process would otherwise corrupt
	// each other's view of the body object. bodyMu additionally guards the
	// brief window in which either direction actually touches the shared
	// body/cells, since both directions share the same three shm objects
	// (spec.md §4.3); see DESIGN.md for why this is needed beyond the
	// four-semaphore protocol alone.
	sendMu, recvMu, bodyMu sync.Mutex

	stats *stats.Recorder
}

// Option configures optional, non-protocol behavior of Open.
type Option func(*options)

type options struct {
	handshakeTimeout time.Duration
	stats            *stats.Recorder
}

// WithHandshakeTimeout bounds how long Open will wait for the startup
// handshake before giving up. Zero (the default) waits indefinitely, per
// spec.md §4.4's "present design waits indefinitely" note.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) { o.handshakeTimeout = d }
}

// WithStats attaches a metrics recorder; Send/Recv report through it.
func WithStats(r *stats.Recorder) Option {
	return func(o *options) { o.stats = r }
}

// Open creates a channel's kernel objects, launches the worker group, and
// blocks for the startup handshake. Controller-only.
func Open(ctx context.Context, channelName string, launchArgv []string, opts ...Option) (*Endpoint, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	n := deriveNames(channelName)
	e := &Endpoint{
		channelName: channelName,
		role:        Controller,
		names:       n,
		sessionID:   cos.GenUUID(),
		stats:       o.stats,
	}

	// ok is flipped true only once every kernel object is created and the
	// handshake completes; until then, unwinder unlinks whatever has already
	// been created so a partial Open doesn't leak named objects that would
	// otherwise sit there until a manual Purge.
	var ok bool
	unwinder := newUnwinder()
	defer func() {
		if !ok {
			unwinder.run()
		}
	}()

	var err error
	if e.mySent, err = sem.CreateOrOpen(n.controllerSent, 0); err != nil {
		return nil, errors.Wrap(err, "open: controller_sent")
	}
	unwinder.add(n.controllerSent, sem.Unlink)
	if e.peerReceived, err = sem.CreateOrOpen(n.childReceived, 0); err != nil {
		return nil, errors.Wrap(err, "open: child_received")
	}
	unwinder.add(n.childReceived, sem.Unlink)
	if e.peerSent, err = sem.CreateOrOpen(n.childSent, 0); err != nil {
		return nil, errors.Wrap(err, "open: child_sent")
	}
	unwinder.add(n.childSent, sem.Unlink)
	if e.myReceived, err = sem.CreateOrOpen(n.controllerReceived, 0); err != nil {
		return nil, errors.Wrap(err, "open: controller_received")
	}
	unwinder.add(n.controllerReceived, sem.Unlink)

	if e.body, err = shm.Open(n.body, true); err != nil {
		return nil, errors.Wrap(err, "open: body object")
	}
	unwinder.add(n.body, shm.Unlink)
	if e.sizeCell, err = shm.OpenCell(n.size, true); err != nil {
		return nil, errors.Wrap(err, "open: size cell")
	}
	unwinder.add(n.size, shm.Unlink)
	if e.typeCell, err = shm.OpenCell(n.typ, true); err != nil {
		return nil, errors.Wrap(err, "open: type cell")
	}
	unwinder.add(n.typ, shm.Unlink)

	pid, err := launch.Spawn(launchArgv)
	if err != nil {
		return nil, errors.Wrap(err, "open: launch worker group")
	}
	nlog.Infof("channel %q [%s]: launched worker group pid %d, awaiting handshake", channelName, e.sessionID, pid)

	if err := e.awaitHandshake(ctx, o.handshakeTimeout); err != nil {
		return nil, errors.Wrapf(err, "open: handshake with channel %q", channelName)
	}

	ok = true
	nlog.Infof("channel %q [%s]: handshake complete, controller ready", channelName, e.sessionID)
	return e, nil
}

// unwinder unlinks the named kernel objects Open has created so far if Open
// fails partway through -- without it, a late failure (e.g. launch or
// handshake) leaks every semaphore/shm object created before it, recoverable
// only by a manual Purge.
type unwinder struct {
	steps []func()
}

func newUnwinder() *unwinder { return &unwinder{} }

func (u *unwinder) add(name string, unlink func(string) error) {
	u.steps = append(u.steps, func() {
		if err := unlink(name); err != nil {
			nlog.Warningf("open: rollback: unlink %q: %v", name, err)
		}
	})
}

func (u *unwinder) run() {
	for _, step := range u.steps {
		step()
	}
}

// Attach opens an already-created channel's kernel objects and signals the
// controller that this endpoint is ready. Child-only.
func Attach(channelName string) (*Endpoint, error) {
	n := deriveNames(channelName)
	e := &Endpoint{
		channelName: channelName,
		role:        Child,
		names:       n,
		sessionID:   cos.GenUUID(),
	}

	var err error
	if e.peerSent, err = sem.Open(n.controllerSent); err != nil {
		return nil, attachErr(channelName, "controller_sent", err)
	}
	if e.myReceived, err = sem.Open(n.childReceived); err != nil {
		return nil, attachErr(channelName, "child_received", err)
	}
	if e.mySent, err = sem.Open(n.childSent); err != nil {
		return nil, attachErr(channelName, "child_sent", err)
	}
	if e.peerReceived, err = sem.Open(n.controllerReceived); err != nil {
		return nil, attachErr(channelName, "controller_received", err)
	}

	// Tolerated rather than required, matching original_source's
	// mallocShared, which always passes O_CREAT regardless of role.
	if e.body, err = shm.Open(n.body, true); err != nil {
		return nil, errors.Wrap(err, "attach: body object")
	}
	if e.sizeCell, err = shm.OpenCell(n.size, true); err != nil {
		return nil, errors.Wrap(err, "attach: size cell")
	}
	if e.typeCell, err = shm.OpenCell(n.typ, true); err != nil {
		return nil, errors.Wrap(err, "attach: type cell")
	}

	if err := e.myReceived.Post(); err != nil {
		return nil, errors.Wrap(err, "attach: signal handshake")
	}
	nlog.Infof("channel %q [%s]: attached, signalled handshake", channelName, e.sessionID)
	return e, nil
}

// attachErr distinguishes a semaphore that simply doesn't exist yet -- the
// controller hasn't called Open for this channel name -- from any other
// attach failure, so callers can tell "not created yet" (worth retrying)
// apart from a genuine resource error (not worth retrying).
func attachErr(channelName, step string, err error) error {
	if errors.Is(err, syscall.ENOENT) {
		return cos.NewErrNotFound("channel %q", channelName)
	}
	return errors.Wrapf(err, "attach: %s", step)
}

func (e *Endpoint) awaitHandshake(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 && (ctx == nil || ctx.Done() == nil) {
		return e.peerReceived.Wait()
	}
	done := make(chan error, 1)
	go func() { done <- e.peerReceived.Wait() }()

	if timeout > 0 {
		var cancel context.CancelFunc
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// NOTE: the goroutine above is left blocked on Wait() until some
		// post eventually arrives or the process exits; spec.md §9 flags
		// unbounded blocking as the accepted behavior absent external
		// supervision, and a timed-out Open has no way to cancel a
		// blocking sem_wait(3) short of killing the process.
		return ctx.Err()
	}
}

// Close unlinks the channel's named kernel objects and releases this
// endpoint's local handles. Controller-only; safe to call exactly once.
func (e *Endpoint) Close() error {
	debug.Assert(e.role == Controller, "Close must only be called by the controller")

	var errs cos.Errs
	for _, name := range []string{e.names.controllerSent, e.names.childReceived, e.names.childSent, e.names.controllerReceived} {
		if err := sem.Unlink(name); err != nil {
			errs.Add(err)
		}
	}
	for _, name := range []string{e.names.body, e.names.size, e.names.typ} {
		if err := shm.Unlink(name); err != nil {
			errs.Add(err)
		}
	}

	for _, c := range []io.Closer{e.sizeCell, e.typeCell, e.body,
		closerFunc(e.mySent.Close), closerFunc(e.peerReceived.Close),
		closerFunc(e.peerSent.Close), closerFunc(e.myReceived.Close)} {
		if err := c.Close(); err != nil {
			errs.Add(err)
		}
	}

	if errs.Cnt() > 0 {
		nlog.Errorf("channel %q [%s]: close completed with errors: %v", e.channelName, e.sessionID, &errs)
		return &errs
	}
	nlog.Infof("channel %q [%s]: closed", e.channelName, e.sessionID)
	return nil
}

// closerFunc adapts a func() error to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }
