// Package ipc implements the synchronous, shared-memory rendezvous channel
// between a controller process and a worker group's rank-0 child.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package ipc

// suffix is one of the seven derived-name suffixes in the external naming
// contract. Both endpoints must derive identical names from identical
// (channelName, suffix) inputs -- this is how they rendezvous.
type suffix string

const (
	sufControllerSent suffix = "_con_sent"
	sufChildReceived  suffix = "_child_recv"
	sufChildSent      suffix = "_child_sent"
	sufControllerRecv suffix = "_con_recv"

	sufBody suffix = "_fd_message_fd_name"
	sufSize suffix = "_fd_message_size"
	sufType suffix = "_fd_message_type"
)

// derive is a pure, total, allocation-cheap function from a channel name and
// a suffix to the OS-global object name both endpoints open. All derived
// names begin with the leading delimiter POSIX-style named objects require.
func derive(channelName string, s suffix) string {
	return "/" + channelName + string(s)
}

// names caches the seven derived names for a channel so that send/recv never
// re-allocate a string on the hot path.
type names struct {
	controllerSent, childReceived string
	childSent, controllerReceived string
	body, size, typ               string
}

func deriveNames(channelName string) names {
	return names{
		controllerSent:      derive(channelName, sufControllerSent),
		childReceived:       derive(channelName, sufChildReceived),
		childSent:           derive(channelName, sufChildSent),
		controllerReceived:  derive(channelName, sufControllerRecv),
		body:                derive(channelName, sufBody),
		size:                derive(channelName, sufSize),
		typ:                 derive(channelName, sufType),
	}
}

// all seven derived names, used by purge to unlink unconditionally.
func (n names) all() []string {
	return []string{
		n.controllerSent, n.childReceived, n.childSent, n.controllerReceived,
		n.body, n.size, n.typ,
	}
}
