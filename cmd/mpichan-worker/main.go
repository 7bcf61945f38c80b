// Command mpichan-worker is the child side of a channel: the worker group
// the controller launches. Only rank 0 attaches to the channel, mirroring
// original_source/primary_slave.c's MPI_Comm_rank(world_rank == 0) gate --
// this Go rework substitutes a -rank flag for an MPI rank query, since the
// channel itself has nothing to do with MPI's own communicator.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"

	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/cmn/nlog"
	"github.com/arobinson/mpichan/ipc"
)

var (
	channelName string
	rank        int
	logDir      string
)

func init() {
	flag.StringVar(&channelName, "name", "test_controller", "channel name")
	flag.IntVar(&rank, "rank", 0, "this process's rank within the worker group")
	flag.StringVar(&logDir, "log-dir", "", "log directory (default: none; warnings and errors go to stderr, info lines are dropped)")
}

func main() {
	flag.Parse()
	if logDir != "" {
		nlog.SetLogDirRole(logDir, "worker")
	}
	defer nlog.Flush(true)

	if rank != 0 {
		nlog.Infof("rank %d: channel is only attached by rank 0, exiting", rank)
		return
	}

	ep, err := ipc.Attach(channelName)
	if err != nil {
		if cos.IsErrNotFound(err) {
			cos.ExitLogf("rank %d: channel %q does not exist yet -- is the controller running?", rank, channelName)
		}
		cos.ExitLogf("rank %d: failed to attach to channel %q: %v", rank, channelName, err)
	}

	data, tag, err := ep.Recv()
	if err != nil {
		cos.ExitLogf("rank %d: recv failed: %v", rank, err)
	}
	nlog.Infof("rank 0: received message, length=%d type=%d", len(data), tag)
}
