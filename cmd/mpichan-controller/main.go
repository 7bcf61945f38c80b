// Command mpichan-controller opens a channel, launches a worker group, and
// sends it a fixed benchmark payload repeatedly -- the same shape as
// original_source/controller.c's send-loop benchmark, reworked onto this
// module's Go endpoint.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/cmn/nlog"
	"github.com/arobinson/mpichan/config"
	"github.com/arobinson/mpichan/hk"
	"github.com/arobinson/mpichan/ipc"
	"github.com/arobinson/mpichan/reap"
	"github.com/arobinson/mpichan/registry"
	"github.com/arobinson/mpichan/stats"
)

var (
	channelName string
	launchCmd   string
	msgCount    int
	msgLength   int
	configDir   string
)

func init() {
	flag.StringVar(&channelName, "name", "test_controller", "channel name")
	flag.StringVar(&launchCmd, "launch", "", "worker group command line, e.g. \"mpirun -n 4 mpichan-worker -name test_controller\"")
	flag.IntVar(&msgCount, "count", 1000, "number of benchmark messages to send")
	flag.IntVar(&msgLength, "length", 2048, "benchmark message length, in bytes")
	flag.StringVar(&configDir, "config", "", "config/registry directory (default $HOME/.config/mpichan)")
}

func main() {
	flag.Parse()
	if launchCmd == "" {
		cos.ExitLogf("missing -launch: the worker group command line to start")
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		cos.ExitLogf("failed to load configuration: %v", err)
	}
	nlog.SetLogDirRole(cfg.LogDir, "controller")
	defer nlog.Flush(true)

	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		cos.ExitLogf("failed to open registry: %v", err)
	}
	defer cos.Close(reg)

	recorder := stats.NewRecorder(prometheus.DefaultRegisterer)

	go hk.DefaultHK.Run()
	reap.Register(reg, cfg.HousekeeperInterval.Duration())

	argv := strings.Fields(launchCmd)
	ep, err := ipc.Open(context.Background(), channelName, argv,
		ipc.WithHandshakeTimeout(cfg.HandshakeTimeout.Duration()),
		ipc.WithStats(recorder))
	if err != nil {
		cos.ExitLogf("failed to open channel %q: %v", channelName, err)
	}
	if err := reg.Put(registry.Record{ChannelName: channelName, PID: os.Getpid(), OpenedAt: time.Now().UnixNano()}); err != nil {
		nlog.Warningf("failed to record channel %q in registry: %v", channelName, err)
	}

	installSignalHandler(ep, reg, channelName)

	nlog.Infof("controller started, channel %q", channelName)
	message := make([]byte, msgLength)
	for i := range message {
		message[i] = 1
	}

	start := time.Now()
	for i := 0; i < msgCount; i++ {
		if err := ep.Send(message, ipc.TypeBytes); err != nil {
			cos.ExitLogf("send %d/%d failed: %v", i+1, msgCount, err)
		}
	}
	elapsed := time.Since(start)

	nlog.Infof("sent %d messages of length %d in %s (%.2f msgs/sec)",
		msgCount, msgLength, elapsed, float64(msgCount)/elapsed.Seconds())

	if err := ep.Close(); err != nil {
		nlog.Warningf("close: %v", err)
	}
	if err := reg.Delete(channelName); err != nil {
		nlog.Warningf("registry delete: %v", err)
	}
	nlog.Infof("controller exiting")
}

func installSignalHandler(ep *ipc.Endpoint, reg *registry.Registry, name string) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		nlog.Warningf("received signal %v, tearing down channel %q", sig, name)
		if err := ep.Close(); err != nil {
			nlog.Errorf("close on signal: %v", err)
		}
		if err := reg.Delete(name); err != nil {
			nlog.Warningf("registry delete on signal: %v", err)
		}
		nlog.Flush(true)
		os.Exit(int(cos.NewSignalError(sig.(syscall.Signal)).ExitCode()))
	}()
}
