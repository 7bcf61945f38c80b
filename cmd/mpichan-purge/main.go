// Command mpichan-purge is the maintenance-side escape hatch spec.md's
// lifecycle section calls for: unlink a channel's named kernel objects
// without needing a live Endpoint, either for one named channel or for every
// channel in the registry whose controller PID is no longer running.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arobinson/mpichan/cmn/cos"
	"github.com/arobinson/mpichan/config"
	"github.com/arobinson/mpichan/ipc"
	"github.com/arobinson/mpichan/launch"
	"github.com/arobinson/mpichan/registry"
)

var (
	channelName string
	sweep       bool
	force       bool
	configDir   string
)

func init() {
	flag.StringVar(&channelName, "name", "", "channel name to purge (mutually exclusive with -sweep)")
	flag.BoolVar(&sweep, "sweep", false, "purge every registered channel whose owning PID is no longer alive")
	flag.BoolVar(&force, "force", false, "with -name, purge even if the owning PID still looks alive")
	flag.StringVar(&configDir, "config", "", "config/registry directory (default $HOME/.config/mpichan)")
}

func main() {
	flag.Parse()
	if channelName == "" && !sweep {
		fmt.Fprintln(os.Stderr, "usage: mpichan-purge -name CHANNEL | -sweep")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		cos.ExitLogf("failed to load configuration: %v", err)
	}
	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		cos.ExitLogf("failed to open registry: %v", err)
	}
	defer cos.Close(reg)

	if sweep {
		runSweep(reg)
		return
	}
	runSingle(reg)
}

func runSingle(reg *registry.Registry) {
	if rec, found, err := reg.Get(channelName); err == nil && found && !force && launch.Alive(rec.PID) {
		cos.ExitLogf("channel %q appears owned by live pid %d; pass -force to purge anyway", channelName, rec.PID)
	}
	if err := ipc.Purge(channelName); err != nil {
		cos.ExitLogf("purge %q: %v", channelName, err)
	}
	if err := reg.Delete(channelName); err != nil {
		cos.ExitLogf("registry delete %q: %v", channelName, err)
	}
	fmt.Printf("purged channel %q\n", channelName)
}

func runSweep(reg *registry.Registry) {
	recs, err := reg.List()
	if err != nil {
		cos.ExitLogf("list registry: %v", err)
	}
	var purged int
	for _, rec := range recs {
		if launch.Alive(rec.PID) {
			continue
		}
		if err := ipc.Purge(rec.ChannelName); err != nil {
			fmt.Fprintf(os.Stderr, "purge %q: %v\n", rec.ChannelName, err)
			continue
		}
		if err := reg.Delete(rec.ChannelName); err != nil {
			fmt.Fprintf(os.Stderr, "registry delete %q: %v\n", rec.ChannelName, err)
		}
		purged++
		fmt.Printf("purged abandoned channel %q (dead pid %d)\n", rec.ChannelName, rec.PID)
	}
	fmt.Printf("swept %d abandoned channel(s) of %d registered\n", purged, len(recs))
}
