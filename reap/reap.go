// Package reap wires the registry, the process-liveness probe, and the
// channel purge operation into a single periodic housekeeper job: find every
// registered channel whose owning controller PID is no longer alive and
// unlink its leftover kernel objects.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package reap

import (
	"time"

	"github.com/arobinson/mpichan/cmn/nlog"
	"github.com/arobinson/mpichan/hk"
	"github.com/arobinson/mpichan/ipc"
	"github.com/arobinson/mpichan/launch"
	"github.com/arobinson/mpichan/registry"
)

const jobName = "mpichan-reap"

// Reaper periodically sweeps reg for channels whose owning PID has died.
type Reaper struct {
	reg      *registry.Registry
	interval time.Duration
}

// Register installs the reaper as an hk job; the first sweep runs after
// interval elapses. Callers still drive hk.DefaultHK.Run() themselves --
// Register only schedules the job.
func Register(reg *registry.Registry, interval time.Duration) *Reaper {
	r := &Reaper{reg: reg, interval: interval}
	hk.Reg(jobName+hk.NameSuffix, r.sweep, interval)
	return r
}

// Unregister removes the reaper's hk job. Mostly useful in tests.
func (r *Reaper) Unregister() { hk.UnregIf(jobName + hk.NameSuffix) }

// sweep is the hk callback: it returns the delay until the next sweep.
func (r *Reaper) sweep() time.Duration {
	recs, err := r.reg.List()
	if err != nil {
		nlog.Errorf("reap: failed to list registry: %v", err)
		return r.interval
	}

	var reaped int
	for _, rec := range recs {
		if launch.Alive(rec.PID) {
			continue
		}
		if err := ipc.Purge(rec.ChannelName); err != nil {
			nlog.Errorf("reap: purge %q (dead pid %d): %v", rec.ChannelName, rec.PID, err)
			continue
		}
		if err := r.reg.Delete(rec.ChannelName); err != nil {
			nlog.Errorf("reap: delete registry entry %q: %v", rec.ChannelName, err)
			continue
		}
		reaped++
		nlog.Infof("reap: purged abandoned channel %q (dead pid %d)", rec.ChannelName, rec.PID)
	}
	if reaped > 0 {
		nlog.Infof("reap: swept %d abandoned channel(s)", reaped)
	}
	return r.interval
}
