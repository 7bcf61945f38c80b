// Package stats exposes Prometheus counters and histograms for channel
// rendezvous throughput and latency.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records rendezvous outcomes. A nil *Recorder is a no-op
// recorder -- a channel constructed without a registry pays no metrics
// cost and never panics on a nil recorder. Use NewRecorder for a recording
// one; a non-nil Recorder built any other way has no metrics to update.
type Recorder struct {
	rendezvous *prometheus.CounterVec
	bytes      *prometheus.CounterVec
	latency    prometheus.Histogram
}

// NewRecorder builds a Recorder and registers its metrics with reg. Pass a
// dedicated *prometheus.Registry (not prometheus.DefaultRegisterer) unless
// the caller wants channel metrics merged into the process-wide default.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		rendezvous: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpichan_rendezvous_total",
			Help: "Completed send/recv rendezvous, by role and direction.",
		}, []string{"role", "direction"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpichan_bytes_total",
			Help: "Message body bytes moved, by role and direction.",
		}, []string{"role", "direction"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mpichan_rendezvous_latency_seconds",
			Help:    "Duration of a completed Send, from staging the body to observing the paired \"received\" post and unmapping.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	reg.MustRegister(r.rendezvous, r.bytes, r.latency)
	return r
}

// Direction labels used by both Send and Recv observations.
const (
	DirSend = "send"
	DirRecv = "recv"
)

func (r *Recorder) Observe(role, direction string, nbytes int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.rendezvous.WithLabelValues(role, direction).Inc()
	r.bytes.WithLabelValues(role, direction).Add(float64(nbytes))
	if direction == DirSend {
		r.latency.Observe(elapsed.Seconds())
	}
}
