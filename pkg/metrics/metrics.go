// Package metrics exposes pipeline counters on the default
// Prometheus registry, served by pkg/monitoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playpipe",
		Name:      "frames_produced_total",
		Help:      "Decoded frames pushed into the frame buffer.",
	}, []string{"kind"})

	PacketsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "playpipe",
		Name:      "packets_skipped_total",
		Help:      "Packets dropped after a decode or conversion error.",
	})

	FramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "playpipe",
		Name:      "frames_rendered_total",
		Help:      "Frames handed to the renderer.",
	})

	BufferDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "playpipe",
		Name:      "buffer_depth",
		Help:      "Frames currently held in the frame buffer.",
	})

	BufferFull = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "playpipe",
		Name:      "buffer_full_total",
		Help:      "Episodes of the producer stalling on a full buffer.",
	})

	BufferEmpty = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "playpipe",
		Name:      "buffer_empty_total",
		Help:      "Episodes of the consumer ticking on an empty buffer.",
	})
)
