// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package promstats exports FastRPC transfer statistics as Prometheus
// metrics. A Hook is a [frpc.TransferHook] and can be shared by many
// transports.
package promstats

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Query-farm/fastrpc/frpc"
)

// Hook records transfer bytes, errors and durations.
type Hook struct {
	bytes    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Hook and registers its collectors with reg. A nil reg
// selects prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Hook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hook{
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "frpc",
				Subsystem: "transfer",
				Name:      "bytes_total",
				Help:      "Bytes moved by FastRPC transport operations",
			},
			[]string{"op", "framing"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "frpc",
				Subsystem: "transfer",
				Name:      "errors_total",
				Help:      "Failed FastRPC transport operations",
			},
			[]string{"op", "error_kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "frpc",
				Subsystem: "transfer",
				Name:      "duration_seconds",
				Help:      "Duration of FastRPC transport operations in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"op"},
		),
	}
	for _, c := range []prometheus.Collector{h.bytes, h.errors, h.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hook) OnTransfer(_ context.Context, info frpc.TransferInfo, stats *frpc.TransferStats, err error) {
	if stats != nil {
		h.bytes.WithLabelValues(info.Op, info.Framing).Add(float64(stats.Bytes))
		h.duration.WithLabelValues(info.Op).Observe(stats.Duration.Seconds())
	}
	if err != nil {
		h.errors.WithLabelValues(info.Op, frpc.ErrorKind(err)).Inc()
	}
}
