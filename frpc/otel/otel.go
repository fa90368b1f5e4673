// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package frpcotel provides OpenTelemetry metrics for FastRPC transports. It
// implements the [frpc.TransferHook] interface.
//
// Usage:
//
//	hook := frpcotel.Instrument(frpcotel.DefaultConfig())
//	io := frpc.NewHTTPIO(conn, frpc.DefaultConfig(), frpc.WithHook(hook))
package frpcotel

import (
	"context"

	"github.com/Query-farm/fastrpc/frpc"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "frpc"

// OtelConfig configures OpenTelemetry instrumentation for a transport.
type OtelConfig struct {
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// Peer is recorded as the frpc.peer attribute when non-empty.
	Peer string
	// CustomAttributes are added to every measurement.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns an OtelConfig that resolves the global meter provider.
func DefaultConfig() OtelConfig {
	return OtelConfig{}
}

// Instrument builds a hook recording byte counts, error counts and durations.
func Instrument(cfg OtelConfig) frpc.TransferHook {
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}
	meter := cfg.MeterProvider.Meter(instrumentationName)
	hook := &otelHook{cfg: cfg}
	hook.bytesCounter, _ = meter.Int64Counter("frpc.transfer.bytes",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes moved by FastRPC transport operations"),
	)
	hook.errorCounter, _ = meter.Int64Counter("frpc.transfer.errors",
		metric.WithUnit("{error}"),
		metric.WithDescription("Failed FastRPC transport operations"),
	)
	hook.durationHistogram, _ = meter.Float64Histogram("frpc.transfer.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of FastRPC transport operations"),
	)
	return hook
}

type otelHook struct {
	cfg               OtelConfig
	bytesCounter      metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

func (h *otelHook) OnTransfer(ctx context.Context, info frpc.TransferInfo, stats *frpc.TransferStats, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("op", info.Op),
		attribute.String("framing", info.Framing),
	}
	if h.cfg.Peer != "" {
		attrs = append(attrs, attribute.String("frpc.peer", h.cfg.Peer))
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)
	base := metric.WithAttributes(attrs...)

	if stats != nil {
		if h.bytesCounter != nil {
			h.bytesCounter.Add(ctx, stats.Bytes, base)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, stats.Duration.Seconds(), base)
		}
	}
	if err != nil && h.errorCounter != nil {
		h.errorCounter.Add(ctx, 1, metric.WithAttributes(
			append(attrs, attribute.String("error_kind", frpc.ErrorKind(err)))...))
	}
}
