// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpcotel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Query-farm/fastrpc/frpc"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestInstrumentRecordsTransfers(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	hook := Instrument(OtelConfig{MeterProvider: provider, Peer: "127.0.0.1:80"})

	ctx := context.Background()
	info := frpc.TransferInfo{Op: frpc.OpReadChunked, Framing: frpc.FramingChunked}
	hook.OnTransfer(ctx, info, &frpc.TransferStats{Bytes: 100, Chunks: 2, Duration: time.Millisecond}, nil)
	hook.OnTransfer(ctx, info, &frpc.TransferStats{Bytes: 20}, &frpc.LimitError{What: "body"})

	data := collect(t, reader)

	bytesSum, ok := data["frpc.transfer.bytes"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range bytesSum.DataPoints {
		total += dp.Value
		v, ok := dp.Attributes.Value("op")
		require.True(t, ok)
		assert.Equal(t, frpc.OpReadChunked, v.AsString())
	}
	assert.Equal(t, int64(120), total)

	errSum, ok := data["frpc.transfer.errors"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1)
	kind, ok := errSum.DataPoints[0].Attributes.Value("error_kind")
	require.True(t, ok)
	assert.Equal(t, "limit", kind.AsString())

	hist, ok := data["frpc.transfer.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}
