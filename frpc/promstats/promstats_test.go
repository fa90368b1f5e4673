// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package promstats

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/fastrpc/frpc"
)

func TestHookCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg)
	require.NoError(t, err)

	ctx := context.Background()
	send := frpc.TransferInfo{Op: frpc.OpSend, Framing: frpc.FramingNone}
	h.OnTransfer(ctx, send, &frpc.TransferStats{Bytes: 64, Duration: time.Millisecond}, nil)
	h.OnTransfer(ctx, send, &frpc.TransferStats{Bytes: 16}, frpc.ErrEarlyResponse)

	assert.Equal(t, 80.0, testutil.ToFloat64(h.bytes.WithLabelValues(frpc.OpSend, frpc.FramingNone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.errors.WithLabelValues(frpc.OpSend, "early_response")))
	assert.Equal(t, 1, testutil.CollectAndCount(h.duration))

	names, err := reg.Gather()
	require.NoError(t, err)
	var got []string
	for _, mf := range names {
		got = append(got, mf.GetName())
	}
	assert.ElementsMatch(t, []string{
		"frpc_transfer_bytes_total",
		"frpc_transfer_errors_total",
		"frpc_transfer_duration_seconds",
	}, got)
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
