// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Transfer operation names for TransferInfo.Op.
const (
	OpReadLine    = "read_line"
	OpReadHeader  = "read_header"
	OpReadChunked = "read_chunked"
	OpReadBlock   = "read_block"
	OpSend        = "send"
)

// Framing names for TransferInfo.Framing.
const (
	FramingNone    = "none"
	FramingChunked = "chunked"
	FramingLength  = "length"
	FramingClose   = "close"
)

// TransferHook observes completed transport operations. Implementations must
// be safe for concurrent use when shared between connections.
type TransferHook interface {
	OnTransfer(ctx context.Context, info TransferInfo, stats *TransferStats, err error)
}

// TransferInfo describes one transport operation.
type TransferInfo struct {
	Op      string // one of the Op* constants
	Framing string // one of the Framing* constants
}

// TransferStats holds the counters of one transport operation.
type TransferStats struct {
	Bytes    int64
	Lines    int64
	Chunks   int64
	Duration time.Duration
}

// RecordChunk records one body chunk of n bytes.
func (s *TransferStats) RecordChunk(n int64) {
	s.Chunks++
	s.Bytes += n
}

// RecordLine records one protocol line of n bytes including its terminator.
func (s *TransferStats) RecordLine(n int64) {
	s.Lines++
	s.Bytes += n
}

// HookFunc adapts a function to TransferHook.
type HookFunc func(ctx context.Context, info TransferInfo, stats *TransferStats, err error)

func (f HookFunc) OnTransfer(ctx context.Context, info TransferInfo, stats *TransferStats, err error) {
	f(ctx, info, stats, err)
}

// notifyHook calls hook and recovers a panic so a faulty observer cannot
// break the connection.
func notifyHook(log *zap.Logger, hook TransferHook, info TransferInfo, stats *TransferStats, start time.Time, err error) {
	if hook == nil {
		return
	}
	stats.Duration = time.Since(start)
	ctx := context.Background()
	if m, ok := hook.(multiHook); ok {
		m.each(ctx, log, info, stats, err)
		return
	}
	callHook(ctx, log, hook, info, stats, err)
}

// callHook runs one hook, logging instead of propagating a panic.
func callHook(ctx context.Context, log *zap.Logger, hook TransferHook, info TransferInfo, stats *TransferStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("transfer hook panicked",
				zap.String("op", info.Op),
				zap.Any("panic", r))
		}
	}()
	hook.OnTransfer(ctx, info, stats, err)
}

// MultiHook fans a transfer out to every non-nil hook in order. A panicking
// hook is logged and does not stop the hooks after it.
func MultiHook(hooks ...TransferHook) TransferHook {
	var live multiHook
	for _, h := range hooks {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return live
}

type multiHook []TransferHook

func (m multiHook) OnTransfer(ctx context.Context, info TransferInfo, stats *TransferStats, err error) {
	m.each(ctx, logger(), info, stats, err)
}

func (m multiHook) each(ctx context.Context, log *zap.Logger, info TransferInfo, stats *TransferStats, err error) {
	for _, h := range m {
		callHook(ctx, log, h, info, stats, err)
	}
}
