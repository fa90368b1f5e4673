// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/Query-farm/fastrpc/frpc"
)

// EchoServer answers every request with its own body, framed according to
// Write. It keeps connections alive until the peer closes or a fatal
// transport error occurs.
type EchoServer struct {
	Config frpc.Config
	Write  WriteOptions
	Hook   frpc.TransferHook
	Logger *zap.Logger
	Mem    memory.Allocator
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
func (s *EchoServer) Serve(ctx context.Context, ln net.Listener) error {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			s.serveConn(conn, log.With(zap.String("peer", conn.RemoteAddr().String())))
		}()
	}
}

func (s *EchoServer) serveConn(conn net.Conn, log *zap.Logger) {
	opts := []frpc.IOOption{frpc.WithLogger(log)}
	if s.Hook != nil {
		opts = append(opts, frpc.WithHook(s.Hook))
	}
	h := frpc.NewHTTPIO(conn, s.Config, opts...)
	for {
		req, err := ReadMessage(h, true, s.Mem)
		if err != nil {
			if errors.Is(err, frpc.ErrConnection) {
				log.Debug("peer closed")
				return
			}
			log.Warn("bad request", zap.Error(err), zap.String("kind", frpc.ErrorKind(err)))
			if frpc.IsFatal(err) {
				return
			}
			_ = WriteMessage(h, &Message{StartLine: "HTTP/1.1 400 Bad Request"}, WriteOptions{})
			continue
		}
		resp := &Message{
			StartLine: "HTTP/1.1 200 OK",
			Header:    http.Header{},
			Body:      req.Body,
		}
		if ct := req.Header.Get(frpc.HeaderContentType); ct != "" {
			resp.Header.Set(frpc.HeaderContentType, ct)
		}
		if err := WriteMessage(h, resp, s.Write); err != nil {
			log.Warn("write failed", zap.Error(err))
			return
		}
	}
}
