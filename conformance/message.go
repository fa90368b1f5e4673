// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/fastrpc/frpc"
)

// Message is one HTTP request or response with a decoded body.
type Message struct {
	StartLine string
	Header    http.Header
	Body      []byte
	// Skipped counts malformed header lines that were ignored.
	Skipped int
}

// ReadMessage reads a start line, headers and body from h, undoing any
// content coding. The body is staged in memory from mem.
func ReadMessage(h *frpc.HTTPIO, request bool, mem memory.Allocator) (*Message, error) {
	line, err := h.ReadLine(true)
	if err != nil {
		return nil, err
	}
	msg := &Message{StartLine: line, Header: http.Header{}}
	if msg.Skipped, err = h.ReadHeader(msg.Header); err != nil {
		return nil, err
	}

	sink := frpc.NewBufferSink(mem)
	defer sink.Release()
	if err := h.ReadContent(msg.Header, sink, request); err != nil {
		return nil, err
	}
	msg.Body, err = frpc.DecodeBody(msg.Header, bytes.Clone(sink.Bytes()), h.Config().BodySizeLimit)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// WriteOptions controls how WriteMessage frames a body.
type WriteOptions struct {
	// ChunkSize > 0 selects chunked framing with chunks of at most that size.
	ChunkSize int
	// Coding is applied as Content-Encoding when not empty.
	Coding string
	// Level is the compression level for Coding.
	Level int
	// Watch makes the body write fail early when the peer answers first.
	Watch bool
}

// WriteMessage writes msg to h. Framing headers in msg.Header are replaced.
func WriteMessage(h *frpc.HTTPIO, msg *Message, opts WriteOptions) error {
	hdr := msg.Header.Clone()
	if hdr == nil {
		hdr = http.Header{}
	}
	body := msg.Body
	if opts.Coding != "" && opts.Coding != frpc.EncodingIdentity {
		enc, err := frpc.EncodeBody(opts.Coding, opts.Level, body)
		if err != nil {
			return err
		}
		body = enc
		hdr.Set(frpc.HeaderContentEncoding, opts.Coding)
	}

	if opts.ChunkSize <= 0 {
		hdr.Del(frpc.HeaderTransferEncoding)
		hdr.Set(frpc.HeaderContentLength, strconv.Itoa(len(body)))
		if err := h.WriteHeader(msg.StartLine, hdr); err != nil {
			return err
		}
		return h.SendData(body, opts.Watch)
	}

	hdr.Del(frpc.HeaderContentLength)
	hdr.Set(frpc.HeaderTransferEncoding, frpc.EncodingChunked)
	if err := h.WriteHeader(msg.StartLine, hdr); err != nil {
		return err
	}
	for off := 0; off < len(body); off += opts.ChunkSize {
		if err := h.SendChunk(body[off:min(off+opts.ChunkSize, len(body))]); err != nil {
			return err
		}
	}
	return h.SendLastChunk(nil)
}
