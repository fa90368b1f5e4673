// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// DecodeBody undoes the Content-Encoding named in hdr. The decoded body may
// not exceed limit bytes (limit <= 0 means unlimited).
func DecodeBody(hdr http.Header, body []byte, limit int64) ([]byte, error) {
	coding := strings.ToLower(strings.TrimSpace(hdr.Get(HeaderContentEncoding)))
	var r io.Reader
	switch coding {
	case "", EncodingIdentity:
		if limit > 0 && int64(len(body)) > limit {
			return nil, &LimitError{What: "body", Limit: limit, Size: int64(len(body))}
		}
		return body, nil
	case EncodingGzip, "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, streamErrorf("corrupt %s body: %v", coding, err)
		}
		defer zr.Close()
		r = zr
	case EncodingDeflate:
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, streamErrorf("corrupt %s body: %v", coding, err)
		}
		defer zr.Close()
		r = zr
	case EncodingZstd:
		zr, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, streamErrorf("corrupt %s body: %v", coding, err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, streamErrorf("unsupported content encoding %q", coding)
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, streamErrorf("corrupt %s body: %v", coding, err)
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, &LimitError{What: "body", Limit: limit, Size: int64(len(out))}
	}
	return out, nil
}

// EncodeBody compresses body with coding at the given level. Level 0 selects
// each codec's default.
func EncodeBody(coding string, level int, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch strings.ToLower(coding) {
	case "", EncodingIdentity:
		return body, nil
	case EncodingGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		w, err = gzip.NewWriterLevel(&buf, level)
	case EncodingDeflate:
		if level == 0 {
			level = zlib.DefaultCompression
		}
		w, err = zlib.NewWriterLevel(&buf, level)
	case EncodingZstd:
		opts := []zstd.EOption{}
		if level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		w, err = zstd.NewWriter(&buf, opts...)
	default:
		return nil, fmt.Errorf("frpc: unsupported content encoding %q", coding)
	}
	if err != nil {
		return nil, fmt.Errorf("frpc: %s encoder: %w", coding, err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("frpc: %s encode: %w", coding, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("frpc: %s encode: %w", coding, err)
	}
	return buf.Bytes(), nil
}
