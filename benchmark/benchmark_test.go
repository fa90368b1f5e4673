// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package benchmark

import (
	"bytes"
	"net"
	"net/http"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/fastrpc/frpc"
)

func BenchmarkBuildWideStruct(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool := frpc.NewPool()
		WideStruct(pool, 256)
		pool.Release()
	}
}

func BenchmarkClone(b *testing.B) {
	src := frpc.NewPool()
	defer src.Release()
	tree := src.NewArray().Append(WideStruct(src, 128), DeepArray(src, 16, 8))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst := frpc.NewPool()
		dst.Clone(tree)
		dst.Release()
	}
}

func BenchmarkParseDateTime(b *testing.B) {
	pool := frpc.NewPool()
	defer pool.Release()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := pool.ParseDateTime("2008-05-05T12:00:00+02:00"); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkReadChunked(b *testing.B, size int) {
	body := bytes.Repeat([]byte("x"), 1<<20)
	raw := ChunkedBody(body, size)
	b.SetBytes(int64(len(body)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		client, server := net.Pipe()
		go func() {
			_, _ = server.Write(raw)
			_ = server.Close()
		}()
		h := frpc.NewHTTPIO(client, frpc.DefaultConfig())
		sink := frpc.NewBufferSink(memory.DefaultAllocator)
		if err := h.ReadChunkedContent(http.Header{}, sink); err != nil {
			b.Fatal(err)
		}
		sink.Release()
		_ = client.Close()
	}
}

func BenchmarkReadChunked4K(b *testing.B) { benchmarkReadChunked(b, 4<<10) }
func BenchmarkReadChunked64K(b *testing.B) { benchmarkReadChunked(b, 64<<10) }

func TestPayloadGenerators(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	st := WideStruct(pool, 10)
	require.Equal(t, 10, st.Len())

	arr := DeepArray(pool, 3, 2)
	require.Equal(t, 3, arr.Len())

	raw := ChunkedBody([]byte("hello world"), 4)
	require.Equal(t, "4\r\nhell\r\n4\r\no wo\r\n3\r\nrld\r\n0\r\n\r\n", string(raw))
}
