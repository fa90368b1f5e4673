// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package benchmark holds payload generators and benchmarks for the FastRPC
// value model and transport.
package benchmark

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Query-farm/fastrpc/frpc"
)

// WideStruct builds a struct with n members of mixed kinds.
func WideStruct(pool *frpc.Pool, n int) *frpc.Struct {
	st := pool.NewStruct()
	for i := 0; i < n; i++ {
		key := "field_" + strconv.Itoa(i)
		switch i % 4 {
		case 0:
			st.Append(key, pool.NewInt(int64(i)))
		case 1:
			st.Append(key, pool.NewString(key))
		case 2:
			st.Append(key, pool.NewBinary([]byte(key)))
		default:
			st.Append(key, pool.DateTimeFromUnixZone(int64(i)*3600, 0))
		}
	}
	return st
}

// DeepArray builds arrays nested depth levels deep, each holding width
// integers and the next level.
func DeepArray(pool *frpc.Pool, depth, width int) *frpc.Array {
	arr := pool.NewArray()
	for i := 0; i < width; i++ {
		arr.Append(pool.NewInt(int64(i)))
	}
	if depth > 1 {
		arr.Append(DeepArray(pool, depth-1, width))
	}
	return arr
}

// ChunkedBody frames body as a chunked HTTP body with chunks of size bytes.
func ChunkedBody(body []byte, size int) []byte {
	var buf bytes.Buffer
	for off := 0; off < len(body); off += size {
		end := min(off+size, len(body))
		fmt.Fprintf(&buf, "%x\r\n", end-off)
		buf.Write(body[off:end])
		buf.WriteString("\r\n")
	}
	buf.WriteString("0\r\n\r\n")
	return buf.Bytes()
}
