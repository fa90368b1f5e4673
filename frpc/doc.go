// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package frpc implements the transport and data-model core of FastRPC, a
// compact typed RPC format carried over HTTP.
//
// # Values
//
// Every RPC datum is a [Value]: Null, Bool, Int, Double, String, Binary,
// DateTime, Struct, Array, MethodCall, MethodResponse or Fault. Values are
// created only through a [Pool], which owns them until [Pool.Release]
// discards them all at once:
//
//	pool := frpc.NewPool()
//	defer pool.Release()
//
//	args := pool.NewStruct().
//		Append("name", pool.NewString("world")).
//		Append("count", pool.NewInt(3))
//	call := pool.NewMethodCall("greet", args)
//
// Containers only hold values of their own pool; use [Pool.Clone] to copy a
// tree between pools. Downcasts go through [AsInt], [AsStruct] and friends,
// which return a [*TypeError] instead of coercing.
//
// Binary payloads are allocated from an Apache Arrow [memory.Allocator]
// supplied with [WithAllocator].
//
// # Date-times
//
// [DateTime] keeps calendar fields, weekday, Unix time and UTC offset
// together. [Pool.ParseDateTime] and [DateTime.IsoFormat] round-trip the
// ISO-8601 text form.
//
// # HTTP framing
//
// [HTTPIO] reads header lines and bodies (fixed length, chunked or until
// close) from a net.Conn and writes requests back, enforcing the line and
// body size limits and timeouts of a [Config]. Errors are typed; use
// [IsFatal] to decide whether the connection can be kept.
//
// [memory.Allocator]: https://pkg.go.dev/github.com/apache/arrow-go/v18/arrow/memory#Allocator
package frpc
