// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"encoding/base64"
	"fmt"

	"github.com/Query-farm/fastrpc/frpc"
)

// EchoMethod is the method name of the canonical call.
const EchoMethod = "conformance.echo"

// CanonicalCall builds a method call whose single parameter is a struct
// holding one value of every kind, including nested containers and both
// DateTime singletons.
func CanonicalCall(pool *frpc.Pool) *frpc.MethodCall {
	when := pool.DateTimeFromUnixZone(1209981600, 7200)
	all := pool.NewStruct().
		Append("null", pool.NewNull()).
		Append("bool", pool.NewBool(true)).
		Append("int", pool.NewInt(-1<<40)).
		Append("double", pool.NewDouble(3.25)).
		Append("string", pool.NewString("Příliš žluťoučký kůň")).
		Append("binary", pool.NewBinary([]byte{0x00, 0xff, 0x10})).
		Append("datetime", when).
		Append("epoch", frpc.Epoch()).
		Append("nodate", frpc.NullDateTime()).
		Append("array", pool.NewArray().Append(
			pool.NewInt(1),
			pool.NewString("two"),
			pool.NewArray().Append(pool.NewDouble(3)),
		)).
		Append("struct", pool.NewStruct().
			Append("fault", pool.NewFault(500, "boom")).
			Append("response", pool.NewMethodResponse(pool.NewBool(false))))
	return pool.NewMethodCall(EchoMethod, all)
}

// ToNative converts a value tree into plain Go values (maps, slices and
// scalars) suitable for YAML or JSON encoding. Binary payloads become
// base64 text and date-times their ISO-8601 form.
func ToNative(v frpc.Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *frpc.Null:
		return nil
	case *frpc.Bool:
		return x.Value()
	case *frpc.Int:
		return x.Value()
	case *frpc.Double:
		return x.Value()
	case *frpc.String:
		return x.Value()
	case *frpc.Binary:
		return map[string]any{"binary": base64.StdEncoding.EncodeToString(x.Bytes())}
	case *frpc.DateTime:
		return map[string]any{"dateTime": x.IsoFormat(), "unix": x.UnixTime()}
	case *frpc.Struct:
		out := make(map[string]any, x.Len())
		for k, item := range x.All() {
			out[k] = ToNative(item)
		}
		return out
	case *frpc.Array:
		out := make([]any, 0, x.Len())
		for _, item := range x.All() {
			out = append(out, ToNative(item))
		}
		return out
	case *frpc.MethodCall:
		return map[string]any{"methodCall": x.Name(), "params": ToNative(x.Params())}
	case *frpc.MethodResponse:
		return map[string]any{"methodResponse": ToNative(x.Result())}
	case *frpc.Fault:
		return map[string]any{"fault": map[string]any{"code": x.Code(), "message": x.Message()}}
	}
	panic(fmt.Sprintf("conformance: unhandled value %T", v))
}

// Count returns the number of values in the tree rooted at v.
func Count(v frpc.Value) int {
	n := 1
	switch x := v.(type) {
	case *frpc.Struct:
		for _, item := range x.All() {
			n += Count(item)
		}
	case *frpc.Array:
		for _, item := range x.All() {
			n += Count(item)
		}
	case *frpc.MethodCall:
		n += Count(x.Params())
	case *frpc.MethodResponse:
		n += Count(x.Result())
	}
	return n
}
