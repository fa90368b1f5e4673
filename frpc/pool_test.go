// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc_test

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/fastrpc/frpc"
)

func TestDowncastMismatch(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	_, err := frpc.AsDouble(pool.NewInt(42))
	require.Error(t, err)
	assert.True(t, errors.Is(err, frpc.ErrTypeMismatch))
	assert.EqualError(t, err, "Type is int but not double")

	var te *frpc.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "double", te.Expected)
	assert.Equal(t, "int", te.Actual)
	assert.False(t, frpc.IsFatal(err))

	_, err = frpc.AsInt(nil)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "nil", te.Actual)
}

func TestScalarAccessors(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	i, err := frpc.AsInt(pool.NewInt(-7))
	require.NoError(t, err)
	assert.Equal(t, int64(-7), i.Value())

	d, err := frpc.AsDouble(pool.NewDouble(2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, d.Value())

	b, err := frpc.AsBool(pool.NewBool(true))
	require.NoError(t, err)
	assert.True(t, b.Value())

	s, err := frpc.AsString(pool.NewString("žluťoučký"))
	require.NoError(t, err)
	assert.Equal(t, "žluťoučký", s.Value())

	n, err := frpc.AsNull(pool.NewNull())
	require.NoError(t, err)
	assert.Equal(t, frpc.TypeNull, n.Type())
	assert.Equal(t, "null", n.TypeName())

	assert.Equal(t, 5, pool.Len())
}

func TestTypeTags(t *testing.T) {
	assert.Equal(t, frpc.Type(0x01), frpc.TypeInt)
	assert.Equal(t, frpc.Type(0x05), frpc.TypeDateTime)
	assert.Equal(t, frpc.Type(0x0A), frpc.TypeStruct)
	assert.Equal(t, frpc.Type(0x0F), frpc.TypeFault)
	assert.Equal(t, "methodResponse", frpc.TypeMethodResponse.String())
	assert.Equal(t, "unknown", frpc.Type(0x42).String())
}

func TestBinaryUsesAllocator(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	pool := frpc.NewPool(frpc.WithAllocator(mem))
	bin := pool.NewBinary([]byte("payload"))
	assert.Equal(t, []byte("payload"), bin.Bytes())
	assert.Equal(t, 7, bin.Len())
	assert.Positive(t, mem.CurrentAlloc())

	empty := pool.NewBinary(nil)
	assert.Zero(t, empty.Len())

	pool.Release()
	assert.True(t, pool.Released())
	assert.Nil(t, bin.Bytes())
	assert.Zero(t, pool.Len())

	// Releasing twice is harmless.
	pool.Release()
}

func TestBinaryCopiesInput(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	src := []byte("abc")
	bin := pool.NewBinary(src)
	src[0] = 'x'
	assert.Equal(t, []byte("abc"), bin.Bytes())
}

func TestReleasedPoolPanics(t *testing.T) {
	pool := frpc.NewPool()
	pool.Release()
	assert.Panics(t, func() { pool.NewInt(1) })
	assert.Panics(t, func() { pool.NewStruct() })
	assert.Panics(t, func() { pool.Clone(frpc.Epoch()) })
}

func TestCrossPoolInsertPanics(t *testing.T) {
	a, b := frpc.NewPool(), frpc.NewPool()
	defer a.Release()
	defer b.Release()

	foreign := b.NewInt(1)
	assert.PanicsWithValue(t,
		"frpc: int value owned by pool "+b.ID()+" inserted into container of pool "+a.ID()+"; use Clone",
		func() { a.NewStruct().Append("x", foreign) })
	assert.Panics(t, func() { a.NewArray().Append(foreign) })
	assert.Panics(t, func() { a.NewMethodResponse(foreign) })

	// Singletons belong to no pool.
	assert.NotPanics(t, func() {
		a.NewArray().Append(frpc.Epoch(), frpc.NullDateTime())
	})
}

func TestCloneIsIndependent(t *testing.T) {
	src := frpc.NewPool()
	defer src.Release()
	dst := frpc.NewPool()

	tree := src.NewStruct().
		Append("bin", src.NewBinary([]byte{1, 2, 3})).
		Append("list", src.NewArray().Append(src.NewInt(1), src.NewString("two"), frpc.Epoch())).
		Append("call", src.NewMethodCall("add", src.NewInt(1), src.NewInt(2)))

	st, err := frpc.AsStruct(dst.Clone(tree))
	require.NoError(t, err)
	assert.Same(t, dst, st.Pool())

	v, err := st.Get("list")
	require.NoError(t, err)
	clonedList, err := frpc.AsArray(v)
	require.NoError(t, err)
	clonedList.Append(dst.NewInt(4))

	v, err = st.Get("call")
	require.NoError(t, err)
	clonedCall, err := frpc.AsMethodCall(v)
	require.NoError(t, err)
	clonedCall.Params().Clear()

	st.Append("bin", dst.NewNull()).Append("extra", dst.NewBool(true))

	dst.Release()

	// The source tree saw none of it and outlives the clone's pool.
	assert.Equal(t, []string{"bin", "call", "list"}, tree.Keys())
	v, err = tree.Get("bin")
	require.NoError(t, err)
	bin, err := frpc.AsBinary(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, bin.Bytes())

	v, err = tree.Get("list")
	require.NoError(t, err)
	list, err := frpc.AsArray(v)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Len())

	v, err = tree.Get("call")
	require.NoError(t, err)
	call, err := frpc.AsMethodCall(v)
	require.NoError(t, err)
	assert.Equal(t, 2, call.Params().Len())
}

func TestCloneOutlivesSource(t *testing.T) {
	src := frpc.NewPool()
	dst := frpc.NewPool()
	defer dst.Release()

	tree := src.NewStruct().
		Append("bin", src.NewBinary([]byte{1, 2, 3})).
		Append("list", src.NewArray().Append(src.NewInt(1), src.NewString("two"), frpc.Epoch())).
		Append("call", src.NewMethodCall("add", src.NewInt(1), src.NewInt(2)))

	cloned := dst.Clone(tree)
	src.Release()

	st, err := frpc.AsStruct(cloned)
	require.NoError(t, err)

	v, err := st.Get("bin")
	require.NoError(t, err)
	bin, err := frpc.AsBinary(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, bin.Bytes())

	v, err = st.Get("list")
	require.NoError(t, err)
	list, err := frpc.AsArray(v)
	require.NoError(t, err)
	require.Equal(t, 3, list.Len())
	for _, item := range list.All() {
		assert.Same(t, dst, item.Pool())
	}

	v, err = st.Get("call")
	require.NoError(t, err)
	call, err := frpc.AsMethodCall(v)
	require.NoError(t, err)
	assert.Equal(t, "add", call.Name())
	assert.Equal(t, 2, call.Params().Len())
	assert.Same(t, dst, call.Params().Pool())
}

func TestMethodResponseAndFault(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	resp := pool.NewMethodResponse(pool.NewString("ok"))
	r, err := frpc.AsMethodResponse(resp)
	require.NoError(t, err)
	s, err := frpc.AsString(r.Result())
	require.NoError(t, err)
	assert.Equal(t, "ok", s.Value())

	fault, err := frpc.AsFault(pool.NewFault(404, "no such method"))
	require.NoError(t, err)
	assert.Equal(t, int64(404), fault.Code())
	assert.Equal(t, "no such method", fault.Message())

	ferr := fault.Err()
	assert.True(t, errors.Is(ferr, frpc.ErrFault))
	assert.EqualError(t, ferr, "fault 404: no such method")

	other := frpc.NewPool()
	defer other.Release()
	copied, err := frpc.AsMethodResponse(other.Clone(resp))
	require.NoError(t, err)
	assert.Same(t, other, copied.Result().Pool())
}
