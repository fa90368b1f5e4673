// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/fastrpc/frpc"
)

func intOf(t *testing.T, v frpc.Value) int64 {
	t.Helper()
	i, err := frpc.AsInt(v)
	require.NoError(t, err)
	return i.Value()
}

func TestStructInsertKeepsExisting(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	st := pool.NewStruct()
	stored, inserted := st.Insert("a", pool.NewInt(1))
	assert.True(t, inserted)
	assert.Equal(t, int64(1), intOf(t, stored))

	stored, inserted = st.Insert("a", pool.NewInt(2))
	assert.False(t, inserted)
	assert.Equal(t, int64(1), intOf(t, stored))

	_, inserted = st.InsertPair(frpc.Pair{Key: "b", Value: pool.NewInt(3)})
	assert.True(t, inserted)
	assert.Equal(t, 2, st.Len())
}

func TestStructAppendReplaces(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	st := pool.NewStruct().Append("a", pool.NewInt(1)).Append("a", pool.NewInt(2))
	assert.Equal(t, 1, st.Len())
	v, err := st.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), intOf(t, v))
}

func TestStructGetMiss(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	st := pool.NewStruct()
	_, err := st.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, frpc.ErrKeyNotFound))
	assert.EqualError(t, err, `Key "missing" not found`)
	assert.False(t, st.Has("missing"))
	assert.True(t, st.Empty())
}

func TestStructOrderedIteration(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	st := pool.NewStruct()
	for i, k := range []string{"zeta", "alpha", "mid", "beta"} {
		st.Append(k, pool.NewInt(int64(i)))
	}
	assert.Equal(t, []string{"alpha", "beta", "mid", "zeta"}, st.Keys())

	var seen []string
	for k := range st.All() {
		seen = append(seen, k)
		if k == "beta" {
			break
		}
	}
	assert.Equal(t, []string{"alpha", "beta"}, seen)

	st.Clear()
	assert.True(t, st.Empty())
	assert.False(t, st.Has("alpha"))
}

func TestArrayAccess(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	arr := pool.NewArray().Append(pool.NewInt(10), pool.NewInt(20)).Append(pool.NewString("x"))
	assert.Equal(t, 3, arr.Len())

	v, err := arr.At(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), intOf(t, v))

	_, err = arr.At(3)
	var ie *frpc.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.Index)
	assert.Equal(t, 3, ie.Len)
	assert.True(t, errors.Is(err, frpc.ErrIndexOutOfRange))

	_, err = arr.At(-1)
	assert.True(t, errors.Is(err, frpc.ErrIndexOutOfRange))

	var idx []int
	for i := range arr.All() {
		idx = append(idx, i)
	}
	assert.Equal(t, []int{0, 1, 2}, idx)

	arr.Clear()
	assert.True(t, arr.Empty())
}

func TestNestedContainers(t *testing.T) {
	pool := frpc.NewPool()
	defer pool.Release()

	inner := pool.NewArray().Append(pool.NewBool(false), pool.NewNull())
	outer := pool.NewStruct().Append("inner", inner)

	v, err := outer.Get("inner")
	require.NoError(t, err)
	arr, err := frpc.AsArray(v)
	require.NoError(t, err)
	assert.Same(t, inner, arr)

	_, err = frpc.AsStruct(v)
	assert.True(t, errors.Is(err, frpc.ErrTypeMismatch))
}
