// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"iter"
	"slices"
)

// Pair is a key and value for Struct.InsertPair.
type Pair struct {
	Key   string
	Value Value
}

// Struct is a mapping from string keys to values, iterated in ascending key
// order. Members must belong to the struct's pool or be singletons.
type Struct struct {
	owned
	keys    []string // sorted
	members map[string]Value
}

// NewStruct returns an empty struct owned by p.
func (p *Pool) NewStruct() *Struct {
	v := &Struct{owned: owned{p}, members: make(map[string]Value)}
	p.track(v)
	return v
}

func (*Struct) Type() Type { return TypeStruct }
func (*Struct) TypeName() string { return TypeStruct.String() }

func (v *Struct) Len() int { return len(v.keys) }
func (v *Struct) Empty() bool { return len(v.keys) == 0 }

func (v *Struct) Has(key string) bool {
	_, ok := v.members[key]
	return ok
}

// Insert stores val under key unless the key is already present. It returns
// the entry stored under key and whether val was inserted.
func (v *Struct) Insert(key string, val Value) (Value, bool) {
	v.pool.adopt(val)
	if cur, ok := v.members[key]; ok {
		return cur, false
	}
	v.set(key, val)
	return val, true
}

// InsertPair is Insert for a Pair.
func (v *Struct) InsertPair(pair Pair) (Value, bool) {
	return v.Insert(pair.Key, pair.Value)
}

// Append stores val under key, replacing any previous entry, and returns the
// struct for chaining.
func (v *Struct) Append(key string, val Value) *Struct {
	v.pool.adopt(val)
	v.set(key, val)
	return v
}

func (v *Struct) set(key string, val Value) {
	if _, ok := v.members[key]; !ok {
		i, _ := slices.BinarySearch(v.keys, key)
		v.keys = slices.Insert(v.keys, i, key)
	}
	v.members[key] = val
}

// Get returns the entry under key, or a *KeyError. It never inserts.
func (v *Struct) Get(key string) (Value, error) {
	val, ok := v.members[key]
	if !ok {
		return nil, &KeyError{Key: key}
	}
	return val, nil
}

// Keys returns the keys in ascending order.
func (v *Struct) Keys() []string { return slices.Clone(v.keys) }

// All iterates the members in ascending key order.
func (v *Struct) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range v.keys {
			if !yield(k, v.members[k]) {
				return
			}
		}
	}
}

func (v *Struct) Clear() {
	v.keys = nil
	clear(v.members)
}

func (v *Struct) CloneInto(p *Pool) Value {
	c := p.NewStruct()
	for k, val := range v.All() {
		c.set(k, p.Clone(val))
	}
	return c
}

// Array is an ordered sequence of values. Members must belong to the array's
// pool or be singletons.
type Array struct {
	owned
	items []Value
}

// NewArray returns an empty array owned by p.
func (p *Pool) NewArray() *Array {
	v := &Array{owned: owned{p}}
	p.track(v)
	return v
}

func (*Array) Type() Type { return TypeArray }
func (*Array) TypeName() string { return TypeArray.String() }

func (v *Array) Len() int { return len(v.items) }
func (v *Array) Empty() bool { return len(v.items) == 0 }

// Append adds vals at the end and returns the array for chaining.
func (v *Array) Append(vals ...Value) *Array {
	for _, val := range vals {
		v.pool.adopt(val)
	}
	v.items = append(v.items, vals...)
	return v
}

// At returns the element at i, or an *IndexError.
func (v *Array) At(i int) (Value, error) {
	if i < 0 || i >= len(v.items) {
		return nil, &IndexError{Index: i, Len: len(v.items)}
	}
	return v.items[i], nil
}

// All iterates the elements in order.
func (v *Array) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, val := range v.items {
			if !yield(i, val) {
				return
			}
		}
	}
}

func (v *Array) Clear() { v.items = nil }

func (v *Array) CloneInto(p *Pool) Value {
	c := p.NewArray()
	for _, val := range v.items {
		c.items = append(c.items, p.Clone(val))
	}
	return c
}
