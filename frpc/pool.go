// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithAllocator sets the allocator used for Binary payloads.
func WithAllocator(mem memory.Allocator) PoolOption {
	return func(p *Pool) { p.mem = mem }
}

// WithLocation sets the zone used as "local" when deriving DateTime fields.
func WithLocation(loc *time.Location) PoolOption {
	return func(p *Pool) { p.loc = loc }
}

// Pool is the arena that owns every value built through it. Values are never
// freed individually; Release returns everything at once. A Pool is not safe
// for concurrent use.
type Pool struct {
	id       string
	mem      memory.Allocator
	loc      *time.Location
	values   []Value
	buffers  []*memory.Buffer
	released bool
}

// NewPool creates an empty pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		id:  uuid.NewString(),
		mem: memory.NewGoAllocator(),
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	return p
}

// ID returns the pool identifier used in log fields and panic messages.
func (p *Pool) ID() string { return p.id }

// Location returns the zone used for local DateTime derivation.
func (p *Pool) Location() *time.Location { return p.loc }

// Allocator returns the allocator backing Binary payloads.
func (p *Pool) Allocator() memory.Allocator { return p.mem }

// Len returns the number of values currently owned by the pool.
func (p *Pool) Len() int { return len(p.values) }

// Released reports whether Release has been called.
func (p *Pool) Released() bool { return p.released }

// Release returns every Binary payload to the allocator and drops all owned
// values. Values obtained from the pool must not be used afterwards.
// Calling Release twice is a no-op.
func (p *Pool) Release() {
	if p.released {
		return
	}
	for _, buf := range p.buffers {
		buf.Release()
	}
	for _, v := range p.values {
		if b, ok := v.(*Binary); ok {
			b.data = nil
		}
	}
	logger().Debug("pool released",
		zap.String("pool", p.id),
		zap.Int("values", len(p.values)),
		zap.Int("buffers", len(p.buffers)))
	p.buffers = nil
	p.values = nil
	p.released = true
}

func (p *Pool) track(v Value) {
	p.checkLive()
	p.values = append(p.values, v)
}

func (p *Pool) checkLive() {
	if p.released {
		panic(fmt.Sprintf("frpc: pool %s used after Release", p.id))
	}
}

// adopt panics unless v may be stored in a container owned by p.
func (p *Pool) adopt(v Value) {
	if v == nil {
		panic("frpc: nil value inserted into container")
	}
	owner := v.Pool()
	if owner == nil || owner == p {
		return
	}
	panic(fmt.Sprintf("frpc: %s value owned by pool %s inserted into container of pool %s; use Clone",
		v.TypeName(), owner.id, p.id))
}

// Clone deep-copies v, which may belong to any pool, into p.
func (p *Pool) Clone(v Value) Value {
	p.checkLive()
	if v == nil {
		return nil
	}
	return v.CloneInto(p)
}

func (p *Pool) NewNull() *Null {
	v := &Null{owned{p}}
	p.track(v)
	return v
}

func (p *Pool) NewBool(b bool) *Bool {
	v := &Bool{owned: owned{p}, value: b}
	p.track(v)
	return v
}

func (p *Pool) NewInt(i int64) *Int {
	v := &Int{owned: owned{p}, value: i}
	p.track(v)
	return v
}

func (p *Pool) NewDouble(d float64) *Double {
	v := &Double{owned: owned{p}, value: d}
	p.track(v)
	return v
}

func (p *Pool) NewString(s string) *String {
	v := &String{owned: owned{p}, value: s}
	p.track(v)
	return v
}

// NewBinary copies data into memory taken from the pool's allocator.
func (p *Pool) NewBinary(data []byte) *Binary {
	p.checkLive()
	v := &Binary{owned: owned{p}}
	if len(data) > 0 {
		buf := memory.NewResizableBuffer(p.mem)
		buf.Resize(len(data))
		copy(buf.Bytes(), data)
		p.buffers = append(p.buffers, buf)
		v.data = buf.Bytes()
	}
	p.track(v)
	return v
}

// NewFault builds a fault value.
func (p *Pool) NewFault(code int64, message string) *Fault {
	v := &Fault{owned: owned{p}, code: code, message: message}
	p.track(v)
	return v
}

// NewMethodCall builds a call with the given positional parameters. Every
// parameter must be owned by p or be a singleton.
func (p *Pool) NewMethodCall(name string, params ...Value) *MethodCall {
	arr := p.NewArray()
	arr.Append(params...)
	v := &MethodCall{owned: owned{p}, name: name, params: arr}
	p.track(v)
	return v
}

// NewMethodResponse wraps result, which must be owned by p or be a singleton.
func (p *Pool) NewMethodResponse(result Value) *MethodResponse {
	p.adopt(result)
	v := &MethodResponse{owned: owned{p}, result: result}
	p.track(v)
	return v
}
