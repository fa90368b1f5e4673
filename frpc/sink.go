// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DataSink receives body bytes as the transport reads them.
type DataSink interface {
	Write(p []byte) (int, error)
}

// BufferSink collects a body in memory obtained from an Arrow allocator.
// Call Release when done with it.
type BufferSink struct {
	mem memory.Allocator
	buf *memory.Buffer
}

// NewBufferSink returns an empty sink. A nil allocator selects
// memory.DefaultAllocator.
func NewBufferSink(mem memory.Allocator) *BufferSink {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &BufferSink{mem: mem}
}

func (s *BufferSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.buf == nil {
		s.buf = memory.NewResizableBuffer(s.mem)
	}
	n := s.buf.Len()
	need := n + len(p)
	if need > s.buf.Cap() {
		s.buf.Reserve(max(need, 2*s.buf.Cap()))
	}
	s.buf.ResizeNoShrink(need)
	copy(s.buf.Bytes()[n:], p)
	return len(p), nil
}

// Bytes returns the collected body. The slice is valid until the next Write,
// Reset or Release.
func (s *BufferSink) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return s.buf.Bytes()
}

func (s *BufferSink) Len() int {
	if s.buf == nil {
		return 0
	}
	return s.buf.Len()
}

// Reset empties the sink but keeps its memory for reuse.
func (s *BufferSink) Reset() {
	if s.buf != nil {
		s.buf.ResizeNoShrink(0)
	}
}

// Release returns the memory to the allocator.
func (s *BufferSink) Release() {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
}
