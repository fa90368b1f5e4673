// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import "time"

// Config holds the per-connection limits of an HTTPIO.
type Config struct {
	// ReadTimeout bounds every socket read. Zero disables the deadline.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout bounds every socket write. Zero disables the deadline.
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// LineSizeLimit caps a single status or header line in bytes.
	// Zero or negative means unlimited.
	LineSizeLimit int64 `yaml:"line_size_limit"`
	// BodySizeLimit caps a message body in bytes.
	// Zero or negative means unlimited.
	BodySizeLimit int64 `yaml:"body_size_limit"`
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  10 * time.Second,
		LineSizeLimit: 16 << 10,
		BodySizeLimit: 64 << 20,
	}
}
