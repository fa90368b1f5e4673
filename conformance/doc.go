// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package conformance provides shared fixtures for the FastRPC transport
// and value model: a canonical value tree that exercises every value kind,
// a table of raw HTTP exchanges with their expected decoding, and a small
// echo server built on [frpc.HTTPIO].
//
// The fixtures are used by the package tests, by the benchmark package and
// by the frpc-conformance-go command, which runs them against a configurable
// transport and reports the results as YAML.
package conformance
