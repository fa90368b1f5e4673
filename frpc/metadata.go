// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

// Header names and values that drive body framing and content coding.
const (
	HeaderContentLength    = "Content-Length"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderContentEncoding  = "Content-Encoding"
	HeaderContentType      = "Content-Type"
	HeaderTrailer          = "Trailer"

	EncodingChunked  = "chunked"
	EncodingGzip     = "gzip"
	EncodingDeflate  = "deflate"
	EncodingZstd     = "zstd"
	EncodingIdentity = "identity"

	// ContentType is the media type of FastRPC binary bodies.
	ContentType = "application/x-frpc"
)
