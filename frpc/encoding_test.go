// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/fastrpc/frpc"
)

func TestContentCodingRoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte("fastrpc body "), 1000)
	for _, coding := range []string{frpc.EncodingGzip, frpc.EncodingDeflate, frpc.EncodingZstd, frpc.EncodingIdentity} {
		t.Run(coding, func(t *testing.T) {
			enc, err := frpc.EncodeBody(coding, 0, body)
			require.NoError(t, err)
			if coding != frpc.EncodingIdentity {
				assert.Less(t, len(enc), len(body))
			}
			dec, err := frpc.DecodeBody(http.Header{"Content-Encoding": {coding}}, enc, 0)
			require.NoError(t, err)
			assert.Equal(t, body, dec)
		})
	}
}

func TestDecodeBodyLimit(t *testing.T) {
	body := bytes.Repeat([]byte{'a'}, 4096)
	enc, err := frpc.EncodeBody(frpc.EncodingGzip, 9, body)
	require.NoError(t, err)

	_, err = frpc.DecodeBody(http.Header{"Content-Encoding": {"gzip"}}, enc, 1024)
	var le *frpc.LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, int64(1024), le.Limit)

	dec, err := frpc.DecodeBody(http.Header{"Content-Encoding": {"gzip"}}, enc, 4096)
	require.NoError(t, err)
	assert.Len(t, dec, 4096)

	_, err = frpc.DecodeBody(http.Header{}, body, 10)
	assert.True(t, errors.Is(err, frpc.ErrLimitExceeded))
}

func TestDecodeBodyErrors(t *testing.T) {
	_, err := frpc.DecodeBody(http.Header{"Content-Encoding": {"br"}}, []byte("x"), 0)
	assert.True(t, errors.Is(err, frpc.ErrStream))

	_, err = frpc.DecodeBody(http.Header{"Content-Encoding": {"gzip"}}, []byte("not gzip at all"), 0)
	assert.True(t, errors.Is(err, frpc.ErrStream))

	_, err = frpc.EncodeBody("br", 0, []byte("x"))
	assert.Error(t, err)
}
