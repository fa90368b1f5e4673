// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"bytes"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/fastrpc/frpc"
)

// Fixture is a raw HTTP message and the outcome of reading it.
type Fixture struct {
	Name    string
	Request bool
	Raw     string
	// Config overrides the limits; zero fields take DefaultConfig values.
	Config frpc.Config

	WantBody    string
	WantHeader  map[string]string
	WantSkipped int
	// WantErr is the sentinel the read must fail with, or nil.
	WantErr error
}

// Fixtures returns the wire fixtures.
func Fixtures() []Fixture {
	return []Fixture{
		{
			Name:     "content-length request",
			Request:  true,
			Raw:      "POST /RPC2 HTTP/1.1\r\nContent-Type: application/x-frpc\r\nContent-Length: 5\r\n\r\nhello",
			WantBody: "hello",
			WantHeader: map[string]string{
				"Content-Type": frpc.ContentType,
			},
		},
		{
			Name:     "chunked response",
			Raw:      "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n",
			WantBody: "hello",
		},
		{
			Name:       "chunked with extension and trailer",
			Raw:        "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\nTrailer: X-Sum\r\n\r\n3;x=y\r\nabc\r\n2\r\nde\r\n0\r\nX-Sum: 5\r\n\r\n",
			WantBody:   "abcde",
			WantHeader: map[string]string{"X-Sum": "5"},
		},
		{
			Name:     "response until close",
			Raw:      "HTTP/1.0 200 OK\r\n\r\nuntil the end",
			WantBody: "until the end",
		},
		{
			Name:     "request without body",
			Request:  true,
			Raw:      "GET / HTTP/1.1\r\nHost: x\r\n\r\n",
			WantBody: "",
		},
		{
			Name:        "malformed header line",
			Request:     true,
			Raw:         "POST / HTTP/1.1\r\nbogus\r\nContent-Length: 2\r\n\r\nok",
			WantBody:    "ok",
			WantSkipped: 1,
		},
		{
			Name:    "malformed chunk size",
			Raw:     "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nxyz\r\n",
			WantErr: frpc.ErrStream,
		},
		{
			Name:    "short body",
			Raw:     "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n1234567",
			WantErr: frpc.ErrConnection,
		},
		{
			Name:    "line too long",
			Raw:     "HTTP/1.1 200 OK\r\nX-Long: " + strings.Repeat("a", 64) + "\r\n\r\n",
			Config:  frpc.Config{LineSizeLimit: 32},
			WantErr: frpc.ErrLimitExceeded,
		},
		{
			Name:    "body too large",
			Raw:     "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n",
			Config:  frpc.Config{BodySizeLimit: 10},
			WantErr: frpc.ErrLimitExceeded,
		},
		{
			Name:    "unknown content coding",
			Raw:     "HTTP/1.1 200 OK\r\nContent-Encoding: br\r\nContent-Length: 2\r\n\r\nxx",
			WantErr: frpc.ErrStream,
		},
	}
}

// Result is the outcome of running one fixture.
type Result struct {
	Name   string `yaml:"name"`
	Passed bool   `yaml:"passed"`
	Detail string `yaml:"detail,omitempty"`
}

// effective fills zero fields of override from base.
func effective(base, override frpc.Config) frpc.Config {
	if override.ReadTimeout != 0 {
		base.ReadTimeout = override.ReadTimeout
	}
	if override.WriteTimeout != 0 {
		base.WriteTimeout = override.WriteTimeout
	}
	if override.LineSizeLimit != 0 {
		base.LineSizeLimit = override.LineSizeLimit
	}
	if override.BodySizeLimit != 0 {
		base.BodySizeLimit = override.BodySizeLimit
	}
	return base
}

// Run feeds f.Raw through an HTTPIO configured from base and f.Config.
func (f Fixture) Run(base frpc.Config, mem memory.Allocator, opts ...frpc.IOOption) Result {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	go func() {
		_, _ = server.Write([]byte(f.Raw))
		_ = server.Close()
	}()

	h := frpc.NewHTTPIO(client, effective(base, f.Config), opts...)
	msg, err := ReadMessage(h, f.Request, mem)

	res := Result{Name: f.Name}
	switch {
	case f.WantErr != nil && err == nil:
		res.Detail = "expected error " + f.WantErr.Error()
	case f.WantErr != nil && !errors.Is(err, f.WantErr):
		res.Detail = "got error " + err.Error() + ", want " + f.WantErr.Error()
	case f.WantErr != nil:
		res.Passed = true
	case err != nil:
		res.Detail = "unexpected error " + err.Error()
	case !bytes.Equal(msg.Body, []byte(f.WantBody)):
		res.Detail = "body " + strconv.Quote(string(msg.Body)) + ", want " + strconv.Quote(f.WantBody)
	case msg.Skipped != f.WantSkipped:
		res.Detail = "skipped header lines mismatch"
	default:
		res.Passed = true
		for k, v := range f.WantHeader {
			if got := msg.Header.Get(k); got != v {
				res.Passed = false
				res.Detail = "header " + k + " = " + got + ", want " + v
				break
			}
		}
	}
	return res
}

// RunAll runs every fixture and reports whether all passed.
func RunAll(base frpc.Config, mem memory.Allocator, opts ...frpc.IOOption) ([]Result, bool) {
	ok := true
	var results []Result
	for _, f := range Fixtures() {
		r := f.Run(base, mem, opts...)
		ok = ok && r.Passed
		results = append(results, r)
	}
	return results, ok
}
