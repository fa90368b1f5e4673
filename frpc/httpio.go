// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	readBufferSize = 16 << 10
	sendSliceSize  = 16 << 10
)

// IOOption configures an HTTPIO.
type IOOption func(*HTTPIO)

// WithHook installs an observer for completed transfers.
func WithHook(hook TransferHook) IOOption {
	return func(h *HTTPIO) { h.hook = hook }
}

// WithLogger overrides the package logger for one transport.
func WithLogger(l *zap.Logger) IOOption {
	return func(h *HTTPIO) { h.log = l }
}

// HTTPIO frames HTTP/1.x header lines and bodies over one connection,
// enforcing the limits of its Config. It does not own the connection and
// never closes it. An HTTPIO is not safe for concurrent use.
type HTTPIO struct {
	conn    net.Conn
	br      *bufio.Reader
	cfg     Config
	hook    TransferHook
	log     *zap.Logger
	scratch []byte

	lastRead  time.Time // deadline of last read operation
	lastWrite time.Time // deadline of last write operation
	probing   bool
}

// NewHTTPIO wraps conn.
func NewHTTPIO(conn net.Conn, cfg Config, opts ...IOOption) *HTTPIO {
	h := &HTTPIO{conn: conn, cfg: cfg, log: logger()}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	h.br = bufio.NewReaderSize(connReader{h}, readBufferSize)
	return h
}

// Conn returns the wrapped connection.
func (h *HTTPIO) Conn() net.Conn { return h.conn }

// SetConn swaps the wrapped connection. Buffered input of the previous
// connection is discarded.
func (h *HTTPIO) SetConn(conn net.Conn) {
	h.conn = conn
	h.br.Reset(connReader{h})
	h.lastRead = time.Time{}
	h.lastWrite = time.Time{}
}

// Config returns the limits in effect.
func (h *HTTPIO) Config() Config { return h.cfg }

// connReader refreshes the read deadline before every socket read.
type connReader struct{ h *HTTPIO }

func (r connReader) Read(p []byte) (int, error) {
	if !r.h.probing {
		if err := r.h.setReadDeadline(); err != nil {
			return 0, err
		}
	}
	return r.h.conn.Read(p)
}

// setReadDeadline pushes the read deadline out to ReadTimeout from now. For
// timeouts above a second the syscall is skipped while the installed
// deadline is still within a second of the full window.
func (h *HTTPIO) setReadDeadline() error {
	return refreshDeadline(&h.lastRead, h.cfg.ReadTimeout, h.conn.SetReadDeadline)
}

func (h *HTTPIO) setWriteDeadline() error {
	return refreshDeadline(&h.lastWrite, h.cfg.WriteTimeout, h.conn.SetWriteDeadline)
}

func refreshDeadline(last *time.Time, timeout time.Duration, set func(time.Time) error) error {
	if timeout <= 0 {
		return nil
	}
	now := time.Now()
	if timeout > time.Second && last.Sub(now) >= timeout-time.Second {
		return nil
	}
	deadline := now.Add(timeout)
	if err := set(deadline); err != nil {
		return err
	}
	*last = deadline
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (h *HTTPIO) readError(err error) error {
	if isTimeout(err) {
		return &TimeoutError{Op: "read", After: h.cfg.ReadTimeout}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &ConnectionError{Op: "read", Err: err}
}

func (h *HTTPIO) writeError(err error) error {
	if isTimeout(err) {
		return &TimeoutError{Op: "write", After: h.cfg.WriteTimeout}
	}
	return &ConnectionError{Op: "write", Err: err}
}

func (h *HTTPIO) notify(op, framing string, stats *TransferStats, start time.Time, err error) {
	notifyHook(h.log, h.hook, TransferInfo{Op: op, Framing: framing}, stats, start, err)
}

// ReadLine reads one line and strips its CRLF or LF terminator. With
// checkLimit set, a line growing past LineSizeLimit before its terminator
// fails with a *LimitError.
func (h *HTTPIO) ReadLine(checkLimit bool) (line string, err error) {
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpReadLine, FramingNone, stats, start, err) }()
	return h.readLine(checkLimit, stats)
}

func (h *HTTPIO) readLine(checkLimit bool, stats *TransferStats) (string, error) {
	limit := h.cfg.LineSizeLimit
	var buf []byte
	for {
		c, err := h.br.ReadByte()
		if err != nil {
			return "", h.readError(err)
		}
		if c == '\n' {
			stats.RecordLine(int64(len(buf) + 1))
			return string(bytes.TrimSuffix(buf, []byte{'\r'})), nil
		}
		buf = append(buf, c)
		// A CR right after a full-length line may still be its terminator.
		if checkLimit && limit > 0 && int64(len(buf)) > limit &&
			!(int64(len(buf)) == limit+1 && c == '\r') {
			return "", &LimitError{What: "line", Limit: limit, Size: int64(len(buf))}
		}
	}
}

// ReadHeader reads header lines into hdr until an empty line. Lines that do
// not parse as "Name: value" are logged and skipped; their count is returned.
func (h *HTTPIO) ReadHeader(hdr http.Header) (skipped int, err error) {
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpReadHeader, FramingNone, stats, start, err) }()
	return h.readHeader(hdr, stats)
}

func (h *HTTPIO) readHeader(hdr http.Header, stats *TransferStats) (int, error) {
	skipped := 0
	for {
		line, err := h.readLine(true, stats)
		if err != nil {
			return skipped, err
		}
		if line == "" {
			return skipped, nil
		}
		name, value, ok := HeaderValue(line)
		if !ok {
			skipped++
			h.log.Warn("skipping malformed header line", zap.String("line", line))
			continue
		}
		hdr.Add(name, value)
	}
}

// ReadChunkSize reads a chunk-size line. Chunk extensions are ignored.
func (h *HTTPIO) ReadChunkSize() (int64, error) {
	return h.readChunkSize(&TransferStats{})
}

func (h *HTTPIO) readChunkSize(stats *TransferStats) (int64, error) {
	line, err := h.readLine(true, stats)
	if err != nil {
		return 0, err
	}
	text := line
	if semi := strings.IndexByte(text, ';'); semi >= 0 {
		text = text[:semi]
	}
	size, perr := strconv.ParseInt(strings.TrimSpace(text), 16, 64)
	if perr != nil || size < 0 {
		return 0, streamErrorf("malformed chunk size %q", line)
	}
	return size, nil
}

// ReadChunkedContent reads a chunked body into sink. Trailer headers are
// added to hdr.
func (h *HTTPIO) ReadChunkedContent(hdr http.Header, sink DataSink) (err error) {
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpReadChunked, FramingChunked, stats, start, err) }()

	limit := h.cfg.BodySizeLimit
	var total int64
	for {
		size, err := h.readChunkSize(stats)
		if err != nil {
			return err
		}
		if size == 0 {
			break
		}
		if limit > 0 && size > limit-total {
			return &LimitError{What: "body", Limit: limit, Size: sizeSum(total, size)}
		}
		if _, err := h.readInto(sink, size, 0); err != nil {
			return err
		}
		total += size
		stats.RecordChunk(size)
		h.log.Debug("chunk read", zap.Int64("size", size), zap.Int64("total", total))

		crlf, err := h.readLine(true, stats)
		if err != nil {
			return err
		}
		if crlf != "" {
			return streamErrorf("missing CRLF after chunk data")
		}
	}
	_, err = h.readHeader(hdr, stats)
	return err
}

// sizeSum adds two non-negative sizes, saturating at math.MaxInt64.
func sizeSum(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// ReadBlock reads exactly contentLength bytes into sink, or everything up to
// connection close when contentLength is -1. Both are bounded by
// BodySizeLimit.
func (h *HTTPIO) ReadBlock(contentLength int64, sink DataSink) (err error) {
	framing := FramingLength
	if contentLength == -1 {
		framing = FramingClose
	}
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpReadBlock, framing, stats, start, err) }()

	limit := h.cfg.BodySizeLimit
	switch {
	case contentLength < -1:
		return streamErrorf("negative content length %d", contentLength)
	case contentLength == -1:
		n, err := h.readInto(sink, -1, limit)
		stats.Bytes = n
		return err
	case limit > 0 && contentLength > limit:
		return &LimitError{What: "body", Limit: limit, Size: contentLength}
	}
	n, err := h.readInto(sink, contentLength, 0)
	stats.Bytes = n
	return err
}

// readInto copies n bytes from the connection into sink. With n == -1 it
// copies until EOF, failing once more than limit bytes arrived.
func (h *HTTPIO) readInto(sink DataSink, n, limit int64) (int64, error) {
	if h.scratch == nil {
		h.scratch = make([]byte, readBufferSize)
	}
	var got int64
	for n < 0 || got < n {
		want := int64(len(h.scratch))
		if n >= 0 && n-got < want {
			want = n - got
		}
		m, err := h.br.Read(h.scratch[:want])
		if m > 0 {
			if _, werr := sink.Write(h.scratch[:m]); werr != nil {
				return got, fmt.Errorf("frpc: body sink: %w", werr)
			}
			got += int64(m)
			if n < 0 && limit > 0 && got > limit {
				return got, &LimitError{What: "body", Limit: limit, Size: got}
			}
		}
		if err != nil {
			if n < 0 && errors.Is(err, io.EOF) {
				return got, nil
			}
			return got, h.readError(err)
		}
	}
	return got, nil
}

// ReadContent reads a message body into sink, choosing the framing from
// hdr. A request without Transfer-Encoding or Content-Length has no body; a
// response without them runs until the connection closes.
func (h *HTTPIO) ReadContent(hdr http.Header, sink DataSink, request bool) error {
	if isChunked(hdr) {
		return h.ReadChunkedContent(hdr, sink)
	}
	if cl := strings.TrimSpace(hdr.Get(HeaderContentLength)); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return streamErrorf("malformed content length %q", cl)
		}
		return h.ReadBlock(n, sink)
	}
	if request {
		return nil
	}
	return h.ReadBlock(-1, sink)
}

// isChunked reports whether chunked is the final transfer coding.
func isChunked(hdr http.Header) bool {
	values := hdr.Values(HeaderTransferEncoding)
	if len(values) == 0 {
		return false
	}
	codings := strings.Split(values[len(values)-1], ",")
	return strings.EqualFold(strings.TrimSpace(codings[len(codings)-1]), EncodingChunked)
}

// SendData writes all of data. With watchForResponse set, the read side is
// watched while writing: data from the peer fails with ErrEarlyResponse and
// a closed peer with a *ConnectionError. The early response stays buffered
// for the next read.
func (h *HTTPIO) SendData(data []byte, watchForResponse bool) (err error) {
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpSend, FramingNone, stats, start, err) }()
	return h.send(data, watchForResponse, stats)
}

func (h *HTTPIO) send(data []byte, watch bool, stats *TransferStats) error {
	var w *responseWatch
	if watch && len(data) > 0 {
		if h.br.Buffered() > 0 {
			return ErrEarlyResponse
		}
		w = h.watchResponse()
		defer w.stop()
	}
	for off := 0; off < len(data); {
		if w != nil {
			if err := w.check(); err != nil {
				return err
			}
		}
		end := min(off+sendSliceSize, len(data))
		if err := h.setWriteDeadline(); err != nil {
			return h.writeError(err)
		}
		n, err := h.conn.Write(data[off:end])
		off += n
		stats.Bytes += int64(n)
		if err != nil {
			// A peer that answered and stopped reading stalls the write.
			if w != nil && errors.Is(w.stop(), ErrEarlyResponse) {
				return ErrEarlyResponse
			}
			return h.writeError(err)
		}
	}
	return nil
}

// responseWatch waits for the first byte from the peer while a body is being
// sent. It owns the buffered reader until stop returns.
type responseWatch struct {
	h       *HTTPIO
	done    chan struct{}
	err     error
	stopped bool
}

func (h *HTTPIO) watchResponse() *responseWatch {
	w := &responseWatch{h: h, done: make(chan struct{})}
	h.probing = true
	_ = h.conn.SetReadDeadline(time.Time{})
	go func() {
		defer close(w.done)
		_, w.err = h.br.Peek(1)
	}()
	return w
}

// check reports what the peer did so far without blocking.
func (w *responseWatch) check() error {
	select {
	case <-w.done:
		return w.result()
	default:
		return nil
	}
}

func (w *responseWatch) result() error {
	switch {
	case w.err == nil:
		w.h.log.Debug("peer answered while sending")
		return ErrEarlyResponse
	case isTimeout(w.err):
		return nil
	case errors.Is(w.err, io.EOF):
		return &ConnectionError{Op: "write", Err: io.EOF}
	}
	return &ConnectionError{Op: "write", Err: w.err}
}

// stop interrupts the pending read and hands the reader back. Later calls
// only repeat the result.
func (w *responseWatch) stop() error {
	h := w.h
	if !w.stopped {
		w.stopped = true
		select {
		case <-w.done:
		default:
			_ = h.conn.SetReadDeadline(time.Now())
			<-w.done
		}
		h.probing = false
		// Force the next read to install a fresh deadline.
		h.lastRead = time.Time{}
		_ = h.conn.SetReadDeadline(time.Time{})
	}
	return w.result()
}

// SendChunk writes data as one chunk. Empty data writes nothing, since a
// zero-size chunk ends the body.
func (h *HTTPIO) SendChunk(data []byte) (err error) {
	if len(data) == 0 {
		return nil
	}
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpSend, FramingChunked, stats, start, err) }()

	var buf bytes.Buffer
	buf.Grow(len(data) + 20)
	fmt.Fprintf(&buf, "%x\r\n", len(data))
	buf.Write(data)
	buf.WriteString("\r\n")
	if err := h.send(buf.Bytes(), false, stats); err != nil {
		return err
	}
	stats.Chunks++
	return nil
}

// SendLastChunk ends a chunked body, followed by the optional trailer.
func (h *HTTPIO) SendLastChunk(trailer http.Header) (err error) {
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpSend, FramingChunked, stats, start, err) }()

	var buf bytes.Buffer
	buf.WriteString("0\r\n")
	if err := trailer.Write(&buf); err != nil {
		return err
	}
	buf.WriteString("\r\n")
	return h.send(buf.Bytes(), false, stats)
}

// WriteHeader writes the start line and hdr, terminated by an empty line.
func (h *HTTPIO) WriteHeader(first string, hdr http.Header) (err error) {
	start, stats := time.Now(), &TransferStats{}
	defer func() { h.notify(OpSend, FramingNone, stats, start, err) }()

	var buf bytes.Buffer
	buf.WriteString(first)
	buf.WriteString("\r\n")
	if err := hdr.Write(&buf); err != nil {
		return err
	}
	buf.WriteString("\r\n")
	stats.Lines = int64(len(hdr)) + 2
	return h.send(buf.Bytes(), false, stats)
}
