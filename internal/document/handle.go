/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"errors"
	"fmt"
)

// ErrSaveUnavailable means no save capability is registered on the host
// bridge; opening a write session cannot proceed.
var ErrSaveUnavailable = errors.New("document: save unavailable on host bridge")

// ErrSessionClosed is returned by writes after Close.
var ErrSessionClosed = errors.New("document: write session closed")

// FlushFunc delivers accumulated session content to the host when a write
// session closes. toCurrent selects save-to-current-location over
// save-to-new-location.
type FlushFunc func(content []byte, toCurrent bool) error

// Handle is an abstract reference to a host-managed document. Content is a
// point-in-time copy; Read never touches the host.
type Handle struct {
	Name    string
	content []byte

	flush   FlushFunc
	current func() bool
}

// NewHandle builds a handle over a name and content snapshot. flush may be
// nil when the bridge has no save capability; current reports whether a
// storage location is known at flush time (nil means never).
func NewHandle(name string, content []byte, flush FlushFunc, current func() bool) *Handle {
	return &Handle{Name: name, content: append([]byte(nil), content...), flush: flush, current: current}
}

// Read returns the handle's content snapshot.
func (h *Handle) Read() []byte { return append([]byte(nil), h.content...) }

// OpenWriteSession starts an incremental write against the handle. It fails
// with ErrSaveUnavailable when no flush path exists, surfaced to the caller
// rather than silently dropped.
func (h *Handle) OpenWriteSession() (*WriteSession, error) {
	if h.flush == nil {
		return nil, ErrSaveUnavailable
	}
	return &WriteSession{handle: h}, nil
}

// WriteSession accumulates written chunks in memory and flushes them to the
// host on Close. It serves both generic consumer contracts: a streaming
// writer (Write appends) and a random-access writer (WriteAt plus Truncate).
type WriteSession struct {
	handle *Handle
	buf    []byte
	pos    int64
	closed bool
}

// Write appends a chunk at the current position (io.Writer).
func (w *WriteSession) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrSessionClosed
	}
	w.writeAt(p, w.pos)
	w.pos += int64(len(p))
	return len(p), nil
}

// WriteAt writes a chunk at an absolute position (io.WriterAt), growing the
// buffer as needed. It does not move the streaming position.
func (w *WriteSession) WriteAt(p []byte, off int64) (int, error) {
	if w.closed {
		return 0, ErrSessionClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("document: negative write offset %d", off)
	}
	w.writeAt(p, off)
	return len(p), nil
}

// WriteChunk is the generic contract: position nil appends, otherwise the
// chunk lands at the given offset.
func (w *WriteSession) WriteChunk(p []byte, position *int64) (int, error) {
	if position == nil {
		return w.Write(p)
	}
	return w.WriteAt(p, *position)
}

// Truncate shrinks or grows the accumulated content to n bytes.
func (w *WriteSession) Truncate(n int64) error {
	if w.closed {
		return ErrSessionClosed
	}
	if n < 0 {
		return fmt.Errorf("document: negative truncate length %d", n)
	}
	if int64(len(w.buf)) >= n {
		w.buf = w.buf[:n]
	} else {
		w.buf = append(w.buf, make([]byte, n-int64(len(w.buf)))...)
	}
	if w.pos > n {
		w.pos = n
	}
	return nil
}

// Len reports the accumulated content size.
func (w *WriteSession) Len() int { return len(w.buf) }

// Close flushes the accumulated content through the host save path, choosing
// current-location vs new-location by the identity's state at close time.
// The session is unusable afterwards.
func (w *WriteSession) Close() error {
	if w.closed {
		return ErrSessionClosed
	}
	w.closed = true
	toCurrent := w.handle.current != nil && w.handle.current()
	if err := w.handle.flush(w.buf, toCurrent); err != nil {
		return fmt.Errorf("flush write session: %w", err)
	}
	w.handle.content = append([]byte(nil), w.buf...)
	return nil
}

func (w *WriteSession) writeAt(p []byte, off int64) {
	end := off + int64(len(p))
	if int64(len(w.buf)) < end {
		w.buf = append(w.buf, make([]byte, end-int64(len(w.buf)))...)
	}
	copy(w.buf[off:end], p)
}
