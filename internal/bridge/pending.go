/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bridge

import (
	"errors"

	"gosketchpad/internal/document"
)

// ErrOpenPending means an open request is already outstanding. A second
// request is rejected up front instead of silently clobbering the first
// one's callbacks.
var ErrOpenPending = errors.New("bridge: open request already pending")

// ErrOpenAborted rejects an outstanding open request when the host reports a
// failure while it waits, so awaiting callers unwind cleanly.
var ErrOpenAborted = errors.New("bridge: open request aborted")

// OpenSlot holds at most one outstanding open-file request. It is the
// single-slot mutual-exclusion point of the open flow; no queue exists.
type OpenSlot struct {
	resolve func([]*document.Handle)
	reject  func(error)
}

// Outstanding reports whether a request is waiting for the host.
func (s *OpenSlot) Outstanding() bool { return s.resolve != nil || s.reject != nil }

// Begin registers the callbacks of a new open request. It fails with
// ErrOpenPending while a previous request is unresolved.
func (s *OpenSlot) Begin(resolve func([]*document.Handle), reject func(error)) error {
	if s.Outstanding() {
		return ErrOpenPending
	}
	s.resolve = resolve
	s.reject = reject
	return nil
}

// Resolve delivers the chosen document handles to the waiting request.
// Returns false when no request is outstanding. The slot is cleared before
// the callback runs so a callback may start a new request.
func (s *OpenSlot) Resolve(handles []*document.Handle) bool {
	r := s.resolve
	if r == nil {
		return false
	}
	s.resolve, s.reject = nil, nil
	r(handles)
	return true
}

// Reject fails the waiting request with err (ErrOpenAborted when nil).
func (s *OpenSlot) Reject(err error) bool {
	r := s.reject
	if r == nil {
		return false
	}
	if err == nil {
		err = ErrOpenAborted
	}
	s.resolve, s.reject = nil, nil
	r(err)
	return true
}
