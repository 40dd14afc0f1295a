/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"strconv"
	"strings"
)

// Signature returns a deterministic fingerprint of a scene, used as the
// equality oracle for "has anything changed".
//
// Format: per element "id:version:deletedFlag" joined by "|", then "::",
// then "viewBackground:theme:gridSize". Element order matters: the same
// elements in a different sequence produce a different signature. Missing
// view fields render as the empty string.
func Signature(elements []Element, state AppState) string {
	var b strings.Builder
	b.Grow(len(elements)*24 + 32)
	for i, el := range elements {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(el.ID)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(el.Version))
		b.WriteByte(':')
		if el.IsDeleted {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteString("::")
	b.WriteString(state.ViewBackgroundColor)
	b.WriteByte(':')
	b.WriteString(state.Theme)
	b.WriteByte(':')
	if state.GridSize != nil {
		b.WriteString(strconv.Itoa(*state.GridSize))
	}
	return b.String()
}

// SignatureOf is a convenience for whole scenes.
func SignatureOf(s Scene) string { return Signature(s.Elements, s.AppState) }

// EmptySignature is the signature of the canonical empty scene.
func EmptySignature() string { return SignatureOf(Empty()) }
