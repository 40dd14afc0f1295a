/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import "testing"

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "Unsaved"},
		{"   ", "Unsaved"},
		{"drawing.sketch.json", "drawing"},
		{"drawing.SKETCH.JSON", "drawing"},
		{"drawing.sketch", "drawing"},
		{"drawing.json", "drawing"},
		{"drawing.png", "drawing.png"},
		{"drawing", "drawing"},
		{".json", ".json"}, // suffix only, nothing left to show
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Fatalf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIdentityLifecycle(t *testing.T) {
	id := NewIdentity()
	if id.DisplayName() != UnsavedName || id.HasKnownLocation() || id.Handle() != nil {
		t.Fatalf("fresh identity must be unassociated")
	}

	h := NewHandle("foo.sketch.json", []byte("{}"), nil, nil)
	id.Associate(h, true)
	if id.DisplayName() != "foo" || !id.HasKnownLocation() || id.Handle() != h {
		t.Fatalf("associate failed: name=%q known=%v", id.DisplayName(), id.HasKnownLocation())
	}

	id.Clear()
	if id.DisplayName() != UnsavedName || id.HasKnownLocation() || id.Handle() != nil {
		t.Fatalf("clear must reset to unassociated")
	}
	// Idempotent.
	id.Clear()
	if id.DisplayName() != UnsavedName || id.HasKnownLocation() {
		t.Fatalf("clear must be idempotent")
	}
}

func TestAssociateWithoutLocation(t *testing.T) {
	id := NewIdentity()
	id.Associate(NewHandle("bar.sketch", nil, nil, nil), false)
	if id.DisplayName() != "bar" {
		t.Fatalf("name not adopted: %q", id.DisplayName())
	}
	if id.HasKnownLocation() {
		t.Fatalf("a name without a location must not mark the location known")
	}
}
