/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
)

func TestLastSceneRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if _, ok, err := s.LastScene(ctx); err != nil || ok {
		t.Fatalf("fresh store must have no last scene: ok=%v err=%v", ok, err)
	}

	if err := s.SaveLastScene(ctx, `{"elements":[]}`); err != nil {
		t.Fatalf("save last scene: %v", err)
	}
	js, ok, err := s.LastScene(ctx)
	if err != nil || !ok || js != `{"elements":[]}` {
		t.Fatalf("last scene mismatch: %q ok=%v err=%v", js, ok, err)
	}

	// Overwrite keeps a single row.
	if err := s.SaveLastScene(ctx, `{"elements":[{"id":"a"}]}`); err != nil {
		t.Fatalf("overwrite last scene: %v", err)
	}
	js, ok, _ = s.LastScene(ctx)
	if !ok || js == `{"elements":[]}` {
		t.Fatalf("overwrite failed: %q", js)
	}
}

func TestNamedScenes(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	if err := s.PutScene(ctx, "first", `{"elements":[]}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutScene(ctx, "second", `{"elements":[]}`); err != nil {
		t.Fatalf("put: %v", err)
	}

	js, ok, err := s.GetScene(ctx, "first")
	if err != nil || !ok || js != `{"elements":[]}` {
		t.Fatalf("get mismatch: %q ok=%v err=%v", js, ok, err)
	}
	if _, ok, _ := s.GetScene(ctx, "missing"); ok {
		t.Fatalf("missing scene must report ok=false")
	}

	list, err := s.ListScenes(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}

	if err := s.DeleteScene(ctx, "first"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetScene(ctx, "first"); ok {
		t.Fatalf("deleted scene still present")
	}
	// Deleting a missing name is not an error.
	if err := s.DeleteScene(ctx, "first"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestPutSceneRequiresName(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.PutScene(context.Background(), "", "{}"); err == nil {
		t.Fatalf("empty name must be rejected")
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SaveLastScene(ctx, `{"elements":[]}`); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	if _, ok, err := s2.LastScene(ctx); err != nil || !ok {
		t.Fatalf("data lost across reopen: ok=%v err=%v", ok, err)
	}
}
