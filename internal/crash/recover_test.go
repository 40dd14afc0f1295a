/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gosketchpad/internal/storage"
)

// TestRecover_PanickingGoroutine ensures Recover handles a panic, writes a
// report, autosaves the scene, and does not terminate the test process due
// to the injected exitFn.
func TestRecover_PanickingGoroutine(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(os.Stderr, r) // drain pipe
	}()

	// Override exitFn to avoid os.Exit during the test and to assert it was called
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	home := t.TempDir()
	t.Setenv("HOME", home)

	sceneJSON := []byte(`{"elements": []}`)
	func() {
		defer Recover(func() []byte { return sceneJSON })
		panic("boom")
	}()

	// Allow time for filesystem writes
	time.Sleep(50 * time.Millisecond)

	storeDir, err := storage.DefaultStoreDir()
	if err != nil {
		t.Fatalf("store dir: %v", err)
	}

	var report string
	bdir := filepath.Join(storeDir, storage.BackupsDirName)
	files, _ := os.ReadDir(bdir)
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			report = filepath.Join(bdir, f.Name())
			break
		}
	}
	if report == "" {
		t.Fatalf("expected crash report file under %s", bdir)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}

	var autosave string
	ents, _ := os.ReadDir(storeDir)
	for _, f := range ents {
		if strings.HasPrefix(f.Name(), "crash-autosave-") && strings.HasSuffix(f.Name(), ".sketch.json") {
			autosave = filepath.Join(storeDir, f.Name())
			break
		}
	}
	if autosave == "" {
		t.Fatalf("expected crash autosave under %s", storeDir)
	}
	saved, err := os.ReadFile(autosave)
	if err != nil {
		t.Fatalf("read autosave: %v", err)
	}
	if !bytes.Equal(saved, sceneJSON) {
		t.Fatalf("autosave content mismatch: %s", saved)
	}

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	oldExit := exitFn
	called := false
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("Recover must do nothing without a panic")
	}
}
