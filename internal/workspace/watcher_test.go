// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "reports"), 0755); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var seen []string
	w, err := NewWatcher(root, 50*time.Millisecond, func(changed []string) {
		mu.Lock()
		seen = append(seen, changed...)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "reports", "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		got := contains(seen, filepath.Join("reports", "new.txt"))
		mu.Unlock()
		if got {
			return
		}
		select {
		case <-deadline:
			mu.Lock()
			t.Fatalf("change never reported; saw %v", seen)
			mu.Unlock()
		case <-time.After(20 * time.Millisecond):
		}
	}
}
