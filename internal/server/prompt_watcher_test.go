package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPromptWatcherRequiresFiles(t *testing.T) {
	_, err := NewPromptWatcher(nil, time.Second, func() {}, nil)
	if err == nil {
		t.Fatal("expected error when no files are given")
	}
}

func TestPromptWatcherStartStop(t *testing.T) {
	tempDir := t.TempDir()
	promptFile := filepath.Join(tempDir, "system.md")
	if err := os.WriteFile(promptFile, []byte("prompt"), 0600); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	pw, err := NewPromptWatcher([]string{promptFile}, 10*time.Millisecond, func() {}, nil)
	if err != nil {
		t.Fatalf("NewPromptWatcher() error = %v", err)
	}

	if pw.IsRunning() {
		t.Error("watcher should not be running before Start")
	}

	if err := pw.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !pw.IsRunning() {
		t.Error("watcher should be running after Start")
	}

	// Second start must fail
	if err := pw.Start(); err == nil {
		t.Error("expected error when starting an already running watcher")
	}

	if err := pw.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if pw.IsRunning() {
		t.Error("watcher should not be running after Stop")
	}
}

func TestPromptWatcherTriggersReloadOnChange(t *testing.T) {
	tempDir := t.TempDir()
	promptFile := filepath.Join(tempDir, "system.md")
	if err := os.WriteFile(promptFile, []byte("original"), 0600); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	pw, err := NewPromptWatcher([]string{promptFile}, 20*time.Millisecond, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("NewPromptWatcher() error = %v", err)
	}

	if err := pw.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		if err := pw.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	}()

	// Modification times have second granularity on some filesystems, so
	// make sure the rewrite lands on a later timestamp
	time.Sleep(1100 * time.Millisecond)
	if err := os.WriteFile(promptFile, []byte("updated"), 0600); err != nil {
		t.Fatalf("failed to update prompt file: %v", err)
	}

	select {
	case <-reloaded:
		// Reload callback fired
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
}

func TestPromptWatcherWatchedFiles(t *testing.T) {
	files := []string{"/etc/cvdigest/system.md", "/etc/cvdigest/user.md"}
	pw, err := NewPromptWatcher(files, time.Second, func() {}, nil)
	if err != nil {
		t.Fatalf("NewPromptWatcher() error = %v", err)
	}

	watched := pw.GetWatchedFiles()
	if len(watched) != 2 {
		t.Fatalf("expected 2 watched files, got %d", len(watched))
	}

	// The returned slice must be a copy
	watched[0] = "mutated"
	if pw.GetWatchedFiles()[0] == "mutated" {
		t.Error("GetWatchedFiles() should return a copy")
	}
}
