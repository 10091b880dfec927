package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "notedrill.log")
	logger, err := New(path, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("next target", zap.String("note", "C4"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"next target"`) || !strings.Contains(out, `"note":"C4"`) {
		t.Fatalf("unexpected log contents: %s", out)
	}
}

func TestNewSkipsDebugWhenQuiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notedrill.log")
	logger, err := New(path, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug entry written at info level: %s", data)
	}
	if !strings.Contains(string(data), "shown") {
		t.Fatalf("info entry missing: %s", data)
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("", false); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
