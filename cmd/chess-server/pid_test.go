package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPIDFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.pid")

	p, err := acquirePIDFile(path, true)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) == "" {
		t.Fatalf("PID file empty")
	}

	if _, err := acquirePIDFile(path, true); err == nil {
		t.Fatalf("second instance acquired the lock")
	}

	p.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("PID file left behind")
	}
}

func TestPIDFileStaleEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.pid")
	if err := os.WriteFile(path, []byte("garbage\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := acquirePIDFile(path, true); err == nil {
		t.Fatalf("corrupted PID file accepted")
	}

	// without locking an existing file is simply overwritten
	p, err := acquirePIDFile(path, false)
	if err != nil {
		t.Fatal(err)
	}
	p.Release()
}
