package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authToken.txt")

	m := NewManager(path)
	if err := m.Save("secret-token"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A fresh manager loads the persisted token.
	m2 := NewManager(path)
	token, err := m2.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "secret-token" {
		t.Errorf("loaded token = %q", token)
	}
	if !m2.IsAuthenticated() {
		t.Error("manager should be authenticated after load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.txt"))

	token, err := m.Load()
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}
	if m.IsAuthenticated() {
		t.Error("manager should not be authenticated")
	}
}

func TestLoadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authToken.txt")
	if err := os.WriteFile(path, []byte("  token-with-newline\n"), 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	token, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "token-with-newline" {
		t.Errorf("token = %q", token)
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authToken.txt")

	m := NewManager(path)
	if err := m.Save("tok"); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if m.IsAuthenticated() {
		t.Error("token should be cleared after delete")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file should be removed")
	}

	// Deleting again is a no-op.
	if err := m.Delete(); err != nil {
		t.Errorf("second Delete should not error: %v", err)
	}
}

func TestClearKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authToken.txt")

	m := NewManager(path)
	if err := m.Save("tok"); err != nil {
		t.Fatal(err)
	}
	m.Clear()

	if m.IsAuthenticated() {
		t.Error("token should be cleared from memory")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("token file should survive Clear: %v", err)
	}
}
