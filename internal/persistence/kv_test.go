package persistence

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/planet-core/internal/config"
)

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	if _, err := kv.Get("planet-save-slot-0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	payload := []byte(`{"version":1,"metadata":{"slot":0}}`)
	if err := kv.Set("planet-save-slot-0", payload); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := kv.Get("planet-save-slot-0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Get = %q, want %q", got, payload)
	}

	// Last writer wins.
	if err := kv.Set("planet-save-slot-0", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := kv.Get("planet-save-slot-0"); string(got) != "second" {
		t.Fatalf("after overwrite Get = %q", got)
	}

	// Keys are independent.
	if err := kv.Set("planet-save-slot-1", []byte("other")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete("planet-save-slot-0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get("planet-save-slot-0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: err = %v", err)
	}
	if got, _ := kv.Get("planet-save-slot-1"); string(got) != "other" {
		t.Fatalf("neighbour key = %q", got)
	}

	// Deleting twice is fine.
	if err := kv.Delete("planet-save-slot-0"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	m := NewMemoryStore()
	buf := []byte("abc")
	m.Set("k", buf)
	buf[0] = 'z'
	got, _ := m.Get("k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planet.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exerciseKV(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planet.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("planet-save-slot-2", []byte("kept")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get("planet-save-slot-2")
	if err != nil || string(got) != "kept" {
		t.Fatalf("after reopen Get = %q, %v", got, err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFileStore(dir)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	defer f.Close()
	exerciseKV(t, f)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "planet-save-slot-1.zst" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("dir entries = %v, want only the slot-1 file", names)
	}
}

func TestFileStore_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := f.Set("../escape", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.zst")); err == nil {
		t.Fatal("key escaped the store directory")
	}
	if got, err := f.Get("../escape"); err != nil || string(got) != "x" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("PLANET_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PLANET_TEST_REDIS_URL not set")
	}
	r, err := OpenRedis(url, "planet-core-test:", 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer r.Close()
	r.Delete("planet-save-slot-0")
	r.Delete("planet-save-slot-1")
	exerciseKV(t, r)
	r.Delete("planet-save-slot-1")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, cfg := range []config.StorageConfig{
		{Backend: config.BackendMemory},
		{Backend: config.BackendSQLite, Path: filepath.Join(dir, "p.db")},
		{Backend: config.BackendFile, Dir: filepath.Join(dir, "files")},
	} {
		kv, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open(%s): %v", cfg.Backend, err)
		}
		exerciseKV(t, kv)
		kv.Close()
	}
	if _, err := Open(config.StorageConfig{Backend: "tape"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
