package storage

import (
	"testing"
)

// kvContract exercises the behaviors every KV implementation must share.
func kvContract(t *testing.T, kv KV) {
	t.Helper()

	// Missing key is not an error
	_, ok, err := kv.Load("missing")
	if err != nil {
		t.Fatalf("unexpected error loading missing key: %v", err)
	}
	if ok {
		t.Error("expected missing key to report ok=false")
	}

	// Save then load round-trips
	if err := kv.Save("greeting", `{"text":"hello"}`); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	value, ok, err := kv.Load("greeting")
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if !ok {
		t.Fatal("expected saved key to exist")
	}
	if value != `{"text":"hello"}` {
		t.Errorf("expected saved value, got %q", value)
	}

	// Overwrite replaces
	if err := kv.Save("greeting", `{"text":"goodbye"}`); err != nil {
		t.Fatalf("unexpected error overwriting: %v", err)
	}
	value, _, _ = kv.Load("greeting")
	if value != `{"text":"goodbye"}` {
		t.Errorf("expected overwritten value, got %q", value)
	}

	// Remove drops the key; removing again is a no-op
	if err := kv.Remove("greeting"); err != nil {
		t.Fatalf("unexpected error removing: %v", err)
	}
	_, ok, _ = kv.Load("greeting")
	if ok {
		t.Error("expected removed key to be gone")
	}
	if err := kv.Remove("greeting"); err != nil {
		t.Errorf("expected second remove to be a no-op, got %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	kvContract(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file kv: %v", err)
	}
	kvContract(t, kv)
}

func TestSQLiteKV(t *testing.T) {
	kv, err := NewSQLiteKV(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create sqlite kv: %v", err)
	}
	defer kv.Close()
	kvContract(t, kv)
}

func TestFileKVSanitizesKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file kv: %v", err)
	}

	if err := kv.Save("../escape", "value"); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	value, ok, err := kv.Load("../escape")
	if err != nil || !ok || value != "value" {
		t.Errorf("expected sanitized key to round-trip, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestNullKV(t *testing.T) {
	kv := NewNullKV()

	if err := kv.Save("key", "value"); err != nil {
		t.Errorf("expected save to be a no-op, got %v", err)
	}
	_, ok, err := kv.Load("key")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected null kv to never report stored values")
	}
	if err := kv.Remove("key"); err != nil {
		t.Errorf("expected remove to be a no-op, got %v", err)
	}
}
