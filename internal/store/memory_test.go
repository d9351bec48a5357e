package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCreateAndFetch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := Record{"name": "Alice's Game", "players": "[]"}
	if err := m.Create(ctx, "lobby:AB12CD", rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := m.Fetch(ctx, "lobby:AB12CD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got["name"] != "Alice's Game" {
		t.Errorf("name = %q, want %q", got["name"], "Alice's Game")
	}
	if got[FieldRev] != "1" {
		t.Errorf("rev = %q, want %q", got[FieldRev], "1")
	}

	if err := m.Create(ctx, "lobby:AB12CD", rec); !errors.Is(err, ErrExists) {
		t.Errorf("second create: got %v, want ErrExists", err)
	}
}

func TestMemoryFetchAbsent(t *testing.T) {
	m := NewMemory()
	if _, err := m.Fetch(context.Background(), "lobby:NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryFetchField(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Create(ctx, "k", Record{"players": "[]"})

	v, ok, err := m.FetchField(ctx, "k", "players")
	if err != nil || !ok || v != "[]" {
		t.Errorf("got (%q, %v, %v), want (%q, true, nil)", v, ok, err, "[]")
	}

	_, ok, err = m.FetchField(ctx, "k", "missing")
	if err != nil || ok {
		t.Errorf("missing field: got (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	_, ok, err = m.FetchField(ctx, "absent", "players")
	if err != nil || ok {
		t.Errorf("missing key: got (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestMemoryUpdateBumpsRev(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Create(ctx, "k", Record{"a": "1"})

	if err := m.Update(ctx, "k", Record{"b": "2"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, _ := m.Fetch(ctx, "k")
	if rec["a"] != "1" || rec["b"] != "2" {
		t.Errorf("merged record = %v", rec)
	}
	if rec[FieldRev] != "2" {
		t.Errorf("rev = %q, want %q", rec[FieldRev], "2")
	}

	if err := m.Update(ctx, "absent", Record{"a": "1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update absent: got %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdateIf(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Create(ctx, "k", Record{"a": "1"})

	if err := m.UpdateIf(ctx, "k", Record{"a": "2"}, "1"); err != nil {
		t.Fatalf("update at rev 1: %v", err)
	}

	// Stale revision must conflict without writing.
	if err := m.UpdateIf(ctx, "k", Record{"a": "3"}, "1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale update: got %v, want ErrConflict", err)
	}

	rec, _ := m.Fetch(ctx, "k")
	if rec["a"] != "2" {
		t.Errorf("a = %q, want %q", rec["a"], "2")
	}

	if err := m.UpdateIf(ctx, "absent", Record{"a": "1"}, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent key: got %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Create(ctx, "k", Record{"a": "1"})

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if ok, _ := m.Exists(ctx, "k"); ok {
		t.Error("record still exists after delete")
	}
}

func TestMemoryWriteOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Create(ctx, "k", Record{"a": "1", "b": "2"})

	if err := m.Write(ctx, "k", Record{"a": "9"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec, _ := m.Fetch(ctx, "k")
	if _, ok := rec["b"]; ok {
		t.Error("overwrite kept stale field b")
	}
	if rec["a"] != "9" {
		t.Errorf("a = %q, want %q", rec["a"], "9")
	}
	if rec[FieldRev] != "2" {
		t.Errorf("rev = %q, want %q", rec[FieldRev], "2")
	}
}
