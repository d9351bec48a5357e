package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/moyeshkhanal/partyGames/internal/database"
	"github.com/moyeshkhanal/partyGames/internal/migrations"
	"github.com/moyeshkhanal/partyGames/internal/store"
)

func newSQLiteStore(t *testing.T) *store.SQLite {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return store.NewSQLite(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	rec := store.Record{"name": "Alice's Game", "players": "[]"}
	if err := s.Create(ctx, "lobby:AB12CD", rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, "lobby:AB12CD", rec); !errors.Is(err, store.ErrExists) {
		t.Fatalf("second create: got %v, want ErrExists", err)
	}

	got, err := s.Fetch(ctx, "lobby:AB12CD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got["name"] != "Alice's Game" || got[store.FieldRev] != "1" {
		t.Errorf("record = %v", got)
	}

	v, ok, err := s.FetchField(ctx, "lobby:AB12CD", "players")
	if err != nil || !ok || v != "[]" {
		t.Errorf("fetch field: got (%q, %v, %v)", v, ok, err)
	}
}

func TestSQLiteUpdateIf(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	s.Create(ctx, "k", store.Record{"a": "1"})

	if err := s.UpdateIf(ctx, "k", store.Record{"a": "2"}, "1"); err != nil {
		t.Fatalf("update at rev 1: %v", err)
	}
	if err := s.UpdateIf(ctx, "k", store.Record{"a": "3"}, "1"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("stale update: got %v, want ErrConflict", err)
	}
	if err := s.UpdateIf(ctx, "absent", store.Record{"a": "1"}, "1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("absent key: got %v, want ErrNotFound", err)
	}

	rec, _ := s.Fetch(ctx, "k")
	if rec["a"] != "2" || rec[store.FieldRev] != "2" {
		t.Errorf("record = %v", rec)
	}
}

func TestSQLiteWriteDropsStaleFields(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	s.Create(ctx, "k", store.Record{"a": "1", "b": "2"})

	if err := s.Write(ctx, "k", store.Record{"a": "9"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec, _ := s.Fetch(ctx, "k")
	if _, ok := rec["b"]; ok {
		t.Error("overwrite kept stale field b")
	}
	if rec["a"] != "9" || rec[store.FieldRev] != "2" {
		t.Errorf("record = %v", rec)
	}
}

func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	s.Create(ctx, "k", store.Record{"a": "1"})

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
	if _, err := s.Fetch(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("fetch after delete: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteMutate(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	s.Create(ctx, "k", store.Record{"a": "1", "b": "keep"})

	err := store.Mutate(ctx, s, "k", 0, func(rec store.Record) (store.Record, error) {
		return store.Record{"a": rec["a"] + "0"}, nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}

	rec, _ := s.Fetch(ctx, "k")
	if rec["a"] != "10" || rec["b"] != "keep" {
		t.Errorf("record = %v", rec)
	}
}
