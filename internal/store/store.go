// Package store defines the record-store contract the lobby service depends
// on, plus the optimistic-concurrency helper built on top of it. A record is
// a flat map of string fields; structured values (such as the player roster)
// are carried as JSON inside a single field. Every implementation maintains a
// monotonic revision token under FieldRev, which is what makes conditional
// writes possible against backends with no native transactions.
package store

import (
	"context"
	"errors"
	"strconv"
)

const (
	// FieldRev is the store-managed revision field. Implementations bump it
	// on every write; callers treat it as opaque.
	FieldRev = "rev"

	firstRev = "1"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")
	ErrConflict = errors.New("record changed since it was read")
)

// Record is the flat field representation a lobby is stored as.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is the key-value record store contract. Keys are opaque strings;
// all operations are I/O-bound and honor ctx cancellation.
type Store interface {
	// Fetch returns the full record for key, including FieldRev.
	// Returns ErrNotFound if the key is absent.
	Fetch(ctx context.Context, key string) (Record, error)

	// FetchField returns a single field's value. ok is false when the key
	// or the field is absent; err reports I/O failures only.
	FetchField(ctx context.Context, key, field string) (value string, ok bool, err error)

	// Create writes a new record, failing with ErrExists if the key is
	// already present.
	Create(ctx context.Context, key string, rec Record) error

	// Write overwrites the record unconditionally, dropping fields not in rec.
	Write(ctx context.Context, key string, rec Record) error

	// Update merge-writes the named fields only. Returns ErrNotFound if the
	// key is absent.
	Update(ctx context.Context, key string, fields Record) error

	// UpdateIf merge-writes the named fields only if the record's current
	// revision equals rev, failing with ErrConflict otherwise and
	// ErrNotFound if the key is absent.
	UpdateIf(ctx context.Context, key string, fields Record, rev string) error

	// Delete removes the record. Returns ErrNotFound if nothing was removed.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a record is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Pinger is implemented by stores that can report backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func nextRev(rev string) string {
	n, err := strconv.ParseInt(rev, 10, 64)
	if err != nil {
		return firstRev
	}
	return strconv.FormatInt(n+1, 10)
}
