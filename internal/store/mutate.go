package store

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxAttempts bounds the Mutate retry loop so contention degrades
// into an error instead of livelock.
const DefaultMaxAttempts = 8

// Mutate runs a read-modify-write cycle against the record stored under key:
// fetch, apply fn to a private copy, and commit the fields fn returns with a
// conditional write. When a concurrent writer changed the record between the
// fetch and the commit, the whole cycle re-runs against the fresh record, so
// fn's validations always hold against the state as committed. fn returning
// an error aborts the cycle without writing.
func Mutate(ctx context.Context, s Store, key string, maxAttempts int, fn func(Record) (Record, error)) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		rec, err := s.Fetch(ctx, key)
		if err != nil {
			return err
		}

		fields, err := fn(rec.Clone())
		if err != nil {
			return err
		}

		err = s.UpdateIf(ctx, key, fields, rec[FieldRev])
		if errors.Is(err, ErrConflict) {
			continue
		}
		return err
	}

	return fmt.Errorf("updating %s: %w after %d attempts", key, ErrConflict, maxAttempts)
}
