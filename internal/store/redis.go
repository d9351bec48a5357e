package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each record as a hash under its key. Conditional writes are
// built on WATCH/MULTI: the transaction is discarded by the server when the
// watched key changed between the revision read and EXEC, which surfaces
// here as ErrConflict.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Fetch(ctx context.Context, key string) (Record, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	return Record(vals), nil
}

func (s *Redis) FetchField(ctx context.Context, key, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetching %s.%s: %w", key, field, err)
	}
	return v, true, nil
}

func (s *Redis) Create(ctx context.Context, key string, rec Record) error {
	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hashArgs(rec, firstRev)...)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Another writer claimed the key between EXISTS and EXEC.
		return ErrExists
	}
	if errors.Is(err, ErrExists) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", key, err)
	}
	return nil
}

func (s *Redis) Write(ctx context.Context, key string, rec Record) error {
	txf := func(tx *redis.Tx) error {
		rev, err := tx.HGet(ctx, key, FieldRev).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, hashArgs(rec, nextRev(rev))...)
			return nil
		})
		return err
	}

	for {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			// Overwrite is unconditional; re-read the revision and try again.
			continue
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
		return nil
	}
}

func (s *Redis) Update(ctx context.Context, key string, fields Record) error {
	return s.updateGuarded(ctx, key, fields, "")
}

func (s *Redis) UpdateIf(ctx context.Context, key string, fields Record, rev string) error {
	return s.updateGuarded(ctx, key, fields, rev)
}

// updateGuarded merge-writes fields under WATCH. An empty expected revision
// means unconditional merge (still atomic, still bumping the revision).
func (s *Redis) updateGuarded(ctx context.Context, key string, fields Record, expected string) error {
	txf := func(tx *redis.Tx) error {
		rev, err := tx.HGet(ctx, key, FieldRev).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if expected != "" && rev != expected {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hashArgs(fields, nextRev(rev))...)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case err != nil:
		return fmt.Errorf("updating %s: %w", key, err)
	}
	return nil
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// hashArgs flattens a record plus its new revision into HSET field-value
// pairs.
func hashArgs(rec Record, rev string) []any {
	args := make([]any, 0, (len(rec)+1)*2)
	for k, v := range rec {
		if k == FieldRev {
			continue
		}
		args = append(args, k, v)
	}
	args = append(args, FieldRev, rev)
	return args
}
