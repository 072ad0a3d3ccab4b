// Package docstore keeps xp records in the JSON document store, one document
// per user under "xp:<userID>".
package docstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/keshon/trollbot/internal/datastore"
	"github.com/keshon/trollbot/internal/xp"
)

const keyPrefix = "xp:"

type Store struct {
	ds *datastore.DataStore
	mu sync.Mutex // guards read-modify-write of records
}

// New wraps an open datastore. Closing the Store closes ds.
func New(ds *datastore.DataStore) *Store {
	return &Store{ds: ds}
}

// Open opens the datastore at cfg.FilePath.
func Open(cfg datastore.Config) (*Store, error) {
	ds, err := datastore.Open(cfg)
	if err != nil {
		return nil, err
	}
	return New(ds), nil
}

func key(userID string) string { return keyPrefix + userID }

// getOrCreate returns the record for userID, storing an empty one if absent.
func (s *Store) getOrCreate(userID string) (xp.Record, error) {
	var rec xp.Record
	ok, err := s.ds.Get(key(userID), &rec)
	if err != nil {
		return xp.Record{}, fmt.Errorf("failed to read record for %s: %w", userID, err)
	}
	if ok {
		rec.UserID = userID
		return rec, nil
	}
	rec = xp.Record{UserID: userID}
	if err := s.ds.Put(key(userID), rec); err != nil {
		return xp.Record{}, fmt.Errorf("failed to create record for %s: %w", userID, err)
	}
	return rec, nil
}

func (s *Store) update(userID string, fn func(*xp.Record)) (xp.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.getOrCreate(userID)
	if err != nil {
		return xp.Record{}, err
	}
	fn(&rec)
	if err := s.ds.Put(key(userID), rec); err != nil {
		return xp.Record{}, fmt.Errorf("failed to save record for %s: %w", userID, err)
	}
	return rec, nil
}

func (s *Store) Get(_ context.Context, userID string) (xp.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(userID)
}

func (s *Store) Award(_ context.Context, userID string, delta int64, at time.Time) (xp.Record, error) {
	return s.update(userID, func(r *xp.Record) {
		r.XP = xp.Clamp(r.XP + delta)
		if !at.IsZero() {
			r.EarnedAt = at
		}
	})
}

func (s *Store) Set(_ context.Context, userID string, n int64) (xp.Record, error) {
	return s.update(userID, func(r *xp.Record) { r.XP = xp.Clamp(n) })
}

func (s *Store) Stats(ctx context.Context, userID string) (xp.Stats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := xp.Record{UserID: userID}
	ok, err := s.ds.Get(key(userID), &rec)
	if err != nil {
		return xp.Stats{}, false, fmt.Errorf("failed to read record for %s: %w", userID, err)
	}
	all, err := s.all(ctx)
	if err != nil {
		return xp.Stats{}, false, err
	}
	return xp.Rank(rec, all), ok, nil
}

func (s *Store) Top(ctx context.Context, n int) ([]xp.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return xp.TopN(all, n), nil
}

func (s *Store) Close() error {
	return s.ds.Close()
}

func (s *Store) all(ctx context.Context) ([]xp.Record, error) {
	keys, err := s.ds.Keys(keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	records := make([]xp.Record, 0, len(keys))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec xp.Record
		if _, err := s.ds.Get(k, &rec); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		rec.UserID = strings.TrimPrefix(k, keyPrefix)
		records = append(records, rec)
	}
	return records, nil
}
