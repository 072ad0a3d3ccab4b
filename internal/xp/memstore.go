package xp

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]Record)}
}

func (s *MemStore) Get(_ context.Context, userID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID), nil
}

func (s *MemStore) get(userID string) Record {
	rec, ok := s.records[userID]
	if !ok {
		rec = Record{UserID: userID}
		s.records[userID] = rec
	}
	return rec
}

func (s *MemStore) Award(_ context.Context, userID string, delta int64, at time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.get(userID)
	rec.XP = Clamp(rec.XP + delta)
	if !at.IsZero() {
		rec.EarnedAt = at
	}
	s.records[userID] = rec
	return rec, nil
}

func (s *MemStore) Set(_ context.Context, userID string, xp int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.get(userID)
	rec.XP = Clamp(xp)
	s.records[userID] = rec
	return rec, nil
}

func (s *MemStore) Stats(_ context.Context, userID string) (Stats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		rec = Record{UserID: userID}
	}
	return Rank(rec, s.all()), ok, nil
}

func (s *MemStore) Top(_ context.Context, n int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TopN(s.all(), n), nil
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) all() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}

// Rank computes rec's place among all.
func Rank(rec Record, all []Record) Stats {
	place := 1
	for _, r := range all {
		if r.XP > rec.XP {
			place++
		}
	}
	return Stats{XP: rec.XP, Place: place}
}

// TopN sorts records by score and returns the first n. It reorders records.
func TopN(records []Record, n int) []Record {
	if n <= 0 {
		return nil
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].XP != records[j].XP {
			return records[i].XP > records[j].XP
		}
		return records[i].UserID < records[j].UserID
	})
	if len(records) > n {
		records = records[:n]
	}
	return records
}
