package xp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingStore struct{ *MemStore }

func (failingStore) Get(context.Context, string) (Record, error) {
	return Record{}, errors.New("store offline")
}

func TestEarnerCooldown(t *testing.T) {
	store := NewMemStore()
	e := NewEarner(store, 15, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	var awarded int64
	e.OnAward = func(_ string, n int64) { awarded += n }

	ctx := context.Background()
	ok, err := e.Earn(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok, "first message earns")

	now = now.Add(30 * time.Second)
	ok, err = e.Earn(ctx, "1")
	require.NoError(t, err)
	require.False(t, ok, "still cooling down")

	now = now.Add(30 * time.Second)
	ok, err = e.Earn(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)

	rec, err := store.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, int64(30), rec.XP)
	require.True(t, rec.EarnedAt.Equal(now))
	require.Equal(t, int64(30), awarded)
}

func TestEarnerDisabled(t *testing.T) {
	e := NewEarner(NewMemStore(), 0, time.Minute)
	ok, err := e.Earn(context.Background(), "1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEarnerStoreError(t *testing.T) {
	e := NewEarner(failingStore{NewMemStore()}, 15, time.Minute)
	ok, err := e.Earn(context.Background(), "1")
	require.EqualError(t, err, "store offline")
	require.False(t, ok)
}
