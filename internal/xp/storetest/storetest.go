// Package storetest holds the behavior every xp.Store must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/trollbot/internal/xp"
)

// Run exercises a fresh store returned by open for every subtest.
func Run(t *testing.T, open func(t *testing.T) xp.Store) {
	t.Run("GetCreatesEmptyRecord", func(t *testing.T) { testGet(t, open(t)) })
	t.Run("AwardAccumulates", func(t *testing.T) { testAward(t, open(t)) })
	t.Run("ScoresNeverNegative", func(t *testing.T) { testClamp(t, open(t)) })
	t.Run("Set", func(t *testing.T) { testSet(t, open(t)) })
	t.Run("StatsPlaces", func(t *testing.T) { testStats(t, open(t)) })
	t.Run("StatsDoesNotCreate", func(t *testing.T) { testStatsUnknown(t, open(t)) })
	t.Run("TopOrdering", func(t *testing.T) { testTop(t, open(t)) })
	t.Run("ConcurrentAwards", func(t *testing.T) { testConcurrent(t, open(t)) })
}

func testGet(t *testing.T, s xp.Store) {
	ctx := context.Background()
	rec, err := s.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "1", rec.UserID)
	require.Zero(t, rec.XP)
	require.True(t, rec.EarnedAt.IsZero())

	stats, ok, err := s.Stats(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, xp.Stats{XP: 0, Place: 1}, stats)
}

func testAward(t *testing.T, s xp.Store) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Award(ctx, "1", 15, at)
	require.NoError(t, err)
	rec, err := s.Award(ctx, "1", 10, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(25), rec.XP)
	require.True(t, rec.EarnedAt.Equal(at), "zero time leaves EarnedAt alone")

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, int64(25), got.XP)
	require.True(t, got.EarnedAt.Equal(at))
}

func testClamp(t *testing.T, s xp.Store) {
	ctx := context.Background()
	_, err := s.Award(ctx, "1", 5, time.Time{})
	require.NoError(t, err)
	rec, err := s.Award(ctx, "1", -50, time.Time{})
	require.NoError(t, err)
	require.Zero(t, rec.XP)

	rec, err = s.Set(ctx, "2", -1)
	require.NoError(t, err)
	require.Zero(t, rec.XP)
}

func testSet(t *testing.T, s xp.Store) {
	ctx := context.Background()
	_, err := s.Award(ctx, "1", 99, time.Time{})
	require.NoError(t, err)
	rec, err := s.Set(ctx, "1", 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), rec.XP)
	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.XP)
}

func seed(t *testing.T, s xp.Store, scores map[string]int64) {
	t.Helper()
	for id, n := range scores {
		_, err := s.Set(context.Background(), id, n)
		require.NoError(t, err)
	}
}

func testStats(t *testing.T, s xp.Store) {
	seed(t, s, map[string]int64{"a": 300, "b": 200, "c": 200, "d": 10})
	want := map[string]xp.Stats{
		"a": {XP: 300, Place: 1},
		"b": {XP: 200, Place: 2},
		"c": {XP: 200, Place: 2},
		"d": {XP: 10, Place: 4},
	}
	for id, w := range want {
		got, ok, err := s.Stats(context.Background(), id)
		require.NoError(t, err)
		require.True(t, ok, "user %s", id)
		require.Equal(t, w, got, "user %s", id)
	}
}

func testStatsUnknown(t *testing.T, s xp.Store) {
	ctx := context.Background()
	seed(t, s, map[string]int64{"a": 50, "b": 0})

	stats, ok, err := s.Stats(ctx, "999999999999999999")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, xp.Stats{XP: 0, Place: 2}, stats)

	top, err := s.Top(ctx, 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(top))
	for _, r := range top {
		ids = append(ids, r.UserID)
	}
	require.Equal(t, []string{"a", "b"}, ids)
}

func testTop(t *testing.T, s xp.Store) {
	ctx := context.Background()
	seed(t, s, map[string]int64{"a": 5, "b": 50, "c": 50, "d": 1})

	top, err := s.Top(ctx, 3)
	require.NoError(t, err)
	want := []xp.Record{{UserID: "b", XP: 50}, {UserID: "c", XP: 50}, {UserID: "a", XP: 5}}
	if diff := cmp.Diff(want, top, cmpopts.IgnoreFields(xp.Record{}, "EarnedAt")); diff != "" {
		t.Errorf("Top(3) mismatch (-want +got):\n%s", diff)
	}

	all, err := s.Top(ctx, 100)
	require.NoError(t, err)
	require.Len(t, all, 4)

	none, err := s.Top(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func testConcurrent(t *testing.T, s xp.Store) {
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Award(ctx, "1", 1, time.Time{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	rec, err := s.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, int64(20), rec.XP)
}
