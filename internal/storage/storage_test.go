package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/keshon/trollbot/internal/config"
	"github.com/keshon/trollbot/internal/xp/docstore"
	"github.com/keshon/trollbot/internal/xp/sqlstore"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, config.Storage{Driver: config.DriverJSON, Path: filepath.Join(dir, "ds.json")}, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &docstore.Store{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, config.Storage{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "xp.db")}, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &sqlstore.Store{}, s)
	_, err = s.Award(ctx, "1", 5, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.Storage{Driver: "redis"}, zerolog.Nop())
	require.ErrorContains(t, err, "redis")
}
