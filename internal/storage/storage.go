// Package storage opens the configured xp store backend.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/keshon/trollbot/internal/config"
	"github.com/keshon/trollbot/internal/datastore"
	"github.com/keshon/trollbot/internal/xp"
	"github.com/keshon/trollbot/internal/xp/docstore"
	"github.com/keshon/trollbot/internal/xp/sqlstore"
)

// Open returns the store selected by cfg.Driver. The caller closes it.
func Open(ctx context.Context, cfg config.Storage, log zerolog.Logger) (xp.Store, error) {
	switch cfg.Driver {
	case config.DriverJSON, "":
		dsCfg := datastore.DefaultConfig(cfg.Path)
		dsCfg.Logger = log
		s, err := docstore.Open(dsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open document store: %w", err)
		}
		log.Info().Str("path", cfg.Path).Msg("Opened document store")
		return s, nil
	case config.DriverSQLite:
		s, err := sqlstore.OpenFile(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Opened sqlite store")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
