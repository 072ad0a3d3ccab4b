// Package sqlstore keeps xp records in an SQLite database.
package sqlstore

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/keshon/trollbot/internal/xp"
)

//go:embed schema.sql
var schemaSQL string

// Store is an xp.Store within an SQLite database.
type Store struct {
	db *sqlitex.Pool
}

// Open creates the schema if needed and returns a store within db.
// The store owns db and closes it on Close.
func Open(ctx context.Context, db *sqlitex.Pool) (*Store, error) {
	conn, err := db.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection from pool: %w", err)
	}
	defer db.Put(conn)
	if err := sqlitex.ExecuteScript(conn, schemaSQL, nil); err != nil {
		return nil, fmt.Errorf("couldn't run migration: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenFile opens or creates the database at path.
func OpenFile(ctx context.Context, path string) (*Store, error) {
	db, err := sqlitex.NewPool(path, sqlitex.PoolOptions{PrepareConn: Prep})
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %w", path, err)
	}
	s, err := Open(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Prep is an [sqlitex.ConnPrepareFunc] setting per-connection pragmas.
func Prep(conn *sqlite.Conn) error {
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if err := sqlitex.ExecuteTransient(conn, p, nil); err != nil {
			return fmt.Errorf("couldn't run %s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) take(ctx context.Context, what string) (*sqlite.Conn, error) {
	conn, err := s.db.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection to %s: %w", what, err)
	}
	return conn, nil
}

func ensure(conn *sqlite.Conn, userID string) error {
	opts := sqlitex.ExecOptions{Args: []any{userID}}
	if err := sqlitex.Execute(conn, `INSERT INTO xp (user_id) VALUES (?) ON CONFLICT DO NOTHING`, &opts); err != nil {
		return fmt.Errorf("couldn't create record: %w", err)
	}
	return nil
}

func scan(stmt *sqlite.Stmt) xp.Record {
	rec := xp.Record{
		UserID: stmt.GetText("user_id"),
		XP:     stmt.GetInt64("xp"),
	}
	if ns := stmt.GetInt64("earned_at"); ns != 0 {
		rec.EarnedAt = time.Unix(0, ns).UTC()
	}
	return rec
}

func (s *Store) Get(ctx context.Context, userID string) (rec xp.Record, err error) {
	conn, err := s.take(ctx, "get record")
	if err != nil {
		return xp.Record{}, err
	}
	defer s.db.Put(conn)
	defer sqlitex.Transaction(conn)(&err)

	if err := ensure(conn, userID); err != nil {
		return xp.Record{}, err
	}
	opts := sqlitex.ExecOptions{
		Args: []any{userID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rec = scan(stmt)
			return nil
		},
	}
	if err := sqlitex.Execute(conn, `SELECT user_id, xp, earned_at FROM xp WHERE user_id = ?`, &opts); err != nil {
		return xp.Record{}, fmt.Errorf("couldn't read record: %w", err)
	}
	return rec, nil
}

func (s *Store) Award(ctx context.Context, userID string, delta int64, at time.Time) (xp.Record, error) {
	var ns int64
	if !at.IsZero() {
		ns = at.UnixNano()
	}
	return s.upsert(ctx, "award", `
		INSERT INTO xp (user_id, xp, earned_at) VALUES (:user, max(:delta, 0), :at)
		ON CONFLICT (user_id) DO UPDATE SET
			xp = max(xp + :delta, 0),
			earned_at = CASE WHEN :at = 0 THEN earned_at ELSE :at END
		RETURNING user_id, xp, earned_at`,
		map[string]any{":user": userID, ":delta": delta, ":at": ns},
	)
}

func (s *Store) Set(ctx context.Context, userID string, n int64) (xp.Record, error) {
	return s.upsert(ctx, "set score", `
		INSERT INTO xp (user_id, xp) VALUES (:user, :xp)
		ON CONFLICT (user_id) DO UPDATE SET xp = :xp
		RETURNING user_id, xp, earned_at`,
		map[string]any{":user": userID, ":xp": xp.Clamp(n)},
	)
}

func (s *Store) upsert(ctx context.Context, what, query string, named map[string]any) (rec xp.Record, err error) {
	conn, err := s.take(ctx, what)
	if err != nil {
		return xp.Record{}, err
	}
	defer s.db.Put(conn)

	opts := sqlitex.ExecOptions{
		Named: named,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rec = scan(stmt)
			return nil
		},
	}
	if err := sqlitex.Execute(conn, query, &opts); err != nil {
		return xp.Record{}, fmt.Errorf("couldn't %s: %w", what, err)
	}
	return rec, nil
}

func (s *Store) Stats(ctx context.Context, userID string) (stats xp.Stats, ok bool, err error) {
	conn, err := s.take(ctx, "rank user")
	if err != nil {
		return xp.Stats{}, false, err
	}
	defer s.db.Put(conn)

	// A LEFT JOIN against a one-row table ranks unknown users as zero.
	opts := sqlitex.ExecOptions{
		Args: []any{userID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ok = stmt.ColumnInt64(0) != 0
			stats = xp.Stats{XP: stmt.ColumnInt64(1), Place: int(stmt.ColumnInt64(2))}
			return nil
		},
	}
	err = sqlitex.Execute(conn, `
		SELECT u.user_id IS NOT NULL, coalesce(u.xp, 0),
			(SELECT COUNT(*) FROM xp AS o WHERE o.xp > coalesce(u.xp, 0)) + 1
		FROM (SELECT ? AS id) AS q LEFT JOIN xp AS u ON u.user_id = q.id`, &opts)
	if err != nil {
		return xp.Stats{}, false, fmt.Errorf("couldn't rank user: %w", err)
	}
	return stats, ok, nil
}

func (s *Store) Top(ctx context.Context, n int) ([]xp.Record, error) {
	if n <= 0 {
		return nil, nil
	}
	conn, err := s.take(ctx, "list leaderboard")
	if err != nil {
		return nil, err
	}
	defer s.db.Put(conn)

	var records []xp.Record
	opts := sqlitex.ExecOptions{
		Args: []any{int64(n)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			records = append(records, scan(stmt))
			return nil
		},
	}
	err = sqlitex.Execute(conn, `SELECT user_id, xp, earned_at FROM xp ORDER BY xp DESC, user_id LIMIT ?`, &opts)
	if err != nil {
		return nil, fmt.Errorf("couldn't list leaderboard: %w", err)
	}
	return records, nil
}
