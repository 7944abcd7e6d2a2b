// Package sqlite checkpoints the polling offset cursor in a SQLite database
// so a restarted bot resumes from the last update it fetched.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flemzord/tgbot/pkg/bot"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Store is a bot.OffsetStore backed by SQLite.
type Store struct {
	db  *sql.DB
	key string
}

var _ bot.OffsetStore = (*Store)(nil)

// Open opens (creating if needed) the database at cfg.Path and migrates its
// schema. The database uses WAL mode and a single connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, key: cfg.Key}, nil
}

// LoadOffset returns the stored cursor, or 0 when none was saved yet.
func (s *Store) LoadOffset(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, "SELECT next_id FROM offsets WHERE bot_key = ?", s.key).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: load offset: %w", err)
	}
	return next, nil
}

// SaveOffset stores the cursor.
func (s *Store) SaveOffset(ctx context.Context, offset int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offsets (bot_key, next_id) VALUES (?, ?)
		 ON CONFLICT(bot_key) DO UPDATE SET
			next_id = excluded.next_id,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		s.key, offset)
	if err != nil {
		return fmt.Errorf("sqlite: save offset: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
