package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"selambus/internal/db"
	"selambus/internal/utils"
)

const mysqlTable = "storage_entries"

// MySQLStore keeps entries in a single key-value table. The table is
// created on first use.
type MySQLStore struct {
	DB  *sql.DB
	Now func() time.Time

	mu    sync.Mutex
	ready bool
}

func NewMySQLStore(conn *sql.DB) *MySQLStore {
	return &MySQLStore{DB: conn, Now: time.Now}
}

func (s *MySQLStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MySQLStore) ensureTable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if !db.HasTable(ctx, s.DB, mysqlTable) {
		_, err := s.DB.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS storage_entries (
				entry_key  VARCHAR(191) NOT NULL PRIMARY KEY,
				entry_val  MEDIUMBLOB NOT NULL,
				expires_at DATETIME NULL,
				updated_at DATETIME NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
		`)
		if err != nil {
			return fmt.Errorf("create %s: %w", mysqlTable, err)
		}
		utils.LogEvent("", "storage", "mysql_table_created", mysqlTable)
	}
	s.ready = true
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}

	var (
		val       []byte
		expiresAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT entry_val, expires_at FROM storage_entries WHERE entry_key = ? LIMIT 1`, key,
	).Scan(&val, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid && !s.now().Before(expiresAt.Time) {
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM storage_entries WHERE entry_key = ?`, key); err != nil {
			utils.LogEvent("", "storage", "mysql_expire_failed", err.Error())
		}
		return nil, ErrNotFound
	}
	return val, nil
}

func (s *MySQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	now := s.now()
	var expiresAt any
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO storage_entries (entry_key, entry_val, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE entry_val = VALUES(entry_val), expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)
	`, key, value, expiresAt, now)
	return err
}

func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx, `DELETE FROM storage_entries WHERE entry_key = ?`, key)
	return err
}
