// Package audit keeps an optional Postgres log of answered queries.
//
// Each Session operation becomes one query_log row. A retention job deletes
// rows older than the configured number of days.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/core"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schemaSQL = []string{`
CREATE TABLE IF NOT EXISTS query_log (
	id          UUID PRIMARY KEY,
	chat_id     BIGINT NOT NULL,
	operation   TEXT NOT NULL,
	query       TEXT,
	outcome     TEXT NOT NULL,
	matches     INTEGER NOT NULL DEFAULT 0,
	rows_total  INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL,
	error_code  TEXT,
	error       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS query_log_created_at_idx ON query_log (created_at)`,
}

const insertSQL = `INSERT INTO query_log
	(id, chat_id, operation, query, outcome, matches, rows_total, duration_ms, error_code, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const purgeSQL = `DELETE FROM query_log WHERE created_at < now() - make_interval(days => $1)`

var _ core.Recorder = (*Store)(nil)

// Store writes query events to the query_log table. It implements core.Recorder.
type Store struct {
	db    DB
	newID func() uuid.UUID
}

// NewStore creates a Store on db.
func NewStore(db DB) *Store {
	return &Store{db: db, newID: uuid.New}
}

// Open connects a pool for cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.AuditConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to query log database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// EnsureSchema creates the query_log table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create query_log: %w", err)
		}
	}
	return nil
}

// Record inserts ev.
func (s *Store) Record(ctx context.Context, ev core.QueryEvent) error {
	var errText string
	if ev.Err != nil {
		errText = ev.Err.Error()
	}

	_, err := s.db.Exec(ctx, insertSQL,
		s.newID(),
		ev.ChatID,
		string(ev.Operation),
		optionalText(ev.Query),
		string(ev.Outcome),
		ev.Matches,
		ev.Rows,
		ev.Duration.Milliseconds(),
		optionalText(ev.ErrorCode),
		optionalText(errText),
	)
	if err != nil {
		return fmt.Errorf("insert query_log: %w", err)
	}
	return nil
}

// Purge deletes entries older than days and returns how many were removed.
func (s *Store) Purge(ctx context.Context, days int) (int64, error) {
	tag, err := s.db.Exec(ctx, purgeSQL, int32(days))
	if err != nil {
		return 0, fmt.Errorf("purge query_log: %w", err)
	}
	return tag.RowsAffected(), nil
}

// optionalText maps "" to NULL.
func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
