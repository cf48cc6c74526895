package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // Import the driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"filmography-crawler/pkg/models"
)

// Dialect carries the statements that differ between database backends.
type Dialect struct {
	Driver string
	Schema string
	Insert string
}

var (
	Postgres = Dialect{
		Driver: "pgx",
		Schema: `CREATE TABLE IF NOT EXISTS credits (
			id           BIGSERIAL PRIMARY KEY,
			actor_name   TEXT NOT NULL,
			credit_title TEXT NOT NULL,
			source_url   TEXT NOT NULL,
			run_id       TEXT NOT NULL,
			crawled_at   TIMESTAMPTZ NOT NULL,
			UNIQUE (actor_name, credit_title, source_url)
		)`,
		Insert: `
			INSERT INTO credits (actor_name, credit_title, source_url, run_id, crawled_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING`,
	}
	SQLite = Dialect{
		Driver: "sqlite",
		Schema: `CREATE TABLE IF NOT EXISTS credits (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			actor_name   TEXT NOT NULL,
			credit_title TEXT NOT NULL,
			source_url   TEXT NOT NULL,
			run_id       TEXT NOT NULL,
			crawled_at   TIMESTAMP NOT NULL,
			UNIQUE (actor_name, credit_title, source_url)
		)`,
		Insert: `
			INSERT INTO credits (actor_name, credit_title, source_url, run_id, crawled_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
	}
)

type Storage struct {
	db      *sql.DB
	dialect Dialect
}

func NewStorage(db *sql.DB, dialect Dialect) *Storage {
	return &Storage{db: db, dialect: dialect}
}

// Open connects with the dialect's driver, retrying until the database
// answers a ping or attempts run out.
func Open(ctx context.Context, dialect Dialect, dsn string, attempts int, logger *zap.Logger) (*Storage, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := sql.Open(dialect.Driver, dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				return NewStorage(db, dialect), nil
			}
			db.Close()
		}
		lastErr = err
		logger.Info("waiting for database", zap.String("driver", dialect.Driver), zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("could not connect to %s after %d attempts: %w", dialect.Driver, attempts, lastErr)
}

// EnsureSchema creates the credits table when missing.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Schema)
	return err
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// CreditSink implements engine.Sink for the credits table.
type CreditSink struct {
	*Storage
}

func (s *CreditSink) Save(ctx context.Context, batch []models.StoredCredit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.Insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range batch {
		if _, err := stmt.ExecContext(ctx, c.ActorName, c.CreditTitle, c.SourceURL, c.RunID, c.CrawledAt); err != nil {
			return fmt.Errorf("insert credit %q/%q: %w", c.ActorName, c.CreditTitle, err)
		}
	}

	return tx.Commit()
}
