package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const upsertDocument = `INSERT INTO documents (collection, id, body, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`

// SQLiteStore is a DocumentStore backed by a single sqlite table.
type SQLiteStore struct {
	db              *sql.DB
	log             logger.Logger
	busyTimeout     time.Duration
	migrationsTable string
}

var _ DocumentStore = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeout:     5 * time.Second,
		migrationsTable: "schema_migrations",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("repository")
	}

	db, err := sql.Open("sqlite3", s.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if err := s.migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db = db
	s.log.Info(ctx, "document store ready", logger.String("path", path))
	return s, nil
}

func (s *SQLiteStore) dsn(path string) string {
	ms := s.busyTimeout.Milliseconds()
	if path == MemoryPath {
		return fmt.Sprintf("file::memory:?_txlock=immediate&_busy_timeout=%d", ms)
	}
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_journal_mode=WAL", path, ms)
}

func (s *SQLiteStore) migrate(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: s.migrationsTable})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "scoutval", drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func observe(record func(float64), start time.Time) {
	record(float64(time.Since(start).Microseconds()) / 1000)
}

// Get implements DocumentStore.
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(body), nil
}

// Put implements DocumentStore.
func (s *SQLiteStore) Put(ctx context.Context, collection, id string, body json.RawMessage) error {
	defer observe(metrics.RecordRepositoryUpdateLatency, time.Now())

	if err := checkBody(body); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertDocument, collection, id, string(body), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete implements DocumentStore.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	defer observe(metrics.RecordRepositoryUpdateLatency, time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// List implements DocumentStore.
func (s *SQLiteStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return scanBodies(rows)
}

// QueryByField implements DocumentStore.
func (s *SQLiteStore) QueryByField(ctx context.Context, collection, field string, value any) ([]json.RawMessage, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	if err := checkField(field); err != nil {
		return nil, err
	}
	// field is restricted to an identifier so it can be inlined; this keeps
	// the expression indexes usable.
	q := fmt.Sprintf(`SELECT body FROM documents
WHERE collection = ? AND json_extract(body, '$.%s') = ? ORDER BY id`, field)
	rows, err := s.db.QueryContext(ctx, q, collection, value)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, field, err)
	}
	return scanBodies(rows)
}

// CountByField implements DocumentStore.
func (s *SQLiteStore) CountByField(ctx context.Context, collection, field string, value any) (int, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	if err := checkField(field); err != nil {
		return 0, err
	}
	q := fmt.Sprintf(`SELECT COUNT(*) FROM documents
WHERE collection = ? AND json_extract(body, '$.%s') = ?`, field)
	var n int
	if err := s.db.QueryRowContext(ctx, q, collection, value).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s by %s: %w", collection, field, err)
	}
	return n, nil
}

// CountMax implements DocumentStore.
func (s *SQLiteStore) CountMax(ctx context.Context, collection, field string) (int, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	if err := checkField(field); err != nil {
		return 0, err
	}
	q := fmt.Sprintf(`SELECT COALESCE(MAX(n), 0) FROM (
	SELECT COUNT(*) AS n FROM documents WHERE collection = ? GROUP BY json_extract(body, '$.%s')
)`, field)
	var n int
	if err := s.db.QueryRowContext(ctx, q, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count max %s by %s: %w", collection, field, err)
	}
	return n, nil
}

// Update implements DocumentStore. Transactions start with BEGIN IMMEDIATE
// (see dsn) so concurrent writers queue on the database lock.
func (s *SQLiteStore) Update(ctx context.Context, collection, id string, fn UpdateFunc) error {
	defer observe(metrics.RecordRepositoryUpdateLatency, time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %s/%s: %w", collection, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		cur  json.RawMessage
		body string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	default:
		cur = json.RawMessage(body)
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	if err := checkBody(next); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsertDocument, collection, id, string(next), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s/%s: %w", collection, id, err)
	}
	return nil
}

func scanBodies(rows *sql.Rows) ([]json.RawMessage, error) {
	defer func() { _ = rows.Close() }()
	var out []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(body))
	}
	return out, rows.Err()
}
