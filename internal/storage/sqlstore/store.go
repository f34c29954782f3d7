// Package sqlstore implements the repository ports on SQLite or PostgreSQL
// through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
)

const (
	// DriverSQLite selects the embedded SQLite engine
	DriverSQLite = "sqlite"

	// DriverPostgres selects PostgreSQL via lib/pq
	DriverPostgres = "postgres"

	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5

	// DefaultConnMaxLifetime is the default maximum lifetime of a connection
	DefaultConnMaxLifetime = 5 * time.Minute

	// DefaultPingTimeout bounds the startup connectivity check
	DefaultPingTimeout = 5 * time.Second
)

var _ repository.Store = (*Store)(nil)

// Config selects a driver and data source
type Config struct {
	Driver string
	DSN    string
	// Migrate applies embedded migrations before returning.
	Migrate bool
}

// Store is a repository.Store backed by database/sql
type Store struct {
	db     *sqlx.DB
	driver string
	clock  func() time.Time
}

// Open connects, configures the pool and optionally migrates
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	if cfg.Driver == DriverSQLite {
		cfg.DSN = NormalizeSQLiteDSN(cfg.DSN)
	}

	if cfg.Migrate {
		if err := Migrate(cfg.Driver, cfg.DSN); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping database: %w", err)
	}

	return New(db, cfg.Driver), nil
}

// sqlitePragmas are the connection settings the store relies on: foreign
// keys, WAL, a busy timeout and IMMEDIATE write transactions so concurrent
// writers queue at BEGIN instead of failing with SQLITE_BUSY on upgrade.
var sqlitePragmas = []struct{ key, value string }{
	{"_pragma", "foreign_keys(1)"},
	{"_pragma", "journal_mode(WAL)"},
	{"_pragma", "busy_timeout(10000)"},
	{"_txlock", "immediate"},
}

// SQLiteDSN builds a modernc DSN for path with the store's pragmas
func SQLiteDSN(path string) string {
	return NormalizeSQLiteDSN("file:" + path)
}

// NormalizeSQLiteDSN appends every store pragma that dsn does not set itself.
// Settings already present in dsn win.
func NormalizeSQLiteDSN(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")
	if base != ":memory:" && !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}

	var params []string
	if query != "" {
		params = strings.Split(query, "&")
	}
	for _, p := range sqlitePragmas {
		if !hasSetting(params, p.key, p.value) {
			params = append(params, p.key+"="+p.value)
		}
	}
	return base + "?" + strings.Join(params, "&")
}

// hasSetting reports whether params already configure what key=value does.
// A _pragma matches on its name, so busy_timeout(500) counts as set.
func hasSetting(params []string, key, value string) bool {
	name, _, _ := strings.Cut(value, "(")
	for _, p := range params {
		k, v, _ := strings.Cut(p, "=")
		if k != key {
			continue
		}
		if key != "_pragma" {
			return true
		}
		if n, _, _ := strings.Cut(v, "("); strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// New wraps an existing connection, which is how tests inject sqlmock
func New(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver, clock: time.Now}
}

// DB exposes the underlying handle
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func (s *Store) Jobs() repository.JobRepository {
	return &jobRepo{q: s.queryer(s.db)}
}

func (s *Store) Applications() repository.ApplicationRepository {
	return &applicationRepo{q: s.queryer(s.db)}
}

func (s *Store) Interviews() repository.InterviewRepository {
	return &interviewRepo{q: s.queryer(s.db)}
}

func (s *Store) Settings() repository.SettingsRepository {
	return &settingsRepo{q: s.queryer(s.db)}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepo{q: s.queryer(s.db)}
}

func (s *Store) QnA() repository.QnARepository {
	return &qnaRepo{q: s.queryer(s.db)}
}

// WithinTx runs fn in one transaction, committing only if fn returns nil.
// On SQLite Open adds _txlock=immediate so writers serialize at BEGIN.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("sqlstore: rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(ctx, &txRepos{q: s.queryer(tx)}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

func (s *Store) queryer(ext sqlx.ExtContext) *queryer {
	return &queryer{ext: ext, clock: s.clock}
}

type txRepos struct {
	q *queryer
}

func (t *txRepos) Jobs() repository.JobRepository                   { return &jobRepo{q: t.q} }
func (t *txRepos) Applications() repository.ApplicationRepository   { return &applicationRepo{q: t.q} }
func (t *txRepos) Interviews() repository.InterviewRepository       { return &interviewRepo{q: t.q} }
func (t *txRepos) Settings() repository.SettingsRepository          { return &settingsRepo{q: t.q} }
func (t *txRepos) Notifications() repository.NotificationRepository { return &notificationRepo{q: t.q} }
func (t *txRepos) QnA() repository.QnARepository                    { return &qnaRepo{q: t.q} }

// queryer rebinds "?" placeholders for the active driver
type queryer struct {
	ext   sqlx.ExtContext
	clock func() time.Time
}

func (q *queryer) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
}

func (q *queryer) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q *queryer) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q *queryer) in(ctx context.Context, dest any, query string, args ...any) error {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return q.selectAll(ctx, dest, expanded, expandedArgs...)
}

func (q *queryer) execIn(ctx context.Context, query string, args ...any) (sql.Result, error) {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	return q.exec(ctx, expanded, expandedArgs...)
}

func (q *queryer) getIn(ctx context.Context, dest any, query string, args ...any) error {
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return q.get(ctx, dest, expanded, expandedArgs...)
}

func (q *queryer) now() int64 {
	return q.clock().UTC().UnixMilli()
}
