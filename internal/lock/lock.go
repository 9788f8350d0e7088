// Package lock implements a table-backed lease used to run a job on one instance at a time.
package lock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const DefaultTable = "scheduler_locks"

//go:generate go run go.uber.org/mock/mockgen -source=lock.go -destination=../mocks/mock_locker.go -package=mocks

type Locker interface {
	TryAcquire(ctx context.Context, name, holder string, maxHold time.Duration) (bool, error)
	Release(ctx context.Context, name, holder string) error
}

// Dialect supplies the placeholder style and the store's own clock in epoch milliseconds.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	NowMillis   string
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: sq.Dollar,
		NowMillis:   "CAST(EXTRACT(EPOCH FROM clock_timestamp()) * 1000 AS BIGINT)",
	}
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: sq.Question,
		NowMillis:   "CAST((julianday('now') - 2440587.5) * 86400000 AS INTEGER)",
	}
)

type Row struct {
	Name      string `db:"name"`
	LockUntil int64  `db:"lock_until"`
	LockedAt  int64  `db:"locked_at"`
	LockedBy  string `db:"locked_by"`
}

// execGetter is the part of *sqlx.DB the locker uses.
type execGetter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type SQLLocker struct {
	db      execGetter
	dialect Dialect
	table   string
}

func NewSQLLocker(db *sqlx.DB, dialect Dialect) *SQLLocker {
	return &SQLLocker{db: db, dialect: dialect, table: DefaultTable}
}

func (l *SQLLocker) EnsureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name VARCHAR(64) PRIMARY KEY,
	lock_until BIGINT NOT NULL,
	locked_at BIGINT NOT NULL,
	locked_by VARCHAR(255) NOT NULL
)`, l.table))
	return err
}

// TryAcquire inserts the row if it does not exist, otherwise takes it over when the
// current lease has run out. Both writes compare against the store clock.
func (l *SQLLocker) TryAcquire(ctx context.Context, name, holder string, maxHold time.Duration) (bool, error) {
	now := l.dialect.NowMillis
	hold := maxHold.Milliseconds()

	query, args, err := sq.Insert(l.table).
		Columns("name", "lock_until", "locked_at", "locked_by").
		Values(name, sq.Expr(now+" + ?", hold), sq.Expr(now), holder).
		Suffix("ON CONFLICT (name) DO NOTHING").
		PlaceholderFormat(l.dialect.Placeholder).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("lock insert rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	query, args, err = sq.Update(l.table).
		Set("lock_until", sq.Expr(now+" + ?", hold)).
		Set("locked_at", sq.Expr(now)).
		Set("locked_by", holder).
		Where(sq.Eq{"name": name}).
		Where(sq.Expr("lock_until <= " + now)).
		PlaceholderFormat(l.dialect.Placeholder).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	res, err = l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("lock takeover rows affected: %w", err)
	}
	return n == 1, nil
}

// Release ends the lease early. It only touches a row the holder still owns.
func (l *SQLLocker) Release(ctx context.Context, name, holder string) error {
	query, args, err := sq.Update(l.table).
		Set("lock_until", sq.Expr(l.dialect.NowMillis)).
		Where(sq.Eq{"name": name, "locked_by": holder}).
		PlaceholderFormat(l.dialect.Placeholder).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock release rows affected: %w", err)
	}
	if n == 0 {
		log.Warn().Str("lock", name).Str("holder", holder).Msg("release skipped, lock held by another instance")
	}
	return nil
}

func (l *SQLLocker) Get(ctx context.Context, name string) (*Row, error) {
	query, args, err := sq.Select("name", "lock_until", "locked_at", "locked_by").
		From(l.table).
		Where(sq.Eq{"name": name}).
		PlaceholderFormat(l.dialect.Placeholder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row Row
	if err := l.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, err
	}
	return &row, nil
}

// WithLock runs fn only if the lock was acquired. It reports whether fn ran.
func WithLock(ctx context.Context, l Locker, name, holder string, maxHold time.Duration, fn func(ctx context.Context) error) (bool, error) {
	ok, err := l.TryAcquire(ctx, name, holder, maxHold)
	if err != nil || !ok {
		return false, err
	}
	defer func() {
		if err := l.Release(context.WithoutCancel(ctx), name, holder); err != nil {
			log.Error().Err(err).Str("lock", name).Msg("failed to release lock")
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, maxHold)
	defer cancel()
	return true, fn(runCtx)
}
