package repositories

import (
	"context"
	"database/sql"
	"errors"
	"tanker-dispatch-service/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type ctxKey struct{}

var txKey = ctxKey{}

// querier is the subset of *sql.DB and *sql.Tx the repositories need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UnitOfWork runs functions inside a database/sql transaction carried in ctx.
type UnitOfWork struct{ DB *sql.DB }

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{DB: db}
}

// WithinTx executes fn within a transaction. A transaction already present in
// ctx is reused. fn errors and panics roll back; success commits.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	if u.DB == nil {
		return errors.New("unit of work: DB is nil")
	}

	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit transaction", Err: err}
	}
	return nil
}

// TxFromContext extracts the active *sql.Tx from ctx if present.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// MustTxFromContext returns the active *sql.Tx or an error when called
// outside UnitOfWork.WithinTx.
func MustTxFromContext(ctx context.Context) (*sql.Tx, error) {
	if tx, ok := TxFromContext(ctx); ok {
		return tx, nil
	}
	return nil, errors.New("no transaction in context: call this repository within UnitOfWork.WithinTx")
}

// conn picks the transaction in ctx, falling back to the pool.
func conn(ctx context.Context, db *sql.DB) (querier, error) {
	if tx, ok := TxFromContext(ctx); ok {
		return tx, nil
	}
	if db == nil {
		return nil, errors.New("repository: DB is nil")
	}
	return db, nil
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(resource, conflictMsg string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return domain.ConflictError{Resource: resource, Msg: conflictMsg, Err: err}
	case pgForeignKeyViolation:
		return domain.ValidationError{Field: pgErr.ConstraintName, Msg: "references a missing record", Err: err}
	case pgCheckViolation:
		return domain.ValidationError{Field: pgErr.ConstraintName, Msg: "violates check constraint", Err: err}
	}
	return err
}

// notFound maps sql.ErrNoRows to a domain.NotFoundError.
func notFound(resource string, id int, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return err
}

func nullID(v sql.Null[int64]) *int {
	if !v.Valid {
		return nil
	}
	id := int(v.V)
	return &id
}

type rowScanner interface {
	Scan(dest ...any) error
}

// requireRow reports a NotFoundError when an update or delete touched nothing.
func requireRow(res sql.Result, resource string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}
