// Package sqldb provides support for access the database.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const (
	uniqueViolation    = "23505"
	exclusionViolation = "23P01"
	undefinedTable     = "42P01"
)

// Set of error variables for CRUD operations.
var (
	ErrDBNotFound        = sql.ErrNoRows
	ErrUndefinedTable    = errors.New("undefined table")
	ErrUnexpectedTxValue = errors.New("unexpected transaction value")
)

// ErrDBDuplicatedEntry is returned when a unique constraint is violated. The
// Column field holds the name of the violated constraint.
type ErrDBDuplicatedEntry struct {
	Column string
}

func (e ErrDBDuplicatedEntry) Error() string {
	return fmt.Sprintf("duplicated entry: %s", e.Column)
}

// ErrDBExcluded is returned when an exclusion constraint rejects a row.
type ErrDBExcluded struct {
	Constraint string
}

func (e ErrDBExcluded) Error() string {
	return fmt.Sprintf("excluded by constraint: %s", e.Constraint)
}

// Config is the required properties to use the database.
type Config struct {
	User         string
	Password     string
	Host         string
	Name         string
	Schema       string
	MaxIdleConns int
	MaxOpenConns int
	DisableTLS   bool
}

// Open knows how to open a database connection based on the configuration.
func Open(cfg Config) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")
	if cfg.Schema != "" {
		q.Set("search_path", cfg.Schema)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("pgx", u.String())
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	return db, nil
}

// StatusCheck returns nil if it can successfully talk to the database. It
// returns a non-nil error otherwise.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {

	// If the user doesn't give us a deadline set 1 second.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	for attempts := 1; ; attempts++ {
		if err := db.PingContext(ctx); err == nil {
			break
		}

		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Run a simple query to determine connectivity.
	// Running this query forces a round trip through the database.
	const q = `SELECT TRUE`
	var tmp bool
	return db.QueryRowContext(ctx, q).Scan(&tmp)
}

// ExecContext is a helper function to execute a CUD operation with
// logging and tracing.
func ExecContext(ctx context.Context, log *logger.Logger, db sqlx.ExtContext, query string) error {
	return NamedExecContext(ctx, log, db, query, struct{}{})
}

// NamedExecContext is a helper function to execute a CUD operation with
// logging and tracing where field replacement is necessary.
func NamedExecContext(ctx context.Context, log *logger.Logger, db sqlx.ExtContext, query string, data any) (err error) {
	q := queryString(query, data)

	defer func() {
		if err != nil {
			switch data.(type) {
			case struct{}:
				log.Infoc(ctx, 6, "database.NamedExecContext", "query", q, "ERROR", err)
			default:
				log.Infoc(ctx, 5, "database.NamedExecContext", "query", q, "ERROR", err)
			}
		}
	}()

	ctx, span := otel.AddSpan(ctx, "business.sdk.sqldb.exec", attribute.String("query", q))
	defer span.End()

	if _, err := sqlx.NamedExecContext(ctx, db, query, data); err != nil {
		return classify(err)
	}

	return nil
}

// NamedQueryStruct is a helper function for executing queries that return a
// single value to be unmarshalled into a struct type where field replacement
// is necessary.
func NamedQueryStruct(ctx context.Context, log *logger.Logger, db sqlx.ExtContext, query string, data any, dest any) (err error) {
	q := queryString(query, data)

	defer func() {
		if err != nil && !errors.Is(err, ErrDBNotFound) {
			log.Infoc(ctx, 4, "database.NamedQueryStruct", "query", q, "ERROR", err)
		}
	}()

	ctx, span := otel.AddSpan(ctx, "business.sdk.sqldb.queryStruct", attribute.String("query", q))
	defer span.End()

	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return classify(err)
		}
		return ErrDBNotFound
	}

	if err := rows.StructScan(dest); err != nil {
		return errs.New(errs.Storage, err)
	}

	return nil
}

// NamedQuerySlice is a helper function for executing queries that return a
// collection of data to be unmarshalled into a slice where field replacement
// is necessary.
func NamedQuerySlice[T any](ctx context.Context, log *logger.Logger, db sqlx.ExtContext, query string, data any, dest *[]T) (err error) {
	q := queryString(query, data)

	defer func() {
		if err != nil {
			log.Infoc(ctx, 4, "database.NamedQuerySlice", "query", q, "ERROR", err)
		}
	}()

	ctx, span := otel.AddSpan(ctx, "business.sdk.sqldb.querySlice", attribute.String("query", q))
	defer span.End()

	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	var slice []T
	for rows.Next() {
		v := new(T)
		if err := rows.StructScan(v); err != nil {
			return errs.New(errs.Storage, err)
		}
		slice = append(slice, *v)
	}

	if err := rows.Err(); err != nil {
		return classify(err)
	}

	*dest = slice

	return nil
}

// classify translates driver errors into the package error values. Anything
// not recognized is reported as a storage failure.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTable:
			return ErrUndefinedTable
		case uniqueViolation:
			return ErrDBDuplicatedEntry{Column: pgErr.ConstraintName}
		case exclusionViolation:
			return ErrDBExcluded{Constraint: pgErr.ConstraintName}
		}
	}

	return errs.New(errs.Storage, err)
}

// queryString provides a pretty print version of the query and parameters.
func queryString(query string, args any) string {
	query, params, err := sqlx.Named(query, args)
	if err != nil {
		return err.Error()
	}

	for _, param := range params {
		var value string
		switch v := param.(type) {
		case string:
			value = fmt.Sprintf("'%s'", v)
		case []byte:
			value = fmt.Sprintf("'%s'", string(v))
		default:
			value = fmt.Sprintf("%v", v)
		}
		query = strings.Replace(query, "?", value, 1)
	}

	query = strings.ReplaceAll(query, "\t", "")
	query = strings.ReplaceAll(query, "\n", " ")

	return strings.Trim(query, " ")
}
