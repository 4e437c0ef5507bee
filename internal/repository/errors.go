package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConstraintKind identifies which integrity constraint a write violated
type ConstraintKind string

const (
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintCheck      ConstraintKind = "check"
)

// Postgres SQLSTATE codes of class 23 (integrity constraint violation).
var constraintCodes = map[string]ConstraintKind{
	"23503": ConstraintForeignKey,
	"23505": ConstraintUnique,
	"23502": ConstraintNotNull,
	"23514": ConstraintCheck,
}

// ConstraintViolationError is returned when the database rejects a write
// because it breaks an integrity constraint
type ConstraintViolationError struct {
	Kind       ConstraintKind
	Constraint string
	Table      string
	Detail     string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s constraint %q violated on %s: %s", e.Kind, e.Constraint, e.Table, e.Detail)
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// ForeignKeyViolation returns the foreign key violation carried by err, if any
func ForeignKeyViolation(err error) (*ConstraintViolationError, bool) {
	var cv *ConstraintViolationError
	if errors.As(err, &cv) && cv.Kind == ConstraintForeignKey {
		return cv, true
	}
	return nil, false
}

// classify turns Postgres constraint errors into *ConstraintViolationError
// and returns any other error unchanged
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	kind, ok := constraintCodes[pgErr.Code]
	if !ok {
		return err
	}
	return &ConstraintViolationError{
		Kind:       kind,
		Constraint: pgErr.ConstraintName,
		Table:      pgErr.TableName,
		Detail:     pgErr.Detail,
		Err:        err,
	}
}
