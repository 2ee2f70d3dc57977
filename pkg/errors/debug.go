package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump is the log-side view of an error: never sent to clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Name       string   `json:"name,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	Store *StoreError `json:"store,omitempty"`
}

// StoreError carries driver details of the first database error in a chain.
type StoreError struct {
	Driver     string `json:"driver"`
	Code       string `json:"code"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Fields flattens the store details for structured logging.
func (s *StoreError) Fields() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"db_driver":     s.Driver,
		"db_code":       s.Code,
		"db_constraint": s.Constraint,
		"db_table":      s.Table,
		"db_detail":     s.Detail,
		"db_message":    s.Message,
	}
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Name = te.Name()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.Store = storeError(err)
	return d
}

// IsUniqueViolation reports whether err is a unique constraint failure on
// any supported driver.
func IsUniqueViolation(err error) bool {
	se := storeError(err)
	if se == nil {
		return false
	}
	switch se.Driver {
	case "postgres":
		return se.Code == "23505"
	case "sqlite":
		return se.Code == sqlite3.ErrConstraintUnique.Error()
	}
	return false
}

func storeError(err error) *StoreError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &StoreError{
			Driver:     "postgres",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &StoreError{
			Driver:     "postgres",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &StoreError{
			Driver:  "sqlite",
			Code:    liteErr.ExtendedCode.Error(),
			Message: liteErr.Error(),
		}
	}
	return nil
}
