package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nonibytes/patientstore/patientstore/storage"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PatientRow is a patients table row as stored
type PatientRow struct {
	ID          string
	Use         string
	Family      string
	GivenJSON   string
	Gender      string
	BirthDateMS int64
	Active      bool
	CreatedAt   int64
	UpdatedAt   int64
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (PatientRow, error) {
	var r PatientRow
	err := s.Scan(&r.ID, &r.Use, &r.Family, &r.GivenJSON, &r.Gender, &r.BirthDateMS, &r.Active, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// InsertPatient writes a new row. CreatedAt and UpdatedAt must be set.
func InsertPatient(ctx context.Context, q Querier, sqlt storage.SQL, r PatientRow) error {
	_, err := q.ExecContext(ctx, sqlt.InsertPatient,
		r.ID, r.Use, r.Family, r.GivenJSON, r.Gender, r.BirthDateMS, r.Active, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

// UpdatePatient overwrites the mutable columns of the row with r.ID.
// It reports false when no such row exists.
func UpdatePatient(ctx context.Context, q Querier, sqlt storage.SQL, r PatientRow) (bool, error) {
	res, err := q.ExecContext(ctx, sqlt.UpdatePatient,
		r.ID, r.Use, r.Family, r.GivenJSON, r.Gender, r.BirthDateMS, r.Active, r.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("update patient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetPatient loads one row. A missing row is returned as sql.ErrNoRows.
func GetPatient(ctx context.Context, q Querier, sqlt storage.SQL, id string) (PatientRow, error) {
	return scanRow(q.QueryRowContext(ctx, sqlt.GetPatient, id))
}

// DeletePatient removes the row with id and reports whether it existed.
func DeletePatient(ctx context.Context, q Querier, sqlt storage.SQL, id string) (bool, error) {
	res, err := q.ExecContext(ctx, sqlt.DeletePatient, id)
	if err != nil {
		return false, fmt.Errorf("delete patient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CountPatients returns the number of stored rows.
func CountPatients(ctx context.Context, q Querier, sqlt storage.SQL) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, sqlt.CountPatients).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}
