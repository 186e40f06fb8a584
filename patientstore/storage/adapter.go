package storage

import (
	"context"
	"database/sql"

	"github.com/nonibytes/patientstore/patientstore/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Magic and SchemaVersion are written to the meta table on create and
// checked on open.
const (
	Magic         = "patientstore"
	SchemaVersion = "1"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	StoreID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// CreateStore creates tables and writes store metadata. It is idempotent.
	CreateStore(ctx context.Context, db *sql.DB) error
	// OpenStore checks that db holds a patient store of a supported version.
	OpenStore(ctx context.Context, db *sql.DB) error
	Optimize(ctx context.Context, db *sql.DB) error

	SQL() SQL
}

// SQL holds prepared SQL templates for common operations
type SQL struct {
	GetMeta string
	SetMeta string

	InsertPatient string
	UpdatePatient string
	GetPatient    string
	DeletePatient string
	CountPatients string

	// GetPatient and SelectPatients return columns in the order
	// id, name_use, family, given_json, gender, birth_date, active,
	// created_at, updated_at.
	//
	// SelectPatients is the search prefix; callers append WHERE and OrderBy.
	SelectPatients string
	// OrderBy keeps search results in insertion order.
	OrderBy string
}

// Builder interface for placeholder management
type Builder interface {
	Arg(v any) string
	Args() []any
	Len() int
}
