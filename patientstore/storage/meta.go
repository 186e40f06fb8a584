package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// VerifyMeta checks the magic and version rows written by CreateStore.
func VerifyMeta(ctx context.Context, db *sql.DB, sqlt SQL) error {
	var magic string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, "patientstore_magic").Scan(&magic); err != nil {
		return err
	}
	if magic != Magic {
		return fmt.Errorf("not a patientstore db")
	}
	var version string
	if err := db.QueryRowContext(ctx, sqlt.GetMeta, "patientstore_version").Scan(&version); err != nil {
		return err
	}
	if version != SchemaVersion {
		return fmt.Errorf("unsupported store version %q", version)
	}
	return nil
}
