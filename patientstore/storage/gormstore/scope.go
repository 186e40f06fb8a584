package gormstore

import (
	"time"

	"gorm.io/gorm"

	"github.com/nonibytes/patientstore/patientstore/datefilter"
	"github.com/nonibytes/patientstore/patientstore/planner"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlbuilder"
)

// ColumnResolution matches the precision:3 tag on the birth_date column.
const ColumnResolution = time.Millisecond

// DateScope compiles expr into a GORM scope filtering column. GORM binds
// "?" placeholders for every dialect, so the fragment is always built in
// question style and bounds are passed as time.Time rounded to
// ColumnResolution.
func DateScope(column string, expr datefilter.Expr) (func(*gorm.DB) *gorm.DB, []string, error) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	out, err := planner.CompileWhere(expr, planner.Options{
		Column:     column,
		Encoding:   planner.EncodeTime,
		Resolution: ColumnResolution,
	}, b)
	if err != nil {
		return nil, nil, err
	}
	where, args := out.Where, b.Args()
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(where, args...)
	}, out.ExplainSteps, nil
}
