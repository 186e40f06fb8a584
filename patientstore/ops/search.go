package ops

import (
	"context"
	"fmt"

	"github.com/nonibytes/patientstore/patientstore/datefilter"
	"github.com/nonibytes/patientstore/patientstore/planner"
	"github.com/nonibytes/patientstore/patientstore/storage"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlbuilder"
)

// BirthDateColumn is the column date filters are pushed down to.
const BirthDateColumn = "birth_date"

// SearchOptions configures a search operation
type SearchOptions struct {
	Explain bool
}

// SearchResult is the result of a search operation
type SearchResult struct {
	Rows         []PatientRow
	ExplainSQL   string
	ExplainSteps []string
}

// Search selects the rows whose birth date satisfies expr, in insertion order.
func Search(
	ctx context.Context,
	q Querier,
	adapter storage.Adapter,
	expr datefilter.Expr,
	opts SearchOptions,
) (*SearchResult, error) {
	sqlt := adapter.SQL()
	builder := sqlbuilder.New(adapter.PlaceholderStyle())

	compiled, err := planner.CompileWhere(expr, planner.Options{
		Column:   BirthDateColumn,
		Encoding: planner.EncodeEpochMS,
	}, builder)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}

	query := sqlt.SelectPatients + " WHERE " + compiled.Where + sqlt.OrderBy

	result := &SearchResult{}
	if opts.Explain {
		result.ExplainSQL = query
		result.ExplainSteps = compiled.ExplainSteps
	}

	rows, err := q.QueryContext(ctx, query, builder.Args()...)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result.Rows = append(result.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
