package planner

import (
	"fmt"
	"regexp"
	"time"

	"github.com/nonibytes/patientstore/patientstore/datefilter"
	"github.com/nonibytes/patientstore/patientstore/storage"
)

// Encoding is how the date column is stored.
type Encoding int

const (
	// EncodeEpochMS binds bounds as int64 milliseconds since the Unix epoch.
	EncodeEpochMS Encoding = iota
	// EncodeTime binds bounds as time.Time values.
	EncodeTime
)

// Options selects the column a filter applies to and how it is stored.
// Resolution is the finest unit the column keeps; bounds are rounded to it.
// EncodeEpochMS always uses a millisecond resolution. Zero leaves
// EncodeTime bounds untouched.
type Options struct {
	Column     string
	Encoding   Encoding
	Resolution time.Duration
}

// CompileOutput is the result of compiling a date filter
type CompileOutput struct {
	Where        string
	ExplainSteps []string
}

// Compiler compiles date filter expressions to a WHERE predicate
type Compiler struct {
	opts         Options
	builder      storage.Builder
	explainSteps []string
}

var columnRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CompileWhere renders expr as a boolean SQL expression over opts.Column.
// Bound values are added to builder; the returned fragment references them
// by placeholder only.
func CompileWhere(expr datefilter.Expr, opts Options, builder storage.Builder) (*CompileOutput, error) {
	if !columnRe.MatchString(opts.Column) {
		return nil, fmt.Errorf("invalid column name %q", opts.Column)
	}
	c := &Compiler{opts: opts, builder: builder}

	where, err := c.compileExpr(expr)
	if err != nil {
		return nil, err
	}
	return &CompileOutput{Where: where, ExplainSteps: c.explainSteps}, nil
}

func (c *Compiler) compileExpr(expr datefilter.Expr) (string, error) {
	switch e := expr.(type) {
	case nil:
		return "", fmt.Errorf("nil expression")

	case datefilter.All:
		c.explainSteps = append(c.explainSteps, "ALL")
		return "1=1", nil

	case datefilter.Range:
		return c.compileRange(e), nil

	case datefilter.Not:
		inner, err := c.compileExpr(e.Inner)
		if err != nil {
			return "", err
		}
		c.explainSteps = append(c.explainSteps, "NOT")
		return fmt.Sprintf("NOT (%s)", inner), nil

	case datefilter.And:
		left, err := c.compileExpr(e.Left)
		if err != nil {
			return "", err
		}
		right, err := c.compileExpr(e.Right)
		if err != nil {
			return "", err
		}
		c.explainSteps = append(c.explainSteps, "AND")
		return fmt.Sprintf("(%s) AND (%s)", left, right), nil

	default:
		return "", fmt.Errorf("unknown expression type: %T", expr)
	}
}

func (c *Compiler) compileRange(r datefilter.Range) string {
	col := c.opts.Column
	c.explainSteps = append(c.explainSteps, fmt.Sprintf("RANGE %s %s", col, datefilter.Describe(r)))

	if r.IsPoint() {
		if !c.aligned(r.Lo.At) {
			// no stored value equals an instant finer than the column
			return "1=0"
		}
		return fmt.Sprintf("%s = %s", col, c.builder.Arg(c.value(r.Lo.At, false)))
	}

	var sql string
	if r.Lo != nil {
		op := ">"
		if r.Lo.Inclusive {
			op = ">="
		}
		sql = fmt.Sprintf("%s %s %s", col, op, c.builder.Arg(c.value(r.Lo.At, r.Lo.Inclusive)))
	}
	if r.Hi != nil {
		op := "<"
		if r.Hi.Inclusive {
			op = "<="
		}
		if sql != "" {
			sql += " AND "
		}
		sql += fmt.Sprintf("%s %s %s", col, op, c.builder.Arg(c.value(r.Hi.At, !r.Hi.Inclusive)))
	}
	if sql == "" {
		return "1=1"
	}
	return sql
}

// value encodes t. A bound that falls between two column units is rounded
// so the comparison selects the same rows: ceil for >= and <, floor for >
// and <=.
func (c *Compiler) value(t time.Time, roundUp bool) any {
	t = t.UTC()
	if res := c.resolution(); res > 0 {
		floor := t.Truncate(res)
		if roundUp && !floor.Equal(t) {
			floor = floor.Add(res)
		}
		t = floor
	}
	if c.opts.Encoding == EncodeTime {
		return t
	}
	return t.UnixMilli()
}

func (c *Compiler) resolution() time.Duration {
	if c.opts.Encoding == EncodeEpochMS {
		return time.Millisecond
	}
	return c.opts.Resolution
}

func (c *Compiler) aligned(t time.Time) bool {
	res := c.resolution()
	return res <= 0 || t.Equal(t.Truncate(res))
}
