package datefilter

import (
	"fmt"
	"time"
)

// Expr is a boolean test over one date value. Expressions are immutable and
// can either be evaluated in-process with Match or walked by a store to
// build its own filter (see the planner package).
type Expr interface {
	Match(t time.Time) bool
	isExpr()
}

// All accepts every value. It is what an empty filter set compiles to.
type All struct{}

func (All) isExpr() {}

func (All) Match(time.Time) bool { return true }

// Bound is one end of a Range.
type Bound struct {
	At        time.Time
	Inclusive bool
}

// Range accepts values between Lo and Hi. A nil bound is unbounded.
type Range struct {
	Lo *Bound
	Hi *Bound
}

func (Range) isExpr() {}

func (r Range) Match(t time.Time) bool {
	if r.Lo != nil {
		if r.Lo.Inclusive && t.Before(r.Lo.At) {
			return false
		}
		if !r.Lo.Inclusive && !t.After(r.Lo.At) {
			return false
		}
	}
	if r.Hi != nil {
		if r.Hi.Inclusive && t.After(r.Hi.At) {
			return false
		}
		if !r.Hi.Inclusive && !t.Before(r.Hi.At) {
			return false
		}
	}
	return true
}

// IsPoint reports whether r accepts exactly one instant.
func (r Range) IsPoint() bool {
	return r.Lo != nil && r.Hi != nil && r.Lo.Inclusive && r.Hi.Inclusive && r.Lo.At.Equal(r.Hi.At)
}

// Not is the complement of Inner.
type Not struct {
	Inner Expr
}

func (Not) isExpr() {}

func (n Not) Match(t time.Time) bool { return !n.Inner.Match(t) }

// And accepts values accepted by both sides.
type And struct {
	Left  Expr
	Right Expr
}

func (And) isExpr() {}

func (a And) Match(t time.Time) bool { return a.Left.Match(t) && a.Right.Match(t) }

// Conjoin folds exprs with And, dropping All. Zero exprs yield All.
func Conjoin(exprs ...Expr) Expr {
	var out Expr = All{}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if _, ok := e.(All); ok {
			continue
		}
		if _, ok := out.(All); ok {
			out = e
			continue
		}
		out = And{Left: out, Right: e}
	}
	return out
}

func inclusive(t time.Time) *Bound { return &Bound{At: t, Inclusive: true} }
func exclusive(t time.Time) *Bound { return &Bound{At: t} }

// Describe renders e for logs and explain output.
func Describe(e Expr) string {
	switch x := e.(type) {
	case All:
		return "*"
	case Range:
		if x.IsPoint() {
			return "= " + x.Lo.At.Format(time.RFC3339Nano)
		}
		var s string
		if x.Lo != nil {
			op := ">"
			if x.Lo.Inclusive {
				op = ">="
			}
			s = op + " " + x.Lo.At.Format(time.RFC3339Nano)
		}
		if x.Hi != nil {
			op := "<"
			if x.Hi.Inclusive {
				op = "<="
			}
			if s != "" {
				s += " AND "
			}
			s += op + " " + x.Hi.At.Format(time.RFC3339Nano)
		}
		return s
	case Not:
		return fmt.Sprintf("NOT (%s)", Describe(x.Inner))
	case And:
		return fmt.Sprintf("(%s) AND (%s)", Describe(x.Left), Describe(x.Right))
	default:
		return fmt.Sprintf("%T", e)
	}
}
