package datefilter

import "time"

// mode is the interval test a prefix selects. Every mode is expressed in
// terms of the span [lo, hi) of the parsed date.
type mode int

const (
	modeWithin     mode = iota // lo <= v < hi
	modeOutside                // not within
	modeAfterSpan              // v >= hi
	modeBeforeSpan             // v < lo
	modeFromStart              // v >= lo
	modeThroughEnd             // v <= hi
)

var prefixModes = map[Prefix]mode{
	PrefixEq: modeWithin,
	PrefixAp: modeWithin,
	PrefixNe: modeOutside,
	PrefixGt: modeAfterSpan,
	PrefixSa: modeAfterSpan,
	PrefixLt: modeBeforeSpan,
	PrefixEb: modeBeforeSpan,
	PrefixGe: modeFromStart,
	PrefixLe: modeThroughEnd,
}

// Build returns the predicate for prefix applied to the span that starts at
// lo and has the given precision.
func Build(prefix Prefix, lo time.Time, precision Precision) (Expr, error) {
	m, ok := prefixModes[prefix]
	if !ok {
		return nil, unknownPrefix(prefix)
	}
	return m.expr(lo, precision.End(lo)), nil
}

// At builds a predicate comparing against the exact instant t.
func At(prefix Prefix, t time.Time) (Expr, error) {
	return Build(prefix, t.UTC(), PrecisionInstant)
}

func (m mode) expr(lo, hi time.Time) Expr {
	// lo == hi only for PrecisionInstant: the span is a single point.
	point := lo.Equal(hi)
	switch m {
	case modeWithin:
		if point {
			return Range{Lo: inclusive(lo), Hi: inclusive(lo)}
		}
		return Range{Lo: inclusive(lo), Hi: exclusive(hi)}
	case modeOutside:
		return Not{Inner: modeWithin.expr(lo, hi)}
	case modeAfterSpan:
		if point {
			return Range{Lo: exclusive(lo)}
		}
		return Range{Lo: inclusive(hi)}
	case modeBeforeSpan:
		return Range{Hi: exclusive(lo)}
	case modeFromStart:
		return Range{Lo: inclusive(lo)}
	case modeThroughEnd:
		return Range{Hi: inclusive(hi)}
	default:
		return All{}
	}
}
