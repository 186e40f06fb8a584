// Package datefilter turns date search tokens such as "ge2005" or
// "eq2010-06-15T00:00" into predicates over a single date field.
//
// A token is a two-letter prefix (eq, ne, gt, lt, ge, le, sa, eb, ap)
// followed by a partial ISO-8601 value. The value names a span whose width
// follows its precision: "2010" is the whole year, "2010-06" the month, and
// so on down to the second. Prefixes compare against that span, so eq2010
// accepts any date in 2010 and gt2010 accepts dates from 2011-01-01 on.
//
// Compiled predicates are Expr trees. They can be evaluated in-process
// (Apply, Select) or handed to a store that renders them natively.
package datefilter
