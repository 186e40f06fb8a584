package datefilter

import "strings"

// Prefix is the two-letter comparison operator in front of a date value.
type Prefix string

const (
	PrefixEq Prefix = "eq"
	PrefixNe Prefix = "ne"
	PrefixGt Prefix = "gt"
	PrefixLt Prefix = "lt"
	PrefixGe Prefix = "ge"
	PrefixLe Prefix = "le"
	PrefixSa Prefix = "sa" // starts after, same as gt
	PrefixEb Prefix = "eb" // ends before, same as lt
	PrefixAp Prefix = "ap" // approximately, same as eq
)

// Prefixes lists every accepted prefix in a stable order.
var Prefixes = []Prefix{PrefixEq, PrefixNe, PrefixGt, PrefixLt, PrefixGe, PrefixLe, PrefixSa, PrefixEb, PrefixAp}

// ParsePrefix lower-cases s and reports whether it names a known prefix.
func ParsePrefix(s string) (Prefix, bool) {
	p := Prefix(strings.ToLower(s))
	_, ok := prefixModes[p]
	return p, ok
}

func (p Prefix) String() string {
	return string(p)
}
