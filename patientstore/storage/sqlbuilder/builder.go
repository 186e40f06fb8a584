package sqlbuilder

import "strconv"

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

func (s PlaceholderStyle) String() string {
	if s == PlaceholderDollar {
		return "dollar"
	}
	return "question"
}

// Builder collects query arguments and hands out placeholders for them in
// the dialect's style. A Builder is used for one statement only.
type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0)}
}

func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	switch b.Style {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(len(b.args))
	default:
		return "?"
	}
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }
