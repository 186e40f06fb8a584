package datefilter

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MinTokenLen is the shortest accepted token: a 2-letter prefix and a 4-digit year.
const MinTokenLen = 6

// Token is one raw filter split into its prefix and date value.
type Token struct {
	Raw    string
	Prefix Prefix
	Value  string
}

// ParseToken trims raw and splits it. Blank input is not a token; callers
// skip it before calling ParseToken (Compile does).
func ParseToken(raw string) (Token, error) {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) < MinTokenLen {
		return Token{}, tokenTooShort(s)
	}
	// Split after the second character, not the second byte.
	_, n1 := utf8.DecodeRuneInString(s)
	_, n2 := utf8.DecodeRuneInString(s[n1:])
	cut := n1 + n2
	return Token{
		Raw:    s,
		Prefix: Prefix(strings.ToLower(s[:cut])),
		Value:  s[cut:],
	}, nil
}

// Expr classifies and parses the value and builds the token's predicate.
func (t Token) Expr() (Expr, error) {
	lo, err := ParseDate(t.Value)
	if err != nil {
		return nil, withToken(err, t.Raw)
	}
	e, err := Build(t.Prefix, lo, Classify(t.Value))
	if err != nil {
		return nil, withToken(err, t.Raw)
	}
	return e, nil
}

// Filter is the conjunction of a set of tokens.
type Filter struct {
	tokens []Token
	expr   Expr
}

// Compile parses tokens left to right and ANDs their predicates.
// Blank tokens are skipped. The first bad token aborts compilation.
func Compile(tokens []string) (*Filter, error) {
	f := &Filter{expr: All{}}
	for _, raw := range tokens {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		tok, err := ParseToken(raw)
		if err != nil {
			return nil, err
		}
		e, err := tok.Expr()
		if err != nil {
			return nil, err
		}
		f.tokens = append(f.tokens, tok)
		f.expr = Conjoin(f.expr, e)
	}
	return f, nil
}

// Expr returns the compiled predicate. It is All when no token constrains.
func (f *Filter) Expr() Expr { return f.expr }

// Tokens returns the non-blank tokens in input order.
func (f *Filter) Tokens() []Token { return f.tokens }

// Empty reports whether the filter accepts everything.
func (f *Filter) Empty() bool { return len(f.tokens) == 0 }

func (f *Filter) Match(t time.Time) bool { return f.expr.Match(t) }

// Select returns the records whose date passes f, in their original order.
func Select[R any](f *Filter, records []R, fieldOf func(R) time.Time) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if f.expr.Match(fieldOf(r)) {
			out = append(out, r)
		}
	}
	return out
}

// Apply compiles tokens and filters records with them. On error nothing is
// returned, never a partially filtered slice.
func Apply[R any](tokens []string, records []R, fieldOf func(R) time.Time) ([]R, error) {
	f, err := Compile(tokens)
	if err != nil {
		return nil, err
	}
	return Select(f, records, fieldOf), nil
}
