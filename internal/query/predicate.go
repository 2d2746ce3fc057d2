package query

import "strings"

// Predicate is a composable filter expression. The implementations are
// Contains, And and Or.
type Predicate interface {
	predicate()
}

// Contains matches rows whose column, cast to text, contains Value
// case-insensitively. Value is the raw user atom; backends must treat it as a
// literal (see LikePattern).
type Contains struct {
	Column Column
	Cast   string
	Value  string
}

// And matches when every element matches.
type And []Predicate

// Or matches when any element matches.
type Or []Predicate

func (Contains) predicate() {}
func (And) predicate()      {}
func (Or) predicate()       {}

// AllOf combines ps with AND, skipping nil entries. It returns nil when
// nothing remains so callers can tell "no filter" from "match everything".
func AllOf(ps ...Predicate) Predicate {
	out := compact(ps)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return And(out)
}

// AnyOf combines ps with OR, skipping nil entries; nil when nothing remains.
func AnyOf(ps ...Predicate) Predicate {
	out := compact(ps)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return Or(out)
}

func compact(ps []Predicate) []Predicate {
	out := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character
// itself with a backslash.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// LikePattern returns the substring pattern for s: %s% with s escaped.
func LikePattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}
