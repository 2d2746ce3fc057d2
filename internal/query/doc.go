// Package query holds the data-source independent pieces of a table query:
// physical column references, search predicates, sort clauses and the
// database dialect that decides how text casts are spelled.
//
// Predicates form a small closed tree (Contains, And, Or). Every storage
// backend translates the same tree into its native form, so a request is
// built once and can run against SQL or the in-memory store unchanged.
package query
