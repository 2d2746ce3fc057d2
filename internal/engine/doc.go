// Package engine assembles data-grid responses.
//
// For each request it obtains the raw records of a table, counts them,
// applies the requested ordering and search, counts again, bounds the result
// with the configured paginator and serializes the page:
//
//	params -> resolver -> order + search -> paginator -> {draw, recordsTotal, recordsFiltered, data}
package engine
