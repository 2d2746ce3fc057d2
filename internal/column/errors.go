package column

import "fmt"

// UnresolvableColumnError reports a column reference that maps to no
// physical column. It is never fatal to a request: the sort or search term
// that needed the column is dropped.
type UnresolvableColumnError struct {
	Ref    string
	Reason string
	Err    error
}

func (e *UnresolvableColumnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("column %q: %s: %v", e.Ref, e.Reason, e.Err)
	}
	return fmt.Sprintf("column %q: %s", e.Ref, e.Reason)
}

func (e *UnresolvableColumnError) Unwrap() error { return e.Err }

func unresolvable(ref, reason string, err error) error {
	return &UnresolvableColumnError{Ref: ref, Reason: reason, Err: err}
}
