package request

import "fmt"

// MalformedParameterError reports a request parameter that could not be
// decoded. It is a client error; the request must be rejected as a whole.
type MalformedParameterError struct {
	Field string
	Err   error
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf("malformed parameter %q: %v", e.Field, e.Err)
}

func (e *MalformedParameterError) Unwrap() error { return e.Err }

func malformed(field string, format string, args ...any) error {
	return &MalformedParameterError{Field: field, Err: fmt.Errorf(format, args...)}
}
