package server

import (
	"errors"
	"fmt"
	"net/http"

	"goDT/internal/engine"
	"goDT/internal/request"
)

// AppError is an error with the HTTP status and client message it maps to.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// toAppError maps engine errors to transport errors. Internal details never
// reach the client.
func toAppError(err error) *AppError {
	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	var mpe *request.MalformedParameterError
	switch {
	case errors.As(err, &mpe):
		return &AppError{Code: http.StatusBadRequest, Message: mpe.Error(), Err: err}
	case errors.Is(err, engine.ErrUnknownTable):
		return &AppError{Code: http.StatusNotFound, Message: "table not found", Err: err}
	}
	return &AppError{Code: http.StatusInternalServerError, Message: "internal server error", Err: err}
}
