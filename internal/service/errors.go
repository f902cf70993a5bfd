package service

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to the HTTP layer.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
)

// ValidationError carries a client-safe message; it matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return ErrValidation.Error() + ": " + e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// invalid builds a ValidationError.
func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
