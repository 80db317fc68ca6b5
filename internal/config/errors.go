package config

import (
	"errors"
	"fmt"
)

var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set; export it or add it to .env")

var (
	errMustBePositive = errors.New("must be positive")
	errNegative       = errors.New("must not be negative")
)

// FieldError is an invalid value for one setting.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
