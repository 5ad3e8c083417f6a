package config

import (
	"errors"
	"fmt"
)

// ErrUnknownField matches every UnknownFieldError.
var ErrUnknownField = errors.New("unknown config field")

// UnknownFieldError reports a mutation of a field outside the allow-list.
// The config is left unchanged.
type UnknownFieldError struct {
	Op    string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("attempt to %s unknown field: %s", e.Op, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// Source locates a value in a configuration file.
type Source struct {
	File   string
	Line   int
	Column int
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }
