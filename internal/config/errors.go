package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownFormat indicates a file extension with no decoder.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrInvalidValue indicates a setting outside its allowed values.
	ErrInvalidValue = errors.New("invalid config value")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line and Column locate the failure when the decoder reports it.
	Line   int
	Column int
	// Message describes the failure.
	Message string
	// Err is the decoder error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a setting that failed validation.
type ValidationError struct {
	// Path is the dotted setting path, such as "pool.workers".
	Path string
	// Value is the rejected value.
	Value any
	// Message describes the constraint.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Path, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}
