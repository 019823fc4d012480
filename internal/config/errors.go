package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfigNotFound is returned when no config file exists in any search location.
var ErrConfigNotFound = errors.New("config could not be found")

// InvalidError is returned when the configuration is malformed or fails validation.
type InvalidError struct {
	Problems []string
}

func (e *InvalidError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *InvalidError) InvalidInput() bool {
	return true
}

// ParseError is returned when a config file is not valid YAML or JSON.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse config %s: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func (e *ParseError) InvalidInput() bool {
	return true
}
