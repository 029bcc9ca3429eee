package analysiserrors

import (
	"errors"
	"fmt"
)

// Kind sentinels, match with errors.Is.
var (
	ErrParse           = errors.New("parse error")
	ErrDataUnavailable = errors.New("data unavailable")
	ErrConfig          = errors.New("configuration error")
	ErrIssuesFound     = errors.New("issues found")
)

// ParseError is returned when a manifest is unreadable or does not match its format.
type ParseError struct {
	Path   string
	Format string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}

	if e.Format == "" {
		return fmt.Sprintf("error parsing manifest %s: %v", location, e.Err)
	}

	return fmt.Sprintf("error parsing %s manifest %s: %v", e.Format, location, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// DataUnavailableError is returned when a vulnerability or metadata source cannot be reached.
type DataUnavailableError struct {
	Source  string
	Package string
	Err     error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable for %s: %v", e.Source, e.Package, e.Err)
}

func (e *DataUnavailableError) Unwrap() []error {
	return []error{ErrDataUnavailable, e.Err}
}

// ConfigError is returned for invalid configuration values.
type ConfigError struct {
	Key   string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}

	return fmt.Sprintf("invalid configuration value %v for %s: %v", e.Value, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfig, e.Err}
}

func NewParseError(path string, format string, line int, err error) error {
	return &ParseError{Path: path, Format: format, Line: line, Err: err}
}

func NewDataUnavailable(source string, pkg string, err error) error {
	return &DataUnavailableError{Source: source, Package: pkg, Err: err}
}

func NewConfigError(key string, value any, err error) error {
	return &ConfigError{Key: key, Value: value, Err: err}
}
