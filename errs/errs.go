// Package errs defines the fatal error kinds surfaced to the orchestrator:
// InvalidParameterError, IOError, and FormatError. EmptyResult and
// UnmappedReference are not errors in this codebase; they show up as a nil
// assigned bin and an int skip-counter, respectively.
package errs

import "github.com/pkg/errors"

// InvalidParameterError reports a bad (k, m, max_ambiguous) configuration.
type InvalidParameterError struct {
	Msg string
}

func (e *InvalidParameterError) Error() string { return "invalid parameter: " + e.Msg }

// NewInvalidParameter constructs an InvalidParameterError.
func NewInvalidParameter(msg string) error {
	return &InvalidParameterError{Msg: msg}
}

// IOError reports a missing, unreadable, or undecompressible file.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return errors.Wrapf(e.Cause, "io error: %s", e.Path).Error()
}

func (e *IOError) Unwrap() error { return e.Cause }

// WrapIO wraps cause as an IOError naming path. Returns nil if cause is nil.
func WrapIO(cause error, path string) error {
	if cause == nil {
		return nil
	}
	return &IOError{Path: path, Cause: cause}
}

// FormatError reports malformed FASTA/FASTQ, JSON, or database records.
type FormatError struct {
	Context string
	Cause   error
}

func (e *FormatError) Error() string {
	if e.Cause == nil {
		return "format error: " + e.Context
	}
	return errors.Wrapf(e.Cause, "format error: %s", e.Context).Error()
}

func (e *FormatError) Unwrap() error { return e.Cause }

// WrapFormat wraps cause as a FormatError naming the offending context.
func WrapFormat(cause error, context string) error {
	return &FormatError{Context: context, Cause: cause}
}
