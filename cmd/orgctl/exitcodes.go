package main

import (
	"github.com/go-faster/errors"

	"github.com/agenthands/orgchart/internal/core/errs"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitBackend    = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// classify attaches the exit code for an error returned by an orgchart operation.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errs.Passthrough(err) {
		return withCode(exitValidation, err)
	}
	return withCode(exitBackend, err)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
