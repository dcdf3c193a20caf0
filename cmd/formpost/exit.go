package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/goliatone/go-formpost/pkg/prompt"
	"github.com/goliatone/go-formpost/pkg/submit"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitServer      = 2
	exitTransport   = 3
	exitSave        = 4
	exitInterrupted = 130
)

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var (
		serverErr    *submit.ServerError
		transportErr *submit.TransportError
		saveErr      *submit.SaveError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, prompt.ErrAborted), errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.As(err, &serverErr):
		return exitServer
	case errors.As(err, &transportErr):
		return exitTransport
	case errors.As(err, &saveErr):
		return exitSave
	default:
		return exitFailure
	}
}

// report prints err unless the user was already alerted, and returns the
// exit code.
func (a *app) report(err error) int {
	code := exitCode(err)
	if err == nil || code == exitInterrupted {
		return code
	}
	if a.alerted {
		return code
	}

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		fmt.Fprintln(a.stderr, "formpost: the form is not complete:")
		for _, problem := range validation.Problems {
			fmt.Fprintf(a.stderr, "  %s\n", problem)
		}
		return code
	}
	fmt.Fprintf(a.stderr, "formpost: %v\n", err)
	return code
}
