package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/viant/geofeat/dataset"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/query"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitDatabase = 2
	exitInput    = 4
	exitNotFound = 6
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, dataset.ErrNotFound):
		return exitNotFound
	case errors.Is(err, query.ErrInvalid), errors.Is(err, errInput), feature.IsMappingError(err):
		return exitInput
	case feature.IsStoreError(err):
		return exitDatabase
	}
	return exitError
}

func printError(w io.Writer, err error) {
	_, _ = red.Fprintf(w, "error: %v\n", err)
}

func printWarning(w io.Writer, format string, args ...any) {
	_, _ = yellow.Fprintf(w, "warning: "+format+"\n", args...)
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = green.Fprintf(w, format+"\n", args...)
}

var errInput = errors.New("invalid input")

func inputErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errInput}, args...)...)
}
