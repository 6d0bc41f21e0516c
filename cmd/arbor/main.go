// Package main provides the arbor CLI, a thin consumer of the Store
// façade in pkg/arbor.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stemhq/arbor/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to a CLI exit code: user errors (bad input,
// missing records) exit 1, system errors (storage failures) exit 2.
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrStorageUnavailable),
		errors.Is(err, types.ErrIntegrity),
		errors.Is(err, types.ErrStoreClosed):
		return exitSysError
	default:
		return exitUserError
	}
}
