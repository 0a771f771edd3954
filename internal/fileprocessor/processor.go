// Package fileprocessor expands file arguments and runs an operation on each file
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrNoFiles = errors.New("no files matched")

// GetFilesToProcess returns the list of files for the given arguments. Arguments
// containing glob characters are expanded, others are used as given.
func GetFilesToProcess(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(args, " "))
	}
	return files, nil
}

// ProcessFiles calls process for every file. It continues after failures and
// returns all errors joined, but stops when the context is canceled.
func ProcessFiles(ctx context.Context, files []string, process func(file string) error) error {
	var errs []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("processing canceled: %w", err)
		}
		if err := process(file); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
	}
	return errors.Join(errs...)
}
