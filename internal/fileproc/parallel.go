// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file I/O, regex work and parser subprocesses.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// Result pairs a file with the value produced for it.
type Result[T any] struct {
	Path  string
	Value T
}

// ForEachFile processes files in parallel and returns the successful results
// in input order. Failures, including files skipped after ctx is cancelled,
// are collected in the returned errors, which is nil when every file
// succeeded. If maxWorkers is <= 0, defaults to 2x NumCPU.
func ForEachFile[T any](
	ctx context.Context,
	files []string,
	maxWorkers int,
	fn func(context.Context, string) (T, error),
	onProgress ProgressFunc,
) ([]Result[T], *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	slots := make([]*Result[T], len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}

			// Check for cancellation before processing
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return err
			}

			value, err := fn(ctx, path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}

			// Each goroutine owns its slot.
			slots[i] = &Result[T]{Path: path, Value: value}
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	results := make([]Result[T], 0, len(files))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
