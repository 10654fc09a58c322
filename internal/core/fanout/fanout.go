// Package fanout runs batches of independent backend calls with a concurrency limit.
//
// Run isolates failures: every task gets its own Result, index-aligned with the input,
// and one failing task never cancels its siblings. RunStrict is the all-or-nothing
// variant.
package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds a batch when the caller does not configure one. It stays well under
// the inbound request limit so one request cannot occupy the whole backend pool.
const DefaultLimit = 10

type Task[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Executor carries the limit applied to every batch it runs.
type Executor struct {
	Limit int
}

func NewExecutor(limit int) Executor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Executor{Limit: limit}
}

// Run executes tasks with at most limit in flight and returns one Result per task in
// input order. Tasks that have not started when ctx is cancelled report ctx.Err().
func Run[T any](ctx context.Context, limit int, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, task := range tasks {
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			observe(resultCancelled)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				observe(resultCancelled)
				return nil
			}
			results[i].Value, results[i].Err = call(gctx, i, task)
			observeErr(results[i].Err)
			// Never fail the group: a failing task must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RunStrict executes tasks like Run, but the first failure cancels the remaining tasks
// and is returned.
func RunStrict[T any](ctx context.Context, limit int, tasks []Task[T]) ([]T, error) {
	values := make([]T, len(tasks))
	if len(tasks) == 0 {
		return values, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				observe(resultCancelled)
				return err
			}
			v, err := call(gctx, i, task)
			observeErr(err)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// PanicError is the error recorded for a task that panicked.
type PanicError struct {
	Index int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %d panicked: %v", e.Index, e.Value)
}

// call runs one task and turns a panic into that task's error.
func call[T any](ctx context.Context, i int, task Task[T]) (v T, err error) {
	inFlight.Inc()
	defer inFlight.Dec()
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = &PanicError{Index: i, Value: r}
		}
	}()
	return task(ctx)
}

// Values returns the successful values in input order.
func Values[T any](results []Result[T]) []T {
	values, _ := Partition(results)
	return values
}

// Partition splits results into successful values and failures, each in input order.
func Partition[T any](results []Result[T]) ([]T, []error) {
	var (
		values []T
		errs   []error
	)
	for _, r := range results {
		if r.OK() {
			values = append(values, r.Value)
		} else {
			errs = append(errs, r.Err)
		}
	}
	return values, errs
}
