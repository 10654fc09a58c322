package fanout

import (
	"context"

	"golang.org/x/sync/semaphore"
)

type budgetKey struct{}

// WithBudget bounds the backend calls made under ctx, across every nested batch, to
// limit in flight. A ctx that already carries a budget keeps it.
func WithBudget(ctx context.Context, limit int) context.Context {
	if _, ok := ctx.Value(budgetKey{}).(*semaphore.Weighted); ok {
		return ctx
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return context.WithValue(ctx, budgetKey{}, semaphore.NewWeighted(int64(limit)))
}

// Acquire takes one slot of ctx's budget. The returned func releases it. Without a
// budget Acquire returns immediately.
//
// Only leaf backend calls acquire: a task that holds a slot while waiting on its own
// nested batch would deadlock once the budget is exhausted.
func Acquire(ctx context.Context) (func(), error) {
	sem, ok := ctx.Value(budgetKey{}).(*semaphore.Weighted)
	if !ok {
		return func() {}, nil
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// Bind attaches the executor's limit to ctx as the request budget.
func (e Executor) Bind(ctx context.Context) context.Context {
	return WithBudget(ctx, e.Limit)
}
