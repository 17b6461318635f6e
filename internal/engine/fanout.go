package engine

import (
	"context"
	"sync"
)

// Result pairs one fan-out input with its outcome. Exactly one of Value and
// Err is meaningful, discriminated by Err.
type Result[In, Out any] struct {
	Input In
	Value Out
	Err   error
}

// FanOut runs fn over every item with at most workers goroutines and returns
// one Result per item, in input order. A failed item never aborts the rest;
// callers decide what to do with the failures. Once ctx is cancelled the
// remaining items fail fast with the context error instead of being fetched.
func FanOut[In, Out any](ctx context.Context, workers int, items []In, fn func(context.Context, In) (Out, error)) []Result[In, Out] {
	results := make([]Result[In, Out], len(items))
	if len(items) == 0 {
		return results
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i].Input = items[i]
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Value, results[i].Err = fn(ctx, items[i])
			}
		}()
	}

	for i := range items {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
