// Package testutil holds helpers shared by store and service tests.
package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"deedgate/internal/sentinel"
)

// ConcurrentResult counts how n racing calls ended.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32 // sentinel.ErrAlreadyUsed
	NotFounds int32 // sentinel.ErrNotFound
	Errors    int32 // anything else
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent releases n goroutines at once against fn and tallies the outcomes.
// No call starts before every goroutine is running.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		counts [4]atomic.Int32
		start  = make(chan struct{})
		wg     sync.WaitGroup
	)
	for i := range n {
		wg.Go(func() {
			<-start
			counts[classify(fn(i))].Add(1)
		})
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: counts[0].Load(),
		Conflicts: counts[1].Load(),
		NotFounds: counts[2].Load(),
		Errors:    counts[3].Load(),
	}
}

func classify(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return 1
	case errors.Is(err, sentinel.ErrNotFound):
		return 2
	default:
		return 3
	}
}
