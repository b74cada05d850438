// Package parallel provides chunked goroutine fan-out for the hot loops in
// this module: design-matrix assembly, neighbor searches, and per-sample
// interval computation.
package parallel

import (
	"runtime"
	"sort"
	"sync"
)

// Parallelize splits [0, items) into one contiguous chunk per available CPU
// core and runs fn(start, end) on each chunk concurrently, returning once
// every chunk has finished.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so the last chunk is never empty-by-construction.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when items is at
// most threshold, and falls back to Parallelize above it. Small inputs are
// not worth the goroutine overhead.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// TryParallelize is ParallelizeWithThreshold for chunk functions that can
// fail. Every chunk runs to completion; if any chunks return a non-nil
// error, the error of the chunk with the lowest start index is returned,
// so the reported failure is deterministic regardless of scheduling.
func TryParallelize(items, threshold int, fn func(start, end int) error) error {
	if items <= threshold {
		return fn(0, items)
	}

	var (
		mu     sync.Mutex
		starts []int
		errs   = make(map[int]error)
	)
	Parallelize(items, func(start, end int) {
		if err := fn(start, end); err != nil {
			mu.Lock()
			starts = append(starts, start)
			errs[start] = err
			mu.Unlock()
		}
	})
	if len(starts) == 0 {
		return nil
	}
	sort.Ints(starts)
	return errs[starts[0]]
}
