package dataset

import (
	"context"
	"runtime"
	"sync"
)

// BuildDatasetParallel generates a dataset using several goroutines.
//
// Sample i draws from its own stream derived from (seed, i), so the result is
// identical for every worker count, though it differs from the single-stream
// BuildDatasetWithOptions output for the same seed. workers <= 0 uses
// GOMAXPROCS. When several samples fail, the error of the lowest index is
// returned.
func BuildDatasetParallel(ctx context.Context, opts Options, seed uint64, workers int) (*Dataset, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Num {
		workers = opts.Num
	}

	ds := newDataset(opts)
	errs := make([]error, opts.Num)
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				img, rect, err := sampleNonSquare(i, opts, sampleSource(seed, i))
				if err != nil {
					errs[i] = err
					continue
				}
				ds.set(i, img, rect)
			}
		}()
	}

	var ctxErr error
feed:
	for i := 0; i < opts.Num; i++ {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}
