package server

import (
	"context"
	"runtime"
	"sync"

	"github.com/ironsheep/rectangles-mcp/internal/dataset"
)

// DatasetCache provides thread-safe caching of generated datasets.
//
// Generation is deterministic, so a dataset is fully described by its options,
// seed and generation mode. Repeated tool calls that inspect the same dataset
// (render one sample, then detect it, then tile a montage) reuse one build.
//
// # Memory Management
//
// Cached datasets remain in memory until Clear() is called. Each entry holds
// Num*Width*Height float64 cells.
type DatasetCache struct {
	mu       sync.RWMutex
	datasets map[datasetKey]*dataset.Dataset
}

type datasetKey struct {
	opts     dataset.Options
	seed     uint64
	parallel bool
}

// NewDatasetCache creates an empty cache.
func NewDatasetCache() *DatasetCache {
	return &DatasetCache{
		datasets: make(map[datasetKey]*dataset.Dataset),
	}
}

// Get returns the dataset for opts and seed, generating it on first use.
//
// Sequential datasets draw every sample from one stream seeded with seed;
// parallel datasets give each sample its own stream and are generated on
// all CPUs. The two modes produce different datasets for the same seed.
//
// Datasets are shared between callers and must not be modified.
func (c *DatasetCache) Get(ctx context.Context, opts dataset.Options, seed uint64, parallel bool) (*dataset.Dataset, error) {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = dataset.DefaultMaxAttempts
	}
	key := datasetKey{opts: opts, seed: seed, parallel: parallel}

	c.mu.RLock()
	if ds, ok := c.datasets[key]; ok {
		c.mu.RUnlock()
		return ds, nil
	}
	c.mu.RUnlock()

	var (
		ds  *dataset.Dataset
		err error
	)
	if parallel {
		ds, err = dataset.BuildDatasetParallel(ctx, opts, seed, runtime.NumCPU())
	} else {
		ds, err = dataset.BuildDatasetWithOptions(opts, dataset.NewSource(seed))
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Another caller may have built the same dataset concurrently
	if existing, ok := c.datasets[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.datasets[key] = ds
	c.mu.Unlock()

	return ds, nil
}

// Clear removes all cached datasets.
func (c *DatasetCache) Clear() {
	c.mu.Lock()
	c.datasets = make(map[datasetKey]*dataset.Dataset)
	c.mu.Unlock()
}

// Len returns the number of cached datasets.
func (c *DatasetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.datasets)
}
