package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/gravsim/internal/nbody"
)

// Ensemble runs one independent simulation per seed. Each run gets its own
// Simulation and its own metrics from the factory, so nothing is shared
// between goroutines.
type Ensemble struct {
	sampling nbody.InitConfig
	seeds    []int64
	metrics  func() []Metric
	workers  int
}

func NewEnsemble(sampling nbody.InitConfig, seeds []int64, metrics func() []Metric) *Ensemble {
	return &Ensemble{sampling: sampling, seeds: seeds, metrics: metrics, workers: runtime.NumCPU()}
}

// SeedRange returns n consecutive seeds starting at start.
func SeedRange(start int64, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = start + int64(i)
	}
	return seeds
}

// SetWorkers caps the number of concurrent runs.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run returns results in seed order. The first error, if any, is returned
// and the results are discarded.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.seeds))
	errs := make([]error, len(e.seeds))
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := range e.seeds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s, err := nbody.FromConfig(e.sampling, e.seeds[idx])
			if err != nil {
				errs[idx] = err
				return
			}

			runner := NewRunner()
			if e.metrics != nil {
				for _, m := range e.metrics() {
					runner.AddMetric(m)
				}
			}

			results[idx], errs[idx] = runner.Run(ctx, s, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
