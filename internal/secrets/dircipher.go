package secrets

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	logger "github.com/PolarWolf314/xpm/internal/logging"
)

// DirectoryCipher applies a FileCipher to every eligible file under a root.
type DirectoryCipher struct {
	Files *FileCipher

	// Workers bounds the parallel pool; 0 means runtime.NumCPU().
	Workers int

	// Sequential processes files one at a time in discovery order.
	Sequential bool

	Exclude      []string
	ExcludeGlobs []string

	Logger logger.Logger

	// Progress, when set, is called from the collecting goroutine after each
	// outcome is folded.
	Progress func(Outcome)
}

// Run discovers, dispatches, executes and collects. Per-file failures end up
// in the Summary; only an unreadable root is returned as an error. When ctx is
// cancelled no new jobs are dispatched, in-flight jobs finish, and the partial
// Summary is returned together with the context error.
func (d *DirectoryCipher) Run(ctx context.Context, root string, mode Mode) (*Summary, error) {
	entries, err := Discover(root, DiscoverOptions{
		Mode:         mode,
		Layout:       d.Files.Layout,
		Exclude:      d.Exclude,
		ExcludeGlobs: d.ExcludeGlobs,
	})
	if err != nil {
		return nil, err
	}

	agg := NewAggregator()
	var paths []string
	for _, e := range entries {
		switch e.Kind {
		case EntryFile:
			paths = append(paths, e.Path)
		case EntrySkipped:
			if e.Err != nil {
				agg.Fold(Outcome{Job: Job{Source: e.Path, Destination: e.Path, Mode: mode}, Err: e.Err})
				continue
			}
			d.Logger.Debugf("Skipping %s (%s)", e.Path, e.Reason)
			agg.Skip(e.Path, e.Reason)
		}
	}
	d.Logger.Infof("Discovered %d files to %s under %s", len(paths), mode, root)

	workers := d.workerCount(len(paths))
	if d.Sequential || workers <= 1 {
		d.runSequential(ctx, paths, mode, agg)
	} else {
		d.runParallel(ctx, paths, mode, workers, agg)
	}

	summary := agg.Summary()
	if err := ctx.Err(); err != nil {
		return &summary, fmt.Errorf("%s of %s interrupted: %w", mode, root, err)
	}
	return &summary, nil
}

func (d *DirectoryCipher) workerCount(jobs int) int {
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, jobs))
}

func (d *DirectoryCipher) runSequential(ctx context.Context, paths []string, mode Mode, agg *Aggregator) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		d.collect(agg, d.Files.Process(path, mode))
	}
}

func (d *DirectoryCipher) runParallel(ctx context.Context, paths []string, mode Mode, workers int, agg *Aggregator) {
	jobs := make(chan string)
	results := make(chan Outcome, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- d.Files.Process(path, mode)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		d.collect(agg, outcome)
	}
}

func (d *DirectoryCipher) collect(agg *Aggregator, outcome Outcome) {
	if outcome.Succeeded() {
		d.Logger.Debugf("%s %s -> %s", outcome.Mode, outcome.Source, outcome.Destination)
	} else {
		d.Logger.Warnf("Failed to %s %s: %v", outcome.Mode, outcome.Source, outcome.Err)
	}
	agg.Fold(outcome)
	if d.Progress != nil {
		d.Progress(outcome)
	}
}
