package secrets

import "sort"

// Failure is a file that could not be processed.
type Failure struct {
	Path   string
	Reason string
	Err    error
}

// Skip is a path the walk found but deliberately left alone.
type Skip struct {
	Path   string
	Reason string
}

// Summary is the aggregate result of a directory pass. Slices are sorted by
// path, so two runs over the same tree produce equal summaries regardless of
// completion order.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int

	Processed []string
	Failures  []Failure
	Skips     []Skip
}

// HasFailures reports whether any file failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Aggregator folds outcomes into a Summary. It is owned by a single
// goroutine; workers hand it outcomes over a channel.
type Aggregator struct {
	processed []string
	failures  []Failure
	skips     []Skip
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Fold records one outcome.
func (a *Aggregator) Fold(o Outcome) {
	if o.Succeeded() {
		a.processed = append(a.processed, o.Source)
		return
	}
	a.failures = append(a.failures, Failure{Path: o.Source, Reason: o.Err.Error(), Err: o.Err})
}

// Skip records a path that was not processed.
func (a *Aggregator) Skip(path, reason string) {
	a.skips = append(a.skips, Skip{Path: path, Reason: reason})
}

// Summary returns the totals so far.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		Succeeded: len(a.processed),
		Failed:    len(a.failures),
		Skipped:   len(a.skips),
		Processed: append([]string(nil), a.processed...),
		Failures:  append([]Failure(nil), a.failures...),
		Skips:     append([]Skip(nil), a.skips...),
	}
	s.Total = s.Succeeded + s.Failed

	sort.Strings(s.Processed)
	sort.Slice(s.Failures, func(i, j int) bool { return s.Failures[i].Path < s.Failures[j].Path })
	sort.Slice(s.Skips, func(i, j int) bool { return s.Skips[i].Path < s.Skips[j].Path })

	return s
}
