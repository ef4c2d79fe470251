package secrets

import (
	"errors"
	"testing"
)

func TestAggregator_SummarySortedAndCounted(t *testing.T) {
	agg := NewAggregator()
	boom := errors.New("boom")

	agg.Fold(Outcome{Job: Job{Source: "/r/c"}})
	agg.Fold(Outcome{Job: Job{Source: "/r/b"}, Err: boom})
	agg.Fold(Outcome{Job: Job{Source: "/r/a"}})
	agg.Skip("/r/z", "excluded")
	agg.Skip("/r/y", "temporary file")

	s := agg.Summary()

	if s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 || s.Skipped != 2 {
		t.Fatalf("Unexpected counts: %+v", s)
	}
	if s.Processed[0] != "/r/a" || s.Processed[1] != "/r/c" {
		t.Errorf("Expected processed paths sorted, got %v", s.Processed)
	}
	if s.Skips[0].Path != "/r/y" {
		t.Errorf("Expected skips sorted, got %v", s.Skips)
	}
	if s.Failures[0].Path != "/r/b" || s.Failures[0].Reason != "boom" || !errors.Is(s.Failures[0].Err, boom) {
		t.Errorf("Unexpected failure: %+v", s.Failures[0])
	}
	if !s.HasFailures() {
		t.Error("Expected HasFailures to be true")
	}
}

func TestAggregator_Empty(t *testing.T) {
	s := NewAggregator().Summary()
	if s.Total != 0 || s.HasFailures() {
		t.Errorf("Expected an empty summary, got %+v", s)
	}
}
