package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-analytics/internal/weather"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func batchAt(id string, at time.Time) weather.Batch {
	return weather.Batch{ID: id, CollectedAt: at}
}

func TestLatestEmpty(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if _, err := s.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMaxHistory(t *testing.T) {
	s := NewMemoryStore(2, 0)
	s.SaveBatch(batchAt("a", base))
	s.SaveBatch(batchAt("b", base.Add(time.Minute)))
	s.SaveBatch(batchAt("c", base.Add(2*time.Minute)))

	if s.Len() != 2 {
		t.Fatalf("expected 2 batches, got %d", s.Len())
	}
	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "c" {
		t.Errorf("expected latest c, got %s", latest.ID)
	}
	if _, err := s.Range(base, base); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest batch should have been evicted, got %v", err)
	}
}

func TestMaxAgeKeepsNewest(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return base.Add(5 * time.Hour) }

	s.SaveBatch(batchAt("old", base))
	if s.Len() != 1 {
		t.Fatalf("newest batch must survive age retention, got %d", s.Len())
	}

	s.SaveBatch(batchAt("older-than-cutoff", base.Add(time.Hour)))
	s.SaveBatch(batchAt("fresh", base.Add(4*time.Hour+30*time.Minute)))
	if s.Len() != 1 {
		t.Fatalf("expected stale batches to be dropped, got %d", s.Len())
	}
	latest, _ := s.Latest()
	if latest.ID != "fresh" {
		t.Errorf("expected fresh, got %s", latest.ID)
	}
}

func TestRangeInclusive(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveBatch(batchAt("a", base))
	s.SaveBatch(batchAt("b", base.Add(time.Hour)))
	s.SaveBatch(batchAt("c", base.Add(2*time.Hour)))

	got, err := s.Range(base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected range result %+v", got)
	}

	if _, err := s.Range(base.Add(3*time.Hour), base.Add(4*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveBatchOutOfOrder(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveBatch(batchAt("b", base.Add(2*time.Minute)))
	s.SaveBatch(batchAt("c", base.Add(3*time.Minute)))
	// A slower collection started earlier finishes last.
	s.SaveBatch(batchAt("a", base))

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "c" {
		t.Errorf("expected latest c, got %s", latest.ID)
	}

	got, err := s.Range(base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids string
	for _, b := range got {
		ids += b.ID
	}
	if ids != "abc" {
		t.Errorf("expected batches in collection order abc, got %s", ids)
	}
}

func TestSaveBatchOutOfOrderRespectsMaxHistory(t *testing.T) {
	s := NewMemoryStore(2, 0)
	s.SaveBatch(batchAt("b", base.Add(time.Minute)))
	s.SaveBatch(batchAt("c", base.Add(2*time.Minute)))
	s.SaveBatch(batchAt("a", base))

	if s.Len() != 2 {
		t.Fatalf("expected 2 batches, got %d", s.Len())
	}
	if _, err := s.Range(base, base); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest batch should be evicted, got %v", err)
	}
	if latest, _ := s.Latest(); latest.ID != "c" {
		t.Errorf("expected latest c, got %s", latest.ID)
	}
}
