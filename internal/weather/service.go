package weather

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service orchestrates per-city fetching from a provider and persisting batches.
type Service struct {
	store       Store
	provider    Provider
	concurrency int
}

// NewService creates a new Service. A concurrency <= 0 fetches one city at a time.
func NewService(store Store, provider Provider, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		store:       store,
		provider:    provider,
		concurrency: concurrency,
	}
}

// ProviderName reports the configured provider, or "" when none is set.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Collect fetches every city with bounded concurrency, keeps the successful
// records in the order of cities, and stores the resulting batch. Cities that
// fail are listed in Batch.Failures; only a run without any record is an error.
func (s *Service) Collect(ctx context.Context, cities []string) (Batch, error) {
	if s.provider == nil {
		log.Printf("ERROR: no weather provider configured")
		return Batch{}, fmt.Errorf("no weather provider configured")
	}

	log.Printf("DEBUG: Collect called for %d cities with provider %s", len(cities), s.provider.Name())

	// Both slices are indexed by city so the batch keeps the input order.
	var (
		results = make([]*WeatherRecord, len(cities))
		failed  = make([]*FetchFailure, len(cities))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, city := range cities {
		i, city := i, strings.TrimSpace(city)
		g.Go(func() error {
			r, err := s.provider.Fetch(gctx, city)
			if err != nil {
				// Log and continue; partial batches are still useful.
				log.Printf("provider %s fetch failed for %s: %v", s.provider.Name(), city, err)
				failed[i] = &FetchFailure{City: city, Err: err.Error()}
				return nil
			}
			results[i] = &r
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	records := make([]WeatherRecord, 0, len(cities))
	failures := make([]FetchFailure, 0)
	for i := range cities {
		if r := results[i]; r != nil {
			records = append(records, *r)
		}
		if f := failed[i]; f != nil {
			failures = append(failures, *f)
		}
	}

	batch := Batch{
		ID:          uuid.NewString(),
		CollectedAt: time.Now().UTC(),
		Provider:    s.provider.Name(),
		Records:     records,
		Failures:    failures,
	}

	if len(records) == 0 {
		// Do not overwrite the last good batch.
		log.Printf("no successful provider readings for %d cities; keeping last good batch if any", len(cities))
		return batch, ErrNoRecords
	}

	if s.store != nil {
		s.store.SaveBatch(batch)
	}
	return batch, nil
}

// Forecast fetches a multi-day forecast when the provider supports it.
func (s *Service) Forecast(ctx context.Context, city string) (Forecast, error) {
	fp, ok := s.provider.(ForecastProvider)
	if !ok {
		return Forecast{}, ErrForecastUnsupported
	}

	log.Printf("DEBUG: Forecast called for %s", city)

	fc, err := fp.FetchForecast(ctx, strings.TrimSpace(city))
	if err != nil {
		return Forecast{}, fmt.Errorf("provider %s forecast for %s: %w", s.provider.Name(), city, err)
	}
	if len(fc.Points) == 0 {
		return Forecast{}, fmt.Errorf("forecast for %s: %w", city, ErrEmptyInput)
	}
	return fc, nil
}

// Latest delegates to the underlying store.
func (s *Service) Latest() (Batch, error) {
	return s.store.Latest()
}

// Range delegates to the underlying store.
func (s *Service) Range(from, to time.Time) ([]Batch, error) {
	return s.store.Range(from, to)
}
