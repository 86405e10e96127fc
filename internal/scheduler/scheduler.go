package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-analytics/internal/weather"
)

// Collector is the part of weather.Service the scheduler drives.
type Collector interface {
	Collect(ctx context.Context, cities []string) (weather.Batch, error)
}

// Scheduler periodically collects weather data for the configured cities.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	collector  Collector
	cities     []string
	interval   time.Duration
	runTimeout time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, collector Collector) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		collector:  collector,
		cities:     cities,
		interval:   interval,
		runTimeout: 2 * time.Minute,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Println("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running weather collection job")

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	batch, err := s.collector.Collect(ctx, s.cities)
	if err != nil {
		log.Printf("scheduler: collection failed: %v", err)
		return
	}
	log.Printf("scheduler: completed weather collection job: batch %s, %d records, %d failures",
		batch.ID, len(batch.Records), len(batch.Failures))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
