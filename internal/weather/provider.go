package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmptyInput is returned when an aggregation or rendering is attempted on zero records.
	ErrEmptyInput = errors.New("empty input: no weather records")
	// ErrUnknownField is returned for a field name that is not a numeric record field.
	ErrUnknownField = errors.New("unknown weather field")
	// ErrNoRecords is returned when a collection run produced no records at all.
	ErrNoRecords = errors.New("no weather records collected")
	// ErrForecastUnsupported is returned when the configured provider has no forecast endpoint.
	ErrForecastUnsupported = errors.New("provider does not support forecasts")
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, Open-Meteo, WeatherAPI).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (WeatherRecord, error)
}

// ForecastProvider is implemented by providers that can return a multi-day forecast.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, city string) (Forecast, error)
}

// Store is the contract the in-memory batch store must satisfy.
type Store interface {
	SaveBatch(batch Batch)
	Latest() (Batch, error)
	Range(from, to time.Time) ([]Batch, error)
}
