package config

import (
	"testing"
	"time"
)

func validConfig() AppConfig {
	return AppConfig{
		Provider:         ProviderOpenMeteo,
		Lang:             "ru",
		Cities:           []string{"Moscow"},
		FetchInterval:    15 * time.Minute,
		FetchConcurrency: 4,
		HTTPTimeout:      10 * time.Second,
		Port:             "8080",
		OutputDir:        ".",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"unknown provider", func(c *AppConfig) { c.Provider = "yandex" }, true},
		{"openweather without key", func(c *AppConfig) { c.Provider = ProviderOpenWeather }, true},
		{"openweather with key", func(c *AppConfig) {
			c.Provider = ProviderOpenWeather
			c.OpenWeatherAPIKey = "k"
		}, false},
		{"weatherapi without key", func(c *AppConfig) { c.Provider = ProviderWeatherAPI }, true},
		{"no cities", func(c *AppConfig) { c.Cities = nil }, true},
		{"blank city", func(c *AppConfig) { c.Cities = []string{"Moscow", ""} }, true},
		{"interval too short", func(c *AppConfig) { c.FetchInterval = 30 * time.Second }, true},
		{"zero concurrency", func(c *AppConfig) { c.FetchConcurrency = 0 }, true},
		{"too much concurrency", func(c *AppConfig) { c.FetchConcurrency = 64 }, true},
		{"non numeric port", func(c *AppConfig) { c.Port = "http" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", ProviderWeatherAPI)
	t.Setenv("WEATHERAPI_API_KEY", "secret")
	t.Setenv("WEATHER_CITIES", " Kazan, Sochi ,,Omsk")
	t.Setenv("FETCH_INTERVAL", "30m")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("WEATHER_LANG", "en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderWeatherAPI || cfg.WeatherAPIKey != "secret" {
		t.Errorf("unexpected provider settings %+v", cfg)
	}
	if len(cfg.Cities) != 3 || cfg.Cities[1] != "Sochi" {
		t.Errorf("unexpected cities %v", cfg.Cities)
	}
	if cfg.FetchInterval != 30*time.Minute || cfg.FetchConcurrency != 8 {
		t.Errorf("unexpected fetch settings %v/%d", cfg.FetchInterval, cfg.FetchConcurrency)
	}
	if cfg.StoreMaxHistory != 96 || cfg.StoreMaxAge != 24*time.Hour {
		t.Errorf("unexpected store defaults %d/%v", cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("FETCH_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid FETCH_INTERVAL")
	}
}
