package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-analytics/internal/common"
)

// Supported WEATHER_PROVIDER values.
const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
	ProviderWeatherAPI  = "weatherapi"
)

// DefaultCities is used when WEATHER_CITIES is unset.
var DefaultCities = []string{
	"Moscow",
	"Saint Petersburg",
	"Novosibirsk",
	"Yekaterinburg",
	"Kazan",
	"Nizhny Novgorod",
	"Chelyabinsk",
	"Samara",
	"Omsk",
	"Rostov-on-Don",
	"Ufa",
	"Krasnoyarsk",
	"Vladivostok",
	"Sochi",
	"Murmansk",
}

type AppConfig struct {
	Provider          string `validate:"required,oneof=openweather openmeteo weatherapi"`
	OpenWeatherAPIKey string `validate:"required_if=Provider openweather"`
	WeatherAPIKey     string `validate:"required_if=Provider weatherapi"`

	// Lang is passed to providers for localized descriptions and geocoding.
	Lang string `validate:"required"`

	// Cities to collect on every run.
	Cities []string `validate:"required,min=1,dive,required"`

	// FetchInterval controls how often the scheduler collects all cities.
	FetchInterval time.Duration `validate:"gte=1m"`
	// FetchConcurrency bounds parallel provider calls within one collection.
	FetchConcurrency int           `validate:"min=1,max=32"`
	HTTPTimeout      time.Duration `validate:"gt=0"`

	// In-memory store retention.
	StoreMaxHistory int           // max number of batches (0 = unlimited)
	StoreMaxAge     time.Duration // max age of batches (0 = unlimited)

	Port string `validate:"required,numeric"`

	// TelegramToken enables the chat bot when set.
	TelegramToken string

	// OutputDir receives CSV and chart files from the report command.
	OutputDir string `validate:"required"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Provider = getenvDefault("WEATHER_PROVIDER", ProviderOpenMeteo)
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.Lang = getenvDefault("WEATHER_LANG", "ru")

	cfg.Cities = DefaultCities
	if v := os.Getenv("WEATHER_CITIES"); v != "" {
		cfg.Cities = common.SplitList(v)
	}

	var err error

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	cfg.FetchConcurrency = getenvInt("FETCH_CONCURRENCY", 4)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.OutputDir = getenvDefault("OUTPUT_DIR", ".")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
