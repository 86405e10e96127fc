package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/weather-analytics/internal/config"
	"github.com/i474232898/weather-analytics/internal/weather"
)

// FromConfig builds the provider selected by cfg.Provider.
func FromConfig(cfg *config.AppConfig, client *http.Client) (weather.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenWeather:
		return NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey, cfg.Lang), nil
	case config.ProviderOpenMeteo:
		return NewOpenMeteoProvider(client, cfg.Lang), nil
	case config.ProviderWeatherAPI:
		return NewWeatherAPIProvider(client, cfg.WeatherAPIKey, cfg.Lang), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}
