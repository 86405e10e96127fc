package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements weather.Provider and weather.ForecastProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	lang    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, lang string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		lang:    lang,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) request(endpoint, city string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		if p.lang != "" {
			values.Set("lang", p.lang)
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

// Fetch returns the current weather; min/max temperatures come from the API.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.WeatherRecord, error) {
	if p.apiKey == "" {
		return weather.WeatherRecord{}, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		Name string `json:"name"`
		Dt   int64  `json:"dt"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Pressure  float64 `json:"pressure"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request("weather", city), &payload); err != nil {
		return weather.WeatherRecord{}, fmt.Errorf("openweather %s: %w", city, err)
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	name := payload.Name
	if name == "" {
		name = city
	}

	desc := ""
	if len(payload.Weather) > 0 {
		desc = payload.Weather[0].Description
	}

	return weather.WeatherRecord{
		City:        name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		TempMin:     payload.Main.TempMin,
		TempMax:     payload.Main.TempMax,
		Pressure:    payload.Main.Pressure,
		Humidity:    payload.Main.Humidity,
		Description: desc,
		WindSpeed:   payload.Wind.Speed,
		Clouds:      payload.Clouds.All,
		Timestamp:   ts,
	}, nil
}

// FetchForecast returns the 5 day / 3 hour forecast.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, city string) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, fmt.Errorf("openweather api key is not configured")
	}

	var payload struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.request("forecast", city), &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openweather forecast %s: %w", city, err)
	}

	fc := weather.Forecast{City: payload.City.Name}
	if fc.City == "" {
		fc.City = city
	}

	for _, item := range payload.List {
		pt := weather.ForecastPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			pt.Description = item.Weather[0].Description
		}
		fc.Points = append(fc.Points, pt)
	}

	return fc, nil
}
