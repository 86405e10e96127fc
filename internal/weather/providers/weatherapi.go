package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider implements weather.Provider and weather.ForecastProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name         string
	apiKey       string
	lang         string
	baseURL      string
	forecastDays int
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey, lang string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:         "weatherapi",
		apiKey:       apiKey,
		lang:         lang,
		baseURL:      "https://api.weatherapi.com/v1",
		forecastDays: 3, // free plan limit
		httpCfg:      defaultHTTPConfig(client),
		circuit:      newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

type weatherAPIForecast struct {
	Location struct {
		Name           string `json:"name"`
		Country        string `json:"country"`
		LocaltimeEpoch int64  `json:"localtime_epoch"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64               `json:"last_updated_epoch"`
		TempC            float64             `json:"temp_c"`
		FeelsLikeC       float64             `json:"feelslike_c"`
		Humidity         int                 `json:"humidity"`
		WindKph          float64             `json:"wind_kph"`
		PressureMb       float64             `json:"pressure_mb"`
		Cloud            int                 `json:"cloud"`
		Condition        weatherAPICondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				MaxTempC float64 `json:"maxtemp_c"`
				MinTempC float64 `json:"mintemp_c"`
			} `json:"day"`
			Hour []struct {
				TimeEpoch int64               `json:"time_epoch"`
				TempC     float64             `json:"temp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, city string, days int) (weatherAPIForecast, error) {
	var payload weatherAPIForecast

	if p.apiKey == "" {
		return payload, fmt.Errorf("weatherapi api key is not configured")
	}

	// WeatherAPI uses "q" for location; forecast.json also carries the current conditions.
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", city)
		values.Set("days", strconv.Itoa(days))
		values.Set("aqi", "no")
		values.Set("alerts", "no")
		if p.lang != "" {
			values.Set("lang", p.lang)
		}
		return http.NewRequest(http.MethodGet, p.baseURL+"/forecast.json?"+values.Encode(), nil)
	}

	err := getJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload)
	return payload, err
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city string) (weather.WeatherRecord, error) {
	payload, err := p.fetch(ctx, city, 1)
	if err != nil {
		return weather.WeatherRecord{}, fmt.Errorf("weatherapi %s: %w", city, err)
	}

	ts := time.Now().UTC()
	if payload.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}

	name := payload.Location.Name
	if name == "" {
		name = city
	}

	rec := weather.WeatherRecord{
		City:        name,
		Country:     payload.Location.Country,
		Temperature: payload.Current.TempC,
		FeelsLike:   payload.Current.FeelsLikeC,
		TempMin:     payload.Current.TempC,
		TempMax:     payload.Current.TempC,
		Pressure:    payload.Current.PressureMb,
		Humidity:    payload.Current.Humidity,
		Description: payload.Current.Condition.Text,
		// Convert wind from kph to m/s.
		WindSpeed: weather.Round(payload.Current.WindKph/3.6, 1),
		Clouds:    payload.Current.Cloud,
		Timestamp: ts,
	}
	if days := payload.Forecast.ForecastDay; len(days) > 0 {
		rec.TempMin = days[0].Day.MinTempC
		rec.TempMax = days[0].Day.MaxTempC
	}

	return rec, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, city string) (weather.Forecast, error) {
	payload, err := p.fetch(ctx, city, p.forecastDays)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("weatherapi forecast %s: %w", city, err)
	}

	fc := weather.Forecast{City: payload.Location.Name}
	if fc.City == "" {
		fc.City = city
	}

	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			fc.Points = append(fc.Points, weather.ForecastPoint{
				Time:        time.Unix(h.TimeEpoch, 0).UTC(),
				Temperature: h.TempC,
				Description: h.Condition.Text,
			})
		}
	}

	return fc, nil
}
