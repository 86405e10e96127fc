package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoProvider implements weather.Provider and weather.ForecastProvider for Open-Meteo.
// City names are resolved through the Open-Meteo geocoding API; no API key is needed.
type OpenMeteoProvider struct {
	name         string
	lang         string
	baseURL      string
	geocodingURL string
	forecastDays int
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, lang string) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:         "openmeteo",
		lang:         lang,
		baseURL:      "https://api.open-meteo.com/v1/forecast",
		geocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
		forecastDays: 5,
		httpCfg:      defaultHTTPConfig(client),
		circuit:      newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type place struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// geocode resolves a city name to the first geocoding match.
func (p *OpenMeteoProvider) geocode(ctx context.Context, city string) (place, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", city)
		values.Set("count", "1")
		values.Set("format", "json")
		if p.lang != "" {
			values.Set("language", p.lang)
		}
		return http.NewRequest(http.MethodGet, p.geocodingURL+"?"+values.Encode(), nil)
	}

	body, err := getBody(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return place{}, err
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return place{}, fmt.Errorf("decode geocoding response: %w", err)
	}

	results, err := parsed.Path("results").Children()
	if err != nil || len(results) == 0 {
		return place{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	first := results[0]

	lat, okLat := number(first.Path("latitude").Data())
	lon, okLon := number(first.Path("longitude").Data())
	if !okLat || !okLon {
		return place{}, fmt.Errorf("%w: %s has no coordinates", ErrCityNotFound, city)
	}

	pl := place{Lat: lat, Lon: lon, Name: city}
	if name, ok := first.Path("name").Data().(string); ok && name != "" {
		pl.Name = name
	}
	if cc, ok := first.Path("country_code").Data().(string); ok {
		pl.Country = strings.ToUpper(cc)
	}
	return pl, nil
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (p *OpenMeteoProvider) forecastRequest(pl place, set func(url.Values)) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(pl.Lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(pl.Lon, 'f', 4, 64))
		values.Set("timezone", "auto")
		values.Set("wind_speed_unit", "ms")
		set(values)
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}
}

// Fetch resolves the city and returns its current weather. Min/max temperatures
// are today's daily extremes reported by the API.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, city string) (weather.WeatherRecord, error) {
	pl, err := p.geocode(ctx, city)
	if err != nil {
		return weather.WeatherRecord{}, fmt.Errorf("openmeteo %s: %w", city, err)
	}

	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		Current          struct {
			Time                string  `json:"time"`
			Temperature         float64 `json:"temperature_2m"`
			RelativeHumidity    float64 `json:"relative_humidity_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			WeatherCode         int     `json:"weather_code"`
			SurfacePressure     float64 `json:"surface_pressure"`
			WindSpeed           float64 `json:"wind_speed_10m"`
			CloudCover          float64 `json:"cloud_cover"`
		} `json:"current"`
		Daily struct {
			TemperatureMax []float64 `json:"temperature_2m_max"`
			TemperatureMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}

	build := p.forecastRequest(pl, func(v url.Values) {
		v.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,surface_pressure,wind_speed_10m,cloud_cover")
		v.Set("daily", "temperature_2m_max,temperature_2m_min")
		v.Set("forecast_days", "1")
	})
	if err := getJSON(ctx, p.httpCfg, p.circuit, build, &payload); err != nil {
		return weather.WeatherRecord{}, fmt.Errorf("openmeteo %s: %w", city, err)
	}

	cur := payload.Current
	rec := weather.WeatherRecord{
		City:        pl.Name,
		Country:     pl.Country,
		Temperature: weather.Round(cur.Temperature, 1),
		FeelsLike:   weather.Round(cur.ApparentTemperature, 1),
		TempMin:     weather.Round(cur.Temperature, 1),
		TempMax:     weather.Round(cur.Temperature, 1),
		Pressure:    weather.Round(cur.SurfacePressure, 0),
		Humidity:    int(weather.Round(cur.RelativeHumidity, 0)),
		Description: DescribeWMOCode(cur.WeatherCode, p.lang),
		WindSpeed:   weather.Round(cur.WindSpeed, 1),
		Clouds:      int(weather.Round(cur.CloudCover, 0)),
		Timestamp:   parseLocalTime(cur.Time, payload.UTCOffsetSeconds),
	}
	if len(payload.Daily.TemperatureMin) > 0 && len(payload.Daily.TemperatureMax) > 0 {
		rec.TempMin = weather.Round(payload.Daily.TemperatureMin[0], 1)
		rec.TempMax = weather.Round(payload.Daily.TemperatureMax[0], 1)
	}

	return rec, nil
}

// FetchForecast returns an hourly temperature forecast for the next forecastDays days.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, city string) (weather.Forecast, error) {
	pl, err := p.geocode(ctx, city)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast %s: %w", city, err)
	}

	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		Hourly           struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			WeatherCode []int     `json:"weather_code"`
		} `json:"hourly"`
	}

	build := p.forecastRequest(pl, func(v url.Values) {
		v.Set("hourly", "temperature_2m,weather_code")
		v.Set("forecast_days", strconv.Itoa(p.forecastDays))
	})
	if err := getJSON(ctx, p.httpCfg, p.circuit, build, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast %s: %w", city, err)
	}

	h := payload.Hourly
	fc := weather.Forecast{City: pl.Name}
	for i := range h.Time {
		if i >= len(h.Temperature) {
			break
		}
		pt := weather.ForecastPoint{
			Time:        parseLocalTime(h.Time[i], payload.UTCOffsetSeconds),
			Temperature: h.Temperature[i],
		}
		if i < len(h.WeatherCode) {
			pt.Description = DescribeWMOCode(h.WeatherCode[i], p.lang)
		}
		fc.Points = append(fc.Points, pt)
	}

	return fc, nil
}

// parseLocalTime parses Open-Meteo's "2006-01-02T15:04" local timestamps.
func parseLocalTime(s string, offsetSeconds int) time.Time {
	zone := time.FixedZone("", offsetSeconds)
	ts, err := time.ParseInLocation("2006-01-02T15:04", s, zone)
	if err != nil {
		return time.Now().UTC()
	}
	return ts.UTC()
}
