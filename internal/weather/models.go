package weather

import (
	"fmt"
	"strings"
	"time"
)

// WeatherRecord is one city's normalized weather observation at a point in time.
// Records are produced by a Provider and treated as read-only values afterwards.
type WeatherRecord struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Pressure    float64   `json:"pressure"`
	Humidity    int       `json:"humidity"` // percent
	Description string    `json:"description"`
	WindSpeed   float64   `json:"windSpeed"`
	Clouds      int       `json:"clouds"` // percent
	Timestamp   time.Time `json:"timestamp"`
}

// Field names a numeric WeatherRecord field.
type Field string

const (
	FieldTemperature Field = "temperature"
	FieldFeelsLike   Field = "feels_like"
	FieldTempMin     Field = "temp_min"
	FieldTempMax     Field = "temp_max"
	FieldPressure    Field = "pressure"
	FieldHumidity    Field = "humidity"
	FieldWindSpeed   Field = "wind_speed"
	FieldClouds      Field = "clouds"
)

var fields = []Field{
	FieldTemperature,
	FieldFeelsLike,
	FieldTempMin,
	FieldTempMax,
	FieldPressure,
	FieldHumidity,
	FieldWindSpeed,
	FieldClouds,
}

// ParseField resolves a user supplied field name.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Value extracts the field from r.
func (f Field) Value(r WeatherRecord) (float64, error) {
	switch f {
	case FieldTemperature:
		return r.Temperature, nil
	case FieldFeelsLike:
		return r.FeelsLike, nil
	case FieldTempMin:
		return r.TempMin, nil
	case FieldTempMax:
		return r.TempMax, nil
	case FieldPressure:
		return r.Pressure, nil
	case FieldHumidity:
		return float64(r.Humidity), nil
	case FieldWindSpeed:
		return r.WindSpeed, nil
	case FieldClouds:
		return float64(r.Clouds), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
}

// Label is a human readable axis label for the field.
func (f Field) Label() string {
	switch f {
	case FieldTemperature:
		return "Temperature (°C)"
	case FieldFeelsLike:
		return "Feels like (°C)"
	case FieldTempMin:
		return "Min temperature (°C)"
	case FieldTempMax:
		return "Max temperature (°C)"
	case FieldPressure:
		return "Pressure (hPa)"
	case FieldHumidity:
		return "Humidity (%)"
	case FieldWindSpeed:
		return "Wind speed (m/s)"
	case FieldClouds:
		return "Clouds (%)"
	default:
		return string(f)
	}
}

// Direction selects the maximum or minimum of a field.
type Direction int

const (
	Max Direction = iota
	Min
)

// ParseDirection accepts "max" or "min".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	default:
		return Max, fmt.Errorf("invalid direction %q; use max or min", s)
	}
}

func (d Direction) String() string {
	if d == Min {
		return "min"
	}
	return "max"
}

// ForecastPoint is a single step of a multi-day forecast.
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description,omitempty"`
}

// Forecast is a time-ordered forecast series for one city.
type Forecast struct {
	City   string          `json:"city"`
	Points []ForecastPoint `json:"points"`
}

// FetchFailure records a city the provider could not resolve or fetch.
type FetchFailure struct {
	City string `json:"city"`
	Err  string `json:"error"`
}

// Batch is one collection run over the configured cities.
// Records keep the order of the requested cities.
type Batch struct {
	ID          string          `json:"id"`
	CollectedAt time.Time       `json:"collectedAt"` // always UTC
	Provider    string          `json:"provider"`
	Records     []WeatherRecord `json:"records"`
	Failures    []FetchFailure  `json:"failures,omitempty"`
}
