package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/i474232898/weather-analytics/internal/chart"
	"github.com/i474232898/weather-analytics/internal/export"
	"github.com/i474232898/weather-analytics/internal/weather"
)

// Report is the derived view over one snapshot of records.
type Report struct {
	Summary    weather.Summary       `json:"summary"`
	Hottest    weather.WeatherRecord `json:"hottest"`
	Coldest    weather.WeatherRecord `json:"coldest"`
	MostHumid  weather.WeatherRecord `json:"mostHumid"`
	Conditions weather.Frequencies   `json:"conditions"`
}

// Build computes statistics, extremal cities and the condition distribution.
func Build(records []weather.WeatherRecord) (Report, error) {
	summary, err := weather.SummaryStatistics(records)
	if err != nil {
		return Report{}, fmt.Errorf("build report: %w", err)
	}

	// Non-empty input and known fields: Extremal cannot fail below.
	hottest, _ := weather.Extremal(records, weather.FieldTemperature, weather.Max)
	coldest, _ := weather.Extremal(records, weather.FieldTemperature, weather.Min)
	humid, _ := weather.Extremal(records, weather.FieldHumidity, weather.Max)

	return Report{
		Summary:    summary,
		Hottest:    hottest,
		Coldest:    coldest,
		MostHumid:  humid,
		Conditions: weather.ConditionFrequency(records),
	}, nil
}

var summaryTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"rule": func() string { return strings.Repeat("=", 60) },
	"temp": func(v float64) string { return fmt.Sprintf("%.1f°C", v) },
	"num":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`{{rule}}
WEATHER ANALYSIS
{{rule}}

STATISTICS:
  mean temperature: {{num .Summary.MeanTemp}}
  max temperature: {{num .Summary.MaxTemp}}
  min temperature: {{num .Summary.MinTemp}}
  mean humidity: {{num .Summary.MeanHumidity}}
  mean wind speed: {{num .Summary.MeanWindSpeed}}
  cities: {{.Summary.Count}}

HOTTEST CITY:
  {{.Hottest.City}}: {{temp .Hottest.Temperature}} ({{.Hottest.Description}})

COLDEST CITY:
  {{.Coldest.City}}: {{temp .Coldest.Temperature}} ({{.Coldest.Description}})

MOST HUMID CITY:
  {{.MostHumid.City}}: {{.MostHumid.Humidity}}% (temperature: {{temp .MostHumid.Temperature}})

CONDITIONS:
{{- range .Conditions}}
  {{.Description}}: {{.Count}} {{if eq .Count 1}}city{{else}}cities{{end}}
{{- end}}
{{rule}}
`))

// WriteText prints the textual summary to w.
func (r Report) WriteText(w io.Writer) error {
	return summaryTmpl.Execute(w, r)
}

// Text returns the textual summary.
func (r Report) Text() string {
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		return fmt.Sprintf("report unavailable: %v", err)
	}
	return buf.String()
}

// Artifact file names written by Artifacts.
const (
	TableFile       = "weather_data.csv"
	TemperatureFile = "temperature_comparison.png"
	HumidityFile    = "humidity_wind.png"
	ConditionsFile  = "weather_conditions.png"
)

// Artifacts writes the CSV table and the three charts into dir and returns the written paths.
func Artifacts(dir string, records []weather.WeatherRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("artifacts: %w", weather.ErrEmptyInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}

	var written []string

	tablePath := filepath.Join(dir, TableFile)
	if err := export.ExportTable(records, tablePath); err != nil {
		return written, err
	}
	written = append(written, tablePath)

	feels := weather.FieldFeelsLike
	charts := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{TemperatureFile, func() ([]byte, error) {
			return chart.BarComparison(records, weather.FieldTemperature, &feels)
		}},
		{HumidityFile, func() ([]byte, error) {
			return chart.DualBar(records, weather.FieldHumidity, weather.FieldWindSpeed)
		}},
		{ConditionsFile, func() ([]byte, error) {
			return chart.Pie(weather.ConditionFrequency(records))
		}},
	}

	for _, c := range charts {
		img, err := c.render()
		if err != nil {
			return written, fmt.Errorf("artifacts %s: %w", c.name, err)
		}
		path := filepath.Join(dir, c.name)
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return written, fmt.Errorf("artifacts: %w", err)
		}
		written = append(written, path)
	}

	return written, nil
}

// ForecastCaption is the chat caption sent with a forecast chart.
func ForecastCaption(city string, s weather.ForecastSummary) string {
	return fmt.Sprintf(
		"📊 *Weather analysis: %s*\n\n"+
			"❄️ Min temperature: %.1f°C\n"+
			"🔥 Max temperature: %.1f°C\n"+
			"🌡 Mean temperature: %.1f°C\n\n"+
			"Forecast chart for the next days attached above 👆",
		city, s.Min, s.Max, s.Mean,
	)
}
