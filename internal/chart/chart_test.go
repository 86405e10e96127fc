package chart

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/i474232898/weather-analytics/internal/weather"
)

func sampleRecords() []weather.WeatherRecord {
	return []weather.WeatherRecord{
		{City: "Москва", Temperature: 18.5, FeelsLike: 17.9, Humidity: 60, WindSpeed: 3.2, Description: "облачно"},
		{City: "Сочи", Temperature: 26.1, FeelsLike: 27, Humidity: 75, WindSpeed: 1.5, Description: "ясно"},
		{City: "Мурманск", Temperature: -2.4, FeelsLike: -7.2, Humidity: 88, WindSpeed: 6.8, Description: "снег"},
		{City: "Казань", Temperature: 15, FeelsLike: 14.1, Humidity: 52, WindSpeed: 4, Description: "облачно"},
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img
}

func assertSize(t *testing.T, img image.Image, width, height int) {
	t.Helper()
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		t.Errorf("expected %dx%d image, got %dx%d", width, height, b.Dx(), b.Dy())
	}
}

func TestBarComparison(t *testing.T) {
	feels := weather.FieldFeelsLike
	for _, overlay := range []*weather.Field{nil, &feels} {
		data, err := BarComparison(sampleRecords(), weather.FieldTemperature, overlay)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSize(t, decode(t, data), barWidth, barHeight)
	}
}

func TestBarComparisonSingleCity(t *testing.T) {
	data, err := BarComparison(sampleRecords()[:1], weather.FieldHumidity, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decode(t, data)
}

func TestBarComparisonUnknownField(t *testing.T) {
	_, err := BarComparison(sampleRecords(), weather.Field("altitude"), nil)
	if !errors.Is(err, weather.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestDualBar(t *testing.T) {
	data, err := DualBar(sampleRecords(), weather.FieldHumidity, weather.FieldWindSpeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSize(t, decode(t, data), 2*panelWidth, panelHeight)
}

func TestPie(t *testing.T) {
	freq := weather.ConditionFrequency(sampleRecords())
	data, err := Pie(freq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSize(t, decode(t, data), pieWidth, pieHeight)
}

func TestPieLabel(t *testing.T) {
	got := PieLabel(weather.ConditionCount{Description: "облачно", Count: 1}, 3)
	if got != "облачно 33.3%" {
		t.Errorf("unexpected label %q", got)
	}
	if got := PieLabel(weather.ConditionCount{Description: "x"}, 0); got != "x 0.0%" {
		t.Errorf("unexpected label for empty total %q", got)
	}
}

func TestForecastLine(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fc := weather.Forecast{City: "Сочи"}
	for i := 0; i < 40; i++ {
		fc.Points = append(fc.Points, weather.ForecastPoint{
			Time:        start.Add(time.Duration(i) * 3 * time.Hour),
			Temperature: 18 + float64(i%8),
		})
	}

	data, err := ForecastLine(fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSize(t, decode(t, data), lineWidth, lineHeight)

	single := weather.Forecast{City: "Сочи", Points: fc.Points[:1]}
	if _, err := ForecastLine(single); err != nil {
		t.Fatalf("single point: unexpected error: %v", err)
	}
}

func TestEmptyInputRendersNothing(t *testing.T) {
	if _, err := BarComparison(nil, weather.FieldTemperature, nil); !errors.Is(err, weather.ErrEmptyInput) {
		t.Errorf("BarComparison: expected ErrEmptyInput, got %v", err)
	}
	if _, err := DualBar(nil, weather.FieldHumidity, weather.FieldWindSpeed); !errors.Is(err, weather.ErrEmptyInput) {
		t.Errorf("DualBar: expected ErrEmptyInput, got %v", err)
	}
	if _, err := Pie(weather.ConditionFrequency(nil)); !errors.Is(err, weather.ErrEmptyInput) {
		t.Errorf("Pie: expected ErrEmptyInput, got %v", err)
	}
	if _, err := ForecastLine(weather.Forecast{City: "Сочи"}); !errors.Is(err, weather.ErrEmptyInput) {
		t.Errorf("ForecastLine: expected ErrEmptyInput, got %v", err)
	}

	var buf bytes.Buffer
	if err := WritePie(&buf, nil); err == nil || buf.Len() != 0 {
		t.Errorf("WritePie: expected error and no output")
	}
}

func TestRampScale(t *testing.T) {
	colors := blues.scale([]float64{1, 2, 3})
	if colors[0] != blues.from || colors[2] != blues.to {
		t.Errorf("expected ramp ends at min and max, got %v", colors)
	}

	flat := greens.scale([]float64{5, 5})
	if flat[0] != greens.at(0.5) || flat[1] != flat[0] {
		t.Errorf("equal values should map to the middle of the ramp, got %v", flat)
	}
}

func TestSingleCityCharts(t *testing.T) {
	one := sampleRecords()[:1]
	feels := weather.FieldFeelsLike

	data, err := BarComparison(one, weather.FieldTemperature, &feels)
	if err != nil {
		t.Fatalf("BarComparison: unexpected error: %v", err)
	}
	assertSize(t, decode(t, data), barWidth, barHeight)

	data, err = DualBar(one, weather.FieldHumidity, weather.FieldWindSpeed)
	if err != nil {
		t.Fatalf("DualBar: unexpected error: %v", err)
	}
	assertSize(t, decode(t, data), 2*panelWidth, panelHeight)
}

func TestCityTicksSpanEveryBar(t *testing.T) {
	records := sampleRecords()
	ticks := cityTicks(records)
	if len(ticks) != len(records)+2 {
		t.Fatalf("expected %d ticks, got %d", len(records)+2, len(ticks))
	}
	first, last := ticks[0], ticks[len(ticks)-1]
	if first.Value != -0.5 || first.Label != "" {
		t.Errorf("unexpected lower bound tick %+v", first)
	}
	if last.Value != float64(len(records))-0.5 || last.Label != "" {
		t.Errorf("unexpected upper bound tick %+v", last)
	}
	for i, r := range records {
		if tk := ticks[i+1]; tk.Value != float64(i) || tk.Label != r.City {
			t.Errorf("tick %d: expected %s at %d, got %+v", i, r.City, i, tk)
		}
	}
}
