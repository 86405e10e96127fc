package chart

import (
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
	"github.com/wcharczuk/go-chart/util"

	"github.com/i474232898/weather-analytics/internal/weather"
)

const (
	lineWidth  = 1000
	lineHeight = 600
)

var lineBlue = drawing.ColorFromHex("1F77B4")

// ForecastLine renders the forecast temperature over time with the maximum annotated.
func ForecastLine(fc weather.Forecast) ([]byte, error) {
	stats, err := weather.ForecastStats(fc.Points)
	if err != nil {
		return nil, fmt.Errorf("forecast line: %w", err)
	}

	xs := make([]time.Time, len(fc.Points))
	ys := make([]float64, len(fc.Points))
	for i, p := range fc.Points {
		xs[i] = p.Time
		ys[i] = p.Temperature
	}

	temps := gochart.TimeSeries{
		Name: "Temperature",
		Style: gochart.Style{
			Show:        true,
			StrokeColor: lineBlue,
			StrokeWidth: 2,
			FillColor:   lineBlue.WithAlpha(50),
			DotColor:    lineBlue,
			DotWidth:    2,
		},
		XValues: xs,
		YValues: ys,
	}

	peak := gochart.AnnotationSeries{
		Name: "max",
		Style: gochart.Style{
			Show:        true,
			FontColor:   overlayRed,
			StrokeColor: overlayRed,
		},
		Annotations: []gochart.Value2{{
			XValue: util.Time.ToFloat64(stats.MaxAt),
			YValue: stats.Max,
			Label:  fmt.Sprintf("Max: %.1f°", stats.Max),
		}},
	}

	lo, hi := stats.Min, stats.Max
	pad := (hi - lo) * 0.15
	if pad == 0 {
		pad = 1
	}

	graph := gochart.Chart{
		Title:      "Temperature forecast: " + fc.City,
		TitleStyle: gochart.Style{Show: true},
		Width:      lineWidth,
		Height:     lineHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Style: gochart.Style{
				Show:                true,
				TextRotationDegrees: 45,
			},
			ValueFormatter: gochart.TimeValueFormatterWithFormat("02.01 15:00"),
		},
		YAxis: gochart.YAxis{
			Name:      "Temperature (°C)",
			NameStyle: gochart.Style{Show: true},
			Style:     gochart.Style{Show: true},
			Range:     &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: []gochart.Series{temps, peak},
	}
	if !stats.Finish.After(stats.Start) {
		// A single point has no time span to scale.
		graph.XAxis.Range = &gochart.ContinuousRange{
			Min: util.Time.ToFloat64(stats.Start.Add(-time.Hour)),
			Max: util.Time.ToFloat64(stats.Start.Add(time.Hour)),
		}
	}

	return renderPNG(graph)
}

// WriteForecastLine is ForecastLine writing to w.
func WriteForecastLine(w io.Writer, fc weather.Forecast) error {
	img, err := ForecastLine(fc)
	if err != nil {
		return err
	}
	_, err = w.Write(img)
	return err
}
