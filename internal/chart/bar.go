package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	"github.com/i474232898/weather-analytics/internal/weather"
)

const (
	barWidth     = 1400
	barHeight    = 600
	panelWidth   = 800
	panelHeight  = 600
	annotateSize = 9
)

var (
	barFill    = drawing.ColorFromHex("87CEEB") // skyblue
	barStroke  = drawing.ColorFromHex("000080") // navy
	overlayRed = drawing.ColorFromHex("E53935")

	// Colour ramps used by DualBar, light to dark.
	blues  = ramp{from: drawing.ColorFromHex("DEEBF7"), to: drawing.ColorFromHex("08519C")}
	greens = ramp{from: drawing.ColorFromHex("E5F5E0"), to: drawing.ColorFromHex("006D2C")}
)

// ramp interpolates linearly between two colours.
type ramp struct {
	from, to drawing.Color
}

func (r ramp) at(t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return drawing.Color{
		R: mix(r.from.R, r.to.R),
		G: mix(r.from.G, r.to.G),
		B: mix(r.from.B, r.to.B),
		A: 255,
	}
}

// scale maps every value into the ramp by its position in [min, max] of values.
func (r ramp) scale(values []float64) []drawing.Color {
	lo, hi := valueRange(values)
	colors := make([]drawing.Color, len(values))
	for i, v := range values {
		t := 0.5
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		colors[i] = r.at(t)
	}
	return colors
}

func valueRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// axisRange returns a y range that contains zero and every value with some headroom.
func axisRange(values ...[]float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.12
	if pad == 0 {
		pad = 1
	}
	if hi > 0 || lo == 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func fieldValues(records []weather.WeatherRecord, field weather.Field) ([]float64, error) {
	values := make([]float64, len(records))
	for i, r := range records {
		v, err := field.Value(r)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// cityTicks labels bar i with its city. go-chart derives the x range from the
// outermost ticks, so blank ticks half a slot outside keep every bar inside the plot.
func cityTicks(records []weather.WeatherRecord) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, len(records)+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i, r := range records {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: r.City})
	}
	return append(ticks, gochart.Tick{Value: float64(len(records)) - 0.5})
}

func indexes(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

func formatValue(field weather.Field, v float64) string {
	switch field {
	case weather.FieldTemperature, weather.FieldFeelsLike, weather.FieldTempMin, weather.FieldTempMax:
		return fmt.Sprintf("%.1f°C", v)
	case weather.FieldHumidity, weather.FieldClouds:
		return fmt.Sprintf("%.0f%%", v)
	case weather.FieldPressure:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// barPanel builds a chart with one bar per record, value labels and an optional overlay line.
func barPanel(title string, records []weather.WeatherRecord, field weather.Field, colors []drawing.Color, overlay *weather.Field, width, height int) (gochart.Chart, error) {
	values, err := fieldValues(records, field)
	if err != nil {
		return gochart.Chart{}, err
	}

	bars := barSeries{
		name:   field.Label(),
		values: values,
		colors: colors,
		width:  0.7,
		style: gochart.Style{
			Show:        true,
			FillColor:   barFill,
			StrokeColor: barStroke,
			StrokeWidth: 1,
		},
	}

	labels := gochart.AnnotationSeries{
		Name: "values",
		Style: gochart.Style{
			Show:     true,
			FontSize: annotateSize,
		},
	}
	for i, v := range values {
		labels.Annotations = append(labels.Annotations, gochart.Value2{
			XValue: float64(i),
			YValue: v,
			Label:  formatValue(field, v),
		})
	}

	series := []gochart.Series{bars}
	ranged := [][]float64{values}

	if overlay != nil {
		over, err := fieldValues(records, *overlay)
		if err != nil {
			return gochart.Chart{}, err
		}
		series = append(series, gochart.ContinuousSeries{
			Name: overlay.Label(),
			Style: gochart.Style{
				Show:        true,
				StrokeColor: overlayRed,
				StrokeWidth: 2,
				DotColor:    overlayRed,
				DotWidth:    4,
			},
			XValues: indexes(len(over)),
			YValues: over,
		})
		ranged = append(ranged, over)
	}
	series = append(series, labels)

	graph := gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{Show: true},
		Width:      width,
		Height:     height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Style: gochart.Style{
				Show:                true,
				TextRotationDegrees: 45,
			},
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(records)) - 0.5},
			Ticks: cityTicks(records),
		},
		YAxis: gochart.YAxis{
			Name:      field.Label(),
			NameStyle: gochart.Style{Show: true},
			Style:     gochart.Style{Show: true},
			Range:     axisRange(ranged...),
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	return graph, nil
}

// renderer is satisfied by go-chart's Chart, BarChart and PieChart.
type renderer interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

func renderPNG(graph renderer) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// BarComparison renders one bar per city in input order, each labelled with its
// value, with an optional overlay line (e.g. feels-like over temperature).
func BarComparison(records []weather.WeatherRecord, primary weather.Field, overlay *weather.Field) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("bar comparison: %w", weather.ErrEmptyInput)
	}

	graph, err := barPanel("Comparison by city: "+primary.Label(), records, primary, nil, overlay, barWidth, barHeight)
	if err != nil {
		return nil, err
	}
	return renderPNG(graph)
}

// WriteBarComparison is BarComparison writing to w.
func WriteBarComparison(w io.Writer, records []weather.WeatherRecord, primary weather.Field, overlay *weather.Field) error {
	img, err := BarComparison(records, primary, overlay)
	if err != nil {
		return err
	}
	_, err = w.Write(img)
	return err
}

// DualBar renders two bar panels side by side, each colour-scaled by its own value range.
func DualBar(records []weather.WeatherRecord, fieldA, fieldB weather.Field) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dual bar: %w", weather.ErrEmptyInput)
	}

	panels := make([]image.Image, 0, 2)
	for _, p := range []struct {
		field weather.Field
		ramp  ramp
	}{
		{fieldA, blues},
		{fieldB, greens},
	} {
		values, err := fieldValues(records, p.field)
		if err != nil {
			return nil, err
		}

		graph, err := barPanel(p.field.Label()+" by city", records, p.field, p.ramp.scale(values), nil, panelWidth, panelHeight)
		if err != nil {
			return nil, err
		}
		raw, err := renderPNG(graph)
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode panel %s: %w", p.field, err)
		}
		panels = append(panels, img)
	}

	return sideBySide(panels...)
}

// WriteDualBar is DualBar writing to w.
func WriteDualBar(w io.Writer, records []weather.WeatherRecord, fieldA, fieldB weather.Field) error {
	img, err := DualBar(records, fieldA, fieldB)
	if err != nil {
		return err
	}
	_, err = w.Write(img)
	return err
}

// sideBySide places images left to right on a white canvas and encodes a PNG.
func sideBySide(images ...image.Image) ([]byte, error) {
	width, height := 0, 0
	for _, img := range images {
		b := img.Bounds()
		width += b.Dx()
		if b.Dy() > height {
			height = b.Dy()
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	x := 0
	for _, img := range images {
		b := img.Bounds()
		draw.Draw(canvas, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Over)
		x += b.Dx()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}
	return buf.Bytes(), nil
}
