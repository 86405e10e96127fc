package chart

import (
	"errors"

	gochart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

// barSeries draws one vertical bar per value, centred on x = index.
// go-chart's BarChart cannot share a canvas with line series, so bars are
// rendered as a regular Chart series instead.
type barSeries struct {
	name   string
	style  gochart.Style
	values []float64
	colors []drawing.Color // optional per-bar fill, falls back to style.FillColor
	width  float64         // share of the slot covered by a bar, 0..1
}

func (b barSeries) GetName() string { return b.name }

func (b barSeries) GetStyle() gochart.Style { return b.style }

func (b barSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }

func (b barSeries) Validate() error {
	if len(b.values) == 0 {
		return errors.New("bar series must contain at least one value")
	}
	return nil
}

// Len and GetValues let go-chart include the bars when it measures ranges.
func (b barSeries) Len() int { return len(b.values) }

func (b barSeries) GetValues(index int) (float64, float64) {
	return float64(index), b.values[index]
}

func (b barSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	width := b.width
	if width <= 0 || width > 1 {
		width = 0.7
	}

	slot := xrange.Translate(1) - xrange.Translate(0)
	half := int(float64(slot) * width / 2)
	if half < 1 {
		half = 1
	}

	base := canvasBox.Bottom - yrange.Translate(0)

	for i, v := range b.values {
		x := canvasBox.Left + xrange.Translate(float64(i))
		y := canvasBox.Bottom - yrange.Translate(v)

		top, bottom := y, base
		if top > bottom {
			top, bottom = bottom, top
		}

		fill := b.style.FillColor
		if i < len(b.colors) {
			fill = b.colors[i]
		}

		r.SetFillColor(fill)
		r.SetStrokeColor(b.style.StrokeColor)
		r.SetStrokeWidth(b.style.StrokeWidth)

		r.MoveTo(x-half, top)
		r.LineTo(x+half, top)
		r.LineTo(x+half, bottom)
		r.LineTo(x-half, bottom)
		r.LineTo(x-half, top)
		r.Close()
		r.FillStroke()
	}
}
