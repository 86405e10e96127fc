package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	"github.com/i474232898/weather-analytics/internal/weather"
)

const (
	pieWidth  = 1000
	pieHeight = 800
)

// Set3-like qualitative palette.
var pieColors = []drawing.Color{
	drawing.ColorFromHex("8DD3C7"),
	drawing.ColorFromHex("FFFFB3"),
	drawing.ColorFromHex("BEBADA"),
	drawing.ColorFromHex("FB8072"),
	drawing.ColorFromHex("80B1D3"),
	drawing.ColorFromHex("FDB462"),
	drawing.ColorFromHex("B3DE69"),
	drawing.ColorFromHex("FCCDE5"),
	drawing.ColorFromHex("D9D9D9"),
	drawing.ColorFromHex("BC80BD"),
	drawing.ColorFromHex("CCEBC5"),
	drawing.ColorFromHex("FFED6F"),
}

// PieLabel formats a slice label as "description NN.N%".
func PieLabel(c weather.ConditionCount, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(c.Count) * 100 / float64(total)
	}
	return fmt.Sprintf("%s %.1f%%", c.Description, pct)
}

// Pie renders the condition distribution with percentage labels. Slices follow
// the order of freq.
func Pie(freq weather.Frequencies) ([]byte, error) {
	total := freq.Total()
	if len(freq) == 0 || total == 0 {
		return nil, fmt.Errorf("pie: %w", weather.ErrEmptyInput)
	}

	values := make([]gochart.Value, 0, len(freq))
	for i, c := range freq {
		values = append(values, gochart.Value{
			Value: float64(c.Count),
			Label: PieLabel(c, total),
			Style: gochart.Style{
				FillColor:   pieColors[i%len(pieColors)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontSize:    11,
			},
		})
	}

	pie := gochart.PieChart{
		Title:      "Weather conditions",
		TitleStyle: gochart.Style{Show: true},
		Width:      pieWidth,
		Height:     pieHeight,
		Values:     values,
	}

	return renderPNG(pie)
}

// WritePie is Pie writing to w.
func WritePie(w io.Writer, freq weather.Frequencies) error {
	img, err := Pie(freq)
	if err != nil {
		return err
	}
	_, err = w.Write(img)
	return err
}
