// Package render draws the static chart images: the histogram with its
// density curve and the percentage-annotated pie chart. Images are PNG.
package render

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/explorer/internal/core"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no values to chart")

// Size is the image size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the interactive charts' default frame.
var DefaultSize = Size{Width: 640, Height: 480}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

var (
	barColor     = drawing.ColorFromHex("1f77b4")
	densityColor = drawing.ColorFromHex("d62728")
)

// Histogram draws the bins as filled steps with the density curve on top.
func Histogram(w io.Writer, spec *core.HistogramSpec, size Size) error {
	if spec == nil || spec.N == 0 || len(spec.Counts) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	xs := make([]float64, 0, 4*len(spec.Counts))
	ys := make([]float64, 0, 4*len(spec.Counts))
	for i, c := range spec.Counts {
		lo, hi := float64(spec.Edges[i]), float64(spec.Edges[i+1])
		xs = append(xs, lo, lo, hi, hi)
		ys = append(ys, 0, float64(c), float64(c), 0)
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "count",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: barColor,
				StrokeWidth: 1,
				FillColor:   barColor.WithAlpha(160),
			},
		},
	}

	if len(spec.Density) > 1 {
		dx := make([]float64, len(spec.Density))
		dy := make([]float64, len(spec.Density))
		for i, p := range spec.Density {
			dx[i], dy[i] = float64(p.X), float64(p.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "density",
			XValues: dx,
			YValues: dy,
			Style: chart.Style{
				StrokeColor: densityColor,
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:      spec.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.Column},
		YAxis:      chart.YAxis{Name: spec.YLabel},
		Series:     series,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	return nil
}
