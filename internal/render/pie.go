package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/explorer/internal/core"
)

// slicePalette is the categorical cycle the interactive charts use.
var slicePalette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

const (
	pieTitleBand   = 36
	pieLabelRadius = 1.1
	piePctRadius   = 0.6
)

// pieGeometry places the circle below the title band, leaving a margin
// for the outside labels.
func pieGeometry(side int) (cx, cy int, radius float64) {
	plot := side - pieTitleBand
	cx = side / 2
	cy = pieTitleBand + plot/2
	radius = 0.75 * float64(plot) / 2
	return cx, cy, radius
}

// screenAngle converts a fraction of the way round the pie into the
// renderer's angle. Slices start at spec.StartAngle degrees (0 is three
// o'clock) and run counter-clockwise. The renderer's y axis points down,
// so counter-clockwise is decreasing angle.
func screenAngle(startDeg, frac float64) float64 {
	return -(startDeg*math.Pi/180 + 2*math.Pi*frac)
}

// Pie draws the static pie chart: one wedge per value starting at
// spec.StartAngle, labels outside the circle and one-decimal percentages
// inside each wedge. The image is square so the pie is a circle. An empty
// spec draws the title over an empty canvas.
func Pie(w io.Writer, spec *core.StaticPieSpec, size Size) error {
	if spec == nil {
		return ErrNoData
	}
	size = size.orDefault()
	side := min(size.Width, size.Height)

	r, err := chart.PNG(side, side)
	if err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	r.SetDPI(chart.DefaultDPI)
	r.SetFont(font)

	fillRect(r, side, side, drawing.ColorWhite)

	if spec.Title != "" {
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(chart.DefaultTitleFontSize)
		tb := r.MeasureText(spec.Title)
		r.Text(spec.Title, (side-tb.Width())/2, (pieTitleBand+tb.Height())/2)
	}

	total := 0
	for _, v := range spec.Values {
		total += v
	}
	if total > 0 {
		drawWedges(r, spec, side, total)
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	return nil
}

func drawWedges(r chart.Renderer, spec *core.StaticPieSpec, side, total int) {
	cx, cy, radius := pieGeometry(side)

	cum := 0.0
	for i, v := range spec.Values {
		frac := float64(v) / float64(total)
		if frac > 0 {
			r.SetFillColor(slicePalette[i%len(slicePalette)])
			r.SetStrokeColor(drawing.ColorWhite)
			r.SetStrokeWidth(1)
			r.MoveTo(cx, cy)
			r.ArcTo(cx, cy, radius, radius, screenAngle(spec.StartAngle, cum), -2*math.Pi*frac)
			r.LineTo(cx, cy)
			r.Close()
			r.FillStroke()
		}
		cum += frac
	}

	r.SetFontSize(chart.DefaultFontSize)
	cum = 0
	for i, v := range spec.Values {
		frac := float64(v) / float64(total)
		mid := screenAngle(spec.StartAngle, cum+frac/2)
		cum += frac

		if i < len(spec.Labels) {
			r.SetFontColor(drawing.ColorBlack)
			textAt(r, spec.Labels[i], cx, cy, pieLabelRadius*radius, mid)
		}
		if i < len(spec.Percentages) && frac > 0 {
			r.SetFontColor(drawing.ColorWhite)
			textAt(r, spec.Percentages[i], cx, cy, piePctRadius*radius, mid)
		}
	}
}

// textAt centers body on the point at distance d from (cx, cy) along angle.
func textAt(r chart.Renderer, body string, cx, cy int, d, angle float64) {
	tb := r.MeasureText(body)
	x := cx + int(math.Round(d*math.Cos(angle))) - tb.Width()/2
	y := cy + int(math.Round(d*math.Sin(angle))) + tb.Height()/2
	r.Text(body, max(0, x), max(tb.Height(), y))
}

func fillRect(r chart.Renderer, w, h int, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeColor(c)
	r.SetStrokeWidth(0)
	r.MoveTo(0, 0)
	r.LineTo(w, 0)
	r.LineTo(w, h)
	r.LineTo(0, h)
	r.Close()
	r.Fill()
}
