package core

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/JonMunkholm/explorer/internal/table"
)

// ScatterSpec is an interactive scatter plot of every row.
type ScatterSpec struct {
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	X      []Number `json:"x"`
	Y      []Number `json:"y"`
}

// RenderScatter plots x against y for all rows. Rows with a missing value
// are kept and encode as null, which plotting clients skip.
func RenderScatter(t *table.Table, x, y string) (*ScatterSpec, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return nil, fmt.Errorf("scatter x: %w", err)
	}
	ys, err := t.Floats(y)
	if err != nil {
		return nil, fmt.Errorf("scatter y: %w", err)
	}

	return &ScatterSpec{
		Title:  x + " vs " + y,
		XLabel: x,
		YLabel: y,
		X:      numbers(xs),
		Y:      numbers(ys),
	}, nil
}

// DefaultKDEGridSize is the number of points the density curve is evaluated at.
const DefaultKDEGridSize = 200

// DefaultMaxBins caps the number of histogram bins.
const DefaultMaxBins = 1000

// HistogramOptions tunes RenderHistogram.
type HistogramOptions struct {
	// GridSize is the number of density curve points. Values below 2 use
	// DefaultKDEGridSize.
	GridSize int

	// MaxBins caps the bin count. Values below 1 use DefaultMaxBins.
	MaxBins int
}

// DensityPoint is one point of the smoothed density curve, scaled to counts.
type DensityPoint struct {
	X Number `json:"x"`
	Y Number `json:"y"`
}

// HistogramSpec is a binned count of one numeric column with an overlaid
// kernel density estimate. Edges has len(Counts)+1 entries.
type HistogramSpec struct {
	Title   string         `json:"title"`
	Column  string         `json:"column"`
	YLabel  string         `json:"y_label"`
	Edges   []Number       `json:"edges"`
	Counts  []int          `json:"counts"`
	Density []DensityPoint `json:"density"`
	N       int            `json:"n"`
	Missing int            `json:"missing"`
}

// BinWidth returns the width shared by all bins.
func (h *HistogramSpec) BinWidth() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return float64(h.Edges[1] - h.Edges[0])
}

// RenderHistogram bins column with numpy's "auto" rule and fits a Gaussian
// KDE with Scott's bandwidth over the data range. Missing and infinite
// values are dropped and counted in Missing. The density is omitted when
// fewer than two distinct values exist.
func RenderHistogram(t *table.Table, column string, opts HistogramOptions) (*HistogramSpec, error) {
	values, err := t.Floats(column)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	if opts.GridSize < 2 {
		opts.GridSize = DefaultKDEGridSize
	}
	if opts.MaxBins < 1 {
		opts.MaxBins = DefaultMaxBins
	}

	present := finite(values)
	spec := &HistogramSpec{
		Title:   "Histogram of " + column,
		Column:  column,
		YLabel:  "Count",
		Edges:   []Number{},
		Counts:  []int{},
		Density: []DensityPoint{},
		N:       len(present),
		Missing: len(values) - len(present),
	}
	if len(present) == 0 {
		return spec, nil
	}

	sorted := slices.Clone(present)
	slices.Sort(sorted)

	edges := binEdges(sorted, opts.MaxBins)
	spec.Edges = numbers(edges)
	spec.Counts = countBins(sorted, edges)

	binWidth := edges[1] - edges[0]
	spec.Density = kde(sorted, opts.GridSize, float64(len(sorted))*binWidth)
	return spec, nil
}

// binEdges implements numpy's histogram_bin_edges(bins="auto"): the smaller
// of the Freedman-Diaconis and Sturges widths, Sturges alone when the IQR
// is zero. A constant column gets one bin of width 1 around the value.
// When the Freedman-Diaconis width would need more than maxBins bins, as
// with a far outlier and a tight IQR, Sturges is used, and the result is
// capped at maxBins.
func binEdges(sorted []float64, maxBins int) []float64 {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []float64{lo - 0.5, hi + 0.5}
	}

	n := float64(len(sorted))
	span := hi - lo

	sturges := span / (math.Log2(n) + 1)
	width := sturges
	iqr := quantile(sorted, 0.75) - quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}

	bins := binCount(span, width)
	if bins > maxBins {
		bins = binCount(span, sturges)
	}
	bins = max(1, min(bins, maxBins))

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	return edges
}

// binCount is ceil(span/width) without overflowing int.
func binCount(span, width float64) int {
	b := math.Ceil(span / width)
	if math.IsNaN(b) || b > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(b)
}

// countBins counts values into half-open bins; the last bin is closed.
func countBins(sorted, edges []float64) []int {
	bins := len(edges) - 1
	counts := make([]int, bins)
	lo, hi := edges[0], edges[bins]
	for _, v := range sorted {
		pos := (v - lo) / (hi - lo) * float64(bins)
		i := bins - 1
		if pos < float64(bins) {
			i = max(0, int(pos))
		}
		// Guard against float rounding placing v on the wrong side of an edge.
		for i > 0 && v < edges[i] {
			i--
		}
		for i < bins-1 && v >= edges[i+1] {
			i++
		}
		counts[i]++
	}
	return counts
}

// kde evaluates a Gaussian kernel density estimate on gridSize points
// spanning the data, multiplied by scale. The bandwidth follows Scott's
// rule: n^(-1/5) times the sample standard deviation.
func kde(sorted []float64, gridSize int, scale float64) []DensityPoint {
	n := len(sorted)
	if n < 2 {
		return []DensityPoint{}
	}

	_, std := stat.MeanStdDev(sorted, nil)
	if std == 0 || math.IsNaN(std) {
		return []DensityPoint{}
	}
	bw := std * math.Pow(float64(n), -1.0/5)

	grid := make([]float64, gridSize)
	floats.Span(grid, sorted[0], sorted[n-1])

	kernels := make([]distuv.Normal, n)
	for i, v := range sorted {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}

	points := make([]DensityPoint, gridSize)
	for i, x := range grid {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		points[i] = DensityPoint{X: Number(x), Y: Number(sum / float64(n) * scale)}
	}
	return points
}
