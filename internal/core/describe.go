package core

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/JonMunkholm/explorer/internal/table"
)

// DefaultPreviewRows is used when DescribeTable is given a non-positive count.
const DefaultPreviewRows = 5

// StatLabels names the statistics rows in display order.
var StatLabels = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Preview is the first rows of a table formatted for display.
type Preview struct {
	Columns []string   `json:"columns"`
	Dtypes  []string   `json:"dtypes"`
	Rows    [][]string `json:"rows"`
}

// ColumnStats summarizes one numeric column. Missing values are excluded;
// with no values every statistic but Count is NaN.
type ColumnStats struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Number `json:"mean"`
	Std    Number `json:"std"`
	Min    Number `json:"min"`
	Q25    Number `json:"25%"`
	Q50    Number `json:"50%"`
	Q75    Number `json:"75%"`
	Max    Number `json:"max"`
}

// Values returns the statistics in StatLabels order.
func (s ColumnStats) Values() []Number {
	return []Number{Number(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
}

// Description is the preview and statistics shown for a loaded table.
type Description struct {
	Source  string        `json:"source"`
	Rows    int           `json:"rows"`
	Columns int           `json:"columns"`
	Preview Preview       `json:"preview"`
	Stats   []ColumnStats `json:"stats"`
}

// DescribeTable builds the preview of the first previewRows rows and the
// statistics of every numeric column. A table without numeric columns gets
// an empty Stats slice.
func DescribeTable(t *table.Table, previewRows int) Description {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	cols := t.Columns()
	preview := Preview{
		Columns: make([]string, len(cols)),
		Dtypes:  make([]string, len(cols)),
		Rows:    t.Head(previewRows),
	}
	for i, c := range cols {
		preview.Columns[i] = c.Name
		preview.Dtypes[i] = c.Dtype()
	}
	if preview.Rows == nil {
		preview.Rows = [][]string{}
	}

	d := Description{
		Source:  t.Source(),
		Rows:    t.Nrow(),
		Columns: t.Ncol(),
		Preview: preview,
		Stats:   []ColumnStats{},
	}

	for _, name := range ClassifyColumns(t).Numeric {
		values, err := t.Floats(name)
		if err != nil {
			continue
		}
		d.Stats = append(d.Stats, describeColumn(name, values))
	}
	return d
}

func describeColumn(name string, values []float64) ColumnStats {
	present := dropNaN(values)

	s := ColumnStats{
		Column: name,
		Count:  len(present),
		Mean:   Number(math.NaN()),
		Std:    Number(math.NaN()),
		Min:    Number(math.NaN()),
		Q25:    Number(math.NaN()),
		Q50:    Number(math.NaN()),
		Q75:    Number(math.NaN()),
		Max:    Number(math.NaN()),
	}
	if len(present) == 0 {
		return s
	}

	if mean, err := stats.Mean(present); err == nil {
		s.Mean = Number(mean)
	}
	if len(present) > 1 {
		if std, err := stats.StandardDeviationSample(present); err == nil {
			s.Std = Number(std)
		}
	}
	if lo, err := stats.Min(present); err == nil {
		s.Min = Number(lo)
	}
	if hi, err := stats.Max(present); err == nil {
		s.Max = Number(hi)
	}

	sorted := slices.Clone(present)
	slices.Sort(sorted)
	s.Q25 = Number(quantile(sorted, 0.25))
	s.Q50 = Number(quantile(sorted, 0.50))
	s.Q75 = Number(quantile(sorted, 0.75))
	return s
}

// quantile interpolates linearly between closest ranks (Hyndman-Fan type 7),
// the default of pandas and numpy. sorted must be ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// finite drops NaN and ±Inf.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
