package core

import (
	"fmt"
	"slices"

	"github.com/JonMunkholm/explorer/internal/table"
)

// MissingLabel is the category missing cells are counted under.
const MissingLabel = "(missing)"

// Frequency is the occurrence count of one distinct value.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ComputeFrequencies counts each distinct value of column, ordered by
// descending count with ties in first-occurrence order. Missing cells are
// counted under MissingLabel, so the counts sum to the row count.
func ComputeFrequencies(t *table.Table, column string) ([]Frequency, error) {
	values, missing, err := t.Values(column)
	if err != nil {
		return nil, fmt.Errorf("frequencies: %w", err)
	}

	index := make(map[string]int)
	freqs := make([]Frequency, 0)
	for i, v := range values {
		if missing[i] {
			v = MissingLabel
		}
		if j, ok := index[v]; ok {
			freqs[j].Count++
			continue
		}
		index[v] = len(freqs)
		freqs = append(freqs, Frequency{Value: v, Count: 1})
	}

	slices.SortStableFunc(freqs, func(a, b Frequency) int {
		return b.Count - a.Count
	})
	return freqs, nil
}

// PieSpec is the interactive pie chart.
type PieSpec struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// StaticPieSpec is the static pie chart: the same slices as PieSpec,
// annotated with one-decimal percentages, starting at 90 degrees and drawn
// with an equal aspect ratio.
type StaticPieSpec struct {
	Title       string   `json:"title"`
	Labels      []string `json:"labels"`
	Values      []int    `json:"values"`
	Percentages []string `json:"percentages"`
	StartAngle  float64  `json:"start_angle"`
	EqualAspect bool     `json:"equal_aspect"`
}

// RenderPie builds both pie charts from one frequency list. Their label and
// value sequences are identical.
func RenderPie(column string, freqs []Frequency) (*PieSpec, *StaticPieSpec) {
	labels := make([]string, len(freqs))
	values := make([]int, len(freqs))
	total := 0
	for i, f := range freqs {
		labels[i] = f.Value
		values[i] = f.Count
		total += f.Count
	}

	pcts := make([]string, len(freqs))
	for i, v := range values {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(v) / float64(total)
		}
		pcts[i] = fmt.Sprintf("%1.1f%%", pct)
	}

	interactive := &PieSpec{
		Title:  "Distribution of " + column,
		Labels: labels,
		Values: values,
	}
	static := &StaticPieSpec{
		Title:       "Pie Chart for " + column,
		Labels:      slices.Clone(labels),
		Values:      slices.Clone(values),
		Percentages: pcts,
		StartAngle:  90,
		EqualAspect: true,
	}
	return interactive, static
}
