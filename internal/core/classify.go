package core

import (
	"slices"

	"github.com/go-gota/gota/series"

	"github.com/JonMunkholm/explorer/internal/table"
)

// Classification partitions a table's columns by what they can be charted as.
// Every int or float column is in Numeric, every text column in Categorical.
// Columns of any other type are listed in Other and never offered for
// selection.
type Classification struct {
	Numeric     []string       `json:"numeric"`
	Categorical []string       `json:"categorical"`
	Other       []table.Column `json:"other,omitempty"`
}

// ClassifyColumns splits t's columns in declaration order.
func ClassifyColumns(t *table.Table) Classification {
	c := Classification{
		Numeric:     []string{},
		Categorical: []string{},
	}
	for _, col := range t.Columns() {
		switch col.Type {
		case series.Int, series.Float:
			c.Numeric = append(c.Numeric, col.Name)
		case series.String:
			c.Categorical = append(c.Categorical, col.Name)
		default:
			c.Other = append(c.Other, col)
		}
	}
	return c
}

// IsNumeric reports whether name is in the numeric set.
func (c Classification) IsNumeric(name string) bool {
	return slices.Contains(c.Numeric, name)
}

// IsCategorical reports whether name is in the categorical set.
func (c Classification) IsCategorical(name string) bool {
	return slices.Contains(c.Categorical, name)
}
