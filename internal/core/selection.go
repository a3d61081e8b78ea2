package core

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidSelection is returned when a column is not in the set offered
	// for the control it was chosen for.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrUnknownControl is returned for an event kind the controller does not handle.
	ErrUnknownControl = errors.New("unknown control")
)

// Axes is the scatter plot's column pair.
type Axes struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Selection is the user's current column choices. Empty fields mean the
// corresponding chart is not offered.
type Selection struct {
	X         string `json:"x"`
	Y         string `json:"y"`
	Histogram string `json:"histogram"`
	Pie       string `json:"pie"`
}

// Axes returns the scatter column pair.
func (s Selection) Axes() Axes {
	return Axes{X: s.X, Y: s.Y}
}

// SelectAxes picks the scatter axes. Each axis keeps its prior column when
// that column is still numeric and otherwise falls back to the first one.
// It returns false when there are no numeric columns, in which case no
// scatter or histogram is offered.
func SelectAxes(numeric []string, prior Axes) (Axes, bool) {
	if len(numeric) == 0 {
		return Axes{}, false
	}
	return Axes{
		X: pick(numeric, prior.X),
		Y: pick(numeric, prior.Y),
	}, true
}

// SelectCategorical picks the pie chart column with the same policy as
// SelectAxes. It returns false when there are no categorical columns.
func SelectCategorical(categorical []string, prior string) (string, bool) {
	if len(categorical) == 0 {
		return "", false
	}
	return pick(categorical, prior), true
}

// Reconcile re-validates sel against c, replacing anything no longer offered.
func Reconcile(c Classification, sel Selection) Selection {
	var out Selection
	if axes, ok := SelectAxes(c.Numeric, sel.Axes()); ok {
		out.X, out.Y = axes.X, axes.Y
		out.Histogram = pick(c.Numeric, sel.Histogram)
	}
	if col, ok := SelectCategorical(c.Categorical, sel.Pie); ok {
		out.Pie = col
	}
	return out
}

// EventKind names the control that changed.
type EventKind string

const (
	EventX         EventKind = "x"
	EventY         EventKind = "y"
	EventHistogram EventKind = "histogram"
	EventPie       EventKind = "pie"
)

// ParseEventKind validates a control name from a request.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventX, EventY, EventHistogram, EventPie:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownControl, s)
}

// Event is one selection change.
type Event struct {
	Kind   EventKind `json:"control"`
	Column string    `json:"column"`
}

// Apply returns sel with the event applied, or ErrInvalidSelection when the
// column is not in the set offered for that control.
func (e Event) Apply(c Classification, sel Selection) (Selection, error) {
	var offered []string
	switch e.Kind {
	case EventX, EventY, EventHistogram:
		offered = c.Numeric
	case EventPie:
		offered = c.Categorical
	default:
		return sel, fmt.Errorf("%w: %q", ErrUnknownControl, e.Kind)
	}

	if !slices.Contains(offered, e.Column) {
		return sel, fmt.Errorf("%w: %q is not offered for %s", ErrInvalidSelection, e.Column, e.Kind)
	}

	switch e.Kind {
	case EventX:
		sel.X = e.Column
	case EventY:
		sel.Y = e.Column
	case EventHistogram:
		sel.Histogram = e.Column
	case EventPie:
		sel.Pie = e.Column
	}
	return sel, nil
}

func pick(options []string, prior string) string {
	if prior != "" && slices.Contains(options, prior) {
		return prior
	}
	return options[0]
}
