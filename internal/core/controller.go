package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/explorer/internal/logging"
	"github.com/JonMunkholm/explorer/internal/table"
)

// Options configures a Controller.
type Options struct {
	PreviewRows int
	Histogram   HistogramOptions
	Parse       table.Options
}

// NoNumericMessage is shown in place of the scatter and histogram sections.
const NoNumericMessage = "No numerical columns found for visualization."

// View is everything the page shows for a session after one interaction.
// Chart fields are nil when that chart is not offered.
type View struct {
	SessionID      string          `json:"session_id"`
	State          State           `json:"state"`
	Description    *Description    `json:"description,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Selection      Selection       `json:"selection"`
	Notices        []string        `json:"notices,omitempty"`
	Scatter        *ScatterSpec    `json:"scatter,omitempty"`
	Histogram      *HistogramSpec  `json:"histogram,omitempty"`
	Pie            *PieSpec        `json:"pie,omitempty"`
	StaticPie      *StaticPieSpec  `json:"static_pie,omitempty"`
}

// Controller turns user events into Views. It is safe for concurrent use;
// per-session serialization comes from the session's own lock.
type Controller struct {
	opts    Options
	limiter *LoadLimiter
	now     func() time.Time
}

// NewController creates a controller. limiter may be nil to parse without a cap.
func NewController(opts Options, limiter *LoadLimiter) *Controller {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	return &Controller{opts: opts, limiter: limiter, now: time.Now}
}

// Load parses data into a table and makes it the session's table with a
// fresh default selection. On failure, parsing or rendering, the session
// is left Empty and the error (a *table.ParseError for bad input) is
// returned without a View.
func (c *Controller) Load(ctx context.Context, s *Session, name string, data []byte) (*View, error) {
	logger := logging.WithFields(ctx, "file", name, "bytes", len(data))
	start := c.now()

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			logger.Warn("load rejected", "error", err)
			return nil, err
		}
		defer c.limiter.Release()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := table.Load(ctx, name, data, c.opts.Parse)
	if err != nil {
		s.clear()
		logger.Info("load failed", "error", err)
		return nil, err
	}

	s.set(t, c.now())
	v, err := c.render(s)
	if err != nil {
		s.clear()
		logger.Error("render failed after load", "error", err)
		return nil, err
	}
	logger.Info("table loaded",
		"format", t.Format(),
		"rows", t.Nrow(),
		"columns", t.Ncol(),
		"numeric", len(s.class.Numeric),
		"categorical", len(s.class.Categorical),
		"other", len(s.class.Other),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return v, nil
}

// Handle applies one selection change. The column must be in the set the
// control offers; anything else is ErrInvalidSelection and leaves the
// selection unchanged.
func (c *Controller) Handle(ctx context.Context, s *Session, ev Event) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return nil, ErrNoTable
	}

	sel, err := ev.Apply(s.class, s.sel)
	if err != nil {
		return nil, err
	}
	prev := s.sel
	s.sel = sel
	v, err := c.render(s)
	if err != nil {
		s.sel = prev
		return nil, err
	}

	logging.FromContext(ctx).Debug("selection changed", "control", ev.Kind, "column", ev.Column)
	return v, nil
}

// Reset drops the session's table.
func (c *Controller) Reset(ctx context.Context, s *Session) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoaded {
		logging.FromContext(ctx).Info("session reset", "file", s.table.Source())
	}
	s.clear()
	return &View{SessionID: s.ID, State: StateEmpty}
}

// Render returns the View for the session's current state.
func (c *Controller) Render(ctx context.Context, s *Session) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.render(s)
}

// StaticHistogram returns the histogram for the current selection, or
// ErrNoTable / ErrInvalidSelection when none is offered.
func (c *Controller) StaticHistogram(ctx context.Context, s *Session) (*HistogramSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return nil, ErrNoTable
	}
	if s.sel.Histogram == "" {
		return nil, fmt.Errorf("%w: no numeric column for histogram", ErrInvalidSelection)
	}
	return RenderHistogram(s.table, s.sel.Histogram, c.opts.Histogram)
}

// StaticPie returns the static pie chart for the current selection.
func (c *Controller) StaticPie(ctx context.Context, s *Session) (*StaticPieSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return nil, ErrNoTable
	}
	if s.sel.Pie == "" {
		return nil, fmt.Errorf("%w: no categorical column for pie chart", ErrInvalidSelection)
	}
	freqs, err := ComputeFrequencies(s.table, s.sel.Pie)
	if err != nil {
		return nil, err
	}
	_, static := RenderPie(s.sel.Pie, freqs)
	return static, nil
}

// render builds the View. Caller holds s.mu.
func (c *Controller) render(s *Session) (*View, error) {
	if s.state != StateLoaded {
		return &View{SessionID: s.ID, State: s.state}, nil
	}
	v, err := Explore(s.table, s.sel, c.opts)
	if err != nil {
		return nil, err
	}
	v.SessionID = s.ID
	return v, nil
}

// Explore computes the full View for t under sel without a session. sel is
// reconciled against the table's classification first.
func Explore(t *table.Table, sel Selection, opts Options) (*View, error) {
	class := ClassifyColumns(t)
	desc := DescribeTable(t, opts.PreviewRows)
	sel = Reconcile(class, sel)

	v := &View{
		State:          StateLoaded,
		Description:    &desc,
		Classification: &class,
		Selection:      sel,
	}

	if sel.X != "" {
		scatter, err := RenderScatter(t, sel.X, sel.Y)
		if err != nil {
			return nil, err
		}
		hist, err := RenderHistogram(t, sel.Histogram, opts.Histogram)
		if err != nil {
			return nil, err
		}
		v.Scatter, v.Histogram = scatter, hist
	} else {
		v.Notices = append(v.Notices, NoNumericMessage)
	}

	if sel.Pie != "" {
		freqs, err := ComputeFrequencies(t, sel.Pie)
		if err != nil {
			return nil, err
		}
		v.Pie, v.StaticPie = RenderPie(sel.Pie, freqs)
	}
	return v, nil
}
