package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/logging"
)

const pageTitle = "Interactive Data Dashboard"

// pageError is the blocking error banner shown above the page.
type pageError struct {
	core.UserMessage
	RequestID string
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return node.Render(w)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, v *core.View, perr *pageError) {
	if err := renderHTML(w, status, explorerPage(v, perr, s.cfg.Explore.PlotlyURL)); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func explorerPage(v *core.View, perr *pageError, plotlyURL string) gomponents.Node {
	loaded := v.State == core.StateLoaded

	var scripts []gomponents.Node
	if loaded && (v.Scatter != nil || v.Pie != nil) {
		scripts = append(scripts, html.Script(html.Src(plotlyURL)))
	}
	scripts = append(scripts, html.Script(html.Src("/static/app.js"), gomponents.Attr("defer", "")))

	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(pageTitle)),
			html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
			gomponents.Group(scripts),
		),
		html.Body(
			html.Main(
				html.Class("layout"),
				html.H1(gomponents.Text(pageTitle)),
				uploadSection(loaded),
				errorBanner(perr),
				loadedSections(v),
			),
		),
	))
}

func uploadSection(loaded bool) gomponents.Node {
	return html.Section(
		html.Class("upload"),
		html.Form(
			html.Method("post"),
			html.Action("/upload"),
			gomponents.Attr("enctype", "multipart/form-data"),
			html.Label(
				gomponents.Text("Upload a CSV file"),
				html.Input(
					html.Type("file"),
					html.Name("file"),
					gomponents.Attr("accept", ".csv,.xlsx,text/csv"),
					html.Required(),
				),
			),
			html.Button(html.Type("submit"), gomponents.Text("Upload")),
		),
		gomponents.If(loaded, html.Form(
			html.Method("post"),
			html.Action("/reset"),
			html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text("Clear")),
		)),
	)
}

func errorBanner(perr *pageError) gomponents.Node {
	if perr == nil {
		return nil
	}
	return html.Div(
		html.Class("error"),
		gomponents.Attr("role", "alert"),
		html.Strong(gomponents.Text(perr.Message)),
		html.P(gomponents.Text(perr.Action)),
		html.P(html.Class("muted"), gomponents.Textf("Code: %s, request: %s", perr.Code, perr.RequestID)),
	)
}

func loadedSections(v *core.View) gomponents.Node {
	if v.State != core.StateLoaded || v.Description == nil {
		return nil
	}
	nodes := []gomponents.Node{
		previewSection(v.Description),
		statsSection(v.Description),
		otherColumns(v.Classification),
	}

	if v.Scatter != nil {
		nodes = append(nodes,
			html.Section(
				html.Class("chart"),
				selectForm("Choose X-axis:", core.EventX, v.Classification.Numeric, v.Selection.X),
				selectForm("Choose Y-axis:", core.EventY, v.Classification.Numeric, v.Selection.Y),
				chartData("scatter", v.Scatter),
			),
			html.Section(
				html.Class("chart"),
				selectForm("Select column for histogram:", core.EventHistogram, v.Classification.Numeric, v.Selection.Histogram),
				chartImage("/charts/histogram.png", v.Selection.Histogram, "Histogram of "+v.Selection.Histogram),
			),
		)
	}
	for _, n := range v.Notices {
		nodes = append(nodes, html.P(html.Class("notice"), gomponents.Text(n)))
	}

	if v.Pie != nil {
		nodes = append(nodes, html.Section(
			html.Class("chart"),
			selectForm("Select a categorical column for pie chart:", core.EventPie, v.Classification.Categorical, v.Selection.Pie),
			chartData("pie", v.Pie),
			html.H3(gomponents.Textf("Static Pie Chart for %s:", v.Selection.Pie)),
			chartImage("/charts/pie.png", v.Selection.Pie, v.StaticPie.Title),
		))
	}
	return gomponents.Group(nodes)
}

func previewSection(d *core.Description) gomponents.Node {
	header := []gomponents.Node{html.Th()}
	for i, name := range d.Preview.Columns {
		header = append(header, html.Th(
			gomponents.Text(name),
			html.Span(html.Class("dtype"), gomponents.Text(d.Preview.Dtypes[i])),
		))
	}

	rows := make([]gomponents.Node, 0, len(d.Preview.Rows))
	for i, row := range d.Preview.Rows {
		cells := []gomponents.Node{html.Th(gomponents.Text(strconv.Itoa(i)))}
		for _, cell := range row {
			cells = append(cells, html.Td(gomponents.Text(cell)))
		}
		rows = append(rows, html.Tr(cells...))
	}

	return html.Section(
		html.H3(gomponents.Text("Preview of Data:")),
		html.P(html.Class("muted"), gomponents.Textf("%s: %d rows, %d columns", d.Source, d.Rows, d.Columns)),
		html.Div(
			html.Class("scroll"),
			html.Table(
				html.THead(html.Tr(header...)),
				html.TBody(rows...),
			),
		),
	)
}

func statsSection(d *core.Description) gomponents.Node {
	if len(d.Stats) == 0 {
		return html.Section(
			html.H3(gomponents.Text("Summary Statistics:")),
			html.P(html.Class("muted"), gomponents.Text("No numeric columns to summarize.")),
		)
	}

	header := []gomponents.Node{html.Th()}
	for _, st := range d.Stats {
		header = append(header, html.Th(gomponents.Text(st.Column)))
	}

	rows := make([]gomponents.Node, 0, len(core.StatLabels))
	for i, label := range core.StatLabels {
		cells := []gomponents.Node{html.Th(gomponents.Text(label))}
		for _, st := range d.Stats {
			cells = append(cells, html.Td(gomponents.Text(st.Values()[i].String())))
		}
		rows = append(rows, html.Tr(cells...))
	}

	return html.Section(
		html.H3(gomponents.Text("Summary Statistics:")),
		html.Div(
			html.Class("scroll"),
			html.Table(
				html.THead(html.Tr(header...)),
				html.TBody(rows...),
			),
		),
	)
}

func otherColumns(c *core.Classification) gomponents.Node {
	if c == nil || len(c.Other) == 0 {
		return nil
	}
	names := make([]string, len(c.Other))
	for i, col := range c.Other {
		names[i] = fmt.Sprintf("%s (%s)", col.Name, col.Dtype())
	}
	return html.P(html.Class("muted"), gomponents.Text("Not charted: "+strings.Join(names, ", ")))
}

// selectForm posts a selection change. app.js submits it on change; the
// button covers browsers without scripts.
func selectForm(label string, control core.EventKind, options []string, selected string) gomponents.Node {
	opts := make([]gomponents.Node, 0, len(options))
	for _, o := range options {
		opts = append(opts, optionSelectedValue(o, selected, o))
	}
	return html.Form(
		html.Class("control"),
		html.Method("post"),
		html.Action("/select"),
		html.Input(html.Type("hidden"), html.Name("control"), html.Value(string(control))),
		html.Label(
			gomponents.Text(label),
			html.Select(html.Name("column"), gomponents.Attr("data-autosubmit", ""), gomponents.Group(opts)),
		),
		html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text("Apply")),
	)
}

func optionSelectedValue(value, selected, label string) gomponents.Node {
	if value == selected {
		return html.Option(html.Value(value), html.Selected(), gomponents.Text(label))
	}
	return html.Option(html.Value(value), gomponents.Text(label))
}

// chartData embeds a chart spec as a JSON data block for app.js. The
// encoder escapes <, > and &, so the payload cannot close the script tag.
func chartData(kind string, spec any) gomponents.Node {
	b, err := json.Marshal(spec)
	if err != nil {
		return html.P(html.Class("error"), gomponents.Text("chart unavailable"))
	}
	return html.Div(
		html.Div(html.Class("plot"), html.ID("plot-"+kind)),
		html.Script(
			html.Type("application/json"),
			gomponents.Attr("data-chart", kind),
			gomponents.Attr("data-target", "plot-"+kind),
			gomponents.Raw(string(b)),
		),
	)
}

// chartImage references a static chart. The column in the query only
// defeats browser caching across selection changes.
func chartImage(path, column, alt string) gomponents.Node {
	return html.Img(
		html.Class("static-chart"),
		html.Src(path+"?column="+url.QueryEscape(column)),
		html.Alt(alt),
	)
}
