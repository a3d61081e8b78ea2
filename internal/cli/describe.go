package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/explorer/internal/core"
)

// report is the describe output for one file.
type report struct {
	File        string           `json:"file" yaml:"file"`
	Description core.Description `json:"description" yaml:"description"`
	Numeric     []string         `json:"numeric" yaml:"numeric"`
	Categorical []string         `json:"categorical" yaml:"categorical"`
	Other       []string         `json:"other,omitempty" yaml:"other,omitempty"`
}

func newDescribeCmd() *cobra.Command {
	var (
		rows   int
		format string
		parse  parseFlags
	)

	cmd := &cobra.Command{
		Use:   "describe FILE...",
		Short: "Print the preview, summary statistics and column classes of tables",
		Example: `  explorer describe people.csv
  explorer describe a.csv b.xlsx --rows 10 --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			opts, err := parse.options()
			if err != nil {
				return err
			}

			reports := make([]report, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range args {
				g.Go(func() error {
					t, err := loadFile(ctx, path, opts)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					class := core.ClassifyColumns(t)
					r := report{
						File:        path,
						Description: core.DescribeTable(t, rows),
						Numeric:     class.Numeric,
						Categorical: class.Categorical,
					}
					for _, c := range class.Other {
						r.Other = append(r.Other, c.Name)
					}
					reports[i] = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return writeReports(cmd.OutOrStdout(), format, reports)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", core.DefaultPreviewRows, "number of preview rows")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, json or yaml")
	parse.register(cmd.Flags())
	return cmd
}

func validateFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'text', 'json' or 'yaml'", format)
}

func writeReports(w io.Writer, format string, reports []report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeText(w, r); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, r report) error {
	d := r.Description
	fmt.Fprintf(w, "== %s (%d rows, %d columns) ==\n\n", r.File, d.Rows, d.Columns)

	fmt.Fprintln(w, "Preview of Data:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\t"+strings.Join(d.Preview.Columns, "\t"))
	for i, row := range d.Preview.Rows {
		fmt.Fprintln(tw, strconv.Itoa(i)+"\t"+strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nSummary Statistics:")
	if len(d.Stats) == 0 {
		fmt.Fprintln(w, "(no numeric columns)")
	} else {
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		names := make([]string, len(d.Stats))
		for i, s := range d.Stats {
			names[i] = s.Column
		}
		fmt.Fprintln(tw, "\t"+strings.Join(names, "\t"))
		for i, label := range core.StatLabels {
			cells := make([]string, len(d.Stats))
			for j, s := range d.Stats {
				cells[j] = s.Values()[i].String()
			}
			fmt.Fprintln(tw, label+"\t"+strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nNumeric: %s\n", listOrNone(r.Numeric))
	fmt.Fprintf(w, "Categorical: %s\n", listOrNone(r.Categorical))
	if len(r.Other) > 0 {
		fmt.Fprintf(w, "Not charted: %s\n", strings.Join(r.Other, ", "))
	}
	return nil
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
