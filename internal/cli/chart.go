package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/render"
)

func newChartCmd() *cobra.Command {
	var (
		kind   string
		column string
		out    string
		width  int
		height int
		grid   int
		bins   int
		parse  parseFlags
	)

	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Render the static histogram or pie chart of a table as PNG",
		Example: `  explorer chart people.csv --kind histogram --column age --out age.png
  explorer chart people.csv --kind pie --out - > city.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parse.options()
			if err != nil {
				return err
			}
			t, err := loadFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			class := core.ClassifyColumns(t)
			size := render.Size{Width: width, Height: height}

			var draw func(io.Writer) error
			switch kind {
			case "histogram":
				col, err := chooseColumn(column, class.Numeric, "numeric")
				if err != nil {
					return err
				}
				spec, err := core.RenderHistogram(t, col, core.HistogramOptions{GridSize: grid, MaxBins: bins})
				if err != nil {
					return err
				}
				draw = func(w io.Writer) error { return render.Histogram(w, spec, size) }
			case "pie":
				col, err := chooseColumn(column, class.Categorical, "categorical")
				if err != nil {
					return err
				}
				freqs, err := core.ComputeFrequencies(t, col)
				if err != nil {
					return err
				}
				_, spec := core.RenderPie(col, freqs)
				draw = func(w io.Writer) error { return render.Pie(w, spec, size) }
			default:
				return fmt.Errorf("unsupported --kind %q: use 'histogram' or 'pie'", kind)
			}

			if out == "-" {
				return draw(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := draw(f); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "histogram", "chart kind: histogram or pie")
	cmd.Flags().StringVar(&column, "column", "", "column to chart (default: first eligible column)")
	cmd.Flags().StringVar(&out, "out", "chart.png", `output path, "-" for stdout`)
	cmd.Flags().IntVar(&width, "width", render.DefaultSize.Width, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", render.DefaultSize.Height, "image height in pixels")
	cmd.Flags().IntVar(&grid, "kde-grid", core.DefaultKDEGridSize, "density curve points")
	cmd.Flags().IntVar(&bins, "max-bins", core.DefaultMaxBins, "histogram bin cap")
	parse.register(cmd.Flags())
	return cmd
}

// chooseColumn validates column against the eligible set, or picks the
// first eligible column when none was given.
func chooseColumn(column string, eligible []string, what string) (string, error) {
	if column == "" {
		if len(eligible) == 0 {
			return "", fmt.Errorf("%w: no %s columns", core.ErrInvalidSelection, what)
		}
		return eligible[0], nil
	}
	for _, c := range eligible {
		if c == column {
			return column, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a %s column", core.ErrInvalidSelection, column, what)
}
