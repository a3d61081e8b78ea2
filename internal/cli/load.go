package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/JonMunkholm/explorer/internal/table"
)

// parseFlags are the table parsing flags shared by every command.
type parseFlags struct {
	delimiter string
	sheet     string
}

func (p *parseFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&p.delimiter, "delimiter", "", `field delimiter: ",", ";", "tab" or "|" (default: detect)`)
	fs.StringVar(&p.sheet, "sheet", "", "xlsx sheet to read (default: first sheet)")
}

func (p *parseFlags) options() (table.Options, error) {
	opts := table.Options{Sheet: p.sheet}
	switch p.delimiter {
	case "":
	case ",":
		opts.Delimiter = ','
	case ";":
		opts.Delimiter = ';'
	case "|":
		opts.Delimiter = '|'
	case "\t", "tab":
		opts.Delimiter = '\t'
	default:
		return opts, fmt.Errorf("unsupported --delimiter: %s", p.delimiter)
	}
	return opts, nil
}

// loadFile reads and parses one local file.
func loadFile(ctx context.Context, path string, opts table.Options) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return table.Load(ctx, filepath.Base(path), data, opts)
}
