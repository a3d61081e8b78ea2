// Package main is the entry point for the explorer CLI binary.
package main

import (
	"os"

	"github.com/JonMunkholm/explorer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
