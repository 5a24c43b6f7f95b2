package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/phasescope/internal"
	"github.com/valter-silva-au/phasescope/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	a, err := app.NewApp(app.ResolveProjectRoot(), homeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing phasescope: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	_ = a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
