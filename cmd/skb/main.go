package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/skill-brain/internal"
	"github.com/valter-silva-au/skill-brain/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	projectDir := app.ResolveProjectDir()

	a, err := app.NewApp(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing skb: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close() }()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
