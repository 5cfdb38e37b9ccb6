package main

import (
	"fmt"
	"os"

	"github.com/warrantylens/warrantylens/internal/cmd"
)

// Version information set via ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
