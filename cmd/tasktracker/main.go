package main

import (
	"os"

	"github.com/tgienger/tasktracker/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], cli.Options{
		Build: cli.BuildInfo{Version: version, Commit: commit, Date: date},
	}))
}
