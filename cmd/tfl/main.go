package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	app "github.com/valter-silva-au/taskflow/internal"
	"github.com/valter-silva-au/taskflow/internal/cli"
	"github.com/valter-silva-au/taskflow/internal/core"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env file may supply TASKFLOW_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		return 1
	}

	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing tfl: %v\n", err)
		return 1
	}
	defer a.Close()

	undo := zap.ReplaceGlobals(a.Logger)
	defer undo()
	defer func() { _ = a.Logger.Sync() }()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !core.IsExpected(err) {
			a.Logger.Error("command failed", zap.Error(err))
		}
		return 1
	}
	return 0
}
