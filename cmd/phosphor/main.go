// Package main is the entry point for the phosphor CLI.
//
// phosphor executes and validates scenario files against the in-memory
// transactional document database. See internal/cli for the commands.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/korsimoro/ext-phosphor/internal/cli"
)

func main() {
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	// The flag is parsed by cobra later; peek at the args so debug logs
	// from scenario execution are not lost before parsing finishes.
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			level.Set(slog.LevelDebug)
		}
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "phosphor: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
