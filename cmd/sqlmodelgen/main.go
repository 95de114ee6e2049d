// Command sqlmodelgen generates typestate insert builders, table
// descriptors and schema types from the Go structs of a package and a
// declarative schema configuration file.
//
// It is normally run through go generate:
//
//	//go:generate go run github.com/andrewkroh/go-sqlmodel/cmd/sqlmodelgen -config sqlmodel.yml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrewkroh/go-sqlmodel/internal/modelgen"
)

func main() {
	cfg := modelgen.Config{}
	var watch, verbose bool

	flag.StringVar(&cfg.ConfigFile, "config", "sqlmodel.yml", "Path to the sqlmodel.yml or sqlmodel.toml configuration file")
	flag.StringVar(&cfg.Dir, "dir", "", "Package directory to read models from (default: directory of -config)")
	flag.StringVar(&cfg.Output, "output", "", "Generated file name, overriding the configuration file")
	flag.StringVar(&cfg.PackageName, "package", "", "Go package name for the generated file, overriding the configuration file")
	flag.BoolVar(&watch, "watch", false, "Regenerate whenever the models or the configuration change")
	flag.BoolVar(&verbose, "v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := modelgen.Watch(ctx, cfg, modelgen.DefaultDebounce); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if _, err := modelgen.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
