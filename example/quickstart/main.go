// Command quickstart opens a file-backed blog database, inserts a few
// records through the generated builders, and prints what was stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/andrewkroh/go-sqlmodel/example/blog"
	"github.com/andrewkroh/go-sqlmodel/sqlmodel"
)

func main() {
	path := flag.String("db", filepath.Join(os.TempDir(), "sqlmodel-quickstart.db"), "Path to the SQLite database file")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), *path, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	metrics := sqlmodel.NewMetrics(reg)

	db, err := sqlmodel.Open[blog.Blog](ctx, path,
		sqlmodel.WithLogger(logger),
		sqlmodel.WithMetrics(metrics),
		sqlmodel.WithPragmas("journal_mode(WAL)", "busy_timeout(5000)"),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	// Ignore the duplicate when the example runs against an existing file.
	if _, err := blog.InsertUser(ctx, db, blog.NewUserInsert().Name("alice").ID(1)); err != nil {
		logger.Warn("user not inserted", "error", err)
	}

	body := "Typestate builders reject incomplete records at compile time."
	if _, err := blog.InsertPostRecord(ctx, db, blog.Post{AuthorID: 1, Title: "Hello", Body: &body}); err != nil {
		return err
	}
	if _, err := blog.InsertPost(ctx, db, blog.NewPostInsert().Title("Untitled").AuthorID(1)); err != nil {
		return err
	}

	var posts int
	if err := db.SQL().QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&posts); err != nil {
		return fmt.Errorf("counting posts: %w", err)
	}
	var inserted dto.Metric
	if err := metrics.RowsInserted.Write(&inserted); err != nil {
		return fmt.Errorf("reading metrics: %w", err)
	}
	fmt.Printf("%s holds %d posts (%v rows inserted in this run)\n",
		path, posts, inserted.GetCounter().GetValue())
	return nil
}
