// Command processor normalizes the raw sales dataset and writes the
// canonical CSV cache read by the analytics server and the forecast job.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/JTHCode/salesdash/internal/config"
	"github.com/JTHCode/salesdash/internal/dataprocessing"
	"github.com/JTHCode/salesdash/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Dataset processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("processor", flag.ContinueOnError)
	flags.SetOutput(stderr)
	in := flags.String("in", "", "raw dataset (.xlsx or .csv); defaults to the configured path")
	sheet := flags.String("sheet", "", "workbook sheet; defaults to the configured sheet or the first one")
	reuse := flags.Bool("reuse", false, "reuse an existing canonical cache instead of re-reading the raw dataset")
	quiet := flags.Bool("quiet", false, "disable the progress bar")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *in != "" {
		cfg.Paths.RawDataset = *in
	}
	if *sheet != "" {
		cfg.Data.Sheet = *sheet
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	paths.LogPathResolution(logger)

	barOut := stderr
	if *quiet {
		barOut = io.Discard
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(barOut),
		progressbar.OptionSetDescription("normalizing rows"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	loader := dataprocessing.NewLoader(paths, logger,
		dataprocessing.WithSheet(cfg.Data.Sheet),
		dataprocessing.WithProgress(func(done int) { _ = bar.Set(done) }),
	)

	logger.InfoContext(ctx, "Processing sales dataset",
		slog.String("raw_dataset", paths.RawDataset),
		slog.Bool("reuse_cache", *reuse))

	table, err := loader.Load(ctx, !*reuse)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	report := table.ValidationReport()
	fmt.Fprintf(stdout, "Canonical dataset written to %s (%d rows, %d excluded).\n",
		paths.CanonicalCSV, table.Len(), report.Excluded)
	return nil
}
