// Command forecast runs the offline forecasting pipeline and writes the
// forecast artifact served by the analytics server.
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
	"github.com/JTHCode/salesdash/internal/forecast"
	"github.com/JTHCode/salesdash/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Forecast pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := flag.NewFlagSet("forecast", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.Forecast.Method, "method", cfg.Forecast.Method, "forecast method: moving_average or linear_trend")
	flags.StringVar(&cfg.Forecast.Metric, "metric", cfg.Forecast.Metric, "measure to forecast")
	flags.IntVar(&cfg.Forecast.Horizon, "horizon", cfg.Forecast.Horizon, "number of future periods")
	flags.IntVar(&cfg.Forecast.Window, "window", cfg.Forecast.Window, "moving average window")
	quiet := flags.Bool("quiet", false, "disable the progress bar")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid forecast settings: %w", err)
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

	barOut := stderr
	if *quiet {
		barOut = io.Discard
	}
	bar := progressbar.NewOptions(len(forecast.Steps),
		progressbar.OptionSetWriter(barOut),
		progressbar.OptionSetDescription("forecast"),
		progressbar.OptionClearOnFinish(),
	)

	loader := dataprocessing.NewLoader(paths, logger, dataprocessing.WithSheet(cfg.Data.Sheet))
	store := forecast.NewStore(paths.ForecastFile, logger)
	pipeline := forecast.NewPipeline(loader, store, cfg.Forecast, logger,
		forecast.WithStepCallback(func(step string) {
			bar.Describe(step)
			_ = bar.Add(1)
		}),
	)

	if _, err := pipeline.Run(ctx); err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Fprintln(stdout, forecast.Summary(store.Path()))
	return nil
}
