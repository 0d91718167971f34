package app

import (
	"context"
	"fmt"
	"log/slog"

	"glucograph/internal/archive"
	"glucograph/internal/clarity"
	"glucograph/internal/config"
	"glucograph/internal/render"
	"glucograph/internal/stats"
)

// Run executes the pipeline once: parse the export, optionally archive the
// readings, then render the time-series and hourly charts.
func Run(ctx context.Context, cfg config.Config, csvPath string) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"chartWidth", cfg.ChartWidth,
		"chartHeight", cfg.ChartHeight,
		"outputPath", cfg.OutputPath,
		"hourlyOutputPath", cfg.HourlyOutputPath,
		"sqlitePath", cfg.SQLitePath,
	)

	readings, err := clarity.ReadFile(csvPath)
	if err != nil {
		return fmt.Errorf("read export %s: %w", csvPath, err)
	}
	slog.Info("export parsed",
		"path", csvPath,
		"readings", len(readings),
		"from", readings[0].Time,
		"to", readings[len(readings)-1].Time,
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	if cfg.SQLitePath != "" {
		if err := archiveReadings(cfg.SQLitePath, readings); err != nil {
			return err
		}
	}

	opts := render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}

	if err := render.TimeSeriesFile(cfg.OutputPath, readings, opts); err != nil {
		return fmt.Errorf("render time series: %w", err)
	}
	slog.Info("chart written", "path", cfg.OutputPath)

	hourly := stats.Hourly(readings)
	if err := render.HourlyFile(cfg.HourlyOutputPath, hourly, opts); err != nil {
		return fmt.Errorf("render hourly stats: %w", err)
	}
	slog.Info("chart written", "path", cfg.HourlyOutputPath)

	return nil
}

func archiveReadings(path string, readings []clarity.Reading) error {
	store, err := archive.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("archive close", "error", closeErr)
		}
	}()

	if err := store.InsertReadings(readings); err != nil {
		return fmt.Errorf("archive readings: %w", err)
	}
	total, err := store.CountReadings()
	if err != nil {
		return fmt.Errorf("count archived readings: %w", err)
	}
	slog.Info("readings archived", "inserted", len(readings), "total", total)
	return nil
}
