package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// Chart geometry in pixels.
	ChartWidth  int
	ChartHeight int

	// OutputPath is the time-series chart, HourlyOutputPath the per-hour stats
	// chart. Relative paths land in the process working directory and are
	// overwritten on each run.
	OutputPath       string
	HourlyOutputPath string

	// SQLitePath enables the readings archive when non-empty.
	SQLitePath string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	chartWidth, err := positiveIntFromEnv("CHART_WIDTH", 1400)
	if err != nil {
		return Config{}, err
	}
	chartHeight, err := positiveIntFromEnv("CHART_HEIGHT", 800)
	if err != nil {
		return Config{}, err
	}

	outputPath := strings.TrimSpace(os.Getenv("OUTPUT_PATH"))
	if outputPath == "" {
		outputPath = "glucose_levels.png"
	}
	hourlyOutputPath := strings.TrimSpace(os.Getenv("HOURLY_OUTPUT_PATH"))
	if hourlyOutputPath == "" {
		hourlyOutputPath = "glucose_hourly.png"
	}

	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))

	return Config{
		AppEnv:           appEnv,
		LogLevel:         level,
		ChartWidth:       chartWidth,
		ChartHeight:      chartHeight,
		OutputPath:       outputPath,
		HourlyOutputPath: hourlyOutputPath,
		SQLitePath:       sqlitePath,
	}, nil
}

func positiveIntFromEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q (must be positive)", key, s)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
