package config

import (
	"log/slog"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL",
		"CHART_WIDTH", "CHART_HEIGHT",
		"OUTPUT_PATH", "HOURLY_OUTPUT_PATH",
		"SQLITE_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.ChartWidth != 1400 {
		t.Errorf("ChartWidth = %d, want 1400", got.ChartWidth)
	}
	if got.ChartHeight != 800 {
		t.Errorf("ChartHeight = %d, want 800", got.ChartHeight)
	}
	if got.OutputPath != "glucose_levels.png" {
		t.Errorf("OutputPath = %q, want glucose_levels.png", got.OutputPath)
	}
	if got.HourlyOutputPath != "glucose_hourly.png" {
		t.Errorf("HourlyOutputPath = %q, want glucose_hourly.png", got.HourlyOutputPath)
	}
	if got.SQLitePath != "" {
		t.Errorf("SQLitePath = %q, want empty (archive disabled)", got.SQLitePath)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CHART_WIDTH", " 640 ")
	t.Setenv("CHART_HEIGHT", "480")
	t.Setenv("OUTPUT_PATH", "out/levels.png")
	t.Setenv("SQLITE_PATH", "out/archive.db")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.AppEnv != "prod" {
		t.Errorf("AppEnv = %q, want prod", got.AppEnv)
	}
	if got.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", got.LogLevel)
	}
	if got.ChartWidth != 640 || got.ChartHeight != 480 {
		t.Errorf("chart = %dx%d, want 640x480", got.ChartWidth, got.ChartHeight)
	}
	if got.OutputPath != "out/levels.png" {
		t.Errorf("OutputPath = %q, want out/levels.png", got.OutputPath)
	}
	if got.SQLitePath != "out/archive.db" {
		t.Errorf("SQLitePath = %q, want out/archive.db", got.SQLitePath)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad app env", key: "APP_ENV", value: "staging"},
		{name: "bad log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "non-numeric width", key: "CHART_WIDTH", value: "wide"},
		{name: "zero width", key: "CHART_WIDTH", value: "0"},
		{name: "negative height", key: "CHART_HEIGHT", value: "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
