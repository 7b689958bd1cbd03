package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom() // no files
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Engine != "beep" {
		t.Errorf("Engine = %q, want beep", cfg.Engine)
	}
	if cfg.Volume != 1.0 {
		t.Errorf("Volume = %v, want 1.0", cfg.Volume)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
engine = "mpv"
volume = 0.5
loop = true
mpris = true

[mpv]
video = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Engine != "mpv" {
		t.Errorf("Engine = %q, want mpv", cfg.Engine)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", cfg.Volume)
	}
	if !cfg.Loop || !cfg.MPRIS || !cfg.MPV.Video {
		t.Error("boolean options not loaded")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFrom_MissingFilesAreSkipped(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Engine != "beep" {
		t.Errorf("Engine = %q, want default", cfg.Engine)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
