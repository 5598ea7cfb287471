package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/sector-forge/internal/config"
	"github.com/talgya/sector-forge/internal/engine"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("sectorgen %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestBuildAdvanceReport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SECTORGEN_DB_PATH", filepath.Join(dir, "sectors.db"))
	t.Setenv("SECTORGEN_OUTPUT_DIR", dir)
	t.Setenv("SECTORGEN_LOG_LEVEL", "error")

	out := runCLI(t, "build", "--sector", "AAAA", "--seed", "alpha-1")
	if !strings.Contains(out, "16 systems") {
		t.Errorf("build summary missing system count:\n%s", out)
	}
	exports, err := filepath.Glob(filepath.Join(dir, "sector-*.json"))
	if err != nil || len(exports) != 1 {
		t.Errorf("exports = %v (err %v), want one file", exports, err)
	}

	out = runCLI(t, "advance", "AAAA", "--turns", "2")
	if !strings.Contains(out, "turn 2") {
		t.Errorf("advance output missing turn:\n%s", out)
	}

	out = runCLI(t, "report")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("report has %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "AAAA,alpha-1,0,8,10,") {
		t.Errorf("report row = %q", lines[1])
	}
}

func TestExportPath(t *testing.T) {
	rec := &engine.SectorRecord{GeneratedAt: time.Date(2026, 3, 1, 12, 4, 5, 0, time.UTC)}
	got := exportPath("out", "sector-%Y%m%d-%H%M%S.json", rec)
	if want := filepath.Join("out", "sector-20260301-120405.json"); got != want {
		t.Errorf("exportPath() = %q, want %q", got, want)
	}
}

func TestNewLogger(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	logger, err := newLogger(config.Settings{LogLevel: "debug", LogFormat: "auto"}, f)
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}
	logger.Debug("probe", "k", 1)

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{") {
		t.Errorf("auto format on a file should log JSON, got %q", data)
	}

	if _, err := newLogger(config.Settings{LogLevel: "loud", LogFormat: "text"}, f); err == nil {
		t.Error("newLogger() accepted an unknown level")
	}
}
