package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.SnapshotCSVPath != "latest_snapshot.csv" {
		t.Fatalf("unexpected snapshot path: %q", cfg.SnapshotCSVPath)
	}
	if cfg.HistoryCSVPath != "dataset_full.csv" {
		t.Fatalf("unexpected history path: %q", cfg.HistoryCSVPath)
	}
	if cfg.RefreshEnabled {
		t.Fatalf("refresh should be off by default")
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Fatalf("unexpected refresh interval: %v", cfg.RefreshInterval)
	}
	if cfg.TopUrgentLimit != 10 || cfg.SmoothingWindow != 7 {
		t.Fatalf("unexpected limits: top=%d window=%d", cfg.TopUrgentLimit, cfg.SmoothingWindow)
	}
	if cfg.RedKPILabel != "RED - Immediate Action" {
		t.Fatalf("unexpected red label: %q", cfg.RedKPILabel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_LISTEN_ADDR", ":9999")
	t.Setenv("APP_REFRESH_ENABLED", "true")
	t.Setenv("APP_REFRESH_INTERVAL_SEC", "60")
	t.Setenv("APP_SMOOTHING_WINDOW", "14")
	t.Setenv("APP_RED_KPI_LABEL", "CRITICAL")

	cfg := FromEnv()

	if cfg.ListenAddr != ":9999" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if !cfg.RefreshEnabled || cfg.RefreshInterval != time.Minute {
		t.Fatalf("refresh override not applied: enabled=%v interval=%v", cfg.RefreshEnabled, cfg.RefreshInterval)
	}
	if cfg.SmoothingWindow != 14 {
		t.Fatalf("unexpected smoothing window: %d", cfg.SmoothingWindow)
	}
	if cfg.RedKPILabel != "CRITICAL" {
		t.Fatalf("unexpected red label: %q", cfg.RedKPILabel)
	}
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_TOP_URGENT_LIMIT", "not-a-number")
	t.Setenv("APP_REFRESH_ENABLED", "definitely")

	cfg := FromEnv()

	if cfg.TopUrgentLimit != 10 {
		t.Fatalf("expected default limit on bad int, got %d", cfg.TopUrgentLimit)
	}
	if cfg.RefreshEnabled {
		t.Fatalf("expected default bool on bad value")
	}
}

func TestApplyEnvDefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment\nAPP_TEST_SNAPSHOT_PATH=\"/data/latest.csv\"\n\nbroken line\nAPP_TEST_EMPTY=\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("APP_TEST_SNAPSHOT_PATH", "")

	if err := applyEnvDefaultsFromFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("APP_TEST_SNAPSHOT_PATH"); got != "/data/latest.csv" {
		t.Fatalf("expected quoted value applied, got %q", got)
	}
}

func TestApplyEnvDefaultsDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	if err := os.WriteFile(path, []byte("APP_TEST_KEEP=file-value\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("APP_TEST_KEEP", "env-value")

	if err := applyEnvDefaultsFromFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("APP_TEST_KEEP"); got != "env-value" {
		t.Fatalf("environment should win over file defaults, got %q", got)
	}
}
