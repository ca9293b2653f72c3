package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the dashboard service.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	SnapshotCSVPath string
	HistoryCSVPath  string

	ViewsSQLitePath string

	RefreshEnabled  bool
	RefreshInterval time.Duration

	TopUrgentLimit  int
	SmoothingWindow int

	// Exact risk_bucket literal counted by the "High Risk (RED)" KPI. The
	// drill-down classifier matches "RED" as a case-insensitive substring
	// instead, so labels that only differ in case register there but not here.
	RedKPILabel string

	ChartWidth  int
	ChartHeight int
}

// FromEnv loads configuration from environment variables with sensible defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()

	return Config{
		ListenAddr:      getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:     time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 20)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		SnapshotCSVPath: getEnv("APP_SNAPSHOT_CSV_PATH", "latest_snapshot.csv"),
		HistoryCSVPath:  getEnv("APP_HISTORY_CSV_PATH", "dataset_full.csv"),
		ViewsSQLitePath: getEnv("APP_VIEWS_SQLITE_PATH", ""),
		RefreshEnabled:  getEnvBool("APP_REFRESH_ENABLED", false),
		RefreshInterval: time.Duration(getEnvInt("APP_REFRESH_INTERVAL_SEC", 300)) * time.Second,
		TopUrgentLimit:  getEnvInt("APP_TOP_URGENT_LIMIT", 10),
		SmoothingWindow: getEnvInt("APP_SMOOTHING_WINDOW", 7),
		RedKPILabel:     getEnv("APP_RED_KPI_LABEL", "RED - Immediate Action"),
		ChartWidth:      getEnvInt("APP_CHART_WIDTH", 900),
		ChartHeight:     getEnvInt("APP_CHART_HEIGHT", 360),
	}
}

func loadConfigDefaultsFromFile() {
	bootstrapCandidates := []string{
		"./pdm-fleet-dashboard.env",
		"/etc/default/pdm-fleet-dashboard",
	}

	for _, candidate := range bootstrapCandidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}
		_ = applyEnvDefaultsFromFile(abs)
	}

	candidates := make([]string, 0, 2)
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "/etc/pdm-fleet-dashboard/config.env")

	for _, candidate := range candidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}

		if err := applyEnvDefaultsFromFile(abs); err == nil {
			return
		}
	}
}

func applyEnvDefaultsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}

		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}

	return scanner.Err()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}
