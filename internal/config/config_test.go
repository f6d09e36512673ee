package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "123")
	t.Setenv("TEST_BAD_INT", "12x")
	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_FALSE", "no")

	if v := getEnv("TEST_STR", ""); v != "value" {
		t.Fatalf("expected value, got %s", v)
	}
	if v := getEnvAsInt("TEST_INT", 0); v != 123 {
		t.Fatalf("expected 123, got %d", v)
	}
	if v := getEnvAsInt("TEST_BAD_INT", 7); v != 7 {
		t.Fatalf("expected default 7 for malformed int, got %d", v)
	}
	if !getEnvAsBool("TEST_BOOL_TRUE", false) {
		t.Fatalf("expected true")
	}
	if getEnvAsBool("TEST_BOOL_FALSE", true) {
		t.Fatalf("expected false")
	}
}

func TestLoadDefaults(t *testing.T) {
	_ = os.Unsetenv("SERVER_PORT")
	_ = os.Unsetenv("ENV_FILE")
	_ = os.Unsetenv("DATA_SOURCE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port == "" {
		t.Fatalf("expected default server port set")
	}
	if cfg.Analytics.CacheTTLMinutes == 0 || cfg.Analytics.DefaultRange != "week" {
		t.Fatalf("expected analytics defaults set: %+v", cfg.Analytics)
	}
	if cfg.DataSource.Kind != DataSourcePostgres {
		t.Fatalf("expected postgres data source by default, got %s", cfg.DataSource.Kind)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.env")
	content := "ANALYTICS_DEFAULT_RANGE=month\nANALYTICS_CACHE_TTL_MINUTES=42\nREDIS_PORT=6390\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("ENV_FILE", path)
	t.Setenv("REDIS_PORT", "6400")
	_ = os.Unsetenv("ANALYTICS_DEFAULT_RANGE")
	_ = os.Unsetenv("ANALYTICS_CACHE_TTL_MINUTES")
	t.Cleanup(func() {
		_ = os.Unsetenv("ANALYTICS_DEFAULT_RANGE")
		_ = os.Unsetenv("ANALYTICS_CACHE_TTL_MINUTES")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analytics.DefaultRange != "month" || cfg.Analytics.CacheTTLMinutes != 42 {
		t.Fatalf("expected values from env file, got %+v", cfg.Analytics)
	}
	if cfg.Redis.Port != "6400" {
		t.Fatalf("existing env must win over env file, got %s", cfg.Redis.Port)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}

func TestTopicsList_SkipsEmpty(t *testing.T) {
	topics := Topics{Orders: "orders", Favorites: "favorites"}
	list := topics.List()
	if len(list) != 2 || list[0] != "orders" || list[1] != "favorites" {
		t.Fatalf("unexpected topics: %v", list)
	}
}

func TestAnalyticsLocation(t *testing.T) {
	loc, err := AnalyticsConfig{TimeZone: "UTC"}.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v %v", loc, err)
	}
	if _, err := (AnalyticsConfig{TimeZone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
