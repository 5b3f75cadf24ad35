package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Games.DefaultTotalLevels != 5 {
		t.Fatalf("default levels = %d", cfg.Games.DefaultTotalLevels)
	}
	if cfg.Goodies.MinImageBytes != 5*1024*1024 {
		t.Fatalf("min image bytes = %d", cfg.Goodies.MinImageBytes)
	}
	if cfg.Games.SessionTTL != 2*time.Hour {
		t.Fatalf("session ttl = %v", cfg.Games.SessionTTL)
	}
}

func TestLoadFileAndLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := "games:\n  default_total_levels: 7\n  total_levels:\n    reframe-quiz: 3\ndatabase:\n  path: base.db\n"
	local := "database:\n  path: local.db\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.local.yaml"), []byte(local), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(viper.New(), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "local.db" {
		t.Fatalf("database path = %q, want local override", cfg.Database.Path)
	}
	if got := cfg.Games.Levels("reframe-quiz", 10); got != 3 {
		t.Fatalf("levels(reframe-quiz) = %d, want 3", got)
	}
	if got := cfg.Games.Levels("healthy-sort", 10); got != 10 {
		t.Fatalf("levels(healthy-sort) = %d, want game default 10", got)
	}
	if got := cfg.Games.Levels("calm-parent", 0); got != 7 {
		t.Fatalf("levels(calm-parent) = %d, want 7", got)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HEALPLAY_DATABASE_PATH", "/tmp/env.db")
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Fatalf("database path = %q", cfg.Database.Path)
	}
}
