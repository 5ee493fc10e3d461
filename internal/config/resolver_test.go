package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.TTLDays.Value != "30" || cfg.TTLDays.Source != SourceDefault {
		t.Errorf("TTL = %+v, want built-in default 30", cfg.TTLDays)
	}
	if cfg.CooldownDays.Value != "14" {
		t.Errorf("cooldown = %+v, want default 14", cfg.CooldownDays)
	}
	if cfg.DBPath.Value != "" {
		t.Errorf("db path = %+v, want unset", cfg.DBPath)
	}
}

func TestResolveConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/pulse-test.db
services:
  - Drain Cleaning
  - Water Heater Install
recommendations:
  ttl_days: 7
  dismissed_cooldown_days: 0
`)

	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.DBPath.Value != "/tmp/pulse-test.db" || cfg.DBPath.Source != SourceConfig {
		t.Errorf("db path = %+v", cfg.DBPath)
	}
	if len(cfg.Services) != 2 || cfg.Services[0] != "Drain Cleaning" {
		t.Errorf("services = %v", cfg.Services)
	}
	if cfg.TTLDays.Value != "7" {
		t.Errorf("TTL = %+v, want 7 from file", cfg.TTLDays)
	}
	// explicit zero disables the cooldown and must survive resolution
	if cfg.CooldownDays.Value != "0" || cfg.CooldownDays.Source != SourceConfig {
		t.Errorf("cooldown = %+v, want explicit 0 from file", cfg.CooldownDays)
	}

	opts := cfg.EngineOptions()
	if opts.TTLDays != 7 || opts.CooldownDays != 0 {
		t.Errorf("engine options = %+v", opts)
	}
}

func TestResolveConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "db_path: /from/file.db\n")
	t.Setenv("PULSE_DB_PATH", "/from/env.db")
	t.Setenv("PULSE_SERVICES", "Plumbing, HVAC Tune-Up")

	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.DBPath.Value != "/from/env.db" || cfg.DBPath.Source != SourceEnv {
		t.Errorf("db path = %+v, want env value", cfg.DBPath)
	}
	if len(cfg.Services) != 2 || cfg.Services[1] != "HVAC Tune-Up" {
		t.Errorf("services = %v", cfg.Services)
	}
}

func TestResolveConfig_CLIOverridesEverything(t *testing.T) {
	path := writeConfig(t, "db_path: /from/file.db\n")
	t.Setenv("PULSE_DB_PATH", "/from/env.db")

	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path, CLIDBPath: "/from/cli.db"})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.DBPath.Value != "/from/cli.db" || cfg.DBPath.Source != SourceCLI {
		t.Errorf("db path = %+v, want CLI value", cfg.DBPath)
	}
}

func TestResolveConfig_MalformedFile(t *testing.T) {
	path := writeConfig(t, "db_path: [not: valid")
	if _, err := ResolveConfig(ResolveOptions{ConfigPath: path}); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
