// Package config resolves Pulse configuration from file, environment, and
// CLI flags, recording where each value came from so `pulse config` style
// debugging stays possible.
//
// Precedence, lowest to highest: built-in default, config file,
// environment variable, CLI flag.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalworks/pulse/internal/recommend"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is one setting plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries the CLI-level overrides into resolution.
type ResolveOptions struct {
	ConfigPath string
	CLIDBPath  string
}

// ResolvedConfig is the fully resolved configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath       ResolvedValue `json:"db_path"`
	Services     []string      `json:"services,omitempty"`
	TTLDays      ResolvedValue `json:"ttl_days"`
	CooldownDays ResolvedValue `json:"cooldown_days"`
}

type fileConfig struct {
	DBPath   string   `yaml:"db_path"`
	Services []string `yaml:"services"`

	Recommendations struct {
		TTLDays      *int `yaml:"ttl_days"`
		CooldownDays *int `yaml:"dismissed_cooldown_days"`
	} `yaml:"recommendations"`
}

// DefaultConfigPath returns ~/.pulse/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pulse", "config.yaml")
}

// ResolveConfig loads and layers configuration. A missing config file is
// not an error; a malformed one is.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:   path,
		TTLDays:      ResolvedValue{Value: strconv.Itoa(recommend.DefaultTTLDays), Source: SourceDefault, From: "built-in default"},
		CooldownDays: ResolvedValue{Value: strconv.Itoa(recommend.DefaultCooldownDays), Source: SourceDefault, From: "built-in default"},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		if len(cfg.Services) > 0 {
			out.Services = cfg.Services
		}
		if cfg.Recommendations.TTLDays != nil {
			out.TTLDays = ResolvedValue{Value: strconv.Itoa(*cfg.Recommendations.TTLDays), Source: SourceConfig, From: path}
		}
		if cfg.Recommendations.CooldownDays != nil {
			out.CooldownDays = ResolvedValue{Value: strconv.Itoa(*cfg.Recommendations.CooldownDays), Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.DBPath, "PULSE_DB")
	applyEnv(&out.DBPath, "PULSE_DB_PATH")
	applyEnv(&out.TTLDays, "PULSE_TTL_DAYS")
	applyEnv(&out.CooldownDays, "PULSE_COOLDOWN_DAYS")
	if v := strings.TrimSpace(os.Getenv("PULSE_SERVICES")); v != "" {
		out.Services = splitServices(v)
	}

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// EngineOptions converts the resolved TTL/cooldown values into pass
// options, falling back to defaults on unparsable input.
func (r ResolvedConfig) EngineOptions() recommend.Options {
	opts := recommend.DefaultOptions()
	if n, err := strconv.Atoi(r.TTLDays.Value); err == nil && n > 0 {
		opts.TTLDays = n
	}
	if n, err := strconv.Atoi(r.CooldownDays.Value); err == nil && n >= 0 {
		opts.CooldownDays = n
	}
	return opts
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

func apply(target *ResolvedValue, value string, source ValueSource, from string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	*target = ResolvedValue{Value: strings.TrimSpace(value), Source: source, From: from}
}

func applyEnv(target *ResolvedValue, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*target = ResolvedValue{Value: v, Source: SourceEnv, From: env}
	}
}

func splitServices(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
