package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/index"
	"github.com/suykerbuyk/combo-finder/internal/melee"
	"github.com/suykerbuyk/combo-finder/internal/queue"
)

// Config holds all combo-finder configuration.
type Config struct {
	Scan   ScanConfig   `toml:"scan"`
	Filter FilterConfig `toml:"filter"`
	Cache  CacheConfig  `toml:"cache"`
	Watch  WatchConfig  `toml:"watch"`
	Log    LogConfig    `toml:"log"`
	Worker WorkerConfig `toml:"worker"`

	source string
}

type ScanConfig struct {
	LeadIn     int     `toml:"lead_in"`
	LeadOut    int     `toml:"lead_out"`
	Strictness float64 `toml:"strictness"`
	Output     string  `toml:"output"`
}

type FilterConfig struct {
	Player   SideConfig `toml:"player"`
	Opponent SideConfig `toml:"opponent"`
}

// SideConfig constrains one role. Empty fields are not applied.
type SideConfig struct {
	Character string `toml:"character"`
	Name      string `toml:"name"`
	Code      string `toml:"code"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type WatchConfig struct {
	SettleMS int `toml:"settle_ms"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type WorkerConfig struct {
	RedisURL    string `toml:"redis_url"`
	Queue       string `toml:"queue"`
	DatabaseURL string `toml:"database_url"`
	Concurrency int    `toml:"concurrency"`
	Buffer      int    `toml:"buffer"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Scan: ScanConfig{
			LeadIn:     combo.DefaultConfig.LeadIn,
			LeadOut:    combo.DefaultConfig.LeadOut,
			Strictness: combo.DefaultConfig.Strictness,
			Output:     "combos.json",
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    index.DefaultPath(),
		},
		Watch: WatchConfig{SettleMS: 2000},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Worker: WorkerConfig{
			RedisURL:    "redis://localhost:6379/0",
			Queue:       queue.DefaultQueue,
			Concurrency: 8,
			Buffer:      32,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
// COMBOFIND_REDIS_URL and COMBOFIND_DATABASE_URL override the worker
// connection settings.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			cfg.source = p
			break
		}
	}

	if v := os.Getenv("COMBOFIND_REDIS_URL"); v != "" {
		cfg.Worker.RedisURL = v
	}
	if v := os.Getenv("COMBOFIND_DATABASE_URL"); v != "" {
		cfg.Worker.DatabaseURL = v
	}

	cfg.Scan.Output = expandHome(cfg.Scan.Output)
	cfg.Cache.Path = expandHome(cfg.Cache.Path)

	return cfg, nil
}

// Source returns the file the config was read from, or "" for defaults.
func (c Config) Source() string {
	return c.source
}

// Settle returns the watch settle delay.
func (c Config) Settle() time.Duration {
	return time.Duration(c.Watch.SettleMS) * time.Millisecond
}

// Combo converts the scan and filter sections into a validated detection
// config.
func (c Config) Combo() (combo.Config, error) {
	out := combo.Config{
		LeadIn:     c.Scan.LeadIn,
		LeadOut:    c.Scan.LeadOut,
		Strictness: c.Scan.Strictness,
	}

	var err error
	if out.Player, err = c.Filter.Player.side(); err != nil {
		return out, fmt.Errorf("filter.player: %w", err)
	}
	if out.Opponent, err = c.Filter.Opponent.side(); err != nil {
		return out, fmt.Errorf("filter.opponent: %w", err)
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

func (s SideConfig) side() (combo.SideFilter, error) {
	var f combo.SideFilter
	if s.Character != "" {
		ch, err := melee.ParseCharacter(s.Character)
		if err != nil {
			return f, err
		}
		f.Character = combo.Require(ch)
	}
	if s.Name != "" {
		f.Name = combo.Require(s.Name)
	}
	if s.Code != "" {
		f.Code = combo.Require(s.Code)
	}
	return f, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "combo-finder", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "combo-finder", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
