package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/combo-finder/internal/melee"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scan.LeadIn != 30 {
		t.Errorf("Scan.LeadIn = %d", cfg.Scan.LeadIn)
	}
	if cfg.Scan.LeadOut != 0 {
		t.Errorf("Scan.LeadOut = %d", cfg.Scan.LeadOut)
	}
	if cfg.Scan.Strictness != 0.5 {
		t.Errorf("Scan.Strictness = %v", cfg.Scan.Strictness)
	}
	if cfg.Scan.Output != "combos.json" {
		t.Errorf("Scan.Output = %q", cfg.Scan.Output)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should default to false")
	}
	if cfg.Watch.SettleMS != 2000 {
		t.Errorf("Watch.SettleMS = %d", cfg.Watch.SettleMS)
	}
	if cfg.Worker.Queue != "combo_jobs" {
		t.Errorf("Worker.Queue = %q", cfg.Worker.Queue)
	}
	if cfg.Worker.Concurrency != 8 || cfg.Worker.Buffer != 32 {
		t.Errorf("Worker = %+v", cfg.Worker)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	// Point XDG to an empty dir so no config file is found
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COMBOFIND_REDIS_URL", "")
	t.Setenv("COMBOFIND_DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source() != "" {
		t.Errorf("Source = %q, want empty", cfg.Source())
	}
	if cfg.Settle() != 2*time.Second {
		t.Errorf("Settle = %v", cfg.Settle())
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	xdg := t.TempDir()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", home)
	t.Setenv("COMBOFIND_REDIS_URL", "")
	t.Setenv("COMBOFIND_DATABASE_URL", "")

	configDir := filepath.Join(xdg, "combo-finder")
	os.MkdirAll(configDir, 0o755)

	tomlContent := `[scan]
lead_in = 60
strictness = 0.8
output = "~/clips/combos.json"

[filter.player]
character = "falcon"
code = "CF#"

[filter.opponent]
name = "Puff"

[worker]
concurrency = 2
`
	path := filepath.Join(configDir, "config.toml")
	os.WriteFile(path, []byte(tomlContent), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source() != path {
		t.Errorf("Source = %q, want %q", cfg.Source(), path)
	}
	if cfg.Scan.LeadIn != 60 {
		t.Errorf("Scan.LeadIn = %d", cfg.Scan.LeadIn)
	}
	if cfg.Scan.Output != filepath.Join(home, "clips", "combos.json") {
		t.Errorf("Scan.Output = %q, want expanded", cfg.Scan.Output)
	}
	// Unset keys keep their defaults.
	if cfg.Worker.Buffer != 32 {
		t.Errorf("Worker.Buffer = %d, want default 32", cfg.Worker.Buffer)
	}

	cc, err := cfg.Combo()
	if err != nil {
		t.Fatalf("Combo: %v", err)
	}
	if ch, ok := cc.Player.Character.Value(); !ok || ch != melee.CaptainFalcon {
		t.Errorf("Player.Character = %v, %v", ch, ok)
	}
	if code, ok := cc.Player.Code.Value(); !ok || code != "CF#" {
		t.Errorf("Player.Code = %q, %v", code, ok)
	}
	if _, ok := cc.Player.Name.Value(); ok {
		t.Error("Player.Name should be unset")
	}
	if name, ok := cc.Opponent.Name.Value(); !ok || name != "Puff" {
		t.Errorf("Opponent.Name = %q, %v", name, ok)
	}
	if cc.Strictness != 0.8 {
		t.Errorf("Strictness = %v", cc.Strictness)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	configDir := filepath.Join(xdg, "combo-finder")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[scan\nlead_in = "), 0o644)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("err = %v, want parse config error", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COMBOFIND_REDIS_URL", "redis://queue:6379/2")
	t.Setenv("COMBOFIND_DATABASE_URL", "postgres://combos@db/combos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Worker.RedisURL != "redis://queue:6379/2" {
		t.Errorf("RedisURL = %q", cfg.Worker.RedisURL)
	}
	if cfg.Worker.DatabaseURL != "postgres://combos@db/combos" {
		t.Errorf("DatabaseURL = %q", cfg.Worker.DatabaseURL)
	}
}

func TestCombo_Invalid(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want string
	}{
		{"strictness", func(c *Config) { c.Scan.Strictness = 1.5 }, "strictness"},
		{"lead in", func(c *Config) { c.Scan.LeadIn = -1 }, "lead-in"},
		{"character", func(c *Config) { c.Filter.Opponent.Character = "waluigi" }, "filter.opponent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			_, err := cfg.Combo()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandHome("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expandHome = %q", got)
	}
}
