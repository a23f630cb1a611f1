package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the combo-finder config directory path.
// Uses $XDG_CONFIG_HOME/combo-finder if set, otherwise ~/.config/combo-finder.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "combo-finder")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "combo-finder")
}

// ConfigPath returns the path WriteDefault writes to.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// WriteDefault writes a commented default config.toml. It returns the file
// path and "created", or "exists" when a config is already present and was
// left alone.
func WriteDefault() (string, string, error) {
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		return path, "exists", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	d := DefaultConfig()
	content := fmt.Sprintf(`# combo-finder configuration

[scan]
# Frames of context kept before the first hit and after the kill.
lead_in = %d
lead_out = %d
# 0 finds the most combos, 1 only the cleanest.
strictness = %g
output = %q

# Only report combos by this player.
[filter.player]
character = ""
name = ""
code = ""

# Only report combos against this opponent.
[filter.opponent]
character = ""
name = ""
code = ""

[cache]
enabled = %t
path = %q

[watch]
settle_ms = %d

[log]
level = %q
format = %q

[worker]
redis_url = %q
queue = %q
database_url = ""
concurrency = %d
buffer = %d
`,
		d.Scan.LeadIn, d.Scan.LeadOut, d.Scan.Strictness, d.Scan.Output,
		d.Cache.Enabled, CompressHome(d.Cache.Path),
		d.Watch.SettleMS,
		d.Log.Level, d.Log.Format,
		d.Worker.RedisURL, d.Worker.Queue, d.Worker.Concurrency, d.Worker.Buffer,
	)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
