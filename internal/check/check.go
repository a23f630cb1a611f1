package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/suykerbuyk/combo-finder/internal/config"
	"github.com/suykerbuyk/combo-finder/internal/index"
	"github.com/suykerbuyk/combo-finder/internal/playlist"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "combofind check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("combofind check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports which config file is in effect. Broken TOML is
// caught when the config is loaded, before we get here.
func CheckConfig(source string) Result {
	if source == "" {
		return Result{Name: "config", Status: Pass, Detail: "defaults (" + config.CompressHome(config.ConfigPath()) + " not found)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(source)}
}

// CheckScan validates the detection settings and filters.
func CheckScan(cfg config.Config) Result {
	cc, err := cfg.Combo()
	if err != nil {
		return Result{Name: "scan", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "scan", Status: Pass, Detail: fmt.Sprintf("strictness %g, lead-in %d, lead-out %d", cc.Strictness, cc.LeadIn, cc.LeadOut)}
}

// CheckOutput checks that the playlist's directory exists and, if the
// playlist already exists, that it parses.
func CheckOutput(path string) Result {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Result{Name: "output", Status: Fail, Detail: dir + " not found"}
	}

	combos, err := playlist.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Result{Name: "output", Status: Pass, Detail: config.CompressHome(path) + " (new)"}
	case err != nil:
		return Result{Name: "output", Status: Warn, Detail: err.Error()}
	}
	return Result{Name: "output", Status: Pass, Detail: fmt.Sprintf("%s (%d combos)", config.CompressHome(path), len(combos))}
}

// CheckCache opens the scan cache when it is enabled.
func CheckCache(c config.CacheConfig) Result {
	if !c.Enabled {
		return Result{Name: "cache", Status: Pass, Detail: "disabled"}
	}
	idx, err := index.Open(c.Path)
	if err != nil {
		return Result{Name: "cache", Status: Fail, Detail: err.Error()}
	}
	defer idx.Close()

	files, combos, err := idx.Counts()
	if err != nil {
		return Result{Name: "cache", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "cache", Status: Pass, Detail: fmt.Sprintf("%s (%d files, %d combos)", config.CompressHome(c.Path), files, combos)}
}

// CheckWorker validates the distributed mode settings without connecting.
func CheckWorker(w config.WorkerConfig) []Result {
	var results []Result

	if _, err := redis.ParseURL(w.RedisURL); err != nil {
		results = append(results, Result{Name: "worker:redis", Status: Fail, Detail: err.Error()})
	} else {
		results = append(results, Result{Name: "worker:redis", Status: Pass, Detail: w.RedisURL + " queue " + w.Queue})
	}

	switch {
	case w.DatabaseURL == "":
		results = append(results, Result{Name: "worker:database", Status: Warn, Detail: "database_url not set (worker cannot run)"})
	default:
		if _, err := pgxpool.ParseConfig(w.DatabaseURL); err != nil {
			results = append(results, Result{Name: "worker:database", Status: Fail, Detail: err.Error()})
		} else {
			results = append(results, Result{Name: "worker:database", Status: Pass, Detail: "database_url set"})
		}
	}

	if w.Concurrency < 1 || w.Buffer < 0 {
		results = append(results, Result{Name: "worker:pool", Status: Fail, Detail: fmt.Sprintf("concurrency %d, buffer %d", w.Concurrency, w.Buffer)})
	} else {
		results = append(results, Result{Name: "worker:pool", Status: Pass, Detail: fmt.Sprintf("%d workers, buffer %d", w.Concurrency, w.Buffer)})
	}
	return results
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig(cfg.Source()))
	results = append(results, CheckScan(cfg))
	results = append(results, CheckOutput(cfg.Scan.Output))
	results = append(results, CheckCache(cfg.Cache))
	results = append(results, CheckWorker(cfg.Worker)...)

	return Report{Results: results}
}
