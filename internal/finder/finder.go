// Package finder runs kill-combo detection over every replay under a path.
package finder

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/discover"
	"github.com/suykerbuyk/combo-finder/internal/logging"
	"github.com/suykerbuyk/combo-finder/internal/slp"
)

// Workers is the number of slices a large file set is split into.
const Workers = 8

// ErrPathNotFound is returned when the root path does not exist.
var ErrPathNotFound = errors.New("input path does not exist")

// Cache stores per-file results between runs. Implementations must be safe
// for concurrent use.
type Cache interface {
	Lookup(f discover.ReplayFile) ([]combo.Combo, bool)
	Store(f discover.ReplayFile, combos []combo.Combo)
}

// Finder applies one detection configuration to replay files.
type Finder struct {
	det   *combo.Detector
	cache Cache
	log   logging.Interface
}

// Option configures a Finder.
type Option func(*Finder)

// WithCache skips files whose cached results are still valid.
func WithCache(c Cache) Option {
	return func(f *Finder) { f.cache = c }
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l logging.Interface) Option {
	return func(f *Finder) { f.log = l }
}

// New returns a Finder for cfg.
func New(cfg combo.Config, opts ...Option) *Finder {
	f := &Finder{det: combo.NewDetector(cfg), log: logging.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TargetPath is New(cfg).TargetPath(root, progress).
func TargetPath(root string, cfg combo.Config, progress chan<- int) ([]combo.Combo, error) {
	return New(cfg).TargetPath(root, progress)
}

// TargetPath scans every replay under root, or root itself when it is a
// replay file. Files that fail to parse contribute nothing. If progress is
// non-nil the file count is sent once, then 1 after each file; sends block,
// so the caller must receive concurrently. progress is not closed.
//
// The order of the returned combos is unspecified.
func (f *Finder) TargetPath(root string, progress chan<- int) ([]combo.Combo, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, err
	}

	files, err := discover.Discover(root)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress <- len(files)
	}

	if len(files) < Workers {
		return f.scanSlice(files, progress), nil
	}

	slices := Partition(files, Workers)
	results := make([][]combo.Combo, len(slices))
	var wg sync.WaitGroup
	for i, slice := range slices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.scanSlice(slice, progress)
		}()
	}
	wg.Wait()

	var all []combo.Combo
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (f *Finder) scanSlice(files []discover.ReplayFile, progress chan<- int) []combo.Combo {
	var out []combo.Combo
	for _, rf := range files {
		out = append(out, f.scanFile(rf)...)
		if progress != nil {
			progress <- 1
		}
	}
	return out
}

func (f *Finder) scanFile(rf discover.ReplayFile) []combo.Combo {
	if f.cache != nil {
		if combos, ok := f.cache.Lookup(rf); ok {
			return combos
		}
	}

	combos, err := f.File(rf.Path)
	if err != nil {
		f.log.Debugf("skip %s: %v", rf.Path, err)
		return nil
	}
	if f.cache != nil {
		f.cache.Store(rf, combos)
	}
	return combos
}

// File scans one replay in both orientations.
func (f *Finder) File(path string) ([]combo.Combo, error) {
	info, err := slp.ReadInfo(path)
	if err != nil {
		return nil, err
	}
	low, high, err := info.LowHighPorts()
	if err != nil {
		return nil, err
	}

	cfg := f.det.Config()
	a, b := competitor(info.Players[low]), competitor(info.Players[high])
	lowAttacks := cfg.Passes(a, b)
	highAttacks := cfg.Passes(b, a)
	if !lowAttacks && !highAttacks {
		return nil, nil
	}

	g, err := slp.ReadGame(path)
	if err != nil {
		return nil, err
	}

	var out []combo.Combo
	if lowAttacks {
		out = f.det.Scan(out, path, g.Frames[low], g.Frames[high])
	}
	if highAttacks {
		out = f.det.Scan(out, path, g.Frames[high], g.Frames[low])
	}
	return out, nil
}

func competitor(p slp.Player) combo.Competitor {
	return combo.Competitor{
		Character: p.Character,
		Code:      p.ConnectCode,
		Name:      p.DisplayName,
	}
}

// Partition splits items into parts contiguous slices whose lengths differ
// by at most one; the first len(items)%parts slices hold the extra item.
func Partition[T any](items []T, parts int) [][]T {
	if parts <= 0 {
		return nil
	}
	size, extra := len(items)/parts, len(items)%parts
	out := make([][]T, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		n := size
		if i < extra {
			n++
		}
		out = append(out, items[start:start+n:start+n])
		start += n
	}
	return out
}
