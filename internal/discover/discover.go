package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ReplayFile represents a discovered replay on disk.
type ReplayFile struct {
	Path       string
	Compressed bool  // true for .slpz
	Size       int64 // bytes on disk
	ModTime    int64 // unix nanoseconds, used as a cache key
}

// IsReplay reports whether path has a replay extension (.slp or .slpz).
func IsReplay(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".slp", ".slpz":
		return true
	}
	return false
}

// Discover walks root recursively and returns every replay file in lexical
// walk order. Symlinks are followed; a directory reached twice through links
// is walked once. Unreadable directories and entries are skipped. A root
// that is itself a replay file yields just that file.
func Discover(root string) ([]ReplayFile, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		if !IsReplay(root) {
			return nil, nil
		}
		return []ReplayFile{newReplayFile(root, st)}, nil
	}

	w := walker{seen: make(map[string]bool)}
	if err := w.walk(root); err != nil {
		return nil, err
	}
	return w.results, nil
}

type walker struct {
	seen    map[string]bool // resolved directories already walked
	results []ReplayFile
}

// walk lists root, which may be reached through symlinks. The tree is read
// at its resolved location and reported under root.
func (w *walker) walk(root string) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil
	}
	if w.seen[resolved] {
		return nil
	}

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != resolved {
				return fs.SkipDir
			}
			return nil // skip inaccessible entries
		}
		if d.IsDir() {
			if w.seen[path] {
				return fs.SkipDir
			}
			w.seen[path] = true
			return nil
		}
		if rel, err := filepath.Rel(resolved, path); err == nil {
			path = filepath.Join(root, rel)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil // dangling
			}
			if info.IsDir() {
				return w.walk(path)
			}
			if info.Mode().IsRegular() && IsReplay(path) {
				w.results = append(w.results, newReplayFile(path, info))
			}
			return nil
		}

		if !IsReplay(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		w.results = append(w.results, newReplayFile(path, info))
		return nil
	})
}

// Paths returns the path of each file.
func Paths(files []ReplayFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func newReplayFile(path string, info os.FileInfo) ReplayFile {
	return ReplayFile{
		Path:       path,
		Compressed: strings.EqualFold(filepath.Ext(path), ".slpz"),
		Size:       info.Size(),
		ModTime:    info.ModTime().UnixNano(),
	}
}
