package stats

import (
	"path/filepath"
	"sort"

	"github.com/suykerbuyk/combo-finder/internal/combo"
)

// FramesPerSecond is the game's fixed frame rate.
const FramesPerSecond = 60

// Summary holds aggregate metrics computed from a playlist.
type Summary struct {
	TotalCombos int
	TotalFrames int
	Files       int

	AvgFrames     float64
	CombosPerFile float64

	Longest []combo.Combo
	Dirs    []DirStats
}

// DirStats holds per-directory combo counts.
type DirStats struct {
	Dir    string
	Combos int
	Files  int
}

// Compute builds a Summary from combos. Longest holds up to five combos,
// longest first.
func Compute(combos []combo.Combo) Summary {
	var s Summary

	files := make(map[string]bool)
	dirMap := make(map[string]*DirStats)
	dirFiles := make(map[string]map[string]bool)

	for _, c := range combos {
		s.TotalCombos++
		s.TotalFrames += c.Frames()
		files[c.Path] = true

		dir := filepath.Dir(c.Path)
		ds, ok := dirMap[dir]
		if !ok {
			ds = &DirStats{Dir: dir}
			dirMap[dir] = ds
			dirFiles[dir] = make(map[string]bool)
		}
		ds.Combos++
		if !dirFiles[dir][c.Path] {
			dirFiles[dir][c.Path] = true
			ds.Files++
		}
	}

	s.Files = len(files)
	if s.TotalCombos > 0 {
		s.AvgFrames = float64(s.TotalFrames) / float64(s.TotalCombos)
	}
	if s.Files > 0 {
		s.CombosPerFile = float64(s.TotalCombos) / float64(s.Files)
	}

	longest := append([]combo.Combo(nil), combos...)
	sort.SliceStable(longest, func(i, j int) bool {
		return longest[i].Frames() > longest[j].Frames()
	})
	if len(longest) > 5 {
		longest = longest[:5]
	}
	s.Longest = longest

	for _, ds := range dirMap {
		s.Dirs = append(s.Dirs, *ds)
	}
	sort.Slice(s.Dirs, func(i, j int) bool {
		if s.Dirs[i].Combos != s.Dirs[j].Combos {
			return s.Dirs[i].Combos > s.Dirs[j].Combos
		}
		return s.Dirs[i].Dir < s.Dirs[j].Dir
	})

	return s
}

// Seconds converts a frame count to seconds of play.
func Seconds(frames float64) float64 {
	return frames / FramesPerSecond
}
