package stats

import (
	"strings"
	"testing"

	"github.com/suykerbuyk/combo-finder/internal/combo"
)

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	if s.TotalCombos != 0 {
		t.Errorf("TotalCombos = %d, want 0", s.TotalCombos)
	}
	if s.AvgFrames != 0 {
		t.Errorf("AvgFrames = %f, want 0", s.AvgFrames)
	}
	if s.CombosPerFile != 0 {
		t.Errorf("CombosPerFile = %f, want 0", s.CombosPerFile)
	}
}

func TestCompute_Totals(t *testing.T) {
	combos := []combo.Combo{
		{Path: "/r/a/1.slp", Start: 0, End: 120},
		{Path: "/r/a/1.slp", Start: 1000, End: 1060},
		{Path: "/r/b/2.slp", Start: 50, End: 230},
	}
	s := Compute(combos)

	if s.TotalCombos != 3 {
		t.Errorf("TotalCombos = %d", s.TotalCombos)
	}
	if s.TotalFrames != 360 {
		t.Errorf("TotalFrames = %d", s.TotalFrames)
	}
	if s.Files != 2 {
		t.Errorf("Files = %d", s.Files)
	}
	if s.AvgFrames != 120 {
		t.Errorf("AvgFrames = %f", s.AvgFrames)
	}
	if s.CombosPerFile != 1.5 {
		t.Errorf("CombosPerFile = %f", s.CombosPerFile)
	}
}

func TestCompute_Longest(t *testing.T) {
	var combos []combo.Combo
	for i := 1; i <= 7; i++ {
		combos = append(combos, combo.Combo{Path: "x.slp", Start: 0, End: i * 10})
	}
	s := Compute(combos)

	if len(s.Longest) != 5 {
		t.Fatalf("len(Longest) = %d, want 5", len(s.Longest))
	}
	if s.Longest[0].End != 70 || s.Longest[4].End != 30 {
		t.Errorf("Longest = %+v", s.Longest)
	}
	// Input untouched.
	if combos[0].End != 10 {
		t.Error("Compute reordered its input")
	}
}

func TestCompute_Dirs(t *testing.T) {
	s := Compute([]combo.Combo{
		{Path: "/r/b/1.slp", End: 1},
		{Path: "/r/a/1.slp", End: 1},
		{Path: "/r/a/1.slp", End: 1},
		{Path: "/r/a/2.slp", End: 1},
	})

	if len(s.Dirs) != 2 {
		t.Fatalf("len(Dirs) = %d", len(s.Dirs))
	}
	if s.Dirs[0] != (DirStats{Dir: "/r/a", Combos: 3, Files: 2}) {
		t.Errorf("Dirs[0] = %+v", s.Dirs[0])
	}
	if s.Dirs[1] != (DirStats{Dir: "/r/b", Combos: 1, Files: 1}) {
		t.Errorf("Dirs[1] = %+v", s.Dirs[1])
	}
}

func TestFormat_Overview(t *testing.T) {
	s := Compute([]combo.Combo{
		{Path: "/r/a/1.slp", Start: 10, End: 130},
		{Path: "/r/b/2.slp", Start: 0, End: 600},
	})
	out := Format(s, "combos.json")

	for _, want := range []string{
		"combofind stats combos.json",
		"Overview",
		"combos",
		"12.0s",
		"Longest Combos",
		"frames   -123..477",
		"/r/b/2.slp",
		"Directories",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormat_Empty(t *testing.T) {
	out := Format(Summary{}, "combos.json")
	if !strings.Contains(out, "No combos") {
		t.Errorf("output = %q", out)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0s"},
		{2.26, "2.3s"},
		{59.9, "59.9s"},
		{65, "1m05s"},
		{3725, "1h02m"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatInt(tt.in); got != tt.want {
			t.Errorf("formatInt(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
