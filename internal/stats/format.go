package stats

import (
	"fmt"
	"strings"

	"github.com/suykerbuyk/combo-finder/internal/melee"
)

// Format renders a Summary as aligned terminal output.
func Format(s Summary, source string) string {
	header := fmt.Sprintf("combofind stats %s\n", source)
	if s.TotalCombos == 0 {
		return header + "\n  No combos in playlist.\n"
	}

	var b strings.Builder
	b.WriteString(header)

	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "combos", formatInt(s.TotalCombos))
	fmt.Fprintf(&b, "  %-20s %s\n", "replays", formatInt(s.Files))
	fmt.Fprintf(&b, "  %-20s %s\n", "total duration", formatSeconds(Seconds(float64(s.TotalFrames))))

	b.WriteString("\nAverages\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "combo length", formatSeconds(Seconds(s.AvgFrames)))
	fmt.Fprintf(&b, "  %-20s %.1f\n", "combos/replay", s.CombosPerFile)

	if len(s.Longest) > 0 {
		b.WriteString("\nLongest Combos\n")
		for _, c := range s.Longest {
			fmt.Fprintf(&b, "  %8s  frames %6d..%-6d  %s\n",
				formatSeconds(Seconds(float64(c.Frames()))),
				c.Start+melee.FirstFrame, c.End+melee.FirstFrame, c.Path)
		}
	}

	if len(s.Dirs) > 1 {
		b.WriteString("\nDirectories\n")
		limit := min(len(s.Dirs), 5)
		for _, d := range s.Dirs[:limit] {
			fmt.Fprintf(&b, "  %-48s %4d combos   %3d replays\n", d.Dir, d.Combos, d.Files)
		}
		if len(s.Dirs) > 5 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(s.Dirs)-5)
		}
	}

	return b.String()
}

// formatSeconds renders seconds as "12.3s" or "4m05s".
func formatSeconds(sec float64) string {
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	total := int(sec + 0.5)
	if total >= 3600 {
		return fmt.Sprintf("%dh%02dm", total/3600, (total%3600)/60)
	}
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}

// formatInt formats an integer with comma separators.
func formatInt(n int) string {
	if n < 0 {
		return "-" + formatInt(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
