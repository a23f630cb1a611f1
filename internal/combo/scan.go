// Package combo detects kill combos in a pair of aligned frame timelines.
package combo

import "github.com/suykerbuyk/combo-finder/internal/melee"

// Combo is a window of frames in one replay. Start is inclusive and End is
// exclusive; both are zero-based frame indices.
type Combo struct {
	Path  string
	Start int
	End   int
}

// Frames returns the window length.
func (c Combo) Frames() int {
	return c.End - c.Start
}

// Detector runs kill detection for a fixed configuration.
type Detector struct {
	cfg Config
	th  Thresholds
}

// NewDetector derives the thresholds for cfg once.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg, th: ThresholdsFor(cfg.Strictness)}
}

// Config returns the configuration the detector was built with.
func (d *Detector) Config() Config {
	return d.cfg
}

// Scan walks one orientation of a match, atk being the player of interest
// and def their opponent, and appends a Combo to dst for every death of the
// defender that ends a combo.
func (d *Detector) Scan(dst []Combo, path string, atk, def []melee.Frame) []Combo {
	frameCount := len(atk)
	if len(def) < frameCount {
		frameCount = len(def)
	}

	for f := 0; f < frameCount; {
		if !def[f].IsDead() {
			f++
			continue
		}

		// The character is checked again per kill: Sheik and Zelda can
		// transform mid-match.
		if d.cfg.Player.CharacterMatches(atk[f].Character) &&
			d.cfg.Opponent.CharacterMatches(def[f].Character) {
			if start, ok := StartOf(atk[:f], def[:f], d.th); ok {
				dst = append(dst, Combo{
					Path:  path,
					Start: max(0, start-d.cfg.LeadIn),
					End:   min(frameCount, f+d.cfg.LeadOut),
				})
			}
		}

		for f < frameCount && def[f].IsDead() {
			f++
		}
	}

	return dst
}
