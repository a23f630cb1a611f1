package combo

import "math"

// Thresholds are the detector limits derived from a strictness value.
type Thresholds struct {
	MaxDefenderActionable int     // consecutive frames the defender may act freely
	MaxAttackerHitstun    int     // total attacker hitstun frames tolerated
	MaxAttackerGrabs      int     // grab attempts tolerated without an attack
	MinAttackerAttacks    int     // attacks the attacker must start
	MinDefenderDamage     float64 // percent the defender must take
}

// ThresholdsFor interpolates the limits linearly between strictness 0 and 1.
func ThresholdsFor(strictness float64) Thresholds {
	s := strictness
	return Thresholds{
		MaxDefenderActionable: int(math.Round(35 - 10*s)),
		MaxAttackerHitstun:    int(math.Round(65 - 10*s)),
		MaxAttackerGrabs:      int(math.Round(6 - 4*s)),
		MinAttackerAttacks:    int(math.Round(3 + 6*s)),
		MinDefenderDamage:     math.Round(20 + 40*s),
	}
}
