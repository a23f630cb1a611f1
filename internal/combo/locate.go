package combo

import "github.com/suykerbuyk/combo-finder/internal/melee"

// StartOf looks for the start of a combo that lasts until the end of the
// window. atk and def must have the same length; the last frame of the
// window is the frame before the defender died.
//
// The scan runs backwards: first to the last frame the defender was being
// hit, then further back while the chain of hits holds, and the candidate
// is finally pruned on damage, attack count and grab spam.
func StartOf(atk, def []melee.Frame, th Thresholds) (int, bool) {
	n := len(def)
	if len(atk) < n {
		n = len(atk)
	}
	if n == 0 {
		return 0, false
	}

	lastHitEnd := -1
	for f := n - 1; f >= 0 && lastHitEnd < 0; f-- {
		switch def[f].Broad {
		case melee.Hitstun, melee.Ground, melee.Attack:
			lastHitEnd = f
		}
	}
	if lastHitEnd < 0 {
		return 0, false
	}

	defenderActionable := th.MaxDefenderActionable
	attackerHitstun := th.MaxAttackerHitstun
	firstHit := -1

	for f := lastHitEnd - 1; f >= 0; f-- {
		defState := def[f].Broad

		if defState == melee.Hitstun {
			firstHit = f
		}

		switch defState {
		case melee.Attack, melee.Inactionable, melee.Special, melee.Actionable:
			defenderActionable--
		default:
			defenderActionable = th.MaxDefenderActionable
		}

		if atk[f].Broad == melee.Hitstun {
			attackerHitstun--
		}

		if attackerHitstun <= 0 || defenderActionable <= 0 {
			break
		}
	}

	if firstHit < 0 {
		return 0, false
	}

	// A hit on the very first frame has no earlier frame to compare
	// against, so damage is measured from that frame.
	baseline := firstHit - 1
	if baseline < 0 {
		baseline = 0
	}
	damage := float64(def[n-1].Percent - def[baseline].Percent)
	if damage < th.MinDefenderDamage {
		return 0, false
	}

	grabs := th.MaxAttackerGrabs
	attacks := 0
	for _, fr := range atk[firstHit:lastHitEnd] {
		if fr.State.IsGrab() && fr.AnimFrame == 0 {
			grabs--
		}

		if fr.Broad == melee.Attack || fr.Broad == melee.Special {
			grabs = th.MaxAttackerGrabs
			if fr.AnimFrame == 1 {
				attacks++
			}
		}

		if grabs <= 0 {
			return 0, false
		}
	}

	if attacks < th.MinAttackerAttacks {
		return 0, false
	}

	return firstHit, true
}
