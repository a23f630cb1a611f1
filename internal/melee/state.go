package melee

import "fmt"

// ActionState is the raw action state id of a fighter on a given frame.
type ActionState uint16

// Named action states. Ids between these boundaries follow the standard
// ordering shared by every character; ids from FirstSpecial upward are
// character specific.
const (
	DeadDown           ActionState = 0
	DeadUpFallIceCam   ActionState = 10
	Sleep              ActionState = 11
	Rebirth            ActionState = 12
	RebirthWait        ActionState = 13
	Wait               ActionState = 14
	FallAerialB        ActionState = 34
	FallSpecial        ActionState = 35
	FallSpecialB       ActionState = 37
	DamageFall         ActionState = 38
	Squat              ActionState = 39
	Landing            ActionState = 42
	LandingFallSpecial ActionState = 43
	Attack11           ActionState = 44
	AttackAirN         ActionState = 65
	LandingAirLw       ActionState = 74
	DamageHi1          ActionState = 75
	DamageFlyRoll      ActionState = 91
	LightGet           ActionState = 92
	HeavyGet           ActionState = 93
	LightThrowF        ActionState = 94
	ItemLast           ActionState = 177
	GuardOn            ActionState = 178
	Guard              ActionState = 179
	GuardReflect       ActionState = 182
	DownBoundU         ActionState = 183
	PassiveCeil        ActionState = 204
	ShieldBreakFly     ActionState = 205
	FuraFura           ActionState = 211
	Catch              ActionState = 212
	CatchPull          ActionState = 213
	CatchDash          ActionState = 214
	CatchDashPull      ActionState = 215
	CatchWait          ActionState = 216
	CatchAttack        ActionState = 217
	CatchCut           ActionState = 218
	ThrowF             ActionState = 219
	ThrowLw            ActionState = 222
	CapturePulledHi    ActionState = 223
	CaptureFoot        ActionState = 232
	EscapeF            ActionState = 233
	EscapeAir          ActionState = 236
	ReboundStop        ActionState = 237
	Rebound            ActionState = 238
	ThrownF            ActionState = 239
	ThrownLwWomen      ActionState = 243
	Pass               ActionState = 244
	Ottotto            ActionState = 245
	OttottoWait        ActionState = 246
	FlyReflectWall     ActionState = 247
	StopCeil           ActionState = 250
	MissFoot           ActionState = 251
	CliffCatch         ActionState = 252
	CliffWait          ActionState = 253
	CliffAttackSlow    ActionState = 256
	CliffAttackQuick   ActionState = 257
	FirstSpecial       ActionState = 341
)

// BroadState is the coarse category of an action state.
type BroadState uint8

const (
	Actionable BroadState = iota
	Inactionable
	Hitstun
	Ground
	Attack
	Dead
	Special
)

func (b BroadState) String() string {
	switch b {
	case Actionable:
		return "actionable"
	case Inactionable:
		return "inactionable"
	case Hitstun:
		return "hitstun"
	case Ground:
		return "ground"
	case Attack:
		return "attack"
	case Dead:
		return "dead"
	case Special:
		return "special"
	default:
		return fmt.Sprintf("BroadState(%d)", uint8(b))
	}
}

// IsActionable reports whether the fighter can freely act in this state.
func (b BroadState) IsActionable() bool {
	return b == Actionable
}

// Broad classifies the action state.
func (s ActionState) Broad() BroadState {
	switch {
	case s >= FirstSpecial:
		return Special
	case s <= DeadUpFallIceCam:
		return Dead
	case s <= RebirthWait:
		return Inactionable
	case s <= FallAerialB:
		return Actionable
	case s <= FallSpecialB:
		return Inactionable
	case s == DamageFall:
		return Hitstun
	case s <= Landing:
		return Actionable
	case s == LandingFallSpecial:
		return Inactionable
	case s <= LandingAirLw:
		return Attack
	case s <= DamageFlyRoll:
		return Hitstun
	case s <= HeavyGet:
		return Inactionable
	case s <= ItemLast:
		return Attack
	case s == Guard:
		return Actionable
	case s <= GuardReflect:
		return Inactionable
	case s <= PassiveCeil:
		return Ground
	case s <= FuraFura:
		return Hitstun
	case s == CatchAttack, s >= ThrowF && s <= ThrowLw:
		return Attack
	case s <= CatchCut:
		return Inactionable
	case s <= CaptureFoot:
		return Hitstun
	case s <= Rebound:
		return Inactionable
	case s <= ThrownLwWomen:
		return Hitstun
	case s == Pass:
		return Inactionable
	case s <= OttottoWait:
		return Actionable
	case s <= StopCeil:
		return Hitstun
	case s == CliffWait:
		return Actionable
	case s == CliffAttackSlow, s == CliffAttackQuick:
		return Attack
	default:
		return Inactionable
	}
}

// IsGrab reports whether the state is a standing or dashing grab attempt.
func (s ActionState) IsGrab() bool {
	return s == Catch || s == CatchDash
}
