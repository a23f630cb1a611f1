package combo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/suykerbuyk/combo-finder/internal/melee"
)

// Constraint is an optional filter value. The zero value is unset and
// accepts everything.
type Constraint[T any] struct {
	value T
	set   bool
}

// Require returns a constraint holding v.
func Require[T any](v T) Constraint[T] {
	return Constraint[T]{value: v, set: true}
}

// Value returns the held value and whether one is set.
func (c Constraint[T]) Value() (T, bool) {
	return c.value, c.set
}

// Allows reports whether match accepts the held value, or true when unset.
func (c Constraint[T]) Allows(match func(T) bool) bool {
	return !c.set || match(c.value)
}

// Competitor identifies one side of a match.
type Competitor struct {
	Character melee.Character
	Code      string
	Name      string
}

// SideFilter constrains one role. Character must match exactly; Name and
// Code must be contained in the competitor's display name and connect code.
type SideFilter struct {
	Character Constraint[melee.Character]
	Name      Constraint[string]
	Code      Constraint[string]
}

// Matches reports whether c satisfies every configured constraint.
func (f SideFilter) Matches(c Competitor) bool {
	return f.CharacterMatches(c.Character) &&
		f.Name.Allows(func(s string) bool { return strings.Contains(c.Name, s) }) &&
		f.Code.Allows(func(s string) bool { return strings.Contains(c.Code, s) })
}

// CharacterMatches checks only the character constraint.
func (f SideFilter) CharacterMatches(ch melee.Character) bool {
	return f.Character.Allows(func(want melee.Character) bool { return want == ch })
}

// Config controls one detection run.
type Config struct {
	LeadIn  int
	LeadOut int

	// Strictness in [0, 1]; 0 is the most permissive.
	Strictness float64

	Player   SideFilter
	Opponent SideFilter
}

// DefaultConfig matches the command line defaults.
var DefaultConfig = Config{
	LeadIn:     30,
	LeadOut:    0,
	Strictness: 0.5,
}

// Validate checks the numeric fields.
func (c Config) Validate() error {
	if c.Strictness < 0 || c.Strictness > 1 {
		return fmt.Errorf("strictness must be between 0 and 1, got %v", c.Strictness)
	}
	if c.LeadIn < 0 {
		return fmt.Errorf("lead-in must not be negative, got %d", c.LeadIn)
	}
	if c.LeadOut < 0 {
		return fmt.Errorf("lead-out must not be negative, got %d", c.LeadOut)
	}
	return nil
}

// Passes evaluates the match filter for one orientation: player is the
// attacking side, opponent the defending side.
func (c Config) Passes(player, opponent Competitor) bool {
	return c.Player.Matches(player) && c.Opponent.Matches(opponent)
}

// Key is a stable digest of every field that affects detection output.
func (c Config) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "in=%d;out=%d;s=%g", c.LeadIn, c.LeadOut, c.Strictness)
	for _, side := range []struct {
		name string
		f    SideFilter
	}{{"p", c.Player}, {"o", c.Opponent}} {
		if ch, ok := side.f.Character.Value(); ok {
			fmt.Fprintf(&b, ";%s.char=%d", side.name, ch)
		}
		if n, ok := side.f.Name.Value(); ok {
			fmt.Fprintf(&b, ";%s.name=%q", side.name, n)
		}
		if code, ok := side.f.Code.Value(); ok {
			fmt.Fprintf(&b, ";%s.code=%q", side.name, code)
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
