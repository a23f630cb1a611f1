package melee

import (
	"fmt"
	"strings"
)

// Character identifies a playable fighter by its character-select id.
type Character uint8

const (
	CaptainFalcon Character = iota
	DonkeyKong
	Fox
	GameAndWatch
	Kirby
	Bowser
	Link
	Luigi
	Mario
	Marth
	Mewtwo
	Ness
	Peach
	Pikachu
	IceClimbers
	Jigglypuff
	Samus
	Yoshi
	Zelda
	Sheik
	Falco
	YoungLink
	DrMario
	Roy
	Pichu
	Ganondorf

	characterCount
)

var characterNames = [characterCount]string{
	"Captain Falcon", "Donkey Kong", "Fox", "Mr. Game & Watch", "Kirby",
	"Bowser", "Link", "Luigi", "Mario", "Marth", "Mewtwo", "Ness", "Peach",
	"Pikachu", "Ice Climbers", "Jigglypuff", "Samus", "Yoshi", "Zelda",
	"Sheik", "Falco", "Young Link", "Dr. Mario", "Roy", "Pichu", "Ganondorf",
}

// internalIDs maps the in-engine character id (as written in frame
// updates) to the character-select id. Nana (11) shares Popo's entry.
var internalIDs = [...]Character{
	Mario, Fox, CaptainFalcon, DonkeyKong, Kirby, Bowser, Link, Sheik, Ness,
	Peach, IceClimbers, IceClimbers, Pikachu, Samus, Yoshi, Jigglypuff,
	Mewtwo, Luigi, Marth, Zelda, YoungLink, DrMario, Falco, Pichu,
	GameAndWatch, Ganondorf, Roy,
}

var aliases = map[string]Character{
	"falcon": CaptainFalcon,
	"cf":     CaptainFalcon,
	"dk":     DonkeyKong,
	"gnw":    GameAndWatch,
	"gw":     GameAndWatch,
	"ics":    IceClimbers,
	"ic":     IceClimbers,
	"puff":   Jigglypuff,
	"jiggs":  Jigglypuff,
	"yl":     YoungLink,
	"doc":    DrMario,
	"dr":     DrMario,
	"ganon":  Ganondorf,
	"pika":   Pikachu,
}

// Valid reports whether c is a known character.
func (c Character) Valid() bool {
	return c < characterCount
}

func (c Character) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Character(%d)", uint8(c))
	}
	return characterNames[c]
}

// CharacterFromExternal converts a character-select id as stored in the
// game start block.
func CharacterFromExternal(id uint8) (Character, bool) {
	c := Character(id)
	return c, c.Valid()
}

// CharacterFromInternal converts the in-engine character id carried by
// per-frame updates.
func CharacterFromInternal(id uint8) (Character, bool) {
	if int(id) >= len(internalIDs) {
		return 0, false
	}
	return internalIDs[id], true
}

// InternalID is the inverse of CharacterFromInternal. Ice Climbers map to
// Popo.
func (c Character) InternalID() uint8 {
	for id, ch := range internalIDs {
		if ch == c {
			return uint8(id)
		}
	}
	return 0xFF
}

// ParseCharacter resolves a user supplied name. Matching ignores case,
// spaces, dots, ampersands and hyphens, and accepts common short names.
func ParseCharacter(s string) (Character, error) {
	key := normalizeName(s)
	if key == "" {
		return 0, fmt.Errorf("empty character name")
	}
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	for i, name := range characterNames {
		if normalizeName(name) == key {
			return Character(i), nil
		}
	}
	return 0, fmt.Errorf("unknown character %q", s)
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '.', '&', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
