package battle

import (
	"fmt"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Gender of a creature, as declared in its packed team entry.
type Gender byte

const (
	Genderless Gender = iota
	Male
	Female
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "M"
	case Female:
		return "F"
	default:
		return ""
	}
}

// Creature is one roster entry, as recovered from a packed team declaration.
// Per spec, within a side no two Creatures share SpeciesID (species clause
// assumed) and MoveIDs never changes mid-battle.
type Creature struct {
	// ShowteamIndex is the 0-based position in the original team declaration.
	// It is stable and is the basis for 1-based team-selection/switch indices.
	ShowteamIndex int

	SpeciesID string
	Nickname  string
	Item      lang.Optional[string]
	Ability   lang.Optional[string]
	MoveIDs   [4]string
	Gender    Gender
	Level     int
	Tera      lang.Optional[string]
}

func (c Creature) String() string {
	return fmt.Sprintf("%v (#%d %v)", c.SpeciesID, c.ShowteamIndex+1, c.Nickname)
}

// BaseForm returns the species id truncated at its first hyphenated form
// suffix, e.g. "ogerpon-wellspring" -> "ogerpon". Used as the fallback match
// key for form-changing creatures per §4.D and §4.G.
func BaseForm(speciesID string) string {
	for i := 0; i < len(speciesID); i++ {
		if speciesID[i] == '-' {
			return speciesID[:i]
		}
	}
	return speciesID
}

// SpeciesMatch reports whether a and b name the same creature, either
// exactly or via a shared base form.
func SpeciesMatch(a, b string) bool {
	return a == b || BaseForm(a) == BaseForm(b)
}
