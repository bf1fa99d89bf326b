// Package preview implements the Team-Preview Resolver (§4.D): turning a
// side's appearance order and declared roster into the engine's
// team-selection command and the post-selection roster ordering the rest
// of the parser keys its indices against.
package preview

import (
	"strconv"
	"strings"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/appearance"
)

// Resolution is one side's team-preview outcome.
type Resolution struct {
	// Choice is the engine command, e.g. "team 1423".
	Choice string
	// PostPreviewOrder is the roster ordering the engine uses after
	// selection: chosen creatures in appearance order, then unchosen in
	// declaration order.
	PostPreviewOrder []string
}

// Resolve applies the selection policy (§4.D): bring every creature that
// ever appeared; if fewer than bringCount appeared, pad from the front of
// the roster in declaration order.
func Resolve(roster battle.Roster, order appearance.Order, bringCount int) (Resolution, error) {
	if len(roster) == 0 {
		return Resolution{}, nil // fail soft: no showteam record for this side
	}

	chosen := make([]battle.Creature, 0, bringCount)
	used := map[int]bool{}

	for _, species := range order {
		if len(chosen) >= bringCount {
			break
		}
		c, ok := matchRoster(roster, species)
		if !ok || used[c.ShowteamIndex] {
			continue
		}
		used[c.ShowteamIndex] = true
		chosen = append(chosen, c)
	}

	// Pad from the front of the roster in declaration order.
	for _, c := range roster {
		if len(chosen) >= bringCount {
			break
		}
		if used[c.ShowteamIndex] {
			continue
		}
		used[c.ShowteamIndex] = true
		chosen = append(chosen, c)
	}

	var digits strings.Builder
	postOrder := make([]string, 0, len(roster))
	for _, c := range chosen {
		digits.WriteString(indexDigit(c.ShowteamIndex + 1))
		postOrder = append(postOrder, c.SpeciesID)
	}
	for _, c := range roster {
		if used[c.ShowteamIndex] {
			continue
		}
		postOrder = append(postOrder, c.SpeciesID)
	}

	return Resolution{
		Choice:           "team " + digits.String(),
		PostPreviewOrder: postOrder,
	}, nil
}

// matchRoster finds the roster entry for an appeared species, using exact
// id first and falling back to base-form match for form-changing creatures.
func matchRoster(roster battle.Roster, speciesID string) (battle.Creature, bool) {
	return roster.ByID(speciesID)
}

// indexDigit renders a 1-based team-selection index for concatenation into
// the "team D1D2D3D4..." choice string.
func indexDigit(i int) string {
	return strconv.Itoa(i)
}
