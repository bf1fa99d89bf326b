// Package appearance implements the Appearance Scanner (§4.C): a single
// pass over switch/drag records recording, for each side, the set and
// encounter order of species that ever occupied an active slot.
package appearance

import (
	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/logline"
)

// Order is the stable first-seen species order for one side.
type Order []string

// Scan walks records once and returns each side's appearance order. The
// first time a species appears for a side fixes its position, even if it
// is later replaced and switched back in.
func Scan(records []logline.Record) map[battle.Side]Order {
	out := map[battle.Side]Order{battle.P1: nil, battle.P2: nil}
	seen := map[battle.Side]map[string]bool{
		battle.P1: {},
		battle.P2: {},
	}

	record := func(side battle.Side, species string) {
		if species == "" || seen[side][species] {
			return
		}
		seen[side][species] = true
		out[side] = append(out[side], species)
	}

	for _, r := range records {
		switch v := r.(type) {
		case logline.Switch:
			record(v.Slot.Side, v.SpeciesID)
		case logline.Drag:
			record(v.Slot.Side, v.SpeciesID)
		}
	}
	return out
}
