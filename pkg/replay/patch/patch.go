// Package patch implements the State-Patch Extractor (§4.F): a single pass
// over the tokenized log building, for each turn, a cumulative per-species
// HP/status/active/bench snapshot a consumer can diff against the live
// engine state without re-deriving history from scratch.
package patch

import (
	"sort"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/logline"
)

// Entry is one species' tracked condition at a point in the log.
type Entry struct {
	SpeciesID string
	HPPercent int
	Status    string
	Fainted   bool
}

// TurnPatch is one turn's cumulative state snapshot (§3).
type TurnPatch struct {
	Turn    int
	HP      map[battle.Side][]Entry // hp_list
	Active  map[battle.Side][]Entry // active_list: currently occupying a slot
	Bench   map[battle.Side][]Entry // bench_list: tracked but not active
}

// tracker is a side's species_id-keyed condition table (§4.F PokemonTracker).
type tracker map[string]*Entry

func (t tracker) upsert(speciesID string) *Entry {
	e, ok := t[speciesID]
	if !ok {
		e = &Entry{SpeciesID: speciesID}
		t[speciesID] = e
	}
	return e
}

// Extract walks records once and returns one TurnPatch per turn record, in
// log order (patches[0] is the first turn's), the last one flushed at the
// end of the log.
func Extract(records []logline.Record) []TurnPatch {
	trackers := map[battle.Side]tracker{battle.P1: {}, battle.P2: {}}
	active := battle.ActiveMap{}

	var patches []TurnPatch
	currentTurn := 0
	started := false

	flush := func() {
		if !started {
			return
		}
		patches = append(patches, snapshot(currentTurn, trackers, active))
	}

	for _, r := range records {
		switch v := r.(type) {
		case logline.Turn:
			flush()
			currentTurn = v.Number
			started = true

		case logline.Switch:
			trackers[v.Slot.Side].upsert(v.SpeciesID).apply(v.HP)
			active[v.Slot] = battle.Occupant{Identifier: v.Identifier, SpeciesID: v.SpeciesID}

		case logline.Drag:
			trackers[v.Slot.Side].upsert(v.SpeciesID).apply(v.HP)
			active[v.Slot] = battle.Occupant{Identifier: v.Identifier, SpeciesID: v.SpeciesID}

		case logline.Damage:
			if occ, ok := active[v.Slot]; ok {
				trackers[v.Slot.Side].upsert(occ.SpeciesID).apply(v.HP)
			}

		case logline.Heal:
			if occ, ok := active[v.Slot]; ok {
				trackers[v.Slot.Side].upsert(occ.SpeciesID).apply(v.HP)
			}

		case logline.Faint:
			if occ, ok := active[v.Slot]; ok {
				e := trackers[v.Slot.Side].upsert(occ.SpeciesID)
				e.Fainted = true
				e.HPPercent = 0
			}

		case logline.Status:
			if occ, ok := active[v.Slot]; ok {
				trackers[v.Slot.Side].upsert(occ.SpeciesID).Status = v.Status
			}

		case logline.CureStatus:
			if occ, ok := active[v.Slot]; ok {
				trackers[v.Slot.Side].upsert(occ.SpeciesID).Status = ""
			}

		case logline.DetailsChange:
			if occ, ok := active[v.Slot]; ok {
				active[v.Slot] = battle.Occupant{Identifier: occ.Identifier, SpeciesID: v.SpeciesID}
			}
		}
	}
	flush()
	return patches
}

func (e *Entry) apply(hp logline.HPStatus) {
	e.HPPercent = hp.Percent
	e.Status = hp.Status
	e.Fainted = hp.Fainted
}

func snapshot(turn int, trackers map[battle.Side]tracker, active battle.ActiveMap) TurnPatch {
	tp := TurnPatch{
		Turn:   turn,
		HP:     map[battle.Side][]Entry{},
		Active: map[battle.Side][]Entry{},
		Bench:  map[battle.Side][]Entry{},
	}

	for _, side := range []battle.Side{battle.P1, battle.P2} {
		activeSpecies := map[string]bool{}
		for _, slot := range active.Slots(side) {
			activeSpecies[active[slot].SpeciesID] = true
		}

		ids := make([]string, 0, len(trackers[side]))
		for id := range trackers[side] {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			e := *trackers[side][id]
			tp.HP[side] = append(tp.HP[side], e)
			if activeSpecies[id] {
				tp.Active[side] = append(tp.Active[side], e)
			} else {
				tp.Bench[side] = append(tp.Bench[side], e)
			}
		}
	}
	return tp
}
