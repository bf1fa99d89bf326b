// Package snapshot implements the Snapshot Patcher (§4.H): a post-hoc
// rewrite of one turn's serialized engine snapshot so its active-slot
// occupants, per-creature state, and roster-position encoding match the
// live engine, without the driver ever parsing the snapshot itself (§9:
// treat the opaque snapshot as a byte string, mutated only through a thin
// structural view).
package snapshot

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dunmore-lab/replaycore/pkg/battle"
)

// CreatureState is one creature's condition as the structural view exposes
// it, independent of the snapshot's actual wire encoding.
type CreatureState struct {
	SpeciesID string
	HPPercent int
	Status    string
	Fainted   bool
	IsActive  bool
}

// View is the thin structural contract a snapshot's encoding is read and
// rewritten through (§9): active positions, a per-creature state block, and
// the roster position-encoding string. Implementations own the actual wire
// format; the patcher only calls through this interface.
type View interface {
	// ActiveSpecies returns the species occupying the given active position.
	ActiveSpecies(side battle.Side, position int) (string, bool)
	// SetActiveSpecies overwrites the species at an active position,
	// swapping it with wherever it currently sits in the roster.
	SetActiveSpecies(side battle.Side, position int, speciesID string) bool

	// Creatures returns every tracked creature for a side, in roster order.
	Creatures(side battle.Side) []CreatureState
	// SetCreature overwrites one creature's state block by roster index.
	SetCreature(side battle.Side, index int, state CreatureState)
	// InsertCreature adds a creature recovered from an earlier snapshot
	// that is missing from this one entirely (§4.H step 1 backward scan).
	InsertCreature(side battle.Side, state CreatureState)

	// SetRosterEncoding rewrites the position-encoding string to an
	// identity mapping over the given roster length (§4.H step 3).
	SetRosterEncoding(side battle.Side, length int)

	// Encode serializes the view back to the snapshot's wire format, after
	// Patch has rewritten it in place.
	Encode() []byte
}

// Live is the live engine's state, read-only, that a snapshot is patched
// to match.
type Live interface {
	ActiveSpecies(side battle.Side, position int) (string, bool)
	Creatures(side battle.Side) []CreatureState
}

// windowSize bounds the backward scan for a missing species (§9
// re-architecture: keep the worst case linear in turn count).
const windowSize = 8

// Patch rewrites view in place to match live, per the three-step
// algorithm (§4.H). history is the sequence of earlier turns' views,
// most-recent first, used when a species has vanished from view entirely.
func Patch(view View, live Live, history []View) {
	fixActiveSlots(view, live, history)
	syncState(view, live)
	rewriteRosterEncoding(view)
}

// fixActiveSlots is step 1: for each active position, make the snapshot's
// occupant match the live engine's, swapping within the roster when the
// target is present but misplaced, or recovering it from recent history
// when it has vanished from the snapshot entirely.
func fixActiveSlots(view View, live Live, history []View) {
	cache, _ := lru.New[string, CreatureState](windowSize)

	for _, side := range []battle.Side{battle.P1, battle.P2} {
		for position := 0; ; position++ {
			liveSpecies, ok := live.ActiveSpecies(side, position)
			if !ok {
				break
			}
			snapSpecies, ok := view.ActiveSpecies(side, position)
			if ok && snapSpecies == liveSpecies {
				continue
			}
			if view.SetActiveSpecies(side, position, liveSpecies) {
				continue
			}

			// Not present anywhere in the snapshot's roster. Search recent
			// history for a serialization of the same species.
			if state, found := recoverFromHistory(cache, history, side, liveSpecies); found {
				view.InsertCreature(side, state)
				view.SetActiveSpecies(side, position, liveSpecies)
			}
		}
	}
}

func recoverFromHistory(cache *lru.Cache[string, CreatureState], history []View, side battle.Side, speciesID string) (CreatureState, bool) {
	key := side.String() + ":" + speciesID
	if state, ok := cache.Get(key); ok {
		return state, true
	}

	limit := len(history)
	if limit > windowSize {
		limit = windowSize
	}
	for i := 0; i < limit; i++ {
		for _, c := range history[i].Creatures(side) {
			if battle.SpeciesMatch(c.SpeciesID, speciesID) {
				cache.Add(key, c)
				return c, true
			}
		}
	}
	return CreatureState{}, false
}

// syncState is step 2: copy each snapshot creature's state from the live
// creature with the same species id, for active and bench creatures alike;
// active positions are not matched by position. IsActive stays set only for
// species the live engine has in an active position. Snapshot creatures
// with no exact species match in the live engine are left unchanged.
func syncState(view View, live Live) {
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		activeIdx := map[string]bool{}
		for position := 0; ; position++ {
			species, ok := live.ActiveSpecies(side, position)
			if !ok {
				break
			}
			activeIdx[species] = true
		}

		liveBySpecies := map[string]CreatureState{}
		for _, c := range live.Creatures(side) {
			liveBySpecies[c.SpeciesID] = c
		}

		for i, c := range view.Creatures(side) {
			lc, ok := liveBySpecies[c.SpeciesID]
			if !ok {
				continue // creature the live engine no longer tracks at all
			}
			lc.IsActive = activeIdx[c.SpeciesID] && lc.IsActive
			view.SetCreature(side, i, lc)
		}
	}
}

// rewriteRosterEncoding is step 3: the encoding always becomes an identity
// mapping, since jump/load immediately overwrite the full state anyway.
func rewriteRosterEncoding(view View) {
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		view.SetRosterEncoding(side, len(view.Creatures(side)))
	}
}
