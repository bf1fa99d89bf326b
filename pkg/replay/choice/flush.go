package choice

import (
	"strconv"
	"strings"

	"github.com/dunmore-lab/replaycore/pkg/battle"
)

// flush closes out the turn currently in scratch (§4.E flush procedure):
//  1. compute needs_choice = turn-start active slots minus commanding slots
//  2. default-fill any needs_choice slot with no recorded action
//  3. sort by slot letter and serialize into the turn's choice command
//  4. pair the forced-switch buffer into a command, slot a before b
//  5. append both to the result
//  6. reset scratch and re-snapshot turn-start active/commanding
func (s *state) flush(result *Result, postPreviewOrder map[battle.Side][]string) {
	tc := TurnChoice{Turn: s.currentTurn, Choice: map[battle.Side]string{}}
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		tc.Choice[side] = s.flushSideChoice(side)
	}
	result.Choices = append(result.Choices, tc)

	fs := ForcedSwitch{
		Turn:        s.currentTurn,
		Choice:      map[battle.Side]string{},
		SlotSpecies: map[battle.Side]map[battle.Slot]string{},
	}
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		choice, slots := s.flushSideForced(side, postPreviewOrder[side])
		fs.Choice[side] = choice
		fs.SlotSpecies[side] = slots
	}
	result.Forced = append(result.Forced, fs)

	s.resetScratch()
	s.forced = freshForced()
	s.snapshotTurnStart()
}

func (s *state) flushSideChoice(side battle.Side) string {
	needsChoice := []battle.Slot{}
	for _, slot := range s.turnStartActive.Slots(side) {
		if !s.turnStartCommanding[slot] {
			needsChoice = append(needsChoice, slot)
		}
	}

	parts := make([]string, 0, len(needsChoice))
	for _, slot := range needsChoice {
		a, ok := s.actions[side][slot]
		if !ok {
			a = Action{Kind: Default}
		}
		parts = append(parts, a.Serialize())
	}
	return strings.Join(parts, ", ")
}

// flushSideForced builds a side's forced-switch command over its full
// turn-start active formation (a, and b in doubles), not just the buffered
// slots: a doubles turn where only slot b fainted must still emit
// "pass, switch K" so the engine maps the switch onto the right position
// (§4.E step 6). The side is dropped entirely only when nothing in its
// formation forced a switch.
func (s *state) flushSideForced(side battle.Side, postPreviewOrder []string) (string, map[battle.Slot]string) {
	buf := s.forced[side]
	if len(buf) == 0 {
		return "", map[battle.Slot]string{}
	}

	var slots []battle.Slot
	for _, slot := range s.turnStartActive.Slots(side) {
		if s.turnStartCommanding[slot] {
			continue // absorbed slot occupies no position to pad (§4.E Commander note)
		}
		slots = append(slots, slot)
	}

	out := make(map[battle.Slot]string, len(buf))
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		species, ok := buf[slot]
		if !ok {
			parts = append(parts, "pass")
			continue
		}
		out[slot] = species
		idx := resolveSwitchIndex(postPreviewOrder, species)
		parts = append(parts, "switch "+strconv.Itoa(idx))
	}
	return strings.Join(parts, ", "), out
}

// resolveSwitchIndex finds species's 1-based position in the post-preview
// order, falling back to base-form match, and finally to 1 if the species
// cannot be placed (a log/roster mismatch the patcher will reconcile).
func resolveSwitchIndex(postPreviewOrder []string, species string) int {
	for i, s := range postPreviewOrder {
		if s == species {
			return i + 1
		}
	}
	for i, s := range postPreviewOrder {
		if battle.BaseForm(s) == battle.BaseForm(species) {
			return i + 1
		}
	}
	return 1
}
