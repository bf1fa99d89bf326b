// Package choice implements the Choice Reconstructor (§4.E): the hardest
// subsystem in the parser, walking the tokenized log and rebuilding the
// turn-by-turn choice commands and between-turns forced-switch commands
// that, replayed against a fresh engine, reproduce the recorded game.
//
// The walk is a fold over logline.Record with one explicit state value
// (state, in state.go) threaded through it, per the re-architecture note
// against mutable closed-over locals: every record handler is a method on
// that state and updates it in place, dispatched from a single switch over
// the tagged union of record types.
package choice

import (
	"strings"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/logline"
)

// Reconstruct walks records once and rebuilds both sides' turn choices and
// forced switches. postPreviewOrder is each side's post-selection roster
// ordering (preview.Resolution.PostPreviewOrder), needed to translate a
// forced switch's species back into a 1-based switch index.
func Reconstruct(records []logline.Record, postPreviewOrder map[battle.Side][]string) Result {
	s := newState()
	result := Result{}

	for _, r := range records {
		if s.phase == phaseEnded {
			break
		}
		switch v := r.(type) {
		case logline.Start:
			s.phase = phaseTeamPreview

		case logline.Turn:
			s.handleTurn(v, &result, postPreviewOrder)

		case logline.Upkeep:
			s.betweenTurns = true
			s.forced = freshForced()

		case logline.Switch:
			s.handleSwitch(v.Slot, v.Identifier, v.SpeciesID, postPreviewOrder[v.Slot.Side])

		case logline.Drag:
			// Passive; updates occupancy only, never a choice (§9 open question).
			s.active[v.Slot] = battle.Occupant{Identifier: v.Identifier, SpeciesID: v.SpeciesID}

		case logline.Move:
			s.handleMove(v)

		case logline.Terastallize:
			s.handleTerastallize(v)

		case logline.Cant:
			if s.phase != phaseBattle {
				continue
			}
			if _, ok := s.actions[v.Slot.Side][v.Slot]; !ok {
				s.actions[v.Slot.Side][v.Slot] = Action{Kind: Default}
			}

		case logline.Faint:
			s.faintedSlots[v.Slot] = true
			for slot := range s.commanding {
				if slot.Side == v.Slot.Side {
					delete(s.commanding, slot)
				}
			}

		case logline.Activate:
			if strings.Contains(strings.ToLower(v.Effect), "commander") {
				s.commanding[v.Slot] = true
			}

		case logline.DetailsChange:
			occ := s.active[v.Slot]
			occ.SpeciesID = v.SpeciesID
			s.active[v.Slot] = occ

		case logline.Win:
			s.finalFlush(&result, postPreviewOrder)

		case logline.Message:
			if strings.Contains(strings.ToLower(v.Text), "forfeit") {
				s.finalFlush(&result, postPreviewOrder)
			}
		}
	}

	// A log with no trailing win/forfeit message (truncated recording)
	// still owes its last in-progress turn a flush.
	if s.phase == phaseBattle {
		s.finalFlush(&result, postPreviewOrder)
	}

	return result
}

func (s *state) handleTurn(v logline.Turn, result *Result, postPreviewOrder map[battle.Side][]string) {
	if s.phase == phasePreBattle || s.phase == phaseTeamPreview {
		s.phase = phaseBattle
		s.currentTurn = v.Number
		s.betweenTurns = false
		s.snapshotTurnStart()
		return
	}
	if s.phase != phaseBattle {
		return
	}
	s.flush(result, postPreviewOrder)
	s.currentTurn = v.Number
	s.betweenTurns = false
}

func (s *state) finalFlush(result *Result, postPreviewOrder map[battle.Side][]string) {
	if s.phase == phaseBattle {
		s.flush(result, postPreviewOrder)
	}
	s.phase = phaseEnded
}

func (s *state) handleSwitch(slot battle.Slot, identifier, speciesID string, postPreviewOrder []string) {
	forced := s.betweenTurns && s.faintedSlots[slot]
	s.active[slot] = battle.Occupant{Identifier: identifier, SpeciesID: speciesID}

	if forced {
		s.forced[slot.Side][slot] = speciesID
		delete(s.faintedSlots, slot)
		return
	}
	if s.phase != phaseBattle {
		return
	}
	if _, ok := s.actions[slot.Side][slot]; ok {
		return // dedup: consequence of an already-recorded move (U-turn etc.)
	}
	s.actions[slot.Side][slot] = Action{Kind: Switch, SwitchIndex: resolveSwitchIndex(postPreviewOrder, speciesID)}
}

func (s *state) handleMove(v logline.Move) {
	if s.phase != phaseBattle {
		return
	}
	if _, ok := s.actions[v.Slot.Side][v.Slot]; ok {
		return
	}
	a := Action{Kind: Move, MoveID: v.MoveID, Terastallize: s.teraSlots[v.Slot]}
	if v.HasTarget {
		a.HasTarget = true
		a.TargetLoc = targetLoc(v.Slot, v.Target)
	}
	s.actions[v.Slot.Side][v.Slot] = a
}

// handleTerastallize records a slot's terastallize declaration, whether the
// -terastallize line precedes or follows its move line in the log.
func (s *state) handleTerastallize(v logline.Terastallize) {
	s.teraSlots[v.Slot] = true
	if a, ok := s.actions[v.Slot.Side][v.Slot]; ok && a.Kind == Move {
		a.Terastallize = true
		s.actions[v.Slot.Side][v.Slot] = a
	}
}

// targetLoc applies the §3 targeting encoding: opposing slots are positive,
// allied slots (redirection, self-targeting boosts) negative; magnitude 2
// for the 'b' slot in doubles.
func targetLoc(attacker, target battle.Slot) int {
	magnitude := 1
	if target.Position == 'b' {
		magnitude = 2
	}
	if target.Side == attacker.Side {
		return -magnitude
	}
	return magnitude
}
