package choice

import "github.com/dunmore-lab/replaycore/pkg/battle"

type phase int

const (
	phasePreBattle phase = iota
	phaseTeamPreview
	phaseBattle
	phaseEnded
)

// state is the explicit fold state the reconstructor carries through the
// record walk (§9 re-architecture note: replace mutable closed-over
// locals with a state threaded value-by-value through the walk).
type state struct {
	phase phase

	active     battle.ActiveMap
	commanding map[battle.Slot]bool

	// per-turn scratch, reset on every flush.
	actions      map[battle.Side]map[battle.Slot]Action
	teraSlots    map[battle.Slot]bool
	faintedSlots map[battle.Slot]bool

	betweenTurns bool
	forced       map[battle.Side]map[battle.Slot]string

	turnStartActive     battle.ActiveMap
	turnStartCommanding map[battle.Slot]bool

	currentTurn int
}

func newState() *state {
	return &state{
		phase:        phasePreBattle,
		active:       battle.ActiveMap{},
		commanding:   map[battle.Slot]bool{},
		actions:      freshActions(),
		teraSlots:    map[battle.Slot]bool{},
		faintedSlots: map[battle.Slot]bool{},
		forced:       freshForced(),
	}
}

func freshActions() map[battle.Side]map[battle.Slot]Action {
	return map[battle.Side]map[battle.Slot]Action{
		battle.P1: {},
		battle.P2: {},
	}
}

func freshForced() map[battle.Side]map[battle.Slot]string {
	return map[battle.Side]map[battle.Slot]string{
		battle.P1: {},
		battle.P2: {},
	}
}

func cloneCommanding(m map[battle.Slot]bool) map[battle.Slot]bool {
	out := make(map[battle.Slot]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// snapshotTurnStart fixes the active/commanding maps a turn's needs_choice
// computation is based on, taken when its Turn record is read.
func (s *state) snapshotTurnStart() {
	s.turnStartActive = s.active.Clone()
	s.turnStartCommanding = cloneCommanding(s.commanding)
}

// resetScratch clears the per-turn accumulation after a flush.
func (s *state) resetScratch() {
	s.actions = freshActions()
	s.teraSlots = map[battle.Slot]bool{}
	s.faintedSlots = map[battle.Slot]bool{}
}
