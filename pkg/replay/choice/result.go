package choice

import "github.com/dunmore-lab/replaycore/pkg/battle"

// TurnChoice is both sides' turn-N choice command, keyed by side.
type TurnChoice struct {
	Turn   int
	Choice map[battle.Side]string
}

// ForcedSwitch is both sides' between-turns forced-switch command
// following turn N, keyed by side. Choice is "" when a side had nothing
// to resolve (both slots pass).
type ForcedSwitch struct {
	Turn        int
	Choice      map[battle.Side]string
	SlotSpecies map[battle.Side]map[battle.Slot]string
}

// Result is the Choice Reconstructor's output (§4.E): one TurnChoice and
// one ForcedSwitch per turn, including the last turn the log reaches, which
// is flushed at a win, a forfeit message, or the end of the log.
type Result struct {
	Choices []TurnChoice
	Forced  []ForcedSwitch
}
