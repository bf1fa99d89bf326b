// Package driver implements the Replay Driver (§4.G): it feeds the parser's
// recovered team-preview choices, per-turn choices, forced switches and
// patches into a live battle engine, recovering from choices the engine
// refuses and keeping a per-turn snapshot array resumable even after the
// engine's own RNG diverges from the recording.
package driver

import (
	"context"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/patch"
	"github.com/dunmore-lab/replaycore/pkg/replay/snapshot"
)

// RequestState is what the engine is currently waiting for from a side
// (§6 request_state).
type RequestState int

const (
	RequestNone RequestState = iota
	RequestTeamPreview
	RequestMove
	RequestSwitch
)

func (r RequestState) String() string {
	switch r {
	case RequestTeamPreview:
		return "teampreview"
	case RequestMove:
		return "move"
	case RequestSwitch:
		return "switch"
	default:
		return "none"
	}
}

// ChoiceOutcome is the result of submitting a choice string (§9
// re-architecture: replace exception-driven submission with an explicit
// result the driver branches on).
type ChoiceOutcome struct {
	Accepted bool
	Reason   string // populated iff !Accepted
}

// Engine is the injected battle-engine collaborator (§6). The core never
// implements game logic itself; it only drives an Engine through this
// contract. Implementations must never panic or return an error for
// rejected input — rejection is communicated through ChoiceOutcome.
type Engine interface {
	// New resets the engine to a fresh game for the given format config and
	// RNG seed.
	New(ctx context.Context, formatConfig string, seed int64) error

	// SetPlayer registers a side's display name and packed team.
	SetPlayer(ctx context.Context, side battle.Side, name, packedTeam string) error

	// Choose submits a choice string for a side. Never errors for invalid
	// input; invalid input is reported through the returned outcome.
	Choose(ctx context.Context, side battle.Side, choice string) ChoiceOutcome

	// UndoChoice reverts a side's most recent accepted choice this turn, if
	// the engine has not yet resolved the turn.
	UndoChoice(ctx context.Context, side battle.Side) error

	// RequestState reports what the engine is waiting for from a side.
	RequestState(side battle.Side) RequestState

	// MakeRequest forces the engine to (re)issue a request of the given
	// kind to both sides, bypassing its normal turn-resolution trigger.
	MakeRequest(ctx context.Context, kind RequestState) error

	// Turn is the current turn number; 0 before the first turn resolves.
	Turn() int
	// Ended reports whether the game has reached a terminal state.
	Ended() bool

	// Active returns the occupant of a slot, if any.
	Active(side battle.Side, slot battle.Slot) (battle.Occupant, bool)
	// Roster returns a side's current in-memory roster order (post any
	// mid-battle reordering the engine performs on switch-in), 1-based.
	Roster(side battle.Side) []battle.Occupant

	// ToJSON serializes the current engine state. The driver never parses
	// the result; it is an opaque snapshot (§9).
	ToJSON(ctx context.Context) ([]byte, error)
	// FromJSON replaces the engine's state from a prior ToJSON snapshot.
	FromJSON(ctx context.Context, snapshot []byte) error

	// StateByTurn is the engine-owned, per-turn snapshot array populated by
	// its internal turn hook; Turn() indexes into it.
	StateByTurn() [][]byte
	// SetStateByTurn overwrites one entry, extending the array if needed.
	// Used by the driver to resync a stale snapshot (§4.G step 7) and to
	// install placeholders on a forced advance (§4.G step 5).
	SetStateByTurn(t int, snapshot []byte)

	// Restart re-binds the engine's output channel after a FromJSON
	// deserialization, which does not itself restore channel plumbing.
	Restart(send func(string))

	// ApplyPatch writes a turn patch's HP/status/fainted corrections
	// directly onto the live engine's creature records (§4.G step 6).
	ApplyPatch(ctx context.Context, p patch.TurnPatch) error

	// ForceAdvance clears any pending requests and advances the turn
	// counter by one without resolving a normal turn, for the stuck-turn
	// recovery path (§4.G step 5).
	ForceAdvance(ctx context.Context) error

	// SnapshotView wraps raw snapshot bytes (as returned by ToJSON or read
	// from StateByTurn) in a mutable structural view for the Snapshot
	// Patcher (§4.H, §9): the driver never parses the wire format itself.
	SnapshotView(raw []byte) (snapshot.View, error)

	// LiveView exposes the current live engine state through the same
	// structural contract the Snapshot Patcher reads a stale snapshot
	// against, read-only.
	LiveView() snapshot.Live
}
