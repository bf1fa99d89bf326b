package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Session wraps an injected Engine with the mutual-exclusion and bundle
// protocol the replay core drives it through. Exactly one Session owns one
// Engine for the session's lifetime (§5): the driver borrows it mutably for
// the duration of each command and never interleaves commands.
type Session struct {
	mu sync.Mutex
	e  Engine

	// postPreviewOrder is each side's post-selection roster ordering,
	// needed to translate a parsed forced-switch species back into the
	// live engine's current roster index (§4-resolveForcedSwitch).
	postPreviewOrder map[battle.Side][]string

	// packedTeam caches each side's submitted team declaration, for the
	// `requestteam` command: the engine owns the roster it derives from
	// this, not the original packed string.
	packedTeam map[battle.Side]string
}

// NewSession wraps e. The caller retains no reference to e afterwards; the
// Session owns it exclusively.
func NewSession(e Engine) *Session {
	return &Session{
		e:                e,
		postPreviewOrder: map[battle.Side][]string{},
		packedTeam:       map[battle.Side]string{},
	}
}

// Version reports the driver's build version, for the `version` command.
func Version() string {
	return fmt.Sprintf("replaycore %v", version)
}

func (s *Session) Start(ctx context.Context, formatConfig string, seed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logw.Infof(ctx, "Start %v, seed=%v", formatConfig, seed)
	return s.e.New(ctx, formatConfig, seed)
}

func (s *Session) SetPlayer(ctx context.Context, side battle.Side, name, packedTeam string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logw.Infof(ctx, "SetPlayer %v %v", side, name)
	s.packedTeam[side] = packedTeam
	return s.e.SetPlayer(ctx, side, name, packedTeam)
}

// Team returns a side's submitted packed team declaration, for the
// `requestteam` command.
func (s *Session) Team(side battle.Side) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.packedTeam[side]
	return team, ok
}

// SetPostPreviewOrder installs a side's post-selection roster ordering
// (preview.Resolution.PostPreviewOrder), used by forced-switch resolution.
func (s *Session) SetPostPreviewOrder(side battle.Side, order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.postPreviewOrder[side] = order
}

// Choose submits a team-preview or turn choice for one side.
func (s *Session) Choose(ctx context.Context, side battle.Side, choice string) ChoiceOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.e.Choose(ctx, side, choice)
	if !out.Accepted {
		logw.Warningf(ctx, "Choice rejected for %v: %v (%v)", side, choice, out.Reason)
	}
	return out
}

// UndoChoice reverts a side's most recent accepted choice this turn.
func (s *Session) UndoChoice(ctx context.Context, side battle.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.e.UndoChoice(ctx, side)
}

// ExportState returns the current snapshot, the full snapshot array, and
// the engine's current turn number.
func (s *Session) ExportState(ctx context.Context) ([]byte, [][]byte, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.e.ToJSON(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	return cur, s.e.StateByTurn(), s.e.Turn(), nil
}

// LoadState replaces the engine's state from an externally provided
// snapshot and re-primes it to accept the next choice.
func (s *Session) LoadState(ctx context.Context, snapshot []byte, send func(string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.e.FromJSON(ctx, snapshot); err != nil {
		logw.Errorf(ctx, "LoadState failed: %v", err)
		return err
	}
	s.e.Restart(send)
	return reprime(ctx, s.e)
}

// JumpToTurn replaces the live engine with the snapshot at turn n (or the
// nearest earlier turn with a snapshot) and re-primes it for turn n+1.
func (s *Session) JumpToTurn(ctx context.Context, n int, send func(string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := s.e.StateByTurn()
	for t := n; t >= 0; t-- {
		if t >= len(states) || states[t] == nil {
			continue
		}
		if err := s.e.FromJSON(ctx, states[t]); err != nil {
			logw.Errorf(ctx, "JumpToTurn(%v) deserialization failed: %v", n, err)
			return err
		}
		s.e.Restart(send)
		return reprime(ctx, s.e)
	}
	return fmt.Errorf("no snapshot at or before turn %v", n)
}

func reprime(ctx context.Context, e Engine) error {
	if e.RequestState(battle.P1) == RequestMove && e.RequestState(battle.P2) == RequestMove {
		return nil
	}
	return e.MakeRequest(ctx, RequestMove)
}
