package driver

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/patch"
	"github.com/dunmore-lab/replaycore/pkg/replay/snapshot"
)

// maxAutoResolveIterations bounds step 4's residual-switch loop (§4.G,
// §7 auto-resolve exhaustion).
const maxAutoResolveIterations = 10

// snapshotHistoryWindow bounds how many earlier turns' views step 7 opens
// for the Snapshot Patcher's backward species recovery; matches the
// patcher's own internal windowSize (§4.H, §9).
const snapshotHistoryWindow = 8

// TurnBundle is one turn's worth of recovered parser output, the unit
// `replayturn` consumes (§4.G).
type TurnBundle struct {
	Turn int

	P1Choice, P2Choice string
	Patch              patch.TurnPatch

	ForcedP1, ForcedP2               string
	ForcedP1Species, ForcedP2Species map[battle.Slot]string
}

// ReplayTurn processes one turn end-to-end (§4.G `replayturn` procedure).
// It never returns an error for an engine that refuses a choice; those are
// absorbed as per §7. A non-nil error here means an engine call the
// procedure depends on failed: force-advance, snapshotting, patch
// application, opening a snapshot view, or re-priming.
func (s *Session) ReplayTurn(ctx context.Context, b TurnBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turnBefore := s.e.Turn()

	// Step 2: submit both sides' choices. Rejection is non-fatal.
	s.submitIgnoringRejection(ctx, battle.P1, b.P1Choice)
	s.submitIgnoringRejection(ctx, battle.P2, b.P2Choice)

	// Step 3: resolve forced switches.
	s.resolveAndSubmitForced(ctx, battle.P1, b.ForcedP1, b.ForcedP1Species)
	s.resolveAndSubmitForced(ctx, battle.P2, b.ForcedP2, b.ForcedP2Species)

	// Step 4: auto-resolve residuals.
	s.autoResolveResiduals(ctx)

	// Step 5: force-advance if stuck. The engine's own turn hook only saves
	// a snapshot on a normal resolution, so a forced advance must stamp one
	// itself for step 7 to have anything to resync.
	if s.e.Turn() == turnBefore && !s.e.Ended() {
		if err := s.e.ForceAdvance(ctx); err != nil {
			return fmt.Errorf("force-advance turn %v: %w", b.Turn, err)
		}
		placeholder, err := s.e.ToJSON(ctx)
		if err != nil {
			return fmt.Errorf("snapshotting forced-advance turn %v: %w", b.Turn, err)
		}
		s.e.SetStateByTurn(s.e.Turn(), placeholder)
	}
	turnAfter := s.e.Turn()

	// Step 6: apply the patch to the live engine.
	if err := s.e.ApplyPatch(ctx, b.Patch); err != nil {
		return fmt.Errorf("apply patch turn %v: %w", b.Turn, err)
	}

	// Step 7: resync the stale snapshot the engine's turn hook saved for
	// the turn that just resolved, now that the patch has corrected the
	// live engine the snapshot needs to match.
	states := s.e.StateByTurn()
	if turnAfter < len(states) && states[turnAfter] != nil {
		view, err := s.e.SnapshotView(states[turnAfter])
		if err != nil {
			return fmt.Errorf("opening snapshot view for turn %v: %w", b.Turn, err)
		}
		snapshot.Patch(view, s.e.LiveView(), s.historyViews(states, turnAfter))
		s.e.SetStateByTurn(turnAfter, view.Encode())
	}

	// Step 8: ensure the next request is move.
	return reprime(ctx, s.e)
}

// historyViews opens up to snapshotHistoryWindow earlier turns' snapshots,
// most-recent first, for the Snapshot Patcher's backward species recovery
// (§4.H step 1). Turns with no saved snapshot, or a snapshot the engine
// can't open, are skipped rather than failing the replay.
func (s *Session) historyViews(states [][]byte, before int) []snapshot.View {
	var out []snapshot.View
	for t := before - 1; t >= 0 && len(out) < snapshotHistoryWindow; t-- {
		if t >= len(states) || states[t] == nil {
			continue
		}
		v, err := s.e.SnapshotView(states[t])
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Session) submitIgnoringRejection(ctx context.Context, side battle.Side, choice string) {
	if choice == "" {
		return
	}
	s.e.Choose(ctx, side, choice)
}

// resolveAndSubmitForced translates and submits a side's forced-switch
// string, if any (§4-resolveForcedSwitch).
func (s *Session) resolveAndSubmitForced(ctx context.Context, side battle.Side, forced string, slotSpecies map[battle.Slot]string) {
	if forced == "" {
		if s.e.RequestState(side) != RequestSwitch {
			return
		}
		// Request-state says switch, but the parser recorded no forced
		// string for this side: nothing to resolve here, step 4 handles it.
		return
	}

	resolved := ResolveForcedSwitch(s.e.Roster(side), forced, slotSpecies)
	s.e.Choose(ctx, side, resolved)
}

// ResolveForcedSwitch rewrites each `switch K` in forced against the side's
// current in-memory roster order, since the engine may have reordered it
// on switch-in relative to post_preview_order (§4-resolveForcedSwitch).
// slotSpecies gives the species the parser expects at each forced slot,
// taken in slot order a before b; each non-pass K is replaced by the 1-based
// position of the first roster entry whose species matches exactly or by
// base form. Active and fainted roster entries are not skipped. A species
// with no match in roster is left as the parser's original K.
func ResolveForcedSwitch(roster []battle.Occupant, forced string, slotSpecies map[battle.Slot]string) string {
	slots := make([]battle.Slot, 0, len(slotSpecies))
	for slot := range slotSpecies {
		slots = append(slots, slot)
	}
	for i := 1; i < len(slots); i++ {
		for j := i; j > 0 && slots[j].Less(slots[j-1]); j-- {
			slots[j], slots[j-1] = slots[j-1], slots[j]
		}
	}
	species := make([]string, 0, len(slots))
	for _, slot := range slots {
		species = append(species, slotSpecies[slot])
	}

	parts := splitChoiceParts(forced)
	out := make([]string, len(parts))
	si := 0
	for i, part := range parts {
		if part == "pass" || si >= len(species) {
			out[i] = part
			continue
		}
		target := species[si]
		si++

		if idx, ok := findRosterIndex(roster, target); ok {
			out[i] = fmt.Sprintf("switch %d", idx)
		} else {
			out[i] = part
		}
	}
	return joinChoiceParts(out)
}

func findRosterIndex(roster []battle.Occupant, speciesID string) (int, bool) {
	for i, occ := range roster {
		if battle.SpeciesMatch(occ.SpeciesID, speciesID) {
			return i + 1, true
		}
	}
	return 0, false
}

func splitChoiceParts(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, trimPart(s[start:i]))
			start = i + 1
		}
	}
	out = append(out, trimPart(s[start:]))
	return out
}

func trimPart(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

func joinChoiceParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// autoResolveResiduals repeatedly submits `default` to any side still in a
// switch request-state, up to maxAutoResolveIterations times (§4.G step 4,
// §7 auto-resolve exhaustion).
func (s *Session) autoResolveResiduals(ctx context.Context) {
	// WithMaxRetries counts retries after the first attempt, so this allows
	// maxAutoResolveIterations attempts in all.
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), maxAutoResolveIterations-1)

	err := backoff.Retry(func() error {
		pending := s.pendingSwitchSides()
		if len(pending) == 0 {
			return nil
		}
		for _, side := range pending {
			out := s.e.Choose(ctx, side, "default")
			if !out.Accepted {
				return backoff.Permanent(fmt.Errorf("residual default rejected for %v: %v", side, out.Reason))
			}
		}
		return fmt.Errorf("residual switch request still pending")
	}, policy)

	if err != nil {
		_ = s.e.MakeRequest(ctx, RequestMove)
	}
}

func (s *Session) pendingSwitchSides() []battle.Side {
	var out []battle.Side
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		if s.e.RequestState(side) == RequestSwitch {
			out = append(out, side)
		}
	}
	return out
}
