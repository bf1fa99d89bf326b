// Command replaycore parses a battle-engine text log and reconstructs the
// per-turn choices, forced switches, and state patches the Replay Driver
// (pkg/replay/driver) needs to resume play against a live engine collaborator.
//
// Driving an actual live session (the `serve` role, pkg/replay/driver.Protocol
// and pkg/replay/driver/console.Driver) requires linking in a concrete
// driver.Engine implementation, which is out of scope here (§1): the engine
// itself is an injected collaborator, not part of this repository. This
// binary exposes the self-contained parsing stages (components A-F) that
// run without one.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/battle/pack"
	"github.com/dunmore-lab/replaycore/pkg/replay/appearance"
	"github.com/dunmore-lab/replaycore/pkg/replay/choice"
	"github.com/dunmore-lab/replaycore/pkg/replay/logline"
	"github.com/dunmore-lab/replaycore/pkg/replay/patch"
	"github.com/dunmore-lab/replaycore/pkg/replay/preview"
)

var version = build.NewVersion(0, 1, 0)

type dumpCmd struct {
	Log        string `arg:"" help:"Path to the battle event log." type:"existingfile"`
	P1Team     string `help:"Path to p1's packed team, if not present as a showteam record in the log." type:"existingfile"`
	P2Team     string `help:"Path to p2's packed team, if not present as a showteam record in the log." type:"existingfile"`
	BringCount int    `help:"Team-preview bring count." default:"4"`
}

type dumpOutput struct {
	PostPreviewOrder map[battle.Side][]string `json:"post_preview_order"`
	TeamPreview      map[battle.Side]string   `json:"team_preview_choice"`
	Choices          []choice.TurnChoice      `json:"choices"`
	Forced           []choice.ForcedSwitch    `json:"forced"`
	Patches          []patch.TurnPatch        `json:"patches"`
}

func (c *dumpCmd) Run(ctx context.Context) error {
	f, err := os.Open(c.Log)
	if err != nil {
		return fmt.Errorf("opening log '%v': %w", c.Log, err)
	}
	defer f.Close()

	records := logline.All(f)

	rosters, err := c.resolveRosters(records)
	if err != nil {
		return err
	}

	order := appearance.Scan(records)

	out := dumpOutput{
		PostPreviewOrder: map[battle.Side][]string{},
		TeamPreview:      map[battle.Side]string{},
	}
	postPreviewOrder := map[battle.Side][]string{}
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		res, err := preview.Resolve(rosters[side], order[side], c.BringCount)
		if err != nil {
			return fmt.Errorf("resolving team preview for %v: %w", side, err)
		}
		out.TeamPreview[side] = res.Choice
		out.PostPreviewOrder[side] = res.PostPreviewOrder
		postPreviewOrder[side] = res.PostPreviewOrder
	}

	result := choice.Reconstruct(records, postPreviewOrder)
	out.Choices = result.Choices
	out.Forced = result.Forced
	out.Patches = patch.Extract(records)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (c *dumpCmd) resolveRosters(records []logline.Record) (map[battle.Side]battle.Roster, error) {
	rosters := map[battle.Side]battle.Roster{}
	for _, rec := range records {
		st, ok := rec.(logline.ShowTeam)
		if !ok {
			continue
		}
		roster, err := pack.Decode(st.Packed)
		if err != nil {
			return nil, fmt.Errorf("decoding %v's packed team: %w", st.Side, err)
		}
		rosters[st.Side] = roster
	}

	if path := c.P1Team; path != "" {
		if _, ok := rosters[battle.P1]; !ok {
			roster, err := decodeTeamFile(path)
			if err != nil {
				return nil, err
			}
			rosters[battle.P1] = roster
		}
	}
	if path := c.P2Team; path != "" {
		if _, ok := rosters[battle.P2]; !ok {
			roster, err := decodeTeamFile(path)
			if err != nil {
				return nil, err
			}
			rosters[battle.P2] = roster
		}
	}
	return rosters, nil
}

func decodeTeamFile(path string) (battle.Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading team file '%v': %w", path, err)
	}
	roster, err := pack.Decode(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding team file '%v': %w", path, err)
	}
	return roster, nil
}

type versionCmd struct{}

func (c *versionCmd) Run(ctx context.Context) error {
	fmt.Printf("replaycore %v\n", version)
	return nil
}

var cli struct {
	Dump    dumpCmd    `cmd:"" help:"Parse a battle log and print recovered choices, forced switches, and state patches as JSON."`
	Version versionCmd `cmd:"" help:"Print the build version."`
}

func main() {
	ctx := context.Background()

	k := kong.Parse(&cli,
		kong.Name("replaycore"),
		kong.Description("Replay reconciliation engine for turn-based battle event logs."),
		kong.UsageOnError(),
	)

	if err := k.Run(ctx); err != nil {
		logw.Exitf(ctx, "%v", err)
	}
}
