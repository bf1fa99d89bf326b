package patch_test

import (
	"strings"
	"testing"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/logline"
	"github.com/dunmore-lab/replaycore/pkg/replay/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTracksDamageAndFaint(t *testing.T) {
	log := strings.Join([]string{
		"|switch|p1a: Incineroar|Incineroar, L100|100/100",
		"|switch|p2a: Dragonite|Dragonite, L100|100/100",
		"|turn|1",
		"|move|p2a: Dragonite|Extreme Speed|p1a: Incineroar",
		"|-damage|p1a: Incineroar|40/100",
		"|upkeep",
		"|turn|2",
		"|-damage|p1a: Incineroar|0 fnt",
		"|faint|p1a: Incineroar",
		"|upkeep",
		"|switch|p1a: Skarmory|Skarmory, L100|100/100",
		"|turn|3",
	}, "\n")

	patches := patch.Extract(logline.All(strings.NewReader(log)))
	require.Len(t, patches, 3)

	require.Len(t, patches[0].HP[battle.P1], 1)
	assert.Equal(t, patch.Entry{SpeciesID: "incineroar", HPPercent: 40}, patches[0].HP[battle.P1][0])
	require.Len(t, patches[0].Active[battle.P1], 1)

	// turn 2's snapshot is taken when turn 3 begins, so it already reflects
	// the forced switch that resolved between upkeep(2) and turn(3):
	// Skarmory active, fainted Incineroar tracked on the bench.
	require.Len(t, patches[1].HP[battle.P1], 2)
	require.Len(t, patches[1].Active[battle.P1], 1)
	assert.Equal(t, "skarmory", patches[1].Active[battle.P1][0].SpeciesID)
	require.Len(t, patches[1].Bench[battle.P1], 1)
	assert.Equal(t, "incineroar", patches[1].Bench[battle.P1][0].SpeciesID)
	assert.True(t, patches[1].Bench[battle.P1][0].Fainted)

	// turn 3 has no further events before the log ends, so its snapshot
	// matches turn 2's apart from the turn number.
	want := patches[1]
	want.Turn = 3
	assert.Equal(t, want, patches[2])
}

func TestExtractStatusCure(t *testing.T) {
	log := strings.Join([]string{
		"|switch|p1a: Toxapex|Toxapex, L100|100/100",
		"|switch|p2a: Landorus|Landorus-Therian, L100|100/100",
		"|turn|1",
		"|-status|p1a: Toxapex|par",
		"|turn|2",
		"|-curestatus|p1a: Toxapex|par",
		"|turn|3",
	}, "\n")

	patches := patch.Extract(logline.All(strings.NewReader(log)))
	require.Len(t, patches, 3)
	assert.Equal(t, "par", patches[0].HP[battle.P1][0].Status)
	assert.Equal(t, "", patches[1].HP[battle.P1][0].Status)
}
