package choice_test

import (
	"strings"
	"testing"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/choice"
	"github.com/dunmore-lab/replaycore/pkg/replay/logline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(lines ...string) []logline.Record {
	return logline.All(strings.NewReader(strings.Join(lines, "\n")))
}

var noOrder = map[battle.Side][]string{battle.P1: nil, battle.P2: nil}

func slot(s string) battle.Slot {
	sl, _ := battle.ParseSlot(s)
	return sl
}

// Scenario 1 (§8): a doubles spread move targets both foes and an ally and
// must not carry a single target location; an unrelated ability activation
// in between must not disturb either side's action.
func TestReconstructSpreadMove(t *testing.T) {
	log := records(
		"|switch|p1a: Incineroar|Incineroar, L100|100/100",
		"|switch|p1b: Landorus|Landorus-Therian, L100|100/100",
		"|switch|p2a: Gholdengo|Gholdengo, L100|100/100",
		"|switch|p2b: Farigiraf|Farigiraf, L100|100/100",
		"|turn|1",
		"|move|p1a: Incineroar|Earthquake|[spread] p1b,p2a,p2b",
		"|-ability|p2a: Gholdengo|Intimidate",
		"|move|p1b: Landorus|Rock Slide|[spread] p2a,p2b",
		"|move|p2a: Gholdengo|Protect",
		"|move|p2b: Farigiraf|Dazzling Gleam|[spread] p1a,p1b",
		"|upkeep",
		"|turn|2",
	)

	res := choice.Reconstruct(log, noOrder)
	// turn 2 has no events before the log ends; it is still flushed.
	require.Len(t, res.Choices, 2)
	assert.Equal(t, "move earthquake, move rockslide", res.Choices[0].Choice[battle.P1])
	assert.Equal(t, "move protect, move dazzlinggleam", res.Choices[0].Choice[battle.P2])
}

// Scenario 2 (§8): a flinched slot that never gets a move/switch record
// still owes the turn a "default" action.
func TestReconstructFlinchDefault(t *testing.T) {
	log := records(
		"|switch|p1a: Ting-Lu|Ting-Lu, L100|100/100",
		"|switch|p2a: Dragonite|Dragonite, L100|100/100",
		"|turn|1",
		"|move|p2a: Dragonite|Extreme Speed|p1a: Ting-Lu",
		"|cant|p1a: Ting-Lu|flinch",
		"|upkeep",
		"|turn|2",
	)

	res := choice.Reconstruct(log, noOrder)
	require.Len(t, res.Choices, 2)
	assert.Equal(t, "default", res.Choices[0].Choice[battle.P1])
	assert.Equal(t, "move extremespeed 1", res.Choices[0].Choice[battle.P2])
}

// Scenario 3 (§8): a slot that faints before acting owes "default" for the
// turn's choice, and the switch-in that follows upkeep is a forced switch,
// not an ordinary action.
func TestReconstructFaintBeforeActingForcedSwitch(t *testing.T) {
	log := records(
		"|switch|p1a: Corviknight|Corviknight, L100|100/100",
		"|switch|p2a: Dragonite|Dragonite, L100|100/100",
		"|turn|1",
		"|move|p2a: Dragonite|Extreme Speed|p1a: Corviknight",
		"|-damage|p1a: Corviknight|0 fnt",
		"|faint|p1a: Corviknight",
		"|move|p2a: Dragonite|Roost",
		"|upkeep",
		"|switch|p1a: Skarmory|Skarmory, L100|100/100",
		"|turn|2",
	)

	order := map[battle.Side][]string{battle.P1: {"corviknight", "skarmory"}, battle.P2: nil}
	res := choice.Reconstruct(log, order)
	require.Len(t, res.Choices, 2)
	require.Len(t, res.Forced, 2)
	assert.Equal(t, "default", res.Choices[0].Choice[battle.P1])
	assert.Equal(t, "switch 2", res.Forced[0].Choice[battle.P1])
	assert.Equal(t, map[battle.Slot]string{slot("p1a"): "skarmory"}, res.Forced[0].SlotSpecies[battle.P1])
	assert.Equal(t, "", res.Forced[0].Choice[battle.P2])
}

// Scenario 4 (§8): a mid-turn terastallize declaration attaches to the same
// slot's move action, whichever order the two lines appear in.
func TestReconstructMidTurnTerastallize(t *testing.T) {
	log := records(
		"|switch|p1a: Gholdengo|Gholdengo, L100|100/100",
		"|switch|p2a: Dragonite|Dragonite, L100|100/100",
		"|turn|1",
		"|-terastallize|p1a: Gholdengo|Steel",
		"|move|p1a: Gholdengo|Make It Rain|p2a: Dragonite",
		"|move|p2a: Dragonite|Extreme Speed|p1a: Gholdengo",
		"|upkeep",
		"|turn|2",
	)

	res := choice.Reconstruct(log, noOrder)
	require.Len(t, res.Choices, 2)
	assert.Equal(t, "move makeitrain 1 terastallize", res.Choices[0].Choice[battle.P1])
}

// Scenario 5 (§8): Commander absorption removes the absorbed slot from
// needs_choice starting the turn after activation, and any faint on that
// side drops all of that side's commanding slots, restoring the choice the
// turn after.
func TestReconstructCommanderAbsorptionRelease(t *testing.T) {
	log := records(
		"|switch|p1a: Tatsugiri|Tatsugiri, L100|100/100",
		"|switch|p1b: Dondozo|Dondozo, L100|100/100",
		"|switch|p2a: Ferrothorn|Ferrothorn, L100|100/100",
		"|switch|p2b: Corviknight|Corviknight, L100|100/100",
		"|turn|1",
		"|move|p1a: Tatsugiri|Ice Beam|p2a: Ferrothorn",
		"|move|p1b: Dondozo|Waterfall|p2a: Ferrothorn",
		"|-activate|p1a: Tatsugiri|ability: Commander|[of] p1b: Dondozo",
		"|move|p2a: Ferrothorn|Stealth Rock",
		"|move|p2b: Corviknight|Defog",
		"|upkeep",
		"|turn|2",
		"|move|p1b: Dondozo|Waterfall|p2a: Ferrothorn",
		"|move|p2a: Ferrothorn|Stealth Rock",
		"|move|p2b: Corviknight|Defog",
		"|upkeep",
		"|turn|3",
		"|-damage|p1b: Dondozo|0 fnt",
		"|faint|p1b: Dondozo",
		"|move|p2a: Ferrothorn|Stealth Rock",
		"|move|p2b: Corviknight|Defog",
		"|upkeep",
		"|switch|p1b: Palafin|Palafin, L100|100/100",
		"|turn|4",
		"|move|p1a: Tatsugiri|Ice Beam|p2a: Ferrothorn",
		"|move|p1b: Palafin|Flip Turn|p2a: Ferrothorn",
		"|move|p2a: Ferrothorn|Stealth Rock",
		"|move|p2b: Corviknight|Defog",
		"|upkeep",
		"|turn|5",
	)

	order := map[battle.Side][]string{battle.P1: {"dondozo", "tatsugiri", "palafin"}, battle.P2: nil}
	res := choice.Reconstruct(log, order)
	require.Len(t, res.Choices, 5)

	// turn 1: commander not yet in effect, both slots choose.
	assert.Equal(t, "move icebeam 1, move waterfall 1", res.Choices[0].Choice[battle.P1])
	// turn 2: Tatsugiri is commanding, excluded from needs_choice.
	assert.Equal(t, "move waterfall 1", res.Choices[1].Choice[battle.P1])
	// turn 3: still commanding (Dondozo faints mid-turn, after the needs_choice snapshot).
	assert.Equal(t, "default", res.Choices[2].Choice[battle.P1])
	assert.Equal(t, "switch 3", res.Forced[2].Choice[battle.P1])
	// turn 4: commander released by the faint, Tatsugiri needs a choice again.
	assert.Equal(t, "move icebeam 1, move flipturn 1", res.Choices[3].Choice[battle.P1])
}
