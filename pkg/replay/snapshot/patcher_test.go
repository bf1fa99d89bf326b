package snapshot_test

import (
	"testing"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeView is a minimal in-memory snapshot.View/snapshot.Live for testing
// the patcher against a known roster, without any real wire encoding.
type fakeView struct {
	active    map[battle.Side][]string
	creatures map[battle.Side][]snapshot.CreatureState
	encoding  map[battle.Side]int
}

func newFakeView() *fakeView {
	return &fakeView{
		active:    map[battle.Side][]string{},
		creatures: map[battle.Side][]snapshot.CreatureState{},
		encoding:  map[battle.Side]int{},
	}
}

func (f *fakeView) ActiveSpecies(side battle.Side, position int) (string, bool) {
	list := f.active[side]
	if position < 0 || position >= len(list) {
		return "", false
	}
	return list[position], true
}

func (f *fakeView) SetActiveSpecies(side battle.Side, position int, speciesID string) bool {
	for i, c := range f.creatures[side] {
		if !battle.SpeciesMatch(c.SpeciesID, speciesID) {
			continue
		}
		cur := f.active[side][position]
		for j, s := range f.active[side] {
			if s == speciesID {
				f.active[side][j] = cur
			}
		}
		f.active[side][position] = speciesID
		f.creatures[side][i].IsActive = true
		return true
	}
	return false
}

func (f *fakeView) Creatures(side battle.Side) []snapshot.CreatureState {
	return f.creatures[side]
}

func (f *fakeView) SetCreature(side battle.Side, index int, state snapshot.CreatureState) {
	f.creatures[side][index] = state
}

func (f *fakeView) InsertCreature(side battle.Side, state snapshot.CreatureState) {
	f.creatures[side] = append(f.creatures[side], state)
}

func (f *fakeView) SetRosterEncoding(side battle.Side, length int) {
	f.encoding[side] = length
}

func (f *fakeView) Encode() []byte { return nil }

type fakeLive struct {
	active    map[battle.Side][]string
	creatures map[battle.Side][]snapshot.CreatureState
}

func (f *fakeLive) ActiveSpecies(side battle.Side, position int) (string, bool) {
	list := f.active[side]
	if position < 0 || position >= len(list) {
		return "", false
	}
	return list[position], true
}

func (f *fakeLive) Creatures(side battle.Side) []snapshot.CreatureState {
	return f.creatures[side]
}

func TestPatchFixesMisplacedActiveSlot(t *testing.T) {
	view := newFakeView()
	view.active[battle.P1] = []string{"incineroar"}
	view.creatures[battle.P1] = []snapshot.CreatureState{
		{SpeciesID: "incineroar", HPPercent: 100, IsActive: true},
		{SpeciesID: "skarmory", HPPercent: 80},
	}

	live := &fakeLive{
		active: map[battle.Side][]string{battle.P1: {"skarmory"}},
		creatures: map[battle.Side][]snapshot.CreatureState{
			battle.P1: {
				{SpeciesID: "incineroar", HPPercent: 60, IsActive: false},
				{SpeciesID: "skarmory", HPPercent: 80, IsActive: true},
			},
		},
	}

	snapshot.Patch(view, live, nil)

	active, ok := view.ActiveSpecies(battle.P1, 0)
	require.True(t, ok)
	assert.Equal(t, "skarmory", active)

	var incineroar snapshot.CreatureState
	for _, c := range view.Creatures(battle.P1) {
		if c.SpeciesID == "incineroar" {
			incineroar = c
		}
	}
	assert.Equal(t, 60, incineroar.HPPercent)
	assert.False(t, incineroar.IsActive)
}

func TestPatchRecoversMissingSpeciesFromHistory(t *testing.T) {
	history := newFakeView()
	history.creatures[battle.P1] = []snapshot.CreatureState{
		{SpeciesID: "ogerpon-wellspring", HPPercent: 100},
	}

	view := newFakeView()
	view.active[battle.P1] = []string{"incineroar"}
	view.creatures[battle.P1] = []snapshot.CreatureState{
		{SpeciesID: "incineroar", HPPercent: 100, IsActive: true},
	}

	live := &fakeLive{
		active: map[battle.Side][]string{battle.P1: {"ogerpon"}}, // base form, as the engine logs it
		creatures: map[battle.Side][]snapshot.CreatureState{
			battle.P1: {
				{SpeciesID: "incineroar", HPPercent: 100},
				{SpeciesID: "ogerpon-wellspring", HPPercent: 90, IsActive: true},
			},
		},
	}

	snapshot.Patch(view, live, []snapshot.View{history})

	found := false
	for _, c := range view.Creatures(battle.P1) {
		if c.SpeciesID == "ogerpon-wellspring" {
			found = true
		}
	}
	assert.True(t, found, "ogerpon-wellspring should have been recovered from history")
}

func TestPatchRewritesEncodingToIdentity(t *testing.T) {
	view := newFakeView()
	view.active[battle.P1] = []string{"incineroar"}
	view.creatures[battle.P1] = []snapshot.CreatureState{{SpeciesID: "incineroar", IsActive: true}}
	view.active[battle.P2] = []string{"dragonite"}
	view.creatures[battle.P2] = []snapshot.CreatureState{{SpeciesID: "dragonite", IsActive: true}}

	live := &fakeLive{
		active: map[battle.Side][]string{
			battle.P1: {"incineroar"},
			battle.P2: {"dragonite"},
		},
		creatures: view.creatures,
	}

	snapshot.Patch(view, live, nil)
	assert.Equal(t, 1, view.encoding[battle.P1])
	assert.Equal(t, 1, view.encoding[battle.P2])
}
