package pack_test

import (
	"strings"
	"testing"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/battle/pack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entry builds a packed-team entry string field-by-field, mirroring the
// 12-field layout documented on pack.Decode, so tests don't have to count
// pipes by hand.
func entry(nickname, species, item, ability, moves, gender, level, tera string) string {
	fields := []string{nickname, species, item, ability, moves, "Hardy", "", gender, "", "", level, ",,,,," + tera}
	return strings.Join(fields, "|")
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []string{
		entry("Flutter Mane", "fluttermane", "choicespecs", "protosynthesis", "moonblast,shadowball,dazzlinggleam,energyball", "", "100", "fairy"),
		entry("Ogerpon", "ogerpon-wellspring", "wellspringmask", "waterabsorb", "ivycudgel,uturn,swordsdance,closecombat", "", "100", "water"),
	}

	for _, tt := range tests {
		roster, err := pack.Decode(tt)
		require.NoError(t, err)
		require.Len(t, roster, 1)

		again, err := pack.Decode(pack.Encode(roster))
		require.NoError(t, err)
		assert.Equal(t, roster, again)
	}
}

func TestDecodeEmpty(t *testing.T) {
	roster, err := pack.Decode("")
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestDecodeFormSpecies(t *testing.T) {
	roster, err := pack.Decode(entry("Ogerpon", "ogerpon-wellspring", "wellspringmask", "waterabsorb", "ivycudgel", "", "100", "water"))
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "ogerpon-wellspring", roster[0].SpeciesID)
	tera, ok := roster[0].Tera.V()
	require.True(t, ok)
	assert.Equal(t, "water", tera)
}

func TestDecodeMultipleCreatures(t *testing.T) {
	packed := entry("Flutter Mane", "fluttermane", "", "protosynthesis", "moonblast", "F", "100", "") +
		"]" + entry("Incineroar", "incineroar", "safetygoggles", "intimidate", "knockoff,uturn,fakeout,partingshot", "M", "100", "dark")

	roster, err := pack.Decode(packed)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, 0, roster[0].ShowteamIndex)
	assert.Equal(t, 1, roster[1].ShowteamIndex)
	assert.Equal(t, battle.Female, roster[0].Gender)
	assert.Equal(t, battle.Male, roster[1].Gender)
	ability, _ := roster[1].Ability.V()
	assert.Equal(t, "intimidate", ability)
}
