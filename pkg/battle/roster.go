package battle

// Roster is one side's declared team, in original showteam order.
type Roster []Creature

// ByID returns the creature with the given species id, using exact match
// first and falling back to base-form match per §4.D/§4.G.
func (r Roster) ByID(speciesID string) (Creature, bool) {
	for _, c := range r {
		if c.SpeciesID == speciesID {
			return c, true
		}
	}
	for _, c := range r {
		if BaseForm(c.SpeciesID) == BaseForm(speciesID) {
			return c, true
		}
	}
	return Creature{}, false
}

// ByShowteamIndex returns the creature declared at the given 0-based index.
func (r Roster) ByShowteamIndex(i int) (Creature, bool) {
	for _, c := range r {
		if c.ShowteamIndex == i {
			return c, true
		}
	}
	return Creature{}, false
}

// Occupant names the creature currently standing in an active slot.
type Occupant struct {
	// Identifier is the nickname/species string the log uses to name this
	// creature in subsequent records (e.g. "Flutter Mane").
	Identifier string
	SpeciesID  string
}

// ActiveMap tracks, for one point in the log, which creature occupies each
// simultaneously-active slot.
type ActiveMap map[Slot]Occupant

func (m ActiveMap) Clone() ActiveMap {
	out := make(ActiveMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Slots returns the occupied slots belonging to side, sorted a before b.
func (m ActiveMap) Slots(side Side) []Slot {
	var out []Slot
	for s := range m {
		if s.Side == side {
			out = append(out, s)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Less(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
