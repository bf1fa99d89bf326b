// Package pack unpacks and repacks the engine's packed-team declaration
// format, the argument of a `showteam` log record (§4.B). The format is
// documented the way the teacher documents FEN in pkg/board/fen: one
// numbered section per field, in encounter order.
package pack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/seekerror/stdlib/pkg/lang"
)

const defaultLevel = 100

// Decode unpacks a packed-team string into a Roster in declaration order,
// assigning each entry its 0-based ShowteamIndex.
//
// A packed team is a list of per-creature entries separated by ']'. Each
// entry has at least 11 '|'-delimited fields; the 12th is optional:
//
//	(1)  nickname
//	(2)  species id
//	(3)  item id (empty if none)
//	(4)  ability id
//	(5)  move ids, comma-separated (up to 4)
//	(6)  nature (ignored by this core)
//	(7)  effort values, comma-separated (ignored)
//	(8)  gender: "M", "F" or empty
//	(9)  individual values, comma-separated (ignored)
//	(10) shiny flag (ignored)
//	(11) level (empty means 100)
//	(12) misc: happiness,pokeball,hiddenpowertype,gigantamax,dynamaxlevel,teraType
func Decode(packed string) (battle.Roster, error) {
	if strings.TrimSpace(packed) == "" {
		return nil, nil // fail soft: no showteam record for this side
	}

	var out battle.Roster
	for i, entry := range strings.Split(packed, "]") {
		if entry == "" {
			continue
		}
		c, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %d in packed team: %w", i, err)
		}
		c.ShowteamIndex = i
		out = append(out, c)
	}
	return out, nil
}

func decodeEntry(entry string) (battle.Creature, error) {
	fields := strings.Split(entry, "|")
	if len(fields) < 11 {
		return battle.Creature{}, fmt.Errorf("invalid number of fields in packed entry: '%v'", entry)
	}

	c := battle.Creature{
		Nickname:  fields[0],
		SpeciesID: normalizeSpeciesID(fields[1]),
	}
	if c.SpeciesID == "" {
		c.SpeciesID = normalizeSpeciesID(fields[0]) // species omitted == same as nickname
	}
	if fields[2] != "" {
		c.Item = lang.Some(normalizeID(fields[2]))
	}
	if fields[3] != "" {
		c.Ability = lang.Some(normalizeID(fields[3]))
	}

	moves := strings.Split(fields[4], ",")
	for i := 0; i < len(c.MoveIDs) && i < len(moves); i++ {
		c.MoveIDs[i] = normalizeID(moves[i])
	}

	switch fields[7] {
	case "M":
		c.Gender = battle.Male
	case "F":
		c.Gender = battle.Female
	default:
		c.Gender = battle.Genderless
	}

	c.Level = defaultLevel
	if fields[10] != "" {
		lvl, err := strconv.Atoi(fields[10])
		if err != nil {
			return battle.Creature{}, fmt.Errorf("invalid level in packed entry: '%v'", entry)
		}
		c.Level = lvl
	}

	if len(fields) > 11 {
		misc := strings.Split(fields[11], ",")
		if len(misc) >= 6 && misc[5] != "" {
			c.Tera = lang.Some(normalizeID(misc[5]))
		}
	}

	return c, nil
}

// Encode repacks a Roster into the same wire format Decode consumes, in
// ShowteamIndex order. Used by the parse->pack->parse round-trip law (§8).
func Encode(r battle.Roster) string {
	ordered := make(battle.Roster, len(r))
	copy(ordered, r)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].ShowteamIndex < ordered[j-1].ShowteamIndex; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	var sb strings.Builder
	for i, c := range ordered {
		if i > 0 {
			sb.WriteByte(']')
		}
		sb.WriteString(encodeEntry(c))
	}
	return sb.String()
}

func encodeEntry(c battle.Creature) string {
	var moves []string
	for _, m := range c.MoveIDs {
		if m != "" {
			moves = append(moves, m)
		}
	}

	gender := ""
	switch c.Gender {
	case battle.Male:
		gender = "M"
	case battle.Female:
		gender = "F"
	}

	item, _ := c.Item.V()
	ability, _ := c.Ability.V()
	tera, _ := c.Tera.V()

	misc := fmt.Sprintf(",,,,,%v", tera)

	fields := []string{
		c.Nickname,
		c.SpeciesID,
		item,
		ability,
		strings.Join(moves, ","),
		"",
		"",
		gender,
		"",
		"",
		strconv.Itoa(c.Level),
		misc,
	}
	return strings.Join(fields, "|")
}

// normalizeID matches the engine's toID(): lowercase, alphanumeric only.
func normalizeID(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// normalizeSpeciesID is like normalizeID but keeps a single hyphen before a
// form suffix (e.g. "Ogerpon-Wellspring" -> "ogerpon-wellspring"), since
// §4.D/§4.G base-form matching depends on that separator surviving.
func normalizeSpeciesID(s string) string {
	parts := strings.SplitN(s, "-", 2)
	base := normalizeID(parts[0])
	if len(parts) == 1 {
		return base
	}
	suffix := normalizeID(parts[1])
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}
