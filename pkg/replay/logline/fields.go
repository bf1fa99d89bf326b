package logline

import (
	"strconv"
	"strings"

	"github.com/dunmore-lab/replaycore/pkg/battle"
)

// ParseSlotIdentifier splits a "p1a: Flutter Mane" field into its slot and
// the identifier string used to name the occupant in later records.
func ParseSlotIdentifier(field string) (battle.Slot, string, bool) {
	colon := strings.Index(field, ":")
	if colon < 0 {
		return battle.Slot{}, "", false
	}
	slot, ok := battle.ParseSlot(strings.TrimSpace(field[:colon]))
	if !ok {
		return battle.Slot{}, "", false
	}
	return slot, strings.TrimSpace(field[colon+1:]), true
}

// ParseDetails parses a "Species, Lxx, Gender[, shiny][, tera:Type]" detail
// string, as seen in `switch`/`drag`/`poke` records, into a species id.
// Only the species (first segment) is normalized; the core does not need
// to round-trip the rest of the detail string.
func ParseDetails(detail string) (speciesID string, hasTera bool, tera string) {
	parts := strings.Split(detail, ",")
	if len(parts) == 0 {
		return "", false, ""
	}
	speciesID = toSpeciesID(strings.TrimSpace(parts[0]))
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "tera:") {
			hasTera = true
			tera = toID(strings.TrimPrefix(p, "tera:"))
		}
	}
	return speciesID, hasTera, tera
}

// ParseHPStatus parses an HP field such as "248/250 par" or "0 fnt".
func ParseHPStatus(field string) HPStatus {
	field = strings.TrimSpace(field)
	if field == "" {
		return HPStatus{}
	}

	parts := strings.SplitN(field, " ", 2)
	status := ""
	if len(parts) == 2 {
		status = strings.TrimSpace(parts[1])
	}
	if status == "fnt" {
		return HPStatus{Percent: 0, Fainted: true}
	}

	frac := strings.SplitN(parts[0], "/", 2)
	if len(frac) != 2 {
		return HPStatus{Status: status}
	}
	cur, err1 := strconv.Atoi(frac[0])
	max, err2 := strconv.Atoi(frac[1])
	if err1 != nil || err2 != nil || max == 0 {
		return HPStatus{Status: status}
	}

	percent := int((100*cur + max/2) / max) // round(100*cur/max)
	return HPStatus{Percent: percent, Status: status}
}

// ParseTargetLocation derives the §3 targeting encoding for a move's target
// field, given the attacker's side and the raw target field (a
// "p1a: Name"-shaped identifier, or an annotation like "[spread] p1a,p1b").
// ok is false when no single target location applies (spread/no-target
// moves, or a missing field).
func ParseTargetLocation(attacker battle.Side, targetField string) (loc int, ok bool) {
	targetField = strings.TrimSpace(targetField)
	if targetField == "" || strings.HasPrefix(targetField, "[") {
		return 0, false
	}

	slot, _, isSlot := ParseSlotIdentifier(targetField)
	if !isSlot {
		return 0, false
	}

	magnitude := 1
	if slot.Position == 'b' {
		magnitude = 2
	}
	if slot.Side == attacker {
		return -magnitude, true
	}
	return magnitude, true
}

func toID(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// toSpeciesID is toID but keeps a single hyphenated form suffix, matching
// pack.normalizeSpeciesID's convention.
func toSpeciesID(s string) string {
	parts := strings.SplitN(s, "-", 2)
	base := toID(parts[0])
	if len(parts) == 1 {
		return base
	}
	suffix := toID(parts[1])
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}
