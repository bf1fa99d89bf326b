// Package logline tokenizes the battle engine's textual event log into a
// sequence of typed Records, grounded on the tagged-command style of
// icza/screp's rep/repcmd package: one exhaustively-matched concrete type
// per wire command instead of dynamic field access into a loosely typed
// slice.
package logline

import "github.com/dunmore-lab/replaycore/pkg/battle"

// Kind identifies the wire command a Record was parsed from.
type Kind string

const (
	KindShowTeam       Kind = "showteam"
	KindPoke           Kind = "poke"
	KindStart          Kind = "start"
	KindTeamPreview    Kind = "teampreview"
	KindTurn           Kind = "turn"
	KindUpkeep         Kind = "upkeep"
	KindSwitch         Kind = "switch"
	KindDrag           Kind = "drag"
	KindMove           Kind = "move"
	KindDamage         Kind = "-damage"
	KindHeal           Kind = "-heal"
	KindStatus         Kind = "-status"
	KindCureStatus     Kind = "-curestatus"
	KindFaint          Kind = "faint"
	KindCant           Kind = "cant"
	KindTerastallize   Kind = "-terastallize"
	KindActivate       Kind = "-activate"
	KindDetailsChange  Kind = "-detailschange"
	KindWin            Kind = "win"
	KindMessage        Kind = "-message"
	KindUnrecognized   Kind = ""
)

// Record is one parsed log line. Base carries the fields every record kind
// shares; concrete types add their own.
type Record interface {
	Base() Base
}

// Base is embedded in every concrete Record type.
type Base struct {
	Kind Kind
	Raw  string // the original record, for diagnostics
}

func (b Base) Base() Base { return b }

// ShowTeam carries a side's packed team declaration (§4.B).
type ShowTeam struct {
	Base
	Side   battle.Side
	Packed string
}

// Poke is team-preview metadata for one roster entry; the core only needs
// it to confirm a side fielded a roster, the creature details themselves
// come from ShowTeam.
type Poke struct {
	Base
	Side   battle.Side
	Detail string
}

// Start marks the end of team preview and the beginning of battle.
type Start struct {
	Base
}

// TeamPreview marks the beginning of the team-preview phase.
type TeamPreview struct {
	Base
}

// Turn begins turn N (flushing turn N-1's scratch state).
type Turn struct {
	Base
	Number int
}

// Upkeep marks the end-of-turn bookkeeping step; forced switches observed
// after Upkeep and before the next Turn are between-turns events (§4.E).
type Upkeep struct {
	Base
}

// Switch and Drag both move a creature into an active slot; Drag is a
// passive consequence (e.g. Whirlwind) that must never emit a choice.
type Switch struct {
	Base
	Slot       battle.Slot
	Identifier string
	SpeciesID  string
	HP         HPStatus
}

type Drag struct {
	Base
	Slot       battle.Slot
	Identifier string
	SpeciesID  string
	HP         HPStatus
}

// Move records a move use by the slot's occupant.
type Move struct {
	Base
	Slot     battle.Slot
	MoveID   string
	Target   battle.Slot
	HasTarget bool
	Spread    bool // target field is an annotation, e.g. "[spread] a,b"
}

// Damage and Heal update a slot's HP/status.
type Damage struct {
	Base
	Slot battle.Slot
	HP   HPStatus
}

type Heal struct {
	Base
	Slot battle.Slot
	HP   HPStatus
}

// Status and CureStatus set/clear a slot's status condition.
type Status struct {
	Base
	Slot   battle.Slot
	Status string
}

type CureStatus struct {
	Base
	Slot   battle.Slot
	Status string
}

// Faint marks a slot's occupant as fainted.
type Faint struct {
	Base
	Slot battle.Slot
}

// Cant records that a slot's occupant could not act (flinch, sleep, etc.).
type Cant struct {
	Base
	Slot   battle.Slot
	Reason string
}

// Terastallize records a slot's mid-turn terastallize declaration.
type Terastallize struct {
	Base
	Slot battle.Slot
	Type string
}

// Activate records an ability/item activation; the core only inspects this
// for the Commander ability (§4.E commanding_slots).
type Activate struct {
	Base
	Slot   battle.Slot
	Effect string
	Of     battle.Slot
	HasOf  bool
}

// DetailsChange records an identity change (form change, permanent
// transformation) that updates the identifier->species map without
// emitting a choice.
type DetailsChange struct {
	Base
	Slot      battle.Slot
	SpeciesID string
}

// Win ends the game in a decisive result.
type Win struct {
	Base
	Winner string
}

// Message carries a free-text annotation; the core only inspects this for
// forfeiture ("forfeited").
type Message struct {
	Base
	Text string
}

// Unrecognized is returned for any record kind not in the minimum
// recognized set (§6); the tokenizer still yields it so callers can log or
// skip it, but no component inspects its fields.
type Unrecognized struct {
	Base
}

// HPStatus is the parsed form of an HP field such as "248/250 par" or
// "0 fnt".
type HPStatus struct {
	Percent int
	Status  string
	Fainted bool
}
