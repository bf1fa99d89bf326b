// Package battle contains the creature, roster and slot primitives shared by
// the replay parser and driver. It plays the role the teacher's pkg/board
// plays for a chess engine, but the underlying game has no board: positions
// are just which creature currently occupies which active slot.
package battle

import "fmt"

// Side identifies a player. The core assumes exactly two sides; the engine
// collaborator may itself support p3/p4 for free-for-alls.
type Side byte

const (
	P1 Side = iota
	P2
)

func ParseSide(s string) (Side, bool) {
	switch s {
	case "p1":
		return P1, true
	case "p2":
		return P2, true
	default:
		return 0, false
	}
}

func (s Side) String() string {
	switch s {
	case P1:
		return "p1"
	case P2:
		return "p2"
	default:
		return fmt.Sprintf("side(%d)", byte(s))
	}
}

// MarshalText renders a Side as "p1"/"p2", so it can be used as a JSON map
// key (encoding/json requires TextMarshaler for non-string map keys to
// avoid falling back to a bare integer).
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	side, ok := ParseSide(string(text))
	if !ok {
		return fmt.Errorf("invalid side %q", text)
	}
	*s = side
	return nil
}

// Opponent returns the other of the two assumed sides.
func (s Side) Opponent() Side {
	if s == P1 {
		return P2
	}
	return P1
}

// Position is the letter identifying one of the simultaneously active slots
// within a side: 'a' in singles, 'a' or 'b' in doubles.
type Position byte

// Slot is a side+position pair, e.g. p1a, p2b.
type Slot struct {
	Side     Side
	Position Position
}

func NewSlot(side Side, pos Position) Slot {
	return Slot{Side: side, Position: pos}
}

// ParseSlot parses a slot identifier such as "p1a" or "p2b".
func ParseSlot(s string) (Slot, bool) {
	if len(s) < 3 {
		return Slot{}, false
	}
	side, ok := ParseSide(s[:2])
	if !ok {
		return Slot{}, false
	}
	return Slot{Side: side, Position: Position(s[2])}, true
}

func (s Slot) String() string {
	return fmt.Sprintf("%v%c", s.Side, byte(s.Position))
}

// MarshalText renders a Slot as "p1a"/"p2b", so it can be used as a JSON
// map key.
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	slot, ok := ParseSlot(string(text))
	if !ok {
		return fmt.Errorf("invalid slot %q", text)
	}
	*s = slot
	return nil
}

// Less orders slots by side then position letter, matching the flush
// procedure's "sort actions by slot letter (a before b)" rule.
func (s Slot) Less(o Slot) bool {
	if s.Side != o.Side {
		return s.Side < o.Side
	}
	return s.Position < o.Position
}
