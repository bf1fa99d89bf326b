package choice

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the per-slot action encoded by a turn choice (§3).
type Kind int

const (
	Default Kind = iota
	Move
	Switch
)

// Action is one slot's contribution to a side's turn choice.
type Action struct {
	Kind Kind

	MoveID       string
	HasTarget    bool
	TargetLoc    int // §3 targeting encoding
	Terastallize bool

	SwitchIndex int // 1-based
}

// Serialize renders the action per §3: "move <id> [<loc>] [terastallize]",
// "switch <n>", or "default".
func (a Action) Serialize() string {
	switch a.Kind {
	case Move:
		var sb strings.Builder
		sb.WriteString("move ")
		sb.WriteString(a.MoveID)
		if a.HasTarget {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Itoa(a.TargetLoc))
		}
		if a.Terastallize {
			sb.WriteString(" terastallize")
		}
		return sb.String()

	case Switch:
		return fmt.Sprintf("switch %d", a.SwitchIndex)

	default:
		return "default"
	}
}
