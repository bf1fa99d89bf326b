package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/dunmore-lab/replaycore/pkg/battle"
)

// Protocol dispatches the session command alphabet (§6) over a line-oriented
// channel pair, in the same shape as the teacher's UCI driver: a goroutine
// reads commands off in and writes tagged response lines to the returned
// channel until in closes.
type Protocol struct {
	iox.AsyncCloser

	s *Session

	out chan<- string

	log []string // input-log dump, for requestlog
}

// NewProtocol starts the dispatch goroutine and returns the driver plus its
// output channel. Every response line is tagged per §6: update, sideupdate,
// requesteddata, or end.
func NewProtocol(ctx context.Context, s *Session, in <-chan string) (*Protocol, <-chan string) {
	out := make(chan string, 100)
	p := &Protocol{AsyncCloser: iox.NewAsyncCloser(), s: s, out: out}
	go p.process(ctx, in)
	return p, out
}

func (p *Protocol) process(ctx context.Context, in <-chan string) {
	defer p.Close()
	defer close(p.out)

	for line := range in {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		p.log = append(p.log, trimmed)

		parts := strings.SplitN(trimmed, " ", 2)
		cmd := parts[0]
		var rest string
		if len(parts) == 2 {
			rest = parts[1]
		}

		if err := p.dispatch(ctx, cmd, rest); err != nil {
			logw.Errorf(ctx, "dispatch %v: %v", cmd, err)
			p.emit("update", fmt.Sprintf("|error|%v", err))
		}
	}
	logw.Infof(ctx, "Input stream broken. Exiting")
}

func (p *Protocol) emit(tag string, payload ...string) {
	p.out <- tag
	for _, line := range payload {
		p.out <- line
	}
}

func (p *Protocol) dispatch(ctx context.Context, cmd, rest string) error {
	switch cmd {
	case "start":
		return p.handleStart(ctx, rest)
	case "player":
		return p.handlePlayer(ctx, rest)
	case "p1", "p2":
		return p.handleSideCommand(ctx, cmd, rest)
	case "forcewin", "forcetie", "forcelose":
		// Terminal overrides outside the parser's scope; acknowledged so a
		// scripted session doesn't stall on them.
		p.emit("update", fmt.Sprintf("|%v|", cmd))
		return nil
	case "reseed", "tiebreak", "chat", "eval", "show-openteamsheets":
		p.emit("update", fmt.Sprintf("|%v|", cmd))
		return nil
	case "requestlog":
		p.emit("requesteddata", p.log...)
		return nil
	case "requestexport":
		return p.handleRequestExport(ctx)
	case "requestteam":
		return p.handleRequestTeam(rest)
	case "jumptoturn":
		return p.handleJumpToTurn(ctx, rest)
	case "exportstate":
		return p.handleRequestExport(ctx)
	case "replaydone":
		p.emit("end")
		return nil
	case "patchturn":
		return p.handlePatchTurn(ctx, rest)
	case "replayturn":
		return p.handleReplayTurn(ctx, rest)
	case "loadstate":
		return p.handleLoadState(ctx, rest)
	case "version":
		p.emit("update", fmt.Sprintf("|version|%v", Version()))
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (p *Protocol) handleStart(ctx context.Context, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return fmt.Errorf("start requires a format config")
	}
	formatConfig := fields[0]
	var seed int64
	if len(fields) > 1 {
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("start: bad seed %q: %w", fields[1], err)
		}
		seed = v
	}
	if err := p.s.Start(ctx, formatConfig, seed); err != nil {
		return err
	}
	p.emit("update", "|start|")
	return nil
}

func (p *Protocol) handlePlayer(ctx context.Context, rest string) error {
	fields := strings.SplitN(rest, "|", 3)
	if len(fields) < 3 {
		return fmt.Errorf("player requires side|name|packed_team")
	}
	side, ok := battle.ParseSide(fields[0])
	if !ok {
		return fmt.Errorf("player: bad side %q", fields[0])
	}
	if err := p.s.SetPlayer(ctx, side, fields[1], fields[2]); err != nil {
		return err
	}
	p.emit("update", fmt.Sprintf("|player|%v|%v", side, fields[1]))
	return nil
}

func (p *Protocol) handleRequestTeam(rest string) error {
	side, ok := battle.ParseSide(strings.TrimSpace(rest))
	if !ok {
		return fmt.Errorf("requestteam: bad side %q", rest)
	}
	team, ok := p.s.Team(side)
	if !ok {
		return fmt.Errorf("requestteam: no team submitted for %v", side)
	}
	p.emit("requesteddata", team)
	return nil
}

func (p *Protocol) handleSideCommand(ctx context.Context, sideCmd, rest string) error {
	side, _ := battle.ParseSide(sideCmd)

	if rest == "undo" {
		if err := p.s.UndoChoice(ctx, side); err != nil {
			return err
		}
		p.emit("sideupdate", fmt.Sprintf("|%v|undo", side))
		return nil
	}

	out := p.s.Choose(ctx, side, rest)
	if !out.Accepted {
		p.emit("sideupdate", fmt.Sprintf("|%v|rejected|%v", side, out.Reason))
		return nil
	}
	p.emit("sideupdate", fmt.Sprintf("|%v|accepted", side))
	return nil
}

type exportBundle struct {
	FormatID   string   `json:"format_id"`
	Turn       int      `json:"turn"`
	State      string   `json:"state"`
	StateByTurn []string `json:"state_by_turn"`
	Log        []string `json:"log"`
}

func (p *Protocol) handleRequestExport(ctx context.Context) error {
	cur, byTurn, turn, err := p.s.ExportState(ctx)
	if err != nil {
		return err
	}
	encoded := make([]string, len(byTurn))
	for i, snap := range byTurn {
		encoded[i] = string(snap)
	}
	bundle := exportBundle{
		Turn:        turn,
		State:       string(cur),
		StateByTurn: encoded,
		Log:         p.log,
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	p.emit("requesteddata", string(payload))
	return nil
}

func (p *Protocol) handleJumpToTurn(ctx context.Context, rest string) error {
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return fmt.Errorf("jumptoturn: bad turn %q: %w", rest, err)
	}
	send := func(line string) { p.emit("update", line) }
	if err := p.s.JumpToTurn(ctx, n, send); err != nil {
		p.emit("update", fmt.Sprintf("|error|%v", err))
		return nil
	}
	p.emit("update", fmt.Sprintf("|jumptoturn|%v", n))
	return nil
}

func (p *Protocol) handleLoadState(ctx context.Context, rest string) error {
	send := func(line string) { p.emit("update", line) }
	if err := p.s.LoadState(ctx, []byte(rest), send); err != nil {
		return err
	}
	p.emit("update", "|loadstate|")
	return nil
}

// handlePatchTurn and handleReplayTurn accept a JSON-encoded TurnBundle,
// the parser's per-turn recovered output (§4.G).
func (p *Protocol) handlePatchTurn(ctx context.Context, rest string) error {
	var b TurnBundle
	if err := json.Unmarshal([]byte(rest), &b); err != nil {
		return fmt.Errorf("patchturn: malformed bundle: %w", err)
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.e.ApplyPatch(ctx, b.Patch); err != nil {
		return err
	}
	p.emit("update", fmt.Sprintf("|patchturn|%v", b.Turn))
	return nil
}

func (p *Protocol) handleReplayTurn(ctx context.Context, rest string) error {
	var b TurnBundle
	if err := json.Unmarshal([]byte(rest), &b); err != nil {
		return fmt.Errorf("replayturn: malformed bundle: %w", err)
	}
	if err := p.s.ReplayTurn(ctx, b); err != nil {
		return err
	}
	p.emit("update", fmt.Sprintf("|replayturn|%v", b.Turn))
	return nil
}
