// Package console implements an ad hoc turn-stepping debug driver for a
// replay session, adapted from the teacher's engine/console driver: a
// synchronous command loop for a human at a terminal instead of the full
// session-command bundle protocol (§6) that pkg/replay/driver/Protocol
// implements for scripted callers.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/dunmore-lab/replaycore/pkg/battle"
	"github.com/dunmore-lab/replaycore/pkg/replay/driver"
)

// Driver is a minimal interactive front end over a Session, for stepping
// through a recovered replay one bundle at a time and inspecting state.
type Driver struct {
	iox.AsyncCloser

	s       *driver.Session
	e       driver.Engine // same instance s wraps, read-only here
	bundles []driver.TurnBundle

	out chan<- string
	pos int
}

// NewDriver starts the command loop. e must be the exact Engine instance
// wrapped by s, so Turn()/Active()/Roster() reflect what s mutates.
func NewDriver(ctx context.Context, s *driver.Session, e driver.Engine, bundles []driver.TurnBundle, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		s:           s,
		e:           e,
		bundles:     bundles,
		out:         out,
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console replay driver initialized, %v turns loaded", len(d.bundles))
	d.printState(ctx)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				continue
			}
			cmd, args := parts[0], parts[1:]

			switch cmd {
			case "step", "n":
				d.step(ctx)

			case "goto", "g":
				if len(args) == 0 {
					d.out <- "usage: goto <turn>"
					continue
				}
				n, err := strconv.Atoi(args[0])
				if err != nil {
					d.out <- fmt.Sprintf("invalid turn: %v", args[0])
					continue
				}
				d.goTo(ctx, n)

			case "print", "p":
				d.printState(ctx)

			case "quit", "exit", "q":
				return

			default:
				d.out <- fmt.Sprintf("unrecognized command: %v", cmd)
			}

		case <-d.Closed():
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) step(ctx context.Context) {
	if d.pos >= len(d.bundles) {
		d.out <- "replay complete"
		return
	}
	b := d.bundles[d.pos]
	if err := d.s.ReplayTurn(ctx, b); err != nil {
		d.out <- fmt.Sprintf("turn %v failed: %v", b.Turn, err)
		return
	}
	d.pos++
	d.printState(ctx)
}

func (d *Driver) goTo(ctx context.Context, n int) {
	send := func(line string) { d.out <- line }
	if err := d.s.JumpToTurn(ctx, n, send); err != nil {
		d.out <- fmt.Sprintf("jumptoturn %v failed: %v", n, err)
		return
	}
	for d.pos < len(d.bundles) && d.bundles[d.pos].Turn <= n {
		d.pos++
	}
	d.printState(ctx)
}

func (d *Driver) printState(ctx context.Context) {
	d.out <- fmt.Sprintf("turn %v (ended=%v)", d.e.Turn(), d.e.Ended())
	for _, side := range []battle.Side{battle.P1, battle.P2} {
		for _, pos := range []battle.Position{'a', 'b'} {
			slot := battle.NewSlot(side, pos)
			occ, ok := d.e.Active(side, slot)
			if !ok {
				continue
			}
			d.out <- fmt.Sprintf("  %v: %v", slot, occ.SpeciesID)
		}
	}
}
