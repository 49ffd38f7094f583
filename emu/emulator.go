package emu

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nescore/emu/log"
	"nescore/hw/snapshot"
)

// A Presenter consumes the snapshots produced by the emulation loop.
type Presenter interface {
	Present(*snapshot.NES) error
	Close() error
}

type Emulator struct {
	NES    *NES
	frames int

	// These are accessed concurrently by the emulator loop and the UI.
	quit   atomic.Bool
	paused atomic.Bool
	reset  atomic.Bool
}

// NewEmulator creates an emulator running nes. It stops after frames frames,
// or runs until stopped if frames is 0.
func NewEmulator(nes *NES, frames int) *Emulator {
	return &Emulator{NES: nes, frames: frames}
}

// SetPause, Stop and Reset allows to control
// the emulator loop in a concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

func (e *Emulator) isPaused() bool   { return e.paused.Load() }
func (e *Emulator) shouldStop() bool { return e.quit.Load() }

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing reset").End()
		e.NES.Reset()
	}
}

// Run runs the emulation loop, handing a snapshot to p after each frame. If
// p is slower than the emulation, it only sees the latest snapshots. Run
// returns when the emulator is stopped, the frame count is reached, ctx is
// cancelled or p fails, and always closes p.
func (e *Emulator) Run(ctx context.Context, p Presenter) error {
	g, ctx := errgroup.WithContext(ctx)
	snaps := make(chan *snapshot.NES, 1)

	g.Go(func() error {
		defer close(snaps)
		return e.loop(ctx, snaps)
	})
	g.Go(func() error {
		for s := range snaps {
			if err := p.Present(s); err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	if cerr := p.Close(); err == nil {
		err = cerr
	}
	log.ModEmu.InfoZ("Emulation loop exited").End()
	return err
}

func (e *Emulator) loop(ctx context.Context, snaps chan *snapshot.NES) error {
	for frame := 0; e.frames == 0 || frame < e.frames; {
		if err := ctx.Err(); err != nil {
			if errors.Is(context.Cause(ctx), context.Canceled) {
				return nil
			}
			return err
		}
		if e.shouldStop() {
			return nil
		}
		e.handleReset()

		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := e.NES.RunFrame(); err != nil {
			return err
		}
		frame++
		sendLatest(snaps, e.NES.Snapshot())
	}
	return nil
}

// sendLatest sends s on ch, dropping the pending snapshot if the consumer
// hasn't picked it yet. There must be a single sender.
func sendLatest(ch chan *snapshot.NES, s *snapshot.NES) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}
