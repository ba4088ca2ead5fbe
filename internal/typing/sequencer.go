package typing

import (
	"context"
	"time"
)

// Phase is a human-readable label shown while a reply is pending. Phases are
// cosmetic: they advance on a fixed schedule and do not reflect real backend
// progress.
type Phase string

const (
	PhaseUnderstanding Phase = "Understanding"
	PhaseStructuring   Phase = "Structuring"
	PhaseTyping        Phase = "Typing"
)

// phases is the fixed order one pending exchange walks through.
var phases = []Phase{PhaseUnderstanding, PhaseStructuring, PhaseTyping}

const defaultDwell = time.Second

// Sequencer drives the typing-phase ladder for an in-flight exchange.
type Sequencer struct {
	dwell time.Duration
}

func NewSequencer(dwell time.Duration) *Sequencer {
	if dwell <= 0 {
		dwell = defaultDwell
	}
	return &Sequencer{dwell: dwell}
}

// Phases returns the fixed phase order.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

// Run starts the ladder and returns a channel closed when it finishes. Each
// phase is announced through onPhase (which may be nil) and held for the
// dwell time before advancing. The schedule is independent of the network
// exchange it decorates: the caller must not treat the returned channel as a
// delivery signal, and onPhase must stay safe to invoke after the exchange
// has already completed. Cancelling ctx stops the ladder early; the channel
// is closed either way.
func (s *Sequencer) Run(ctx context.Context, onPhase func(Phase)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, phase := range phases {
			if onPhase != nil {
				onPhase(phase)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.dwell):
			}
		}
	}()
	return done
}
