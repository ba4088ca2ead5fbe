package typing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sankalp-SISL/agentspace/internal/typing"
)

type phaseRecorder struct {
	mu     sync.Mutex
	phases []typing.Phase
}

func (r *phaseRecorder) record(p typing.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
}

func (r *phaseRecorder) snapshot() []typing.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]typing.Phase, len(r.phases))
	copy(out, r.phases)
	return out
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sequencer did not complete in time")
	}
}

func TestSequencer_RunsAllPhasesInOrder(t *testing.T) {
	seq := typing.NewSequencer(2 * time.Millisecond)
	rec := &phaseRecorder{}

	done := seq.Run(context.Background(), rec.record)
	waitDone(t, done)

	assert.Equal(t, []typing.Phase{
		typing.PhaseUnderstanding,
		typing.PhaseStructuring,
		typing.PhaseTyping,
	}, rec.snapshot())
}

func TestSequencer_NilCallback(t *testing.T) {
	seq := typing.NewSequencer(time.Millisecond)
	waitDone(t, seq.Run(context.Background(), nil))
}

func TestSequencer_CancelStopsEarly(t *testing.T) {
	seq := typing.NewSequencer(time.Hour)
	rec := &phaseRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := seq.Run(ctx, rec.record)
	cancel()
	waitDone(t, done)

	phases := rec.snapshot()
	require.NotEmpty(t, phases)
	assert.Less(t, len(phases), 3)
	assert.Equal(t, typing.PhaseUnderstanding, phases[0])
}

func TestPhases_ReturnsACopy(t *testing.T) {
	first := typing.Phases()
	first[0] = "Mutated"
	assert.Equal(t, typing.PhaseUnderstanding, typing.Phases()[0])
}
