package msglog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sankalp-SISL/agentspace/internal/model"
	"github.com/Sankalp-SISL/agentspace/internal/store"
)

// Log owns the append-only message sequences, one per room. Sequences are
// fully independent: interleaving operations on other rooms never reorders a
// room's own entries.
type Log struct {
	store store.Store
	mu    sync.Mutex
}

func New(s store.Store) *Log {
	return &Log{store: s}
}

func messagesKey(roomID string) string {
	return fmt.Sprintf("chat:room:%s:messages", roomID)
}

// Append adds a message to the tail of the room's sequence, creating the
// sequence if the room has no history yet. Prior entries are preserved
// exactly.
func (l *Log) Append(ctx context.Context, roomID string, msg model.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages, err := l.load(ctx, roomID)
	if err != nil {
		return err
	}

	messages = append(messages, msg)
	if err := l.store.Set(ctx, messagesKey(roomID), messages); err != nil {
		return fmt.Errorf("could not persist message for room %s: %w", roomID, err)
	}
	return nil
}

// List returns the room's messages in insertion order. A room with no history
// yields an empty slice, which is a legitimate state for a just-created room.
func (l *Log) List(ctx context.Context, roomID string) ([]model.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, roomID)
}

func (l *Log) load(ctx context.Context, roomID string) ([]model.Message, error) {
	var messages []model.Message
	err := l.store.Get(ctx, messagesKey(roomID), &messages)
	switch {
	case err == nil:
		return messages, nil
	case errors.Is(err, store.ErrNotFound):
		return []model.Message{}, nil
	case errors.Is(err, store.ErrCorrupted):
		slog.Warn("Message log is corrupted, treating it as empty", "room_id", roomID, "error", err)
		return []model.Message{}, nil
	default:
		return nil, err
	}
}
