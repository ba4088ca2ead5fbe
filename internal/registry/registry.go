package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "github.com/Sankalp-SISL/agentspace/internal/errors"
	"github.com/Sankalp-SISL/agentspace/internal/model"
	"github.com/Sankalp-SISL/agentspace/internal/store"
)

// roomsKey is the well-known durable-store key holding the room list.
const roomsKey = "chat:rooms"

const defaultRoomTitle = "New Chat"

// Registry owns the set of rooms. It is the only writer of roomsKey; the
// mutex serializes its read-modify-write cycles within one client instance.
type Registry struct {
	store store.Store
	mu    sync.Mutex
	now   func() time.Time
}

func New(s store.Store) *Registry {
	return &Registry{store: s, now: time.Now}
}

// Patch is a partial room update. Nil fields are left untouched, which is how
// a reply without a session token avoids regressing a known session to
// unknown.
type Patch struct {
	Timestamp   *time.Time
	LastMessage *string
	SessionID   *string
}

// List returns all known rooms, most recently active first. A store with no
// room list yet gets exactly one default room synthesized and persisted: the
// user is never presented an empty room list.
func (r *Registry) List(ctx context.Context) ([]model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if len(rooms) == 0 {
		rooms = []model.Room{r.newRoom(defaultRoomTitle)}
		if err := r.store.Set(ctx, roomsKey, rooms); err != nil {
			return nil, fmt.Errorf("could not persist bootstrap room: %w", err)
		}
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Timestamp.After(rooms[j].Timestamp)
	})
	return rooms, nil
}

// Create allocates a new room, inserts it at the head of the list and
// persists immediately.
func (r *Registry) Create(ctx context.Context) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	room := r.newRoom(defaultRoomTitle)
	rooms = append([]model.Room{room}, rooms...)
	if err := r.store.Set(ctx, roomsKey, rooms); err != nil {
		return nil, fmt.Errorf("could not persist new room: %w", err)
	}
	return &room, nil
}

// Get returns the room with the given id, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, roomID string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ID == roomID {
			return &rooms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: room %s", app_errors.ErrNotFound, roomID)
}

// Update merges the patch into the room matching roomID.
//
// An unknown roomID is a silent no-op, not an error. This tolerance is
// deliberate: an in-flight exchange may complete after the UI has switched or
// discarded the room it started in, and such a late patch must not fault.
func (r *Registry) Update(ctx context.Context, roomID string, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range rooms {
		if rooms[i].ID == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		slog.Debug("Ignoring update for unknown room", "room_id", roomID)
		return nil
	}

	if patch.Timestamp != nil {
		rooms[idx].Timestamp = *patch.Timestamp
	}
	if patch.LastMessage != nil {
		rooms[idx].LastMessage = *patch.LastMessage
	}
	if patch.SessionID != nil {
		rooms[idx].SessionID = patch.SessionID
	}

	if err := r.store.Set(ctx, roomsKey, rooms); err != nil {
		return fmt.Errorf("could not persist room update: %w", err)
	}
	return nil
}

// load reads the room list. A missing key is an empty list; a corrupted value
// is also treated as empty, trading the broken data for availability.
func (r *Registry) load(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := r.store.Get(ctx, roomsKey, &rooms)
	switch {
	case err == nil:
		return rooms, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, nil
	case errors.Is(err, store.ErrCorrupted):
		slog.Warn("Room list is corrupted, starting over with an empty list", "error", err)
		return nil, nil
	default:
		return nil, err
	}
}

func (r *Registry) newRoom(title string) model.Room {
	return model.Room{
		ID:        uuid.NewString(),
		Title:     title,
		Timestamp: r.now().UTC(),
	}
}
