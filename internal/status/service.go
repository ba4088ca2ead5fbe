package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "github.com/Sankalp-SISL/agentspace/internal/errors"
	"github.com/Sankalp-SISL/agentspace/internal/model"
	"github.com/Sankalp-SISL/agentspace/internal/store"
)

const checksKey = "status:checks"

// Service persists client status checks.
type Service struct {
	store store.Store
	mu    sync.Mutex
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Create records a status check for the named client.
func (s *Service) Create(ctx context.Context, clientName string) (*model.StatusCheck, error) {
	if clientName == "" {
		return nil, fmt.Errorf("%w: client name is required", app_errors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	checks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	check := model.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  s.now().UTC(),
	}
	checks = append(checks, check)
	if err := s.store.Set(ctx, checksKey, checks); err != nil {
		return nil, fmt.Errorf("could not persist status check: %w", err)
	}
	return &check, nil
}

// List returns all recorded status checks in creation order.
func (s *Service) List(ctx context.Context) ([]model.StatusCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) ([]model.StatusCheck, error) {
	var checks []model.StatusCheck
	err := s.store.Get(ctx, checksKey, &checks)
	switch {
	case err == nil:
		return checks, nil
	case errors.Is(err, store.ErrNotFound):
		return []model.StatusCheck{}, nil
	case errors.Is(err, store.ErrCorrupted):
		slog.Warn("Status checks are corrupted, treating them as empty", "error", err)
		return []model.StatusCheck{}, nil
	default:
		return nil, err
	}
}
