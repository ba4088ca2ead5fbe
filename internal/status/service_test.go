package status_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "github.com/Sankalp-SISL/agentspace/internal/errors"
	"github.com/Sankalp-SISL/agentspace/internal/status"
	"github.com/Sankalp-SISL/agentspace/internal/store"
)

func TestService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	s := status.NewService(store.NewMemory())

	first, err := s.Create(ctx, "web-frontend")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "web-frontend", first.ClientName)

	second, err := s.Create(ctx, "mobile")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	checks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, *first, checks[0])
	assert.Equal(t, *second, checks[1])
}

func TestService_CreateRequiresClientName(t *testing.T) {
	s := status.NewService(store.NewMemory())

	_, err := s.Create(context.Background(), "")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}

func TestService_ListEmpty(t *testing.T) {
	s := status.NewService(store.NewMemory())

	checks, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, checks)
}
