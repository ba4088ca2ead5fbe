package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sankalp-SISL/agentspace/internal/assistant"
	"github.com/Sankalp-SISL/agentspace/internal/model"
	"github.com/Sankalp-SISL/agentspace/internal/msglog"
	"github.com/Sankalp-SISL/agentspace/internal/registry"
	"github.com/Sankalp-SISL/agentspace/internal/session"
	"github.com/Sankalp-SISL/agentspace/internal/store"
	"github.com/Sankalp-SISL/agentspace/internal/typing"
)

// mockAssistant is a hand-written testify mock for the assistant client.
type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Send(ctx context.Context, req *assistant.ChatRequest) (*assistant.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.ChatResponse), args.Error(1)
}

type fixture struct {
	client    *session.Client
	rooms     *registry.Registry
	log       *msglog.Log
	assistant *mockAssistant
}

func setupClient(t *testing.T) fixture {
	t.Helper()
	mem := store.NewMemory()
	rooms := registry.New(mem)
	log := msglog.New(mem)
	backend := &mockAssistant{}
	seq := typing.NewSequencer(time.Millisecond)
	return fixture{
		client:    session.NewClient(rooms, log, backend, seq),
		rooms:     rooms,
		log:       log,
		assistant: backend,
	}
}

func TestSendMessage_SuccessfulExchange(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.MatchedBy(func(req *assistant.ChatRequest) bool {
		return req.Message == "hello" && req.SessionID == nil && req.AccessToken == "tok"
	})).Return(&assistant.ChatResponse{Reply: "hi there", SessionID: "s1"}, nil).Once()

	result, err := f.client.SendMessage(ctx, session.SendRequest{
		RoomID:      room.ID,
		Text:        "hello",
		AccessToken: "tok",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, room.ID, result.RoomID)
	assert.Equal(t, model.MessageTypeAssistant, result.Reply.Type)
	assert.Equal(t, "hi there", result.Reply.Content)

	messages, err := f.log.List(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.MessageTypeUser, messages[0].Type)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, model.MessageTypeAssistant, messages[1].Type)
	assert.Equal(t, "hi there", messages[1].Content)

	updated, err := f.rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.SessionID)
	assert.Equal(t, "s1", *updated.SessionID)
	assert.Equal(t, "hi there", updated.LastMessage)

	f.assistant.AssertExpectations(t)
}

func TestSendMessage_ReusesSessionToken(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.MatchedBy(func(req *assistant.ChatRequest) bool {
		return req.SessionID == nil
	})).Return(&assistant.ChatResponse{Reply: "hi there", SessionID: "s1"}, nil).Once()

	_, err = f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: "hello", AccessToken: "tok"})
	require.NoError(t, err)

	// The second exchange must carry the token the first one adopted.
	f.assistant.On("Send", mock.Anything, mock.MatchedBy(func(req *assistant.ChatRequest) bool {
		return req.SessionID != nil && *req.SessionID == "s1"
	})).Return(&assistant.ChatResponse{Reply: "still here", SessionID: "s1"}, nil).Once()

	_, err = f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: "again", AccessToken: "tok"})
	require.NoError(t, err)

	f.assistant.AssertExpectations(t)
}

func TestSendMessage_FailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	result, err := f.client.SendMessage(ctx, session.SendRequest{
		RoomID:      room.ID,
		Text:        "hello",
		AccessToken: "tok",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, model.MessageTypeError, result.Reply.Type)

	// One user entry, one error entry; the user message is never dropped.
	messages, err := f.log.List(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.MessageTypeUser, messages[0].Type)
	assert.Equal(t, model.MessageTypeError, messages[1].Type)
	assert.NotEmpty(t, messages[1].Content)

	// Session continuity is untouched by the failure.
	after, err := f.rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, after.SessionID)
	assert.Empty(t, after.LastMessage)
	assert.Equal(t, room.Timestamp, after.Timestamp)
}

func TestSendMessage_EmptySubmissionIsANoOp(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	result, err := f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: "   "})
	require.NoError(t, err)
	assert.Nil(t, result)

	messages, err := f.log.List(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	f.assistant.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendMessage_AttachmentOnlySubmissionIsSent(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(&assistant.ChatResponse{Reply: "got the file", SessionID: "s1"}, nil).Once()

	result, err := f.client.SendMessage(ctx, session.SendRequest{
		RoomID:      room.ID,
		AccessToken: "tok",
		Attachments: []model.Attachment{{Name: "sales_q4_2024.csv"}},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.UserMessage.HasAttachment)
	assert.Equal(t, "sales_q4_2024.csv", result.UserMessage.AttachmentName)
}

func TestSendMessage_CreatesRoomLazily(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(&assistant.ChatResponse{Reply: "welcome", SessionID: "s1"}, nil).Once()

	result, err := f.client.SendMessage(ctx, session.SendRequest{Text: "hello", AccessToken: "tok"})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.RoomID)

	room, err := f.rooms.Get(ctx, result.RoomID)
	require.NoError(t, err)
	require.NotNil(t, room.SessionID)
	assert.Equal(t, "s1", *room.SessionID)
}

func TestSendMessage_ReplyWithoutTokenKeepsKnownSession(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(&assistant.ChatResponse{Reply: "first", SessionID: "s1"}, nil).Once()
	_, err = f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: "hello", AccessToken: "tok"})
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(&assistant.ChatResponse{Reply: "second"}, nil).Once()
	_, err = f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: "again", AccessToken: "tok"})
	require.NoError(t, err)

	after, err := f.rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, after.SessionID)
	assert.Equal(t, "s1", *after.SessionID)
	assert.Equal(t, "second", after.LastMessage)
}

func TestSendMessage_TruncatesPreview(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	long := strings.Repeat("words and more ", 20)
	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(&assistant.ChatResponse{Reply: long, SessionID: "s1"}, nil).Once()

	_, err = f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: "hello", AccessToken: "tok"})
	require.NoError(t, err)

	after, err := f.rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(after.LastMessage, "..."))
	assert.Less(t, len(after.LastMessage), len(long))
}

func TestSendMessage_TypingPhasesAreAnnounced(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	var mu sync.Mutex
	var phases []typing.Phase

	// Hold the exchange open long enough for the 1ms ladder to finish; the
	// sequencer's schedule never depends on when the reply lands.
	f.assistant.On("Send", mock.Anything, mock.Anything).
		After(50*time.Millisecond).
		Return(&assistant.ChatResponse{Reply: "done", SessionID: "s1"}, nil).Once()

	_, err = f.client.SendMessage(ctx, session.SendRequest{
		RoomID:      room.ID,
		Text:        "hello",
		AccessToken: "tok",
		OnPhase: func(p typing.Phase) {
			mu.Lock()
			phases = append(phases, p)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(phases) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, typing.Phases(), phases)
}

func TestSendMessage_ExchangeCountsMatchCalls(t *testing.T) {
	ctx := context.Background()
	f := setupClient(t)

	room, err := f.rooms.Create(ctx)
	require.NoError(t, err)

	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(&assistant.ChatResponse{Reply: "ok", SessionID: "s1"}, nil).Twice()
	f.assistant.On("Send", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom")).Once()

	inputs := []string{"one", "two", "three"}
	for _, text := range inputs {
		_, err := f.client.SendMessage(ctx, session.SendRequest{RoomID: room.ID, Text: text, AccessToken: "tok"})
		require.NoError(t, err)
	}

	messages, err := f.log.List(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 6)

	// Every user entry is immediately followed by exactly one
	// assistant-or-error entry.
	users := 0
	for i, msg := range messages {
		if msg.Type == model.MessageTypeUser {
			users++
			require.Less(t, i+1, len(messages))
			next := messages[i+1].Type
			assert.Contains(t, []string{model.MessageTypeAssistant, model.MessageTypeError}, next)
		}
	}
	assert.Equal(t, len(inputs), users)
}
