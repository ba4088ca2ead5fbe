package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sankalp-SISL/agentspace/internal/assistant"
	"github.com/Sankalp-SISL/agentspace/internal/model"
	"github.com/Sankalp-SISL/agentspace/internal/msglog"
	"github.com/Sankalp-SISL/agentspace/internal/registry"
	"github.com/Sankalp-SISL/agentspace/internal/typing"
)

// previewLimit is the display length of a room's last-message preview.
const previewLimit = 60

// fallbackReply is the fixed user-facing text of an error message. A failed
// exchange surfaces inline in the conversation, attributed to the assistant,
// never as a separate alert channel.
const fallbackReply = "Sorry, I couldn't reach the assistant. Please try again."

// Client coordinates one exchange: optimistic user append, typing sequencer,
// the network call carrying the room's session token, and reconciliation of
// the log and registry afterwards. It holds no persistent state of its own.
type Client struct {
	rooms     *registry.Registry
	log       *msglog.Log
	backend   assistant.Client
	sequencer *typing.Sequencer
	now       func() time.Time
}

func NewClient(rooms *registry.Registry, log *msglog.Log, backend assistant.Client, seq *typing.Sequencer) *Client {
	return &Client{
		rooms:     rooms,
		log:       log,
		backend:   backend,
		sequencer: seq,
		now:       time.Now,
	}
}

// SendRequest describes one outgoing user message. OnPhase receives the
// typing-phase labels while the exchange is pending; it runs on the
// sequencer's own schedule and may fire after the exchange has completed, so
// it must be safe to invoke late. It may be nil.
type SendRequest struct {
	RoomID      string
	Text        string
	AccessToken string
	Attachments []model.Attachment
	OnPhase     func(typing.Phase)
}

// SendResult is the outcome of one exchange. Reply is either an assistant
// message or an error message; RoomID is the room the exchange landed in,
// which differs from the request when a room was created lazily.
type SendResult struct {
	RoomID      string        `json:"room_id"`
	UserMessage model.Message `json:"user_message"`
	Reply       model.Message `json:"reply"`
}

// SendMessage runs one exchange to completion.
//
// An empty submission (no text, no attachment) is a silent no-op returning
// (nil, nil). Otherwise the user message is appended before the network call
// is issued, so it survives any failure; a transport or backend failure is
// absorbed into a single error message and never mutates the room's session
// token or preview. The function returning is the typing-indicator clearance
// signal, regardless of where the sequencer is in its ladder.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return nil, nil
	}

	roomID := req.RoomID
	if roomID == "" {
		room, err := c.rooms.Create(ctx)
		if err != nil {
			return nil, err
		}
		roomID = room.ID
	}

	userMsg := model.Message{
		ID:            "u-" + uuid.NewString(),
		Type:          model.MessageTypeUser,
		Content:       req.Text,
		Timestamp:     c.now().UTC(),
		HasAttachment: len(req.Attachments) > 0,
	}
	if len(req.Attachments) > 0 {
		userMsg.AttachmentName = req.Attachments[0].Name
	}
	if err := c.log.Append(ctx, roomID, userMsg); err != nil {
		return nil, err
	}

	// The ladder runs detached; only the real exchange below gates the state
	// transition that matters.
	c.sequencer.Run(ctx, req.OnPhase)

	var sessionID *string
	if room, err := c.rooms.Get(ctx, roomID); err == nil {
		sessionID = room.SessionID
	}

	resp, err := c.backend.Send(ctx, &assistant.ChatRequest{
		Message:     req.Text,
		SessionID:   sessionID,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		return c.failExchange(ctx, roomID, userMsg, err)
	}

	reply := model.Message{
		ID:        "a-" + uuid.NewString(),
		Type:      model.MessageTypeAssistant,
		Content:   resp.Reply,
		Timestamp: c.now().UTC(),
	}
	if err := c.log.Append(ctx, roomID, reply); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	preview := truncate(resp.Reply, previewLimit)
	patch := registry.Patch{Timestamp: &now, LastMessage: &preview}
	if resp.SessionID != "" {
		// Adopt whatever token the server returned; a missing token leaves
		// the known one in place.
		patch.SessionID = &resp.SessionID
	}
	if err := c.rooms.Update(ctx, roomID, patch); err != nil {
		slog.Warn("Could not update room after exchange", "room_id", roomID, "error", err)
	}

	return &SendResult{RoomID: roomID, UserMessage: userMsg, Reply: reply}, nil
}

// failExchange converts an assistant failure into an inline error message.
// The registry is deliberately not touched: a failed exchange must not
// advance or corrupt session continuity.
func (c *Client) failExchange(ctx context.Context, roomID string, userMsg model.Message, cause error) (*SendResult, error) {
	slog.Warn("Assistant exchange failed", "room_id", roomID, "error", cause)

	errMsg := model.Message{
		ID:        "e-" + uuid.NewString(),
		Type:      model.MessageTypeError,
		Content:   fallbackReply,
		Timestamp: c.now().UTC(),
	}
	if err := c.log.Append(ctx, roomID, errMsg); err != nil {
		return nil, err
	}
	return &SendResult{RoomID: roomID, UserMessage: userMsg, Reply: errMsg}, nil
}

// truncate shortens a string to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
