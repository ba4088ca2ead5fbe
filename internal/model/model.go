package model

import "time"

// Message types. An "error" message is a degraded assistant message: a failed
// exchange still occupies a slot in the room's log so it is never silently
// dropped, but consumers can style it distinctly.
const (
	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
	MessageTypeError     = "error"
)

// Room stores metadata about one conversation thread.
//
// SessionID is the opaque token the assistant backend issued for this room.
// It is nil until the first successful exchange and is forwarded unchanged on
// every subsequent call. A reply that omits the token must not reset it.
type Room struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	LastMessage string    `json:"last_message"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   *string   `json:"session_id"`
}

// Message is a single entry in a room's append-only log.
type Message struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	HasAttachment  bool      `json:"has_attachment,omitempty"`
	AttachmentName string    `json:"attachment_name,omitempty"`
}

// Attachment carries only the metadata the log records about an attached
// file. Upload mechanics live elsewhere.
type Attachment struct {
	Name string `json:"name"`
}

// StatusCheck is a persisted client liveness record.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}
