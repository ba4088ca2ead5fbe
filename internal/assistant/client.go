package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatRequest is the wire format of the assistant endpoint. SessionID is nil
// on a room's first contact, which tells the backend to allocate a fresh
// conversational session. AccessToken is the opaque bearer credential the
// login flow produced; it is forwarded without being interpreted.
type ChatRequest struct {
	Message     string  `json:"message"`
	SessionID   *string `json:"sessionId"`
	AccessToken string  `json:"access_token,omitempty"`
}

// ChatResponse is the success body. SessionID binds subsequent calls to the
// same conversational context.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// Client defines the interface for reaching the assistant backend.
type Client interface {
	Send(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ErrMissingCredential is returned when a call is attempted without an access
// token. The call is failed locally instead of being sent unauthenticated.
var ErrMissingCredential = errors.New("assistant: missing access credential")

type httpClient struct {
	client *http.Client
	url    string
}

// NewHTTPClient returns a Client talking to the chat endpoint rooted at url.
func NewHTTPClient(url string, timeout time.Duration) Client {
	return &httpClient{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(url, "/"),
	}
}

func (c *httpClient) Send(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.AccessToken == "" {
		return nil, ErrMissingCredential
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode assistant response: %w", err)
	}
	if out.Reply == "" {
		return nil, fmt.Errorf("assistant response contained no reply")
	}
	return &out, nil
}
