package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "github.com/Sankalp-SISL/agentspace/internal/errors"
	"github.com/Sankalp-SISL/agentspace/internal/model"
	"github.com/Sankalp-SISL/agentspace/internal/msglog"
	"github.com/Sankalp-SISL/agentspace/internal/registry"
	"github.com/Sankalp-SISL/agentspace/internal/session"
	"github.com/Sankalp-SISL/agentspace/internal/status"
)

// ChatHandler exposes the conversation core to the browser frontend.
type ChatHandler struct {
	session *session.Client
	rooms   *registry.Registry
	log     *msglog.Log
	status  *status.Service
}

func NewChatHandler(sc *session.Client, rooms *registry.Registry, log *msglog.Log, st *status.Service) *ChatHandler {
	return &ChatHandler{session: sc, rooms: rooms, log: log, status: st}
}

// AttachmentPayload names one attached file.
type AttachmentPayload struct {
	Name string `json:"name" validate:"required"`
}

// SendMessageRequest is the DTO for the chat endpoint. RoomID may be empty,
// in which case a room is created for the exchange. AccessToken is forwarded
// opaque; a request without one fails the exchange instead of reaching the
// backend unauthenticated.
type SendMessageRequest struct {
	RoomID      string              `json:"room_id"`
	Message     string              `json:"message" validate:"max=8000"`
	AccessToken string              `json:"access_token"`
	Attachments []AttachmentPayload `json:"attachments" validate:"dive"`
}

// CreateStatusRequest is the DTO for recording a status check.
type CreateStatusRequest struct {
	ClientName string `json:"client_name" validate:"required,min=1,max=100" example:"web-frontend"`
}

// GetRooms godoc
// @Summary List chat rooms
// @Description Returns all rooms, most recently active first. A fresh store is bootstrapped with one default room.
// @Produce json
// @Success 200 {array} model.Room
// @Router /rooms [get]
func (h *ChatHandler) GetRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rooms)
}

// CreateRoom godoc
// @Summary Create a chat room
// @Produce json
// @Success 201 {object} model.Room
// @Router /rooms [post]
func (h *ChatHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Create(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, room)
}

// GetRoomMessages godoc
// @Summary Get a room's message history
// @Description Messages are returned in insertion order. A room with no history yields an empty array.
// @Produce json
// @Param roomID path string true "Room ID"
// @Success 200 {array} model.Message
// @Router /rooms/{roomID}/messages [get]
func (h *ChatHandler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	messages, err := h.log.List(r.Context(), roomID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

// SendMessage godoc
// @Summary Send a message to the assistant
// @Description Runs one exchange. A failed exchange still responds 200: the failure is the error-type reply message in the body.
// @Accept json
// @Produce json
// @Param request body SendMessageRequest true "Outgoing message"
// @Success 200 {object} session.SendResult
// @Success 204 "Empty submission, nothing recorded"
// @Failure 400 {object} ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	attachments := make([]model.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, model.Attachment{Name: a.Name})
	}

	result, err := h.session.SendMessage(r.Context(), session.SendRequest{
		RoomID:      req.RoomID,
		Text:        req.Message,
		AccessToken: req.AccessToken,
		Attachments: attachments,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	if result == nil {
		// Empty submission: no state change, no error surface.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// CreateStatusCheck godoc
// @Summary Record a status check
// @Accept json
// @Produce json
// @Param request body CreateStatusRequest true "Status check"
// @Success 201 {object} model.StatusCheck
// @Failure 400 {object} ErrorResponse
// @Router /status [post]
func (h *ChatHandler) CreateStatusCheck(w http.ResponseWriter, r *http.Request) {
	var req CreateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	check, err := h.status.Create(r.Context(), req.ClientName)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, check)
}

// GetStatusChecks godoc
// @Summary List recorded status checks
// @Produce json
// @Success 200 {array} model.StatusCheck
// @Router /status [get]
func (h *ChatHandler) GetStatusChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := h.status.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, checks)
}
