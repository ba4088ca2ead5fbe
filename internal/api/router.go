package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "github.com/Sankalp-SISL/agentspace/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a chi router with all application routes.
func NewRouter(chatHandler *ChatHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Liveness probe for container orchestration.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The chat endpoint shares this timeout: an exchange is a single
		// request/response call, not a long-lived stream.
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/rooms", chatHandler.GetRooms)
		r.Post("/rooms", chatHandler.CreateRoom)
		r.Get("/rooms/{roomID}/messages", chatHandler.GetRoomMessages)

		r.Post("/chat", chatHandler.SendMessage)

		r.Post("/status", chatHandler.CreateStatusCheck)
		r.Get("/status", chatHandler.GetStatusChecks)
	})

	return r
}
