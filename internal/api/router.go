package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Uploads.
	r.Post("/paste", h.Paste)
	r.Post("/upload-local", h.UploadLocal)
	r.Post("/batch", h.Batch)

	// Connectivity probes.
	r.Get("/check/webdav", h.CheckWebDAV)
	r.Get("/check/ai", h.CheckAI)

	// Redacted settings for clients.
	r.Get("/settings", h.GetSettings)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
