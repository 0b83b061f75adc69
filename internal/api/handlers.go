package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/halvard/ansuz/internal/apperr"
	"github.com/halvard/ansuz/internal/imageservice"
	"github.com/halvard/ansuz/internal/locale"
)

// maxUploadBytes bounds a paste request body.
const maxUploadBytes = 12 << 20

// Pipeline is the slice of the upload service the handlers need.
type Pipeline interface {
	UploadNew(ctx context.Context, req imageservice.PasteRequest) (*imageservice.UploadResult, error)
	UploadLocal(ctx context.Context, notePath, target, mode string) (*imageservice.UploadResult, error)
	Batch(ctx context.Context, notePath, mode string) (imageservice.BatchResult, error)
}

// Checker probes connectivity to a remote dependency.
type Checker interface {
	TestConnection(ctx context.Context) bool
}

// Handler holds API route handlers.
type Handler struct {
	svc      Pipeline
	dav      Checker
	ai       Checker
	catalog  *locale.Catalog
	settings Settings
}

// NewHandler creates a new Handler. ai may be nil when the naming service
// is not configured.
func NewHandler(svc Pipeline, dav, ai Checker, catalog *locale.Catalog, settings Settings) *Handler {
	if catalog == nil {
		catalog = locale.New(locale.LanguageEnglish)
	}
	return &Handler{svc: svc, dav: dav, ai: ai, catalog: catalog, settings: settings}
}

// Paste handles POST /api/paste: multipart form with an "image" file part
// plus "note", optional "cursor" (byte offset; omitted means append at the
// end) and optional "mode" fields.
func (h *Handler) Paste(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}

	note := r.FormValue("note")
	if note == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("note is required"))
		return
	}

	cursor := 1 << 30
	if raw := r.FormValue("cursor"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("cursor must be a non-negative integer"))
			return
		}
		cursor = n
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("image file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("read image failed"))
		return
	}

	res, err := h.svc.UploadNew(r.Context(), imageservice.PasteRequest{
		NotePath:     note,
		Cursor:       cursor,
		Data:         data,
		OriginalName: header.Filename,
		Mode:         r.FormValue("mode"),
	})
	if err != nil {
		h.writeError(w, "paste", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UploadLocal handles POST /api/upload-local.
func (h *Handler) UploadLocal(w http.ResponseWriter, r *http.Request) {
	var req UploadLocalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Note == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("note and target are required"))
		return
	}

	res, err := h.svc.UploadLocal(r.Context(), req.Note, req.Target, req.Mode)
	if err != nil {
		h.writeError(w, "upload local", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Batch handles POST /api/batch.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Note == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("note is required"))
		return
	}

	res, err := h.svc.Batch(r.Context(), req.Note, req.Mode)
	if err != nil {
		h.writeError(w, "batch", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckWebDAV handles GET /api/check/webdav.
func (h *Handler) CheckWebDAV(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, h.dav, "check.webdav.ok", "check.webdav.bad")
}

// CheckAI handles GET /api/check/ai.
func (h *Handler) CheckAI(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		writeJSON(w, http.StatusOK, CheckResponse{OK: false, Message: h.catalog.T("vision.unconfigured")})
		return
	}
	h.check(w, r, h.ai, "check.vision.ok", "check.vision.bad")
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, c Checker, okKey, badKey string) {
	if c.TestConnection(r.Context()) {
		writeJSON(w, http.StatusOK, CheckResponse{OK: true, Message: h.catalog.T(okKey)})
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{OK: false, Message: h.catalog.T(badKey)})
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings)
}

// writeError maps pipeline errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConfig):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrCancelled):
		writeJSON(w, http.StatusConflict, errorBody(h.catalog.T("rename.cancelled")))
	case errors.Is(err, apperr.ErrNetwork), errors.Is(err, apperr.ErrRemote):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
