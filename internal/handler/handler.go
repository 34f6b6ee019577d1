package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/dmorgan81/imggate/internal/image"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/dmorgan81/imggate/internal/moderate"
	"github.com/dmorgan81/imggate/internal/ratelimit"
	"github.com/dmorgan81/imggate/internal/relay"
	"github.com/samber/do"
)

const (
	invalidPromptMessage         = "Missing or invalid 'prompt' in request body."
	rateLimitMessage             = "Rate limit exceeded. Only one image per second allowed."
	moderationUnavailableMessage = "Content moderation is currently unavailable."
	moderationFormatMessage      = "Content moderation returned an unexpected response."
	generationUnavailableMessage = "Image generation is currently unavailable."
	generationFormatMessage      = "Image generation returned an unexpected response."
	internalErrorMessage         = "Internal server error."
)

type generateRequest struct {
	// RawMessage so a non-string prompt is rejected instead of coerced.
	Prompt json.RawMessage `json:"prompt"`
}

type Handler struct {
	service *relay.Service
	gate    *ratelimit.Gate
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		service: do.MustInvoke[*relay.Service](i),
		gate:    do.MustInvoke[*ratelimit.Gate](i),
	}, nil
}

// GenerateImage runs one request through the pipeline: validate, rate-gate,
// then classify and generate. Every outcome is a terminal JSON response.
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	decoder := json.NewDecoder(r.Body)
	// More() catches trailing content after the body, which Decode alone
	// silently ignores.
	if err := decoder.Decode(&req); err != nil || decoder.More() {
		writeError(w, http.StatusBadRequest, invalidPromptMessage)
		return
	}

	var prompt string
	if err := json.Unmarshal(req.Prompt, &prompt); err != nil || prompt == "" {
		writeError(w, http.StatusBadRequest, invalidPromptMessage)
		return
	}

	if !h.gate.Allow(clientIP(r)) {
		log.FromContextOrDiscard(r.Context()).Info("rate limited", "remote_addr", r.RemoteAddr)
		writeError(w, http.StatusTooManyRequests, rateLimitMessage)
		return
	}

	result, err := h.service.Generate(r.Context(), prompt)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": result.URL})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContextOrDiscard(r.Context()).Error("pipeline failed", "path", r.URL.Path, "error", err)

	var upstream *image.UpstreamError
	switch {
	case errors.Is(err, relay.ErrInvalidPrompt):
		writeError(w, http.StatusBadRequest, invalidPromptMessage)
	case errors.As(err, &upstream):
		writeError(w, upstream.Status, upstream.Message)
	case errors.Is(err, moderate.ErrUnavailable):
		writeError(w, http.StatusInternalServerError, moderationUnavailableMessage)
	case errors.Is(err, moderate.ErrBadResponse):
		writeError(w, http.StatusInternalServerError, moderationFormatMessage)
	case errors.Is(err, image.ErrUnavailable):
		writeError(w, http.StatusInternalServerError, generationUnavailableMessage)
	case errors.Is(err, image.ErrBadResponse):
		writeError(w, http.StatusInternalServerError, generationFormatMessage)
	default:
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
