// HTTP transport for the match service.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	POST /match   run matching for a resume with optional filters
package match

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobmate/match-service/internal/embedding"
	"jobmate/match-service/internal/model"
)

// matchRequestBody is the JSON shape accepted by POST /match.
type matchRequestBody struct {
	ResumeID   string                `json:"resumeId"`
	Location   *model.LocationFilter `json:"location,omitempty"`
	Keywords   []string              `json:"keywords,omitempty"`
	Experience []string              `json:"experience,omitempty"`
	Limit      int                   `json:"limit,omitempty"`
	Offset     int                   `json:"offset,omitempty"`
	NoCache    bool                  `json:"noCache,omitempty"`
}

// Handler holds shared transport dependencies.
type Handler struct {
	svc        *Service
	embeddings embedding.Source
	logger     *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, embeddings embedding.Source, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, embeddings: embeddings, logger: logger}
}

// RegisterRoutes mounts all match-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/match", h.handleMatch)
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body matchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ResumeID == "" {
		writeError(w, http.StatusBadRequest, "resumeId is required")
		return
	}

	requestID := uuid.NewString()
	logger := h.logger.With(
		zap.String("request_id", requestID),
		zap.String("resume_id", body.ResumeID),
	)

	vec, err := h.embeddings.ResumeEmbedding(r.Context(), body.ResumeID)
	if errors.Is(err, embedding.ErrNoEmbedding) {
		writeError(w, http.StatusUnprocessableEntity, "resume has no embedding yet")
		return
	}
	if err != nil {
		logger.Error("resume embedding lookup failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "embedding source unavailable")
		return
	}

	req := model.MatchRequest{
		ResumeID:   body.ResumeID,
		UserID:     r.Header.Get("x-user-id"),
		Embedding:  vec,
		Location:   body.Location,
		Keywords:   body.Keywords,
		Experience: body.Experience,
		Limit:      body.Limit,
		Offset:     body.Offset,
		UseCache:   !body.NoCache,
	}

	result, err := h.svc.Match(r.Context(), req)
	if err != nil {
		h.writeMatchError(w, logger, err)
		return
	}

	logger.Info("match completed",
		zap.Int("matches", len(result.Matches)),
		zap.Int("rejected", result.Rejected),
		zap.Bool("cache_hit", result.CacheHit),
		zap.String("strategy", result.Strategy),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Warn("encode response failed", zap.Error(err))
	}
}

// writeMatchError maps the error taxonomy to HTTP status codes.
func (h *Handler) writeMatchError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSearchTimeout):
		logger.Warn("match timed out", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "match timed out")
	case errors.Is(err, ErrSearchUnavailable):
		logger.Error("search backend unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "search backend unavailable")
	default:
		logger.Error("match failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
