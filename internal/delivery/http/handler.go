package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/utakatalp/matchday-face/internal/brain"
	"github.com/utakatalp/matchday-face/internal/league"
	"github.com/utakatalp/matchday-face/internal/ports"
	"github.com/utakatalp/matchday-face/internal/requestid"
)

const (
	msgDatabaseError = "Database Error"
	msgRenderError   = "Internal Server Error"
	msgBrainOffline  = "Brain Offline"

	healthTimeout = 2 * time.Second
)

// Handler holds the HTTP handlers and the dependencies injected at startup.
type Handler struct {
	matches   ports.MatchRepo
	predictor ports.Predictor
	logger    *slog.Logger
}

// NewHandler creates a Handler. Both dependencies must be safe for concurrent use.
func NewHandler(matches ports.MatchRepo, predictor ports.Predictor, logger *slog.Logger) *Handler {
	return &Handler{
		matches:   matches,
		predictor: predictor,
		logger:    logger,
	}
}

type indexView struct {
	Matches []*league.Match
}

type errorResponse struct {
	Error string `json:"error"`
}

// Index renders the list of upcoming matches.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.UpcomingMatches(r.Context(), league.UpcomingLimit)
	if err != nil {
		h.logger.Error("listing upcoming matches",
			"request_id", requestid.From(r.Context()),
			"err", err,
		)
		http.Error(w, msgDatabaseError, http.StatusInternalServerError)
		return
	}

	// render fully before writing so a template failure never leaves half a page
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, "index.html", indexView{Matches: matches}); err != nil {
		h.logger.Error("rendering index",
			"request_id", requestid.From(r.Context()),
			"err", err,
		)
		http.Error(w, msgRenderError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Predict relays the brain's prediction for the match in the path.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	pred, err := h.predictor.Predict(r.Context(), matchID)
	if err != nil {
		attrs := []any{
			"request_id", requestid.From(r.Context()),
			"match_id", matchID,
			"err", err,
		}
		var upErr *brain.UpstreamError
		if errors.As(err, &upErr) {
			attrs = append(attrs, "kind", upErr.Kind.String(), "timeout", upErr.Timeout())
		}
		h.logger.Error("brain prediction failed", attrs...)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgBrainOffline})
		return
	}

	status := pred.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(pred.Payload)
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.matches.Ping(ctx); err != nil {
		h.logger.Warn("health check failed",
			"request_id", requestid.From(r.Context()),
			"err", err,
		)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
