package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter sets up the service routes. Anything that is not an explicit
// route falls through to static files in staticDir when one is given.
func NewRouter(h *Handler, staticDir string, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID, logRequests(logger), recoverPanics(logger))

	r.HandleFunc("/", h.Index).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/api/predict/{id}", h.Predict).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}
