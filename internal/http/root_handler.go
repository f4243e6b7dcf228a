package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/greez/greez/pkg/logger"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RootHandler struct {
	logger      logger.Logger
	apiEndpoint string
	version     string
	db          Pinger
}

// NewRootHandler creates the handler serving the API root, health and the
// frontend config script
func NewRootHandler(logger logger.Logger, apiEndpoint string, version string, db Pinger) *RootHandler {
	return &RootHandler{
		logger:      logger,
		apiEndpoint: apiEndpoint,
		version:     version,
		db:          db,
	}
}

func (h *RootHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || r.URL.Path == "/api/" {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "api running",
			"version": h.version,
		})
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}

	http.NotFound(w, r)
}

func (h *RootHandler) serveHealth(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.WithField("error", err.Error()).Error("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// serveConfigJS exposes the API endpoint to the partner and staff frontends
func (h *RootHandler) serveConfigJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = fmt.Fprintf(w, "window.API_ENDPOINT = %q;\nwindow.VERSION = %q;\n", h.apiEndpoint, h.version)
}

func (h *RootHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.serveHealth)
	mux.HandleFunc("/config.js", h.serveConfigJS)
	// catch all route
	mux.HandleFunc("/", h.Handle)
}
