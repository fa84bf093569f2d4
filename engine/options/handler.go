package options

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/pkg/metrics"
)

// Path is where the Options Service is mounted.
const Path = "/home/update_selections/"

// Handler serves option queries over HTTP.
type Handler struct {
	svc Resolver
	log *slog.Logger
	reg *metrics.Registry
}

// NewHandler creates a Handler. reg may be nil.
func NewHandler(svc Resolver, log *slog.Logger, reg *metrics.Registry) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log, reg: reg}
}

// Register mounts the handler on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET "+Path, h)
}

// ServeHTTP only answers XMLHttpRequests; anything else is a 404, which
// keeps the endpoint off crawlers and direct navigation.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	selected := "none"
	defer func() {
		h.observe(selected, status, start)
	}()

	if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		status = http.StatusNotFound
		http.NotFound(w, r)
		return
	}

	snap, err := domain.SnapshotFromQuery(normalizeQuery(r.URL.Query()))
	if err != nil {
		status = http.StatusBadRequest
		writeError(w, status, err.Error())
		return
	}
	selected = string(snap.Selected)

	upd, err := h.svc.Resolve(r.Context(), snap)
	if err != nil {
		h.log.Error("options resolve failed", "selected", snap.Selected, "err", err)
		status = http.StatusBadGateway
		writeError(w, status, "option lookup failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("format") == "html" {
		json.NewEncoder(w).Encode(newFragmentResponse(upd))
		return
	}
	json.NewEncoder(w).Encode(newResponse(upd))
}

func (h *Handler) observe(selected string, status int, start time.Time) {
	if h.reg == nil {
		return
	}
	h.reg.Counter(metrics.WithLabels("options_requests_total", "selected", selected, "status", strconv.Itoa(status)),
		"Options Service requests by triggering field and status.").Inc()
	h.reg.Histogram("options_request_duration_seconds", "Options Service latency.").Since(start)
}

// normalizeQuery accepts the older form field name make_year for year, as
// both a parameter and a selected value.
func normalizeQuery(q url.Values) url.Values {
	if q.Get("year") == "" && q.Has("make_year") {
		q.Set("year", q.Get("make_year"))
	}
	if q.Get("selected") == "make_year" {
		q.Set("selected", string(domain.FieldYear))
	}
	return q
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
