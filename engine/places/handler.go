package places

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/WessleyAI/whachapay/pkg/resilience"
)

// Routes served by Handler.
const (
	AutocompletePath = "/api/places/autocomplete"
	MapPath          = "/api/places/map"
)

// Handler exposes place search and map framing over HTTP.
type Handler struct {
	provider Provider
	types    []string
	log      *slog.Logger
}

// NewHandler creates a Handler. types is applied when a request names none.
func NewHandler(p Provider, types []string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{provider: p, types: types, log: log}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+AutocompletePath, h.autocomplete)
	mux.HandleFunc("GET "+MapPath, h.mapView)
}

func (h *Handler) autocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := strings.TrimSpace(q.Get("q"))
	if text == "" {
		writeJSON(w, http.StatusOK, []Suggestion{})
		return
	}

	types := h.types
	if t := q.Get("types"); t != "" {
		types = strings.Split(t, ",")
	}

	found, err := h.provider.Search(r.Context(), text, optionsFor(types))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, resilience.ErrCircuitOpen) {
			status = http.StatusServiceUnavailable
		}
		h.log.Error("place autocomplete failed", "q", text, "err", err)
		writeJSON(w, status, map[string]string{"error": "place search failed"})
		return
	}
	if found == nil {
		found = []Suggestion{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *Handler) mapView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := NewMapView(MapSpec{ID: q.Get("id"), Name: q.Get("name"), Location: q.Get("location")})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		MapView
		URL string `json:"url"`
	}{view, view.EmbedURL()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
