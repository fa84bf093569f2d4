// Package places resolves free text into named places with coordinates and
// drives the location autocomplete widget.
package places

import (
	"context"
	"strings"

	"github.com/WessleyAI/whachapay/engine/domain"
)

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	// Label is the full text shown in the list and written to the input.
	Label    string        `json:"label"`
	Name     string        `json:"name"`
	Location domain.LatLng `json:"location"`
	Type     string        `json:"type,omitempty"`
}

// Place converts the suggestion into a picked place with geometry.
func (s Suggestion) Place() domain.PlaceResult {
	return domain.PlaceResult{Name: s.Name, Geometry: &domain.Geometry{Location: s.Location}}
}

// Provider searches for places matching free text.
type Provider interface {
	Search(ctx context.Context, query string, opts domain.AutocompleteOptions) ([]Suggestion, error)
}

func optionsFor(types []string) domain.AutocompleteOptions {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return domain.AutocompleteOptions{}
	}
	return domain.AutocompleteOptions{Types: out}
}
