package domain

import (
	"strconv"
	"strings"
)

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String encodes the pair as "<lat>,<lng>" using the shortest decimal form of
// each float, without padding or rounding.
func (ll LatLng) String() string {
	return formatCoord(ll.Lat) + "," + formatCoord(ll.Lng)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseLatLng decodes a "<lat>,<lng>" string.
func ParseLatLng(s string) (LatLng, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return LatLng{}, NewValidationError("location", s, ErrInvalidLatLng)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return LatLng{}, NewValidationError("location", s, ErrInvalidLatLng)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return LatLng{}, NewValidationError("location", s, ErrInvalidLatLng)
	}
	if la < -90 || la > 90 || ln < -180 || ln > 180 {
		return LatLng{}, NewValidationError("location", s, ErrInvalidLatLng)
	}
	return LatLng{Lat: la, Lng: ln}, nil
}

// Geometry is the geocoded part of an autocomplete pick.
type Geometry struct {
	Location LatLng `json:"location"`
}

// PlaceResult is what the autocomplete widget emits when the user confirms an
// entry. Geometry is nil when the text matched no place; Name is then the raw
// text the user entered.
type PlaceResult struct {
	Name     string    `json:"name"`
	Geometry *Geometry `json:"geometry,omitempty"`
}

// ResolvedLocation mirrors the two hidden form fields written from a pick.
type ResolvedLocation struct {
	PlaceName string `json:"place_name"`
	LatLng    string `json:"lat_lng"`
}

// Resolve converts a pick into hidden-field values. A pick without geometry
// resolves to empty strings.
func (p PlaceResult) Resolve() ResolvedLocation {
	if p.Geometry == nil {
		return ResolvedLocation{}
	}
	return ResolvedLocation{PlaceName: p.Name, LatLng: p.Geometry.Location.String()}
}

// AutocompleteOptions restricts the autocomplete search. An empty Types slice
// means a general search.
type AutocompleteOptions struct {
	Types []string
}
