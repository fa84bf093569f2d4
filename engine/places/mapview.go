package places

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/WessleyAI/whachapay/engine/domain"
)

// DefaultZoom frames a neighbourhood around a listing.
const DefaultZoom = 14

// MapSpec is how a listing page describes a map to draw: the element to draw
// into, the marker title and a "lat,lng" centre.
type MapSpec struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// MapView is a map centred on one marked place.
type MapView struct {
	ElementID string        `json:"element_id"`
	Title     string        `json:"title"`
	Center    domain.LatLng `json:"center"`
	Zoom      int           `json:"zoom"`
}

// NewMapView builds the view for spec.
func NewMapView(spec MapSpec) (MapView, error) {
	ll, err := domain.ParseLatLng(spec.Location)
	if err != nil {
		return MapView{}, err
	}
	return MapView{ElementID: spec.ID, Title: spec.Name, Center: ll, Zoom: DefaultZoom}, nil
}

// EmbedURL links to the view on openstreetmap.org with a marker at the centre.
func (m MapView) EmbedURL() string {
	lat := strconv.FormatFloat(m.Center.Lat, 'f', -1, 64)
	lng := strconv.FormatFloat(m.Center.Lng, 'f', -1, 64)
	q := url.Values{}
	q.Set("mlat", lat)
	q.Set("mlon", lng)
	return fmt.Sprintf("https://www.openstreetmap.org/?%s#map=%d/%s/%s", q.Encode(), m.Zoom, lat, lng)
}
