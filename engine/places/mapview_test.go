package places

import (
	"errors"
	"strings"
	"testing"

	"github.com/WessleyAI/whachapay/engine/domain"
)

func TestNewMapView(t *testing.T) {
	v, err := NewMapView(MapSpec{ID: "map-3", Name: "2019 Toyota Corolla", Location: "21.3069,-157.8583"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Zoom != DefaultZoom || v.ElementID != "map-3" || v.Center.Lat != 21.3069 {
		t.Fatalf("unexpected view %+v", v)
	}
	url := v.EmbedURL()
	if !strings.HasSuffix(url, "#map=14/21.3069/-157.8583") || !strings.Contains(url, "mlat=21.3069") {
		t.Fatalf("unexpected embed url %s", url)
	}
}

func TestNewMapView_BadLocation(t *testing.T) {
	if _, err := NewMapView(MapSpec{Location: "somewhere"}); !errors.Is(err, domain.ErrInvalidLatLng) {
		t.Fatalf("expected ErrInvalidLatLng, got %v", err)
	}
}
