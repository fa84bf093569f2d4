package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/WessleyAI/whachapay/engine/catalog"
	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/engine/form"
	"github.com/WessleyAI/whachapay/engine/location"
	"github.com/WessleyAI/whachapay/engine/options"
	"github.com/WessleyAI/whachapay/engine/places"
)

type fixedPlaces []places.Suggestion

func (f fixedPlaces) Search(context.Context, string, domain.AutocompleteOptions) ([]places.Suggestion, error) {
	return f, nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestPage(t *testing.T) *page {
	t.Helper()
	mux := http.NewServeMux()
	options.NewHandler(options.NewService(catalog.DefaultMemory(), quiet), quiet, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	geo := fixedPlaces{{
		Label:    "Honolulu, Honolulu County, Hawaii, United States",
		Name:     "Honolulu",
		Location: domain.LatLng{Lat: 21.3069, Lng: -157.8583},
	}}
	return newPage(options.NewClient(srv.URL, options.ClientOpts{Timeout: 2 * time.Second}), geo, quiet)
}

func TestRun_PickAndSubmit(t *testing.T) {
	p := newTestPage(t)
	sub, err := p.run(context.Background(), Script{Year: "2020", Make: "Toyota", Model: "Corolla", Location: "Hono", Pick: 0})
	if err != nil {
		t.Fatal(err)
	}
	if sub.Year != "2020" || p.make.SelectedText() != "Toyota" || p.model.SelectedText() != "Corolla" {
		t.Fatalf("unexpected cascade state: %+v", sub)
	}
	if sub.Resolved.PlaceName != "Honolulu" || sub.Resolved.LatLng != "21.3069,-157.8583" {
		t.Fatalf("unexpected location %+v", sub.Resolved)
	}
	if v := sub.Values(); v.Get("make") == "" || v.Get("model") == "" {
		t.Fatalf("make and model codes missing: %v", v)
	}
}

func TestRun_EnterIsBlocked(t *testing.T) {
	p := newTestPage(t)
	_, err := p.run(context.Background(), Script{Year: "2020", Make: "Toyota", Model: "Corolla", Location: "Hono", Pick: -1})
	if !errors.Is(err, form.ErrSubmissionVetoed) {
		t.Fatalf("expected veto, got %v", err)
	}
	if alerts := p.Alerts(); len(alerts) != 1 || alerts[0] != location.RejectMessage {
		t.Fatalf("unexpected alerts %v", alerts)
	}
}

func TestRun_UnknownMake(t *testing.T) {
	p := newTestPage(t)
	var buf bytes.Buffer
	p.log = slog.New(slog.NewJSONHandler(&buf, nil))
	_, err := p.run(context.Background(), Script{Year: "2020", Make: "Yugo", Model: "GV", Location: "Hono"})
	if !errors.Is(err, domain.ErrNoSuchOption) {
		t.Fatalf("expected ErrNoSuchOption, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"option not offered"`) || !strings.Contains(out, `"Toyota"`) || !strings.Contains(out, `"want":"Yugo"`) {
		t.Fatalf("expected the offered labels logged, got %s", out)
	}
}
