package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/pkg/resilience"
)

const honoluluPayload = `[
  {"name":"Honolulu","display_name":"Honolulu, Honolulu County, Hawaii, United States","lat":"21.3069","lon":"-157.8583","type":"city","addresstype":"city"},
  {"name":"","display_name":"Honolulu Zoo, Kapahulu Avenue, Honolulu","lat":"21.2711","lon":"-157.8204","type":"zoo","addresstype":"tourism"},
  {"name":"Broken","display_name":"Broken","lat":"north","lon":"-1","type":"city"}
]`

func newTestNominatim(t *testing.T, h http.HandlerFunc, opts NominatimOpts) *Nominatim {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	if opts.Interval == 0 {
		opts.Interval = time.Millisecond
	}
	return NewNominatim(opts)
}

func TestNominatim_Search(t *testing.T) {
	var got *http.Request
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(honoluluPayload))
	}, NominatimOpts{UserAgent: "test-agent", Limit: 3, CountryCodes: "us"})

	found, err := n.Search(context.Background(), " Honolulu ", domain.AutocompleteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 suggestions, got %+v", found)
	}
	first := found[0]
	if first.Name != "Honolulu" || first.Label != "Honolulu, Honolulu County, Hawaii, United States" {
		t.Fatalf("unexpected first suggestion %+v", first)
	}
	if first.Location.String() != "21.3069,-157.8583" {
		t.Fatalf("unexpected location %s", first.Location)
	}
	if found[1].Name != "Honolulu Zoo" || found[1].Type != "tourism" {
		t.Fatalf("name should fall back to the first display part, got %+v", found[1])
	}

	q := got.URL.Query()
	if q.Get("q") != "Honolulu" || q.Get("format") != "jsonv2" || q.Get("limit") != "3" || q.Get("countrycodes") != "us" {
		t.Fatalf("unexpected query %v", q)
	}
	if got.Header.Get("User-Agent") != "test-agent" {
		t.Fatalf("unexpected user agent %q", got.Header.Get("User-Agent"))
	}
}

func TestNominatim_TypeFilter(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(honoluluPayload))
	}, NominatimOpts{})

	found, err := n.Search(context.Background(), "Honolulu", domain.AutocompleteOptions{Types: []string{"city"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Name != "Honolulu" {
		t.Fatalf("expected only the city, got %+v", found)
	}
}

func TestNominatim_EmptyQuerySkipsUpstream(t *testing.T) {
	var calls atomic.Int32
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte("[]"))
	}, NominatimOpts{})

	found, err := n.Search(context.Background(), "   ", domain.AutocompleteOptions{})
	if err != nil || found != nil {
		t.Fatalf("expected nothing, got %v, %v", found, err)
	}
	if calls.Load() != 0 {
		t.Fatal("blank query must not reach upstream")
	}
}

func TestNominatim_UpstreamError(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, NominatimOpts{})

	_, err := n.Search(context.Background(), "Honolulu", domain.AutocompleteOptions{})
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Code != http.StatusTooManyRequests || !ue.Temporary() {
		t.Fatalf("expected temporary UpstreamError 429, got %v", err)
	}
}

func TestNominatim_BadPayload(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>"))
	}, NominatimOpts{})

	if _, err := n.Search(context.Background(), "Honolulu", domain.AutocompleteOptions{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNominatim_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, NominatimOpts{Breaker: resilience.BreakerOpts{FailThreshold: 2, Timeout: time.Minute}})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		n.Search(ctx, "Honolulu", domain.AutocompleteOptions{})
	}
	_, err := n.Search(ctx, "Honolulu", domain.AutocompleteOptions{})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls.Load())
	}
}

func TestNominatim_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, NominatimOpts{Breaker: resilience.BreakerOpts{FailThreshold: 1, Timeout: time.Minute}})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		n.Search(ctx, "Honolulu", domain.AutocompleteOptions{})
	}
	if calls.Load() != 3 {
		t.Fatalf("4xx replies must not open the circuit, got %d calls", calls.Load())
	}
}

func TestNominatim_RateLimitHonoursContext(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("[]"))
	}, NominatimOpts{Interval: time.Hour})

	if _, err := n.Search(context.Background(), "a", domain.AutocompleteOptions{}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := n.Search(ctx, "b", domain.AutocompleteOptions{}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected the limiter to refuse within the deadline, got %v", err)
	}
	if st := n.breaker.State(); st != resilience.StateClosed {
		t.Fatalf("rate limiting must not count against upstream, breaker %v", st)
	}
}

func TestNominatim_OpenBreakerSkipsLimiter(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, NominatimOpts{Interval: time.Hour, Breaker: resilience.BreakerOpts{FailThreshold: 1, Timeout: time.Hour}})

	if _, err := n.Search(context.Background(), "a", domain.AutocompleteOptions{}); err == nil {
		t.Fatal("expected upstream error")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	_, err := n.Search(ctx, "b", domain.AutocompleteOptions{})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit without waiting for a token, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("open breaker should reject immediately")
	}
}
