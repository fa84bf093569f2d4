package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/pkg/fn"
	"github.com/WessleyAI/whachapay/pkg/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// DefaultNominatimURL is the public OpenStreetMap search endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimOpts configures a Nominatim provider.
type NominatimOpts struct {
	BaseURL   string
	UserAgent string
	// Limit caps the suggestions per query. Zero means 5.
	Limit int
	// CountryCodes restricts results, e.g. "us,ca". Empty searches worldwide.
	CountryCodes string
	// Interval is the minimum spacing between upstream requests. The public
	// service allows one per second.
	Interval   time.Duration
	HTTPClient *http.Client
	Breaker    resilience.BreakerOpts
	Logger     *slog.Logger
}

// Nominatim is a Provider backed by the OpenStreetMap Nominatim API.
type Nominatim struct {
	endpoint  string
	userAgent string
	limit     int
	countries string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *resilience.Breaker
	log       *slog.Logger
}

// ErrRateLimited is returned when the caller's context ends before the
// request may be sent.
var ErrRateLimited = errors.New("nominatim: rate limited")

// UpstreamError is a non-200 reply from Nominatim.
type UpstreamError struct {
	Code int
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("nominatim: status %d", e.Code) }

// Temporary reports whether the upstream is overloaded or failing.
func (e *UpstreamError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// NewNominatim creates a Nominatim provider.
func NewNominatim(opts NominatimOpts) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "whachapay/1.0"
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Breaker.IsFailure == nil {
		opts.Breaker.IsFailure = countsAgainstUpstream
	}
	return &Nominatim{
		endpoint:  opts.BaseURL,
		userAgent: opts.UserAgent,
		limit:     opts.Limit,
		countries: opts.CountryCodes,
		client:    opts.HTTPClient,
		limiter:   rate.NewLimiter(rate.Every(opts.Interval), 1),
		breaker:   resilience.NewBreaker(opts.Breaker),
		log:       opts.Logger,
	}
}

// countsAgainstUpstream trips the breaker on transport failures and
// temporary upstream errors only. Local rate limiting never counts.
func countsAgainstUpstream(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrRateLimited) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Temporary()
	}
	return true
}

type nominatimResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
	AddressType string `json:"addresstype"`
}

// Search returns up to Limit suggestions for query. A non-empty opts.Types
// keeps only results whose type or address type is listed.
func (n *Nominatim) Search(ctx context.Context, query string, opts domain.AutocompleteOptions) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	// An open breaker rejects before the limiter hands out a token.
	return resilience.CallResult(n.breaker, ctx, func(ctx context.Context) fn.Result[[]Suggestion] {
		if err := n.limiter.Wait(ctx); err != nil {
			return fn.Err[[]Suggestion](fmt.Errorf("%w: %v", ErrRateLimited, err))
		}
		return fn.FromPair(n.search(ctx, query, opts))
	}).Unwrap()
}

func (n *Nominatim) search(ctx context.Context, query string, opts domain.AutocompleteOptions) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(n.limit))
	if n.countries != "" {
		params.Set("countrycodes", n.countries)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("nominatim request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.log.Warn("nominatim upstream error", "status", resp.StatusCode)
		return nil, &UpstreamError{Code: resp.StatusCode}
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode nominatim payload: %w", err)
	}

	out := make([]Suggestion, 0, len(raw))
	for _, r := range raw {
		s, ok := buildSuggestion(r)
		if !ok {
			n.log.Debug("skipping nominatim result", "display_name", r.DisplayName)
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, r.Type) && !slices.Contains(opts.Types, r.AddressType) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func buildSuggestion(r nominatimResult) (Suggestion, bool) {
	ll, err := domain.ParseLatLng(r.Lat + "," + r.Lon)
	if err != nil {
		return Suggestion{}, false
	}
	name := r.Name
	if name == "" {
		name, _, _ = strings.Cut(r.DisplayName, ",")
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return Suggestion{}, false
	}
	label := r.DisplayName
	if label == "" {
		label = name
	}
	typ := r.AddressType
	if typ == "" {
		typ = r.Type
	}
	return Suggestion{Label: label, Name: name, Location: ll, Type: typ}, true
}
