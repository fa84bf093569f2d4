package options

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/pkg/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBody caps how much of a reply the client reads.
const maxBody = 1 << 20

// ClientOpts configures a Client.
type ClientOpts struct {
	// Timeout bounds one request. Zero means 5s.
	Timeout time.Duration
	// HTTPClient overrides the default otelhttp-instrumented client.
	HTTPClient *http.Client
	Breaker    resilience.BreakerOpts
	Logger     *slog.Logger
}

// Client queries a remote Options Service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	breaker  *resilience.Breaker
	timeout  time.Duration
	log      *slog.Logger
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ClientOpts) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + Path,
		http:     opts.HTTPClient,
		breaker:  resilience.NewBreaker(opts.Breaker),
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
}

// StatusError is returned for a non-200 reply.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("options service: status %d", e.Code) }

// Options implements cascade.OptionsService.
func (c *Client) Options(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var upd *domain.OptionsUpdate
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+snap.Query().Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode}
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return fmt.Errorf("read options response: %w", err)
		}
		upd, err = DecodeUpdate(body)
		return err
	})
	if err != nil {
		c.log.Warn("options request failed", "selected", snap.Selected, "state", c.breaker.State(), "err", err)
		return nil, err
	}
	return upd, nil
}
