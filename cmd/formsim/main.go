// Command formsim drives the listing search form headlessly: it picks a
// year, make and model through the live Options Service, searches a location
// and submits, printing the posted fields.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/WessleyAI/whachapay/engine/cascade"
	"github.com/WessleyAI/whachapay/engine/form"
	"github.com/WessleyAI/whachapay/engine/options"
	"github.com/WessleyAI/whachapay/engine/places"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("API_URL", "http://localhost:8080"), "Options Service base URL")
	natsURL := flag.String("nats", os.Getenv("NATS_URL"), "query options over NATS instead of HTTP")
	subject := flag.String("subject", envOr("NATS_OPTIONS_SUBJECT", options.DefaultSubject), "NATS options subject")
	nominatim := flag.String("nominatim", envOr("NOMINATIM_URL", places.DefaultNominatimURL), "Nominatim search URL")
	year := flag.String("year", "2020", "year to pick")
	mk := flag.String("make", "Toyota", "make to pick")
	model := flag.String("model", "Corolla", "model to pick")
	loc := flag.String("location", "Honolulu", "location text to type")
	pick := flag.Int("pick", 0, "suggestion to choose (-1 presses Enter)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall session timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var svc cascade.OptionsService
	if *natsURL != "" {
		nc, err := nats.Connect(*natsURL)
		if err != nil {
			logger.Error("nats connect", "err", err)
			os.Exit(1)
		}
		defer nc.Close()
		svc = options.NewNATSClient(nc, *subject, logger)
	} else {
		svc = options.NewClient(*apiURL, options.ClientOpts{Logger: logger})
	}

	geo := places.NewNominatim(places.NominatimOpts{
		BaseURL:   *nominatim,
		UserAgent: envOr("NOMINATIM_USER_AGENT", "whachapay-formsim/1.0"),
		Logger:    logger,
	})

	p := newPage(svc, geo, logger)
	sub, err := p.run(ctx, Script{Year: *year, Make: *mk, Model: *model, Location: *loc, Pick: *pick})
	if errors.Is(err, form.ErrSubmissionVetoed) {
		logger.Warn("submission blocked", "alerts", p.Alerts())
		os.Exit(3)
	}
	if err != nil {
		logger.Error("session failed", "err", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(sub.Values())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
