// Package main implements the whachapay API server: the Options Service that
// feeds the year/make/model dropdowns, and the place search behind the
// location input.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/WessleyAI/whachapay/engine/catalog"
	"github.com/WessleyAI/whachapay/engine/options"
	"github.com/WessleyAI/whachapay/engine/places"
	"github.com/WessleyAI/whachapay/pkg/metrics"
	"github.com/WessleyAI/whachapay/pkg/mid"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
)

// Config holds all environment-based configuration.
type Config struct {
	Port           string
	CatalogBackend string
	Neo4jURL       string
	Neo4jUser      string
	Neo4jPass      string
	RedisURL       string
	CacheTTL       time.Duration
	NATSURL        string
	OptionsSubject string
	NominatimURL   string
	UserAgent      string
	CountryCodes   string
	CORSOrigin     string
}

func loadConfig() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		CatalogBackend: envOr("CATALOG_BACKEND", "memory"),
		Neo4jURL:       envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:      envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:      envOr("NEO4J_PASS", "password"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CacheTTL:       durationOr("CACHE_TTL", catalog.DefaultCacheTTL),
		NATSURL:        os.Getenv("NATS_URL"),
		OptionsSubject: envOr("NATS_OPTIONS_SUBJECT", options.DefaultSubject),
		NominatimURL:   envOr("NOMINATIM_URL", places.DefaultNominatimURL),
		UserAgent:      envOr("NOMINATIM_USER_AGENT", "whachapay/1.0"),
		CountryCodes:   os.Getenv("PLACES_COUNTRY_CODES"),
		CORSOrigin:     envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using process environment")
	}
	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()

	// --- Catalog ---
	cat, closeCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()
	reg.Gauge(metrics.WithLabels("catalog_backend_info", "backend", cfg.CatalogBackend),
		"Configured catalog backend.").Set(1)

	// --- Redis cache (optional) ---
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, catalog reads will fall through", "err", err)
		}
		cat = catalog.NewCached(cat, rdb, cfg.CacheTTL, logger)
	}

	svc := options.NewService(cat, logger)

	// --- NATS responder (optional) ---
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		if _, err := options.ServeNATS(nc, cfg.OptionsSubject, svc, logger); err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		logger.Info("options responder listening", "subject", cfg.OptionsSubject)
	}

	geo := places.NewNominatim(places.NominatimOpts{
		BaseURL:      cfg.NominatimURL,
		UserAgent:    cfg.UserAgent,
		CountryCodes: cfg.CountryCodes,
		Logger:       logger,
	})

	handler := mid.Chain(newMux(svc, geo, reg, logger),
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("whachapay-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "catalog", cfg.CatalogBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// openCatalog builds the configured catalog backend and its cleanup.
func openCatalog(ctx context.Context, cfg Config, logger *slog.Logger) (catalog.Catalog, func(), error) {
	switch strings.ToLower(cfg.CatalogBackend) {
	case "memory":
		return catalog.DefaultMemory(), func() {}, nil
	case "neo4j":
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return nil, nil, fmt.Errorf("neo4j driver: %w", err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			driver.Close(ctx)
			return nil, nil, fmt.Errorf("neo4j connectivity: %w", err)
		}
		logger.Info("catalog backed by neo4j", "url", cfg.Neo4jURL)
		return catalog.NewGraph(driver), func() { driver.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown CATALOG_BACKEND %q", cfg.CatalogBackend)
	}
}

func newMux(svc options.Resolver, geo places.Provider, reg *metrics.Registry, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("GET /metrics", reg.Handler())
	options.NewHandler(svc, logger, reg).Register(mux)
	places.NewHandler(geo, nil, logger).Register(mux)
	return mux
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
