// Command seed-catalog loads the supported makes and models into Neo4j, one
// ModelYear per model and year, so the graph catalog can serve the dropdowns.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/WessleyAI/whachapay/engine/catalog"
	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/pkg/fn"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
)

// vehicleEnsurer is the write side of catalog.Graph.
type vehicleEnsurer interface {
	EnsureVehicle(ctx context.Context, v domain.Vehicle) error
}

func main() {
	from := flag.Int("from", domain.MinModelYear, "first model year to seed")
	to := flag.Int("to", domain.MaxModelYear, "last model year to seed")
	only := flag.String("make", "", "comma-separated makes to seed (default all)")
	dryRun := flag.Bool("dry-run", false, "print the plan without writing")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	vs, err := plan(*from, *to, *only)
	if err != nil {
		logger.Error("invalid seed plan", "err", err)
		os.Exit(2)
	}
	if *dryRun {
		logger.Info("dry run", "vehicles", len(vs), "from", *from, "to", *to)
		return
	}

	neo4jURL := envOr("NEO4J_URL", "neo4j://localhost:7687")
	driver, err := neo4j.NewDriverWithContext(neo4jURL,
		neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
	if err != nil {
		logger.Error("neo4j driver", "err", err)
		os.Exit(1)
	}
	defer driver.Close(context.Background())

	// Neo4j often comes up after the seeder in compose setups.
	connect := fn.Retry(ctx, fn.RetryOpts{MaxAttempts: 5, InitialWait: time.Second, MaxWait: 10 * time.Second, Jitter: true},
		func(ctx context.Context) fn.Result[struct{}] {
			return fn.FromPair(struct{}{}, driver.VerifyConnectivity(ctx))
		})
	if _, err := connect.Unwrap(); err != nil {
		logger.Error("neo4j unreachable", "url", neo4jURL, "err", err)
		os.Exit(1)
	}

	g := catalog.NewGraph(driver)
	written, failed := seed(ctx, g, vs, logger)
	logger.Info("seed complete", "written", written, "failed", failed)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" && written > 0 {
		if err := dropCachedOptions(ctx, redisURL, g, logger); err != nil {
			logger.Warn("option cache not cleared", "err", err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// plan lists every vehicle to write, newest year first.
func plan(from, to int, only string) ([]domain.Vehicle, error) {
	if from > to {
		return nil, fmt.Errorf("from %d is after to %d", from, to)
	}
	if from < domain.MinModelYear || to > domain.MaxModelYear {
		return nil, domain.NewValidationError("year", fmt.Sprintf("%d-%d", from, to), domain.ErrYearOutOfRange)
	}

	var want map[string]bool
	if only != "" {
		want = map[string]bool{}
		for _, name := range strings.Split(only, ",") {
			name = strings.TrimSpace(name)
			if _, ok := domain.SupportedMakes[name]; !ok {
				return nil, domain.NewValidationError("make", name, domain.ErrUnsupportedMake)
			}
			want[name] = true
		}
	}

	// Same pairs, in the same code order, as the in-memory fallback catalog.
	pairs := catalog.DefaultMemory().Vehicles()
	var out []domain.Vehicle
	for y := to; y >= from; y-- {
		for _, v := range pairs {
			if want != nil && !want[v.Make] {
				continue
			}
			v.Year = y
			out = append(out, v)
		}
	}
	return out, nil
}

// dropCachedOptions clears the API's Redis option cache so the new graph
// contents show up before the cache TTL runs out.
func dropCachedOptions(ctx context.Context, redisURL string, next catalog.Catalog, logger *slog.Logger) error {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()
	return catalog.NewCached(next, rdb, 0, logger).Invalidate(ctx)
}

// seed writes vs, continuing past individual failures. It stops early only
// when ctx is cancelled.
func seed(ctx context.Context, g vehicleEnsurer, vs []domain.Vehicle, logger *slog.Logger) (written, failed int) {
	for _, v := range vs {
		if err := g.EnsureVehicle(ctx, v); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Warn("seed interrupted", "written", written)
				return written, failed + 1
			}
			logger.Error("ensure vehicle failed", "year", v.Year, "make", v.Make, "model", v.Model, "err", err)
			failed++
			continue
		}
		written++
		if written%500 == 0 {
			logger.Info("seed progress", "written", written, "total", len(vs))
		}
	}
	return written, failed
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
