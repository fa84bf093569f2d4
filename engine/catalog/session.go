package catalog

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Result is the subset of a Neo4j result set the catalog reads.
type Result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// Runner executes Cypher, either in a session or inside a transaction.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// Session is a Neo4j session.
type Session interface {
	Runner
	ExecuteWrite(ctx context.Context, work func(tx Runner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// SessionOpener opens one session per call.
type SessionOpener interface {
	OpenSession(ctx context.Context) Session
}

// DriverOpener opens sessions on a real Neo4j driver.
type DriverOpener struct {
	Driver neo4j.DriverWithContext
	// Database selects the target database; empty uses the server default.
	Database string
}

func (o DriverOpener) OpenSession(ctx context.Context) Session {
	return &driverSession{s: o.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: o.Database})}
}

type driverSession struct {
	s neo4j.SessionWithContext
}

func (d *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := d.s.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *driverSession) ExecuteWrite(ctx context.Context, work func(tx Runner) (any, error)) (any, error) {
	return d.s.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(txRunner{tx})
	})
}

func (d *driverSession) Close(ctx context.Context) error { return d.s.Close(ctx) }

type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (t txRunner) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res, nil
}
