package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type mockResult struct {
	records []*neo4j.Record
	idx     int
	err     error
}

func newMockResult(rows ...[2]string) *mockResult {
	r := &mockResult{idx: -1}
	for _, row := range rows {
		r.records = append(r.records, &neo4j.Record{Keys: []string{"id", "name"}, Values: []any{row[0], row[1]}})
	}
	return r
}

func (r *mockResult) Next(context.Context) bool {
	r.idx++
	return r.idx < len(r.records)
}

func (r *mockResult) Record() *neo4j.Record { return r.records[r.idx] }
func (r *mockResult) Err() error            { return r.err }

type call struct {
	cypher string
	params map[string]any
}

type mockSession struct {
	runResult *mockResult
	runErr    error
	txErrAt   int // 1-based tx.Run that fails; 0 never
	calls     []call
	closed    bool
}

func (s *mockSession) Run(_ context.Context, cypher string, params map[string]any) (Result, error) {
	s.calls = append(s.calls, call{cypher, params})
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.runResult, nil
}

func (s *mockSession) ExecuteWrite(ctx context.Context, work func(Runner) (any, error)) (any, error) {
	return work(&mockTx{s: s})
}

func (s *mockSession) Close(context.Context) error {
	s.closed = true
	return nil
}

type mockTx struct {
	s *mockSession
	n int
}

func (tx *mockTx) Run(_ context.Context, cypher string, params map[string]any) (Result, error) {
	tx.n++
	tx.s.calls = append(tx.s.calls, call{cypher, params})
	if tx.n == tx.s.txErrAt {
		return nil, errors.New("constraint violation")
	}
	return newMockResult(), nil
}

type mockOpener struct{ session *mockSession }

func (o *mockOpener) OpenSession(context.Context) Session { return o.session }

func TestGraph_MakesAnyYear(t *testing.T) {
	sess := &mockSession{runResult: newMockResult([2]string{"honda", "Honda"}, [2]string{"toyota", "Toyota"})}
	g := NewGraphWithOpener(&mockOpener{session: sess})

	makes, err := g.Makes(context.Background(), AnyYear)
	if err != nil {
		t.Fatal(err)
	}
	if len(makes) != 2 || makes[1] != (domain.Option{Value: "toyota", Label: "Toyota"}) {
		t.Fatalf("unexpected makes %+v", makes)
	}
	if _, ok := sess.calls[0].params["year"]; ok {
		t.Fatal("any-year query must not filter on year")
	}
	if !sess.closed {
		t.Fatal("session not closed")
	}
}

func TestGraph_ModelsInYear(t *testing.T) {
	sess := &mockSession{runResult: newMockResult([2]string{"toyota-camry", "Camry"})}
	g := NewGraphWithOpener(&mockOpener{session: sess})

	models, err := g.Models(context.Background(), "toyota", 2020)
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 1 || models[0].Value != "toyota-camry" {
		t.Fatalf("unexpected models %+v", models)
	}
	c := sess.calls[0]
	if c.params["makeID"] != "toyota" || c.params["year"] != 2020 {
		t.Fatalf("unexpected params %v", c.params)
	}
	if !strings.Contains(c.cypher, "ModelYear") {
		t.Fatal("year query must traverse ModelYear")
	}
}

func TestGraph_EmptyResultIsEmptyList(t *testing.T) {
	g := NewGraphWithOpener(&mockOpener{session: &mockSession{runResult: newMockResult()}})
	models, err := g.Models(context.Background(), "nope", AnyYear)
	if err != nil || models == nil || len(models) != 0 {
		t.Fatalf("expected empty list, got %#v, %v", models, err)
	}
}

func TestGraph_RunError(t *testing.T) {
	sess := &mockSession{runErr: errors.New("connection refused")}
	g := NewGraphWithOpener(&mockOpener{session: sess})
	if _, err := g.Makes(context.Background(), 2020); err == nil {
		t.Fatal("expected error")
	}
	if !sess.closed {
		t.Fatal("session must be closed on error")
	}
}

func TestGraph_ResultError(t *testing.T) {
	res := newMockResult()
	res.err = errors.New("stream reset")
	g := NewGraphWithOpener(&mockOpener{session: &mockSession{runResult: res}})
	if _, err := g.Makes(context.Background(), 2020); err == nil {
		t.Fatal("expected result error")
	}
}

func TestGraph_BadRecord(t *testing.T) {
	res := &mockResult{idx: -1, records: []*neo4j.Record{{Keys: []string{"id", "name"}, Values: []any{int64(1), "Toyota"}}}}
	g := NewGraphWithOpener(&mockOpener{session: &mockSession{runResult: res}})
	if _, err := g.Makes(context.Background(), AnyYear); err == nil {
		t.Fatal("expected type error for non-string id")
	}
}

func TestEnsureVehicle(t *testing.T) {
	sess := &mockSession{}
	g := NewGraphWithOpener(&mockOpener{session: sess})

	err := g.EnsureVehicle(context.Background(), domain.Vehicle{Year: 2020, Make: "Toyota", Model: "4Runner"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.calls) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(sess.calls))
	}
	if sess.calls[1].params["id"] != "toyota-4runner" {
		t.Fatalf("unexpected model id %v", sess.calls[1].params["id"])
	}
	if sess.calls[2].params["id"] != "toyota-4runner-2020" {
		t.Fatalf("unexpected model year id %v", sess.calls[2].params["id"])
	}
}

func TestEnsureVehicle_TxError(t *testing.T) {
	g := NewGraphWithOpener(&mockOpener{session: &mockSession{txErrAt: 2}})
	if err := g.EnsureVehicle(context.Background(), domain.Vehicle{Year: 2020, Make: "Toyota", Model: "Camry"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureVehicle_Validates(t *testing.T) {
	sess := &mockSession{}
	g := NewGraphWithOpener(&mockOpener{session: sess})
	err := g.EnsureVehicle(context.Background(), domain.Vehicle{Year: 2020, Make: "Yugo", Model: "GV"})
	if !errors.Is(err, domain.ErrUnsupportedMake) {
		t.Fatalf("expected ErrUnsupportedMake, got %v", err)
	}
	if len(sess.calls) != 0 {
		t.Fatal("invalid vehicle must not reach Neo4j")
	}
}

func TestModelID(t *testing.T) {
	if got := ModelID("Land Rover", "Range Rover Sport"); got != "land rover-range-rover-sport" {
		t.Fatalf("unexpected id %q", got)
	}
}
