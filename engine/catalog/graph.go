package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Graph reads the vehicle hierarchy
// (Make)-[:HAS_MODEL]->(VehicleModel)<-[:OF_MODEL]-(ModelYear) from Neo4j.
// Option values are the node ids.
type Graph struct {
	opener SessionOpener
}

// NewGraph creates a Graph on a Neo4j driver.
func NewGraph(driver neo4j.DriverWithContext) *Graph {
	return &Graph{opener: DriverOpener{Driver: driver}}
}

// NewGraphWithOpener creates a Graph with a custom session opener.
func NewGraphWithOpener(o SessionOpener) *Graph {
	return &Graph{opener: o}
}

const (
	makesAnyYear = `MATCH (mk:Make)-[:HAS_MODEL]->(:VehicleModel)
	                RETURN DISTINCT mk.id AS id, mk.name AS name ORDER BY name`
	makesInYear = `MATCH (mk:Make)-[:HAS_MODEL]->(:VehicleModel)<-[:OF_MODEL]-(:ModelYear {year: $year})
	               RETURN DISTINCT mk.id AS id, mk.name AS name ORDER BY name`
	modelsAnyYear = `MATCH (:Make {id: $makeID})-[:HAS_MODEL]->(m:VehicleModel)
	                 RETURN DISTINCT m.id AS id, m.name AS name ORDER BY name`
	modelsInYear = `MATCH (:Make {id: $makeID})-[:HAS_MODEL]->(m:VehicleModel)<-[:OF_MODEL]-(:ModelYear {year: $year})
	                RETURN DISTINCT m.id AS id, m.name AS name ORDER BY name`
)

func (g *Graph) Makes(ctx context.Context, year int) (domain.OptionList, error) {
	if year == AnyYear {
		return g.options(ctx, makesAnyYear, nil)
	}
	return g.options(ctx, makesInYear, map[string]any{"year": year})
}

func (g *Graph) Models(ctx context.Context, makeID string, year int) (domain.OptionList, error) {
	if year == AnyYear {
		return g.options(ctx, modelsAnyYear, map[string]any{"makeID": makeID})
	}
	return g.options(ctx, modelsInYear, map[string]any{"makeID": makeID, "year": year})
}

func (g *Graph) options(ctx context.Context, cypher string, params map[string]any) (domain.OptionList, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("catalog query: %w", err)
	}
	out := domain.OptionList{}
	for result.Next(ctx) {
		rec := result.Record()
		id, _, err := neo4j.GetRecordValue[string](rec, "id")
		if err != nil {
			return nil, fmt.Errorf("catalog record id: %w", err)
		}
		name, _, err := neo4j.GetRecordValue[string](rec, "name")
		if err != nil {
			return nil, fmt.Errorf("catalog record name: %w", err)
		}
		out = append(out, domain.Option{Value: id, Label: name})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("catalog result: %w", err)
	}
	return out, nil
}

// MakeID and ModelID derive the node ids used for a vehicle.
func MakeID(makeName string) string { return strings.ToLower(makeName) }

func ModelID(makeName, model string) string {
	return fmt.Sprintf("%s-%s", MakeID(makeName), strings.ToLower(strings.ReplaceAll(model, " ", "-")))
}

// EnsureVehicle creates Make, VehicleModel and ModelYear in a single
// transaction. Re-running it is a no-op.
func (g *Graph) EnsureVehicle(ctx context.Context, v domain.Vehicle) error {
	if err := domain.ValidateVehicleNames(v.Make, v.Model, v.Year); err != nil {
		return err
	}
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	makeID := MakeID(v.Make)
	modelID := ModelID(v.Make, v.Model)
	myID := fmt.Sprintf("%s-%d", modelID, v.Year)

	_, err := sess.ExecuteWrite(ctx, func(tx Runner) (any, error) {
		cypher := `MERGE (mk:Make {id: $id}) SET mk.name = $name`
		if _, err := tx.Run(ctx, cypher, map[string]any{"id": makeID, "name": v.Make}); err != nil {
			return nil, err
		}

		cypher = `MERGE (m:VehicleModel {id: $id}) SET m.name = $name, m.make_id = $makeID
		          WITH m
		          MATCH (mk:Make {id: $makeID})
		          MERGE (mk)-[:HAS_MODEL]->(m)`
		if _, err := tx.Run(ctx, cypher, map[string]any{"id": modelID, "name": v.Model, "makeID": makeID}); err != nil {
			return nil, err
		}

		cypher = `MERGE (my:ModelYear {id: $id}) SET my.year = $year, my.make = $make, my.model = $model
		          WITH my
		          MATCH (m:VehicleModel {id: $modelID})
		          MERGE (my)-[:OF_MODEL]->(m)`
		if _, err := tx.Run(ctx, cypher, map[string]any{
			"id": myID, "year": v.Year, "make": v.Make, "model": v.Model, "modelID": modelID,
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("ensure vehicle %s: %w", myID, err)
	}
	return nil
}
