// Package options computes and transports the dependent dropdown contents of
// the vehicle cascade.
//
// Service is the server side: given a selection snapshot it returns the make
// and model lists, each led by its placeholder option. Handler exposes it over
// HTTP, ServeNATS over NATS request/reply. Client and NATSClient are the
// matching cascade.OptionsService implementations.
package options

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/WessleyAI/whachapay/engine/catalog"
	"github.com/WessleyAI/whachapay/engine/domain"
)

// Resolver computes an options update for a snapshot.
type Resolver interface {
	Resolve(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error)
}

// Service answers option queries from a catalog.
type Service struct {
	cat catalog.Catalog
	log *slog.Logger
}

// NewService creates a Service.
func NewService(cat catalog.Catalog, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cat: cat, log: log}
}

// Resolve returns the make list only for a year change with a real year, and
// the model list only for a make change with a real make. Every other list is
// just its placeholder. A make change with no usable year lists the make's
// models across all years.
func (s *Service) Resolve(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error) {
	year, yearOK := domain.ParseYear(snap.Year)
	if !yearOK {
		year = catalog.AnyYear
	}

	makes := domain.OptionList{}
	models := domain.OptionList{}

	if snap.Selected == domain.FieldYear && yearOK {
		list, err := s.cat.Makes(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("makes for %d: %w", year, err)
		}
		makes = list
	}
	if snap.Selected == domain.FieldMake && domain.IsSelected(snap.Make) {
		list, err := s.cat.Models(ctx, snap.Make, year)
		if err != nil {
			return nil, fmt.Errorf("models for make %s: %w", snap.Make, err)
		}
		models = list
	}

	s.log.Debug("options resolved",
		"selected", snap.Selected,
		"year", snap.Year,
		"make", snap.Make,
		"makes", len(makes),
		"models", len(models),
	)
	return &domain.OptionsUpdate{
		Make:  makes.WithPlaceholder(domain.MakeLabel),
		Model: models.WithPlaceholder(domain.ModelLabel),
	}, nil
}

// Options lets a Service back a cascade controller in-process.
func (s *Service) Options(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error) {
	return s.Resolve(ctx, snap)
}
