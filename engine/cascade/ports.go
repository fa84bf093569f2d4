package cascade

import (
	"context"

	"github.com/WessleyAI/whachapay/engine/domain"
)

// Select is the narrow view of one dropdown element the controller needs.
// Page wiring supplies the implementation.
type Select interface {
	// Value returns the coded value of the selected option.
	Value() string
	// SelectedText returns the display label of the selected option.
	SelectedText() string
	SetValue(v string)
	Enabled() bool
	SetEnabled(enabled bool)
	// ReplaceOptions swaps the whole option list.
	ReplaceOptions(opts domain.OptionList)
}

// Selects bundles the three cascade dropdowns.
type Selects struct {
	Year  Select
	Make  Select
	Model Select
}

func (s Selects) get(f domain.FieldName) Select {
	switch f {
	case domain.FieldYear:
		return s.Year
	case domain.FieldMake:
		return s.Make
	case domain.FieldModel:
		return s.Model
	}
	return nil
}

// PageMarkers exposes markers rendered into the page by the server.
type PageMarkers interface {
	// HasValidationErrors reports whether the page is a re-render after a
	// failed submission (an error list inside a field group is present).
	HasValidationErrors() bool
}

// StaticMarkers is a PageMarkers with a fixed answer.
type StaticMarkers bool

func (m StaticMarkers) HasValidationErrors() bool { return bool(m) }

// OptionsService computes the valid dependent options for a partial
// selection. A nil update with a nil error means "no update".
type OptionsService interface {
	Options(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error)
}

// OptionsFunc adapts a function to OptionsService.
type OptionsFunc func(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error)

func (f OptionsFunc) Options(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error) {
	return f(ctx, snap)
}
