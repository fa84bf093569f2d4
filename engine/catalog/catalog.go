// Package catalog answers which makes exist for a model year and which
// models a make offers. Lists are returned without the placeholder option.
package catalog

import (
	"context"

	"github.com/WessleyAI/whachapay/engine/domain"
)

// AnyYear disables year filtering.
const AnyYear = 0

// Catalog is a source of vehicle options.
type Catalog interface {
	// Makes lists the makes with at least one model in year.
	Makes(ctx context.Context, year int) (domain.OptionList, error)
	// Models lists the models of makeID available in year. An unknown make
	// yields an empty list.
	Models(ctx context.Context, makeID string, year int) (domain.OptionList, error)
}
