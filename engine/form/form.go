// Package form runs the listing search form: it initialises the cascade and
// the location gate on load and only hands a submission on when no component
// vetoes it.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/WessleyAI/whachapay/engine/cascade"
	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/engine/location"
)

// ErrSubmissionVetoed is returned when a component blocks the submit.
var ErrSubmissionVetoed = errors.New("submission vetoed")

// Vetoer can block a submission. OnSubmit reports whether it may proceed.
type Vetoer interface {
	OnSubmit() bool
}

// Submission is what an accepted form posts.
type Submission struct {
	Year     string
	Make     string
	Model    string
	Location string
	Resolved domain.ResolvedLocation
}

// Values encodes the submission as form fields.
func (s Submission) Values() url.Values {
	v := url.Values{}
	v.Set("year", s.Year)
	v.Set("make", s.Make)
	v.Set("model", s.Model)
	v.Set("location", s.Location)
	v.Set("place_name", s.Resolved.PlaceName)
	v.Set("lat_lng", s.Resolved.LatLng)
	return v
}

// Option configures a Form.
type Option func(*Form)

// WithVetoer adds an extra submit check, run after the location gate.
func WithVetoer(v Vetoer) Option {
	return func(f *Form) { f.vetoers = append(f.vetoers, v) }
}

// OnAccept sets the callback receiving accepted submissions.
func OnAccept(fn func(context.Context, Submission) error) Option {
	return func(f *Form) { f.onAccept = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) { f.log = l }
}

// Form ties the cascade controller and the location gate together.
type Form struct {
	cascade  *cascade.Controller
	location *location.Gate
	vetoers  []Vetoer
	onAccept func(context.Context, Submission) error
	log      *slog.Logger
}

// New creates a Form.
func New(c *cascade.Controller, g *location.Gate, opts ...Option) *Form {
	f := &Form{cascade: c, location: g, log: slog.Default()}
	f.vetoers = append(f.vetoers, g)
	for _, o := range opts {
		o(f)
	}
	return f
}

// Load initialises every component, cascade first.
func (f *Form) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.cascade.InitSelects()
	if err := f.location.Init(); err != nil {
		return fmt.Errorf("load form: %w", err)
	}
	f.log.Info("form loaded")
	return nil
}

// Submit asks every vetoer in turn and, if none blocks, collects the values
// and passes them to the accept callback.
func (f *Form) Submit(ctx context.Context) (Submission, error) {
	for i, v := range f.vetoers {
		if !v.OnSubmit() {
			f.log.Info("submission vetoed", "vetoer", i)
			return Submission{}, ErrSubmissionVetoed
		}
	}

	s := f.collect()
	if f.onAccept != nil {
		if err := f.onAccept(ctx, s); err != nil {
			return s, fmt.Errorf("accept submission: %w", err)
		}
	}
	f.log.Info("submission accepted", "year", s.Year, "make", s.Make, "model", s.Model, "place_name", s.Resolved.PlaceName)
	return s, nil
}

func (f *Form) collect() Submission {
	s := Submission{Location: f.location.Text(), Resolved: f.location.Resolved()}
	for _, fld := range f.cascade.Fields() {
		switch fld.Name {
		case domain.FieldYear:
			s.Year = fld.Value
		case domain.FieldMake:
			s.Make = fld.Value
		case domain.FieldModel:
			s.Model = fld.Value
		}
	}
	return s
}
