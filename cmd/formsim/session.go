package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/WessleyAI/whachapay/engine/cascade"
	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/engine/form"
	"github.com/WessleyAI/whachapay/engine/location"
	"github.com/WessleyAI/whachapay/engine/places"
)

// Script is one scripted visit to the search page.
type Script struct {
	Year     string
	Make     string
	Model    string
	Location string
	// Pick is the suggestion to choose; negative presses Enter instead.
	Pick int
}

// page is the headless search page: three dropdowns, the location input with
// its hidden fields and the autocomplete widget.
type page struct {
	year, make, model *cascade.MemSelect
	input             *location.MemField
	widget            *places.Widget
	ctrl              *cascade.Controller
	form              *form.Form
	log               *slog.Logger

	mu     sync.Mutex
	alerts []string
}

func newPage(svc cascade.OptionsService, geo places.Provider, log *slog.Logger) *page {
	p := &page{
		year:   cascade.NewMemSelect(domain.YearOptions()),
		make:   cascade.NewMemSelect(domain.OptionList{}.WithPlaceholder(domain.MakeLabel)),
		model:  cascade.NewMemSelect(domain.OptionList{}.WithPlaceholder(domain.ModelLabel)),
		input:  location.NewMemField(""),
		widget: places.NewWidget(geo, log),
		log:    log,
	}
	p.ctrl = cascade.New(cascade.Selects{Year: p.year, Make: p.make, Model: p.model}, nil, svc, log)
	gate := location.NewGate(location.Fields{
		Input:     p.input,
		PlaceName: location.NewMemField(""),
		LatLng:    location.NewMemField(""),
	}, p.widget, location.AlertFunc(p.alert), log)
	p.form = form.New(p.ctrl, gate, form.WithLogger(log))
	return p
}

func (p *page) alert(msg string) {
	p.mu.Lock()
	p.alerts = append(p.alerts, msg)
	p.mu.Unlock()
	p.log.Warn("alert", "message", msg)
}

func (p *page) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

// run plays s against the page and submits.
func (p *page) run(ctx context.Context, s Script) (form.Submission, error) {
	if err := p.form.Load(ctx); err != nil {
		return form.Submission{}, err
	}

	steps := []struct {
		field domain.FieldName
		sel   *cascade.MemSelect
		label string
	}{
		{domain.FieldYear, p.year, s.Year},
		{domain.FieldMake, p.make, s.Make},
		{domain.FieldModel, p.model, s.Model},
	}
	for _, st := range steps {
		if err := p.choose(ctx, st.field, st.sel, st.label); err != nil {
			return form.Submission{}, err
		}
	}

	found, err := p.widget.Type(ctx, s.Location)
	if err != nil {
		return form.Submission{}, fmt.Errorf("search location: %w", err)
	}
	p.log.Info("location suggestions", "query", s.Location, "count", len(found))
	if s.Pick >= 0 {
		if err := p.widget.Choose(s.Pick); err != nil {
			return form.Submission{}, fmt.Errorf("choose suggestion %d: %w", s.Pick, err)
		}
	} else if err := p.widget.Enter(); err != nil {
		return form.Submission{}, err
	}

	return p.form.Submit(ctx)
}

// choose selects the option labelled label and waits for the cascade to
// settle. The model has no dependents, so its change is not waited on.
func (p *page) choose(ctx context.Context, field domain.FieldName, sel *cascade.MemSelect, label string) error {
	opt, ok := findLabel(sel.Options(), label)
	if !ok {
		p.log.Warn("option not offered", "field", field, "want", label, "offered", sel.Options().Labels())
		return domain.NewValidationError(string(field), label, domain.ErrNoSuchOption)
	}
	if err := sel.Choose(opt.Value); err != nil {
		return fmt.Errorf("choose %s: %w", field, err)
	}
	pending, err := p.ctrl.OnChanged(ctx, field)
	if err != nil {
		return err
	}
	if field == domain.FieldModel {
		return nil
	}
	outcome, err := pending.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s options: %w", field, err)
	}
	if outcome != cascade.OutcomeApplied {
		return fmt.Errorf("%s options: %w", field, errNotApplied(outcome))
	}
	return nil
}

type errNotApplied cascade.Outcome

func (e errNotApplied) Error() string { return "response " + cascade.Outcome(e).String() }

func findLabel(l domain.OptionList, label string) (domain.Option, bool) {
	for _, o := range l {
		if o.Label == label {
			return o, true
		}
	}
	return domain.Option{}, false
}

