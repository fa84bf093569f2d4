// Package cascade keeps the year → make → model dropdowns consistent with the
// option sets computed by the Options Service.
//
// Every change event snapshots all three dropdowns, asks the Options Service
// for the dependent options and applies the answer asynchronously. Responses
// are numbered, and each dependent list remembers the newest request allowed
// to write it: the make list follows the latest year change, the model list
// the latest year or make change. A response behind the list it would write
// is dropped, so the dropdowns reflect the latest relevant change regardless
// of network reordering. Model changes write nothing and never make another
// response stale. Failures leave the dropdowns untouched and are never retried.
package cascade

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/WessleyAI/whachapay/engine/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrDisabled is returned when a user tries to pick from a disabled select.
var ErrDisabled = errors.New("select is disabled")

// Outcome is what happened to the response of one change event.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeApplied         // dropdowns updated
	OutcomeStale           // a newer request owns the lists; response dropped
	OutcomeEmpty           // service answered "no update"
	OutcomeFailed          // transport or server failure; nothing changed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeApplied:
		return "applied"
	case OutcomeStale:
		return "stale"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller owns the three cascade dropdowns.
type Controller struct {
	mu      sync.Mutex
	sel     Selects
	page    PageMarkers
	options OptionsService
	log     *slog.Logger
	issued  uint64 // sequence number of the latest request

	// Oldest sequence number still allowed to write the make and model lists.
	makeFloor  uint64
	modelFloor uint64
}

// New creates a Controller. A nil page is treated as "no validation errors".
func New(sel Selects, page PageMarkers, options OptionsService, log *slog.Logger) *Controller {
	if page == nil {
		page = StaticMarkers(false)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{sel: sel, page: page, options: options, log: log}
}

// InitSelects runs once at page load. Unless the page is a validation-failure
// re-render, the year is reset to the placeholder: history replay can restore
// a year while make and model come back unpopulated. Enabled state of make
// and model is then derived from whatever values are present.
func (c *Controller) InitSelects() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.page.HasValidationErrors() {
		c.sel.Year.SetValue(domain.Placeholder)
	}

	yearSet := domain.IsSelected(c.sel.Year.Value())
	c.sel.Make.SetEnabled(yearSet)
	c.sel.Model.SetEnabled(yearSet && domain.IsSelected(c.sel.Make.Value()))

	c.log.Debug("cascade initialised",
		"year", c.sel.Year.Value(),
		"make_enabled", c.sel.Make.Enabled(),
		"model_enabled", c.sel.Model.Enabled(),
	)
}

// OnChanged handles a user change of one dropdown. It returns immediately;
// the Options Service round trip completes in the background and its result
// is reported through the returned Pending.
func (c *Controller) OnChanged(ctx context.Context, field domain.FieldName) (*Pending, error) {
	if c.sel.get(field) == nil {
		return nil, domain.NewValidationError("field", string(field), domain.ErrUnknownField)
	}

	c.mu.Lock()
	c.issued++
	seq := c.issued
	switch field {
	case domain.FieldYear:
		c.makeFloor, c.modelFloor = seq, seq
	case domain.FieldMake:
		c.modelFloor = seq
	}
	snap := c.snapshotLocked(field)
	c.disableDependentsLocked(field)
	c.mu.Unlock()

	p := newPending(seq)
	go c.roundTrip(ctx, p, snap)
	return p, nil
}

// Fields returns the current state of the dropdowns, parent first.
func (c *Controller) Fields() []domain.CascadeField {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CascadeField, 0, len(domain.Fields))
	for _, f := range domain.Fields {
		s := c.sel.get(f)
		out = append(out, domain.CascadeField{
			Name:        f,
			Value:       s.Value(),
			DisplayText: s.SelectedText(),
			Enabled:     s.Enabled(),
		})
	}
	return out
}

// Snapshot returns the selection as it would be sent for a change of field.
func (c *Controller) Snapshot(field domain.FieldName) domain.SelectionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(field)
}

// snapshotLocked must hold mu.
func (c *Controller) snapshotLocked(field domain.FieldName) domain.SelectionSnapshot {
	return domain.SelectionSnapshot{
		Year:     c.sel.Year.SelectedText(),
		Make:     c.sel.Make.Value(),
		Model:    c.sel.Model.Value(),
		Selected: field,
	}
}

// disableDependentsLocked applies the rules that never wait for the server:
// a year change invalidates the chosen model, and a placeholder parent
// disables its child. Must hold mu.
func (c *Controller) disableDependentsLocked(field domain.FieldName) {
	switch field {
	case domain.FieldYear:
		c.sel.Model.SetEnabled(false)
		if !domain.IsSelected(c.sel.Year.Value()) {
			c.sel.Make.SetEnabled(false)
		}
	case domain.FieldMake:
		if !domain.IsSelected(c.sel.Make.Value()) {
			c.sel.Model.SetEnabled(false)
		}
	}
}

func (c *Controller) roundTrip(ctx context.Context, p *Pending, snap domain.SelectionSnapshot) {
	ctx, span := otel.Tracer("engine/cascade").Start(ctx, "cascade.options")
	defer span.End()
	span.SetAttributes(
		attribute.String("cascade.selected", string(snap.Selected)),
		attribute.Int64("cascade.seq", int64(p.Seq)),
	)

	upd, err := c.options.Options(ctx, snap)
	outcome := c.apply(p.Seq, snap.Selected, upd, err)

	span.SetAttributes(attribute.String("cascade.outcome", outcome.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	p.finish(outcome, err)
}

func (c *Controller) apply(seq uint64, field domain.FieldName, upd *domain.OptionsUpdate, err error) Outcome {
	if err != nil {
		c.log.Warn("options request failed", "selected", field, "seq", seq, "err", err)
		return OutcomeFailed
	}
	if upd == nil {
		c.log.Debug("options service returned no update", "selected", field, "seq", seq)
		return OutcomeEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.staleLocked(field, seq) {
		c.log.Debug("dropping stale options response", "selected", field, "seq", seq, "latest", c.issued)
		return OutcomeStale
	}

	switch field {
	case domain.FieldYear:
		c.sel.Make.SetEnabled(domain.IsSelected(c.sel.Year.Value()))
		c.sel.Model.SetEnabled(false)
		c.sel.Make.ReplaceOptions(upd.Make)
		c.sel.Model.ReplaceOptions(upd.Model)
		// The make choice behind any in-flight make request is gone now.
		c.modelFloor = c.issued + 1
	case domain.FieldMake:
		c.sel.Model.SetEnabled(c.sel.Make.Enabled() && domain.IsSelected(c.sel.Make.Value()))
		c.sel.Model.ReplaceOptions(upd.Model)
	}
	return OutcomeApplied
}

// staleLocked reports whether a newer request owns the lists a response for
// field would write. Must hold mu.
func (c *Controller) staleLocked(field domain.FieldName, seq uint64) bool {
	switch field {
	case domain.FieldYear:
		return seq < c.makeFloor
	case domain.FieldMake:
		return seq < c.modelFloor
	}
	return false
}

// Pending tracks one change event's round trip.
type Pending struct {
	Seq     uint64
	done    chan struct{}
	outcome Outcome
	err     error
}

func newPending(seq uint64) *Pending {
	return &Pending{Seq: seq, done: make(chan struct{})}
}

func (p *Pending) finish(o Outcome, err error) {
	p.outcome = o
	p.err = err
	close(p.done)
}

// Done is closed once the response has been applied or dropped.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the round trip finishes or ctx is done. The error is the
// Options Service failure for OutcomeFailed, or ctx.Err().
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, p.err
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}
