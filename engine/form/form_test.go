package form

import (
	"context"
	"errors"
	"testing"

	"github.com/WessleyAI/whachapay/engine/cascade"
	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/engine/location"
)

type pickAuto struct{ onPick func(domain.PlaceResult) }

func (a *pickAuto) Attach(_ location.Field, _ domain.AutocompleteOptions, onPick func(domain.PlaceResult)) error {
	a.onPick = onPick
	return nil
}

type vetoFunc func() bool

func (f vetoFunc) OnSubmit() bool { return f() }

type harness struct {
	year, mk, model *cascade.MemSelect
	input           *location.MemField
	auto            *pickAuto
	form            *Form
	accepted        []Submission
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		year:  cascade.NewMemSelect(domain.YearOptions()),
		mk:    cascade.NewMemSelect(domain.OptionList{{Value: "1", Label: "Toyota"}}.WithPlaceholder(domain.MakeLabel)),
		model: cascade.NewMemSelect(domain.OptionList{{Value: "2", Label: "Corolla"}}.WithPlaceholder(domain.ModelLabel)),
		input: location.NewMemField(""),
		auto:  &pickAuto{},
	}
	h.year.SetValue("2020")
	c := cascade.New(cascade.Selects{Year: h.year, Make: h.mk, Model: h.model}, cascade.StaticMarkers(true),
		cascade.OptionsFunc(func(context.Context, domain.SelectionSnapshot) (*domain.OptionsUpdate, error) { return nil, nil }), nil)
	g := location.NewGate(location.Fields{Input: h.input, PlaceName: location.NewMemField(""), LatLng: location.NewMemField("")}, h.auto, nil, nil)

	record := OnAccept(func(_ context.Context, s Submission) error {
		h.accepted = append(h.accepted, s)
		return nil
	})
	opts = append([]Option{record}, opts...)
	h.form = New(c, g, opts...)
	if err := h.form.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return h
}

func TestSubmit_BlockedWithoutPlace(t *testing.T) {
	h := newHarness(t)
	h.input.SetValue("Honolulu, HI")

	if _, err := h.form.Submit(context.Background()); !errors.Is(err, ErrSubmissionVetoed) {
		t.Fatalf("expected ErrSubmissionVetoed, got %v", err)
	}
	if len(h.accepted) != 0 {
		t.Fatal("vetoed submission must not reach the accept callback")
	}
}

func TestSubmit_Accepted(t *testing.T) {
	h := newHarness(t)
	_ = h.mk.Choose("1")
	h.auto.onPick(domain.PlaceResult{Name: "Honolulu", Geometry: &domain.Geometry{Location: domain.LatLng{Lat: 21.3, Lng: -157.8}}})
	h.input.SetValue("Honolulu, HI")

	s, err := h.form.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Year != "2020" || s.Make != "1" || s.Model != domain.Placeholder {
		t.Fatalf("unexpected vehicle values %+v", s)
	}
	v := s.Values()
	if v.Get("place_name") != "Honolulu" || v.Get("lat_lng") != "21.3,-157.8" || v.Get("location") != "Honolulu, HI" {
		t.Fatalf("unexpected form values %v", v)
	}
	if len(h.accepted) != 1 {
		t.Fatalf("expected one accepted submission, got %d", len(h.accepted))
	}
}

func TestSubmit_ExtraVetoer(t *testing.T) {
	calls := 0
	h := newHarness(t, WithVetoer(vetoFunc(func() bool { calls++; return false })))
	h.auto.onPick(domain.PlaceResult{Name: "Hilo", Geometry: &domain.Geometry{}})
	h.input.SetValue("Hilo")

	if _, err := h.form.Submit(context.Background()); !errors.Is(err, ErrSubmissionVetoed) {
		t.Fatalf("expected veto, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected extra vetoer consulted once, got %d", calls)
	}
}

func TestSubmit_AcceptError(t *testing.T) {
	h := newHarness(t, OnAccept(func(context.Context, Submission) error { return errors.New("listing api down") }))
	h.auto.onPick(domain.PlaceResult{Name: "Hilo", Geometry: &domain.Geometry{}})
	h.input.SetValue("Hilo")

	if _, err := h.form.Submit(context.Background()); err == nil || errors.Is(err, ErrSubmissionVetoed) {
		t.Fatalf("expected accept error, got %v", err)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.form.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
