package places

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/engine/location"
)

var (
	ErrNotAttached      = errors.New("autocomplete widget not attached")
	ErrAlreadyAttached  = errors.New("autocomplete widget already attached")
	ErrNoSuchSuggestion = errors.New("no such suggestion")
)

// Widget is a headless autocomplete bound to one input. Typing fetches
// suggestions from a Provider; choosing one writes its label into the input
// and reports the place with geometry. Confirming text without choosing
// reports a name-only place.
type Widget struct {
	provider Provider
	log      *slog.Logger

	mu          sync.Mutex
	input       location.Field
	opts        domain.AutocompleteOptions
	onPick      func(domain.PlaceResult)
	suggestions []Suggestion
	typed       uint64
}

// NewWidget creates a Widget over p.
func NewWidget(p Provider, log *slog.Logger) *Widget {
	if log == nil {
		log = slog.Default()
	}
	return &Widget{provider: p, log: log}
}

// Attach implements location.Autocomplete.
func (w *Widget) Attach(input location.Field, opts domain.AutocompleteOptions, onPick func(domain.PlaceResult)) error {
	if input == nil || onPick == nil {
		return errors.New("places: attach needs an input and a pick handler")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.input != nil {
		return ErrAlreadyAttached
	}
	w.input, w.opts, w.onPick = input, opts, onPick
	return nil
}

// Type replaces the input text and refreshes the suggestion list. A
// response for text that has since been retyped is discarded.
func (w *Widget) Type(ctx context.Context, text string) ([]Suggestion, error) {
	w.mu.Lock()
	if w.input == nil {
		w.mu.Unlock()
		return nil, ErrNotAttached
	}
	w.input.SetValue(text)
	w.typed++
	seq, opts := w.typed, w.opts
	w.mu.Unlock()

	found, err := w.provider.Search(ctx, text, opts)
	if err != nil {
		w.log.Warn("place search failed", "query", text, "err", err)
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.typed {
		return nil, nil
	}
	w.suggestions = found
	return append([]Suggestion(nil), found...), nil
}

// Suggestions returns the list currently shown.
func (w *Widget) Suggestions() []Suggestion {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Suggestion(nil), w.suggestions...)
}

// Choose picks suggestion i.
func (w *Widget) Choose(i int) error {
	w.mu.Lock()
	if w.input == nil {
		w.mu.Unlock()
		return ErrNotAttached
	}
	if i < 0 || i >= len(w.suggestions) {
		w.mu.Unlock()
		return ErrNoSuchSuggestion
	}
	s := w.suggestions[i]
	w.input.SetValue(s.Label)
	w.suggestions = nil
	onPick := w.onPick
	w.mu.Unlock()

	onPick(s.Place())
	return nil
}

// Enter confirms the current text without choosing a suggestion.
func (w *Widget) Enter() error {
	w.mu.Lock()
	if w.input == nil {
		w.mu.Unlock()
		return ErrNotAttached
	}
	name := w.input.Value()
	w.suggestions = nil
	onPick := w.onPick
	w.mu.Unlock()

	onPick(domain.PlaceResult{Name: name})
	return nil
}
