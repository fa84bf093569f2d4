package location

import "github.com/WessleyAI/whachapay/engine/domain"

// Field is a text input, visible or hidden.
type Field interface {
	Value() string
	SetValue(string)
}

// Placeholderer is implemented by inputs that can show placeholder text.
type Placeholderer interface {
	SetPlaceholder(string)
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

// Autocomplete binds a suggestion widget to an input. onPick is called every
// time the user picks a suggestion or confirms unmatched text.
type Autocomplete interface {
	Attach(input Field, opts domain.AutocompleteOptions, onPick func(domain.PlaceResult)) error
}
