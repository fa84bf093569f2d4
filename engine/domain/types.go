// Package domain defines the vocabulary shared by the listing search form:
// cascade fields and their options, selection snapshots, resolved places and
// the vehicle catalog seed data.
package domain

import (
	"net/url"
	"strings"
)

// FieldName identifies one level of the year → make → model cascade.
type FieldName string

const (
	FieldYear  FieldName = "year"
	FieldMake  FieldName = "make"
	FieldModel FieldName = "model"
)

// Fields lists the cascade levels parent-first.
var Fields = []FieldName{FieldYear, FieldMake, FieldModel}

// Placeholder is the value of the "nothing selected" option of every dropdown.
const Placeholder = "0"

// Placeholder labels rendered as the first option of each dropdown.
const (
	YearLabel  = "Year"
	MakeLabel  = "Make"
	ModelLabel = "Model"
)

// ParseField returns the FieldName for s.
func ParseField(s string) (FieldName, error) {
	switch f := FieldName(strings.TrimSpace(s)); f {
	case FieldYear, FieldMake, FieldModel:
		return f, nil
	}
	return "", NewValidationError("selected", s, ErrUnknownField)
}

// Option is one entry of a dropdown: a coded value and its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionList is an ordered set of dropdown options.
type OptionList []Option

// WithPlaceholder returns a copy of l with the placeholder option prepended.
func (l OptionList) WithPlaceholder(label string) OptionList {
	out := make(OptionList, 0, len(l)+1)
	out = append(out, Option{Value: Placeholder, Label: label})
	return append(out, l...)
}

// Contains reports whether an option with the given value exists.
func (l OptionList) Contains(value string) bool {
	_, ok := l.Find(value)
	return ok
}

// Find returns the option carrying value.
func (l OptionList) Find(value string) (Option, bool) {
	for _, o := range l {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Labels returns the display labels in order.
func (l OptionList) Labels() []string {
	out := make([]string, len(l))
	for i, o := range l {
		out[i] = o.Label
	}
	return out
}

// CascadeField is the observable state of one dropdown.
type CascadeField struct {
	Name        FieldName `json:"name"`
	Value       string    `json:"value"`
	DisplayText string    `json:"display_text"`
	Enabled     bool      `json:"enabled"`
}

// CheckChain verifies the dependency chain over parent-first fields: a field
// may only be enabled while its parent is enabled and holds a real choice.
func CheckChain(fields []CascadeField) error {
	for i := 1; i < len(fields); i++ {
		parent, child := fields[i-1], fields[i]
		if !child.Enabled {
			continue
		}
		if !parent.Enabled || !IsSelected(parent.Value) {
			return NewValidationError(string(child.Name), child.Value, ErrBrokenChain)
		}
	}
	return nil
}

// SelectionSnapshot is the state of all three dropdowns at the moment one of
// them changed. Year carries the selected display text; make and model carry
// their coded values.
type SelectionSnapshot struct {
	Year     string
	Make     string
	Model    string
	Selected FieldName
}

// Get returns the submitted representation of field f.
func (s SelectionSnapshot) Get(f FieldName) string {
	switch f {
	case FieldYear:
		return s.Year
	case FieldMake:
		return s.Make
	case FieldModel:
		return s.Model
	}
	return ""
}

// Query encodes the snapshot as Options Service query parameters.
func (s SelectionSnapshot) Query() url.Values {
	q := url.Values{}
	for _, f := range Fields {
		q.Set(string(f), s.Get(f))
	}
	q.Set("selected", string(s.Selected))
	return q
}

// SnapshotFromQuery is the inverse of Query. Missing parameters stay empty.
func SnapshotFromQuery(q url.Values) (SelectionSnapshot, error) {
	sel, err := ParseField(q.Get("selected"))
	if err != nil {
		return SelectionSnapshot{}, err
	}
	return SelectionSnapshot{
		Year:     q.Get(string(FieldYear)),
		Make:     q.Get(string(FieldMake)),
		Model:    q.Get(string(FieldModel)),
		Selected: sel,
	}, nil
}

// OptionsUpdate carries the replacement option lists computed by the Options
// Service. A nil *OptionsUpdate means "no update".
type OptionsUpdate struct {
	Make  OptionList `json:"make"`
	Model OptionList `json:"model"`
}

// Vehicle is a fully selected cascade, resolved to codes.
type Vehicle struct {
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}
