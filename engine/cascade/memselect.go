package cascade

import (
	"sync"

	"github.com/WessleyAI/whachapay/engine/domain"
)

// MemSelect is an in-memory dropdown. It behaves like a browser select:
// replacing the options selects the first one, and setting a value that no
// option carries leaves nothing selected.
type MemSelect struct {
	mu       sync.Mutex
	options  domain.OptionList
	selected int
	enabled  bool
}

// NewMemSelect returns an enabled select holding opts with the first option
// selected.
func NewMemSelect(opts domain.OptionList) *MemSelect {
	s := &MemSelect{enabled: true}
	s.ReplaceOptions(opts)
	return s
}

func (s *MemSelect) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected < 0 {
		return ""
	}
	return s.options[s.selected].Value
}

func (s *MemSelect) SelectedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected < 0 {
		return ""
	}
	return s.options[s.selected].Label
}

func (s *MemSelect) SetValue(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.indexOf(v)
}

// Choose selects v the way a user would. Unlike SetValue it refuses values
// that are not offered or a disabled select.
func (s *MemSelect) Choose(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return domain.NewValidationError("select", v, ErrDisabled)
	}
	i := s.indexOf(v)
	if i < 0 {
		return domain.NewValidationError("select", v, domain.ErrNoSuchOption)
	}
	s.selected = i
	return nil
}

func (s *MemSelect) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *MemSelect) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *MemSelect) ReplaceOptions(opts domain.OptionList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append(domain.OptionList(nil), opts...)
	s.selected = -1
	if len(s.options) > 0 {
		s.selected = 0
	}
}

// Options returns a copy of the current option list.
func (s *MemSelect) Options() domain.OptionList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(domain.OptionList(nil), s.options...)
}

// indexOf must hold mu.
func (s *MemSelect) indexOf(v string) int {
	for i, o := range s.options {
		if o.Value == v {
			return i
		}
	}
	return -1
}
