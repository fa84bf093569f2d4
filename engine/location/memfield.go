package location

import "sync"

// MemField is an in-memory text input.
type MemField struct {
	mu          sync.Mutex
	value       string
	placeholder string
}

// NewMemField returns a field holding v.
func NewMemField(v string) *MemField { return &MemField{value: v} }

func (f *MemField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *MemField) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

func (f *MemField) SetPlaceholder(p string) {
	f.mu.Lock()
	f.placeholder = p
	f.mu.Unlock()
}

// Placeholder returns the placeholder text last set.
func (f *MemField) Placeholder() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.placeholder
}
