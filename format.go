package dataspec

import (
	"sync"
)

// StrFormat pairs the validator for a named string format with an optional
// conformer that rewrites matching strings into a canonical value.
type StrFormat struct {
	Validate  ValidatorFn
	Conformer Conformer
}

// FormatRegistry holds named string formats. It is safe for concurrent use;
// registration after startup is allowed.
type FormatRegistry struct {
	mu      sync.RWMutex
	formats map[string]StrFormat
}

func NewFormatRegistry() *FormatRegistry {
	return &FormatRegistry{formats: map[string]StrFormat{}}
}

// Register installs or replaces the format under name.
func (r *FormatRegistry) Register(name string, f StrFormat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[name] = f
}

// Lookup returns the format registered under name.
func (r *FormatRegistry) Lookup(name string) (StrFormat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[name]
	return f, ok
}

// Names returns the registered format names, in no particular order.
func (r *FormatRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	return names
}
