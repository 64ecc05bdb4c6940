package journal

import (
	"fmt"
	"sort"
	"sync"
)

// Backend is a build-time plugin that opens a Journal from string settings.
//
// Backends register themselves in init(); a binary enables one by importing
// its package (often as a blank import).
type Backend struct {
	Name        string
	Description string
	// Open constructs the journal. Keys in settings are backend-specific.
	// The returned close function may be nil.
	Open func(settings map[string]string) (Journal, func() error, error)
}

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{}
)

func init() {
	MustRegister(Backend{
		Name:        "memory",
		Description: "In-process journal, discarded on exit",
		Open: func(map[string]string) (Journal, func() error, error) {
			return NewMemory(), nil, nil
		},
	})
}

func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("journal: backend name is required")
	}
	if b.Open == nil {
		return fmt.Errorf("journal: backend %q missing Open", b.Name)
	}
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("journal: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// Backends returns the registered backends sorted by name.
func Backends() []Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Open opens the named backend.
func Open(name string, settings map[string]string) (Journal, func() error, error) {
	backendsMu.RLock()
	b, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("journal: unknown backend %q", name)
	}
	return b.Open(settings)
}
