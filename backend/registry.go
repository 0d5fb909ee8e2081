package backend

import (
	"errors"
	"sort"
	"sync"
)

// CreateFunc constructs a backend instance for the given application
// name and version.
type CreateFunc func(appName string, appVersion uint32) (Instance, error)

// Entry describes a registered backend.
type Entry struct {
	// Name is the unique backend identifier.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: GPU backends
	//   - 10: pure software backends
	Priority int

	// Available reports whether the backend can run on this system.
	// Called lazily on every selection; implementations should cache
	// expensive probes themselves.
	Available func() bool

	// Create constructs an instance.
	Create CreateFunc
}

// ErrNotRegistered is returned when a backend is requested by a name
// nobody registered.
var ErrNotRegistered = errors.New("hal: backend not registered")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Entry)
)

// Register registers a backend. It is typically called from init
// functions in backend packages; registering the same name again
// replaces the previous entry.
func Register(e Entry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[e.Name] = e
}

// Unregister removes a backend from the registry. Useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// Registered returns the names of all registered backends, sorted by
// descending priority.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	entries := make([]Entry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the entry registered under name.
func Lookup(name string) (Entry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	return e, ok
}

// Select returns the highest-priority available backend, or
// ErrUnsupportedBackend when nothing is registered or available.
func Select() (Entry, error) {
	for _, name := range Registered() {
		e, ok := Lookup(name)
		if !ok {
			continue
		}
		if e.Available != nil && !e.Available() {
			continue
		}
		return e, nil
	}
	return Entry{}, ErrUnsupportedBackend
}
