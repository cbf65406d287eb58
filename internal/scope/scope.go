package scope

import (
	"strings"
	"sync"
)

// Atom is one dot-delimited component of a scope name, interned in a
// process-wide registry so that lookups during highlighting compare
// integers instead of strings.
type Atom uint32

// Scope is a hierarchical classification such as keyword.control.go,
// stored as its interned atoms in order.
type Scope []Atom

var registry = struct {
	mu    sync.RWMutex
	names []string
	ids   map[string]Atom
}{
	ids: make(map[string]Atom),
}

// Intern returns the atom for name, registering it on first use. The
// registry is shared process-wide; the write lock is only taken on a
// miss and held just long enough to insert.
func Intern(name string) Atom {
	registry.mu.RLock()
	id, ok := registry.ids[name]
	registry.mu.RUnlock()
	if ok {
		return id
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if id, ok := registry.ids[name]; ok {
		return id
	}
	id = Atom(len(registry.names))
	registry.names = append(registry.names, name)
	registry.ids[name] = id
	return id
}

func (a Atom) String() string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if int(a) >= len(registry.names) {
		return ""
	}
	return registry.names[a]
}

// Parse splits a dotted scope name into interned atoms.
func Parse(name string) Scope {
	parts := strings.Split(name, ".")
	s := make(Scope, 0, len(parts))
	for _, p := range parts {
		s = append(s, Intern(p))
	}
	return s
}

// Root returns the leading atom, the one coarse category lookup keys on.
func (s Scope) Root() Atom {
	if len(s) == 0 {
		return Intern("")
	}
	return s[0]
}

func (s Scope) String() string {
	parts := make([]string, 0, len(s))
	for _, a := range s {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ".")
}
