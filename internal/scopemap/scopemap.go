// Package scopemap holds the mapping from a scope's leading atom to a
// coarse syntax kind. The table is configuration, not algorithm: the
// built-in default covers common TextMate-style atoms and a TOML file
// can override or extend it.
package scopemap

import (
	"os"

	"github.com/BurntSushi/toml"
	"gitlab.com/tozd/go/errors"

	"occlight/internal/occurrence"
	"occlight/internal/scope"
)

// Table resolves leading atoms to kinds. Atoms in the ignored set
// occupy a highlight stack slot but never produce output.
type Table struct {
	kinds   map[scope.Atom]occurrence.Kind
	ignored map[scope.Atom]struct{}
}

// New builds a table from plain string keys, interning them.
func New(kinds map[string]occurrence.Kind, ignored []string) *Table {
	t := &Table{
		kinds:   make(map[scope.Atom]occurrence.Kind, len(kinds)),
		ignored: make(map[scope.Atom]struct{}, len(ignored)),
	}
	for name, kind := range kinds {
		t.kinds[scope.Intern(name)] = kind
	}
	for _, name := range ignored {
		t.ignored[scope.Intern(name)] = struct{}{}
	}
	return t
}

// Default returns the built-in mapping.
func Default() *Table {
	return New(map[string]occurrence.Kind{
		"keyword":     occurrence.KindKeyword,
		"storage":     occurrence.KindKeyword,
		"variable":    occurrence.KindIdentifier,
		"entity":      occurrence.KindIdentifierFunction,
		"support":     occurrence.KindIdentifierType,
		"operator":    occurrence.KindOperator,
		"punctuation": occurrence.KindPunctuationBracket,
		"string":      occurrence.KindStringLiteral,
		"constant":    occurrence.KindNumericLiteral,
		"comment":     occurrence.KindComment,
	}, []string{"source", "text", "meta"})
}

// Kind looks up the kind mapped to an atom.
func (t *Table) Kind(a scope.Atom) (occurrence.Kind, bool) {
	k, ok := t.kinds[a]
	return k, ok
}

// Ignored reports whether the atom is known but intentionally silent.
func (t *Table) Ignored(a scope.Atom) bool {
	_, ok := t.ignored[a]
	return ok
}

type tableFile struct {
	Ignored []string          `toml:"ignored"`
	Kinds   map[string]string `toml:"kinds"`
}

// Load reads a TOML mapping file and overlays it on the default table.
// Entries in the file win over built-ins; the ignored list is additive.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading scope map %q: %w", path, err)
	}

	var file tableFile
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, errors.Errorf("parsing scope map %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("scope map %q: unrecognized keys %v", path, undecoded)
	}

	t := Default()
	for atom, kindName := range file.Kinds {
		kind, ok := occurrence.ParseKind(kindName)
		if !ok {
			return nil, errors.Errorf("scope map %q: unknown kind %q for atom %q", path, kindName, atom)
		}
		t.kinds[scope.Intern(atom)] = kind
	}
	for _, atom := range file.Ignored {
		t.ignored[scope.Intern(atom)] = struct{}{}
	}
	return t, nil
}
