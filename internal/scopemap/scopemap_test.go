package scopemap

import (
	"os"
	"path/filepath"
	"testing"

	"occlight/internal/occurrence"
	"occlight/internal/scope"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	kind, ok := table.Kind(scope.Intern("keyword"))
	if !ok || kind != occurrence.KindKeyword {
		t.Fatalf("keyword -> %v ok=%v, want KindKeyword", kind, ok)
	}
	kind, ok = table.Kind(scope.Intern("string"))
	if !ok || kind != occurrence.KindStringLiteral {
		t.Fatalf("string -> %v ok=%v, want KindStringLiteral", kind, ok)
	}
	if !table.Ignored(scope.Intern("source")) {
		t.Fatal("source should be ignored")
	}
	if _, ok := table.Kind(scope.Intern("no-such-atom")); ok {
		t.Fatal("unknown atom resolved to a kind")
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.toml")
	content := `
ignored = ["markup"]

[kinds]
keyword = "identifier"
invalid = "comment"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// File entry overrides the built-in.
	kind, ok := table.Kind(scope.Intern("keyword"))
	if !ok || kind != occurrence.KindIdentifier {
		t.Fatalf("keyword -> %v ok=%v, want KindIdentifier", kind, ok)
	}
	// New atom from the file.
	kind, ok = table.Kind(scope.Intern("invalid"))
	if !ok || kind != occurrence.KindComment {
		t.Fatalf("invalid -> %v ok=%v, want KindComment", kind, ok)
	}
	// Ignored list is additive.
	if !table.Ignored(scope.Intern("markup")) || !table.Ignored(scope.Intern("source")) {
		t.Fatal("ignored set lost entries")
	}
	// Built-ins untouched by the overlay survive.
	kind, ok = table.Kind(scope.Intern("punctuation"))
	if !ok || kind != occurrence.KindPunctuationBracket {
		t.Fatalf("punctuation -> %v ok=%v, want KindPunctuationBracket", kind, ok)
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.toml")
	if err := os.WriteFile(path, []byte("[kinds]\nkeyword = \"wibble\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an unknown kind name")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.toml")
	if err := os.WriteFile(path, []byte("kind = \"typo\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted unrecognized keys")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}
