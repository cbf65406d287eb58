// Package lang maps file paths to language identifiers and language
// identifiers to the grammars that can tokenise them.
package lang

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	sitter "github.com/smacker/go-tree-sitter"
	bashlang "github.com/smacker/go-tree-sitter/bash"
	clang "github.com/smacker/go-tree-sitter/c"
	cpplang "github.com/smacker/go-tree-sitter/cpp"
	golang "github.com/smacker/go-tree-sitter/golang"
	python "github.com/smacker/go-tree-sitter/python"
	rust "github.com/smacker/go-tree-sitter/rust"
	toml "github.com/smacker/go-tree-sitter/toml"
	tsxlang "github.com/smacker/go-tree-sitter/typescript/tsx"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
	yaml "github.com/smacker/go-tree-sitter/yaml"
	tszig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tsjson "github.com/tree-sitter/tree-sitter-json/bindings/go"
)

type ID string

const (
	Plain      ID = "plain"
	Go         ID = "go"
	Rust       ID = "rust"
	Python     ID = "python"
	JavaScript ID = "javascript"
	TypeScript ID = "typescript"
	TSX        ID = "tsx"
	YAML       ID = "yaml"
	TOML       ID = "toml"
	JSON       ID = "json"
	Bash       ID = "bash"
	C          ID = "c"
	CPP        ID = "cpp"
	Zig        ID = "zig"
)

var extMap = map[string]ID{
	".go":    Go,
	".rs":    Rust,
	".py":    Python,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TSX,
	".yaml":  YAML,
	".yml":   YAML,
	".toml":  TOML,
	".json":  JSON,
	".jsonc": JSON,
	".json5": JSON,
	".sh":    Bash,
	".bash":  Bash,
	".zsh":   Bash,
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".cxx":   CPP,
	".hpp":   CPP,
	".hh":    CPP,
	".zig":   Zig,
}

var fileMap = map[string]ID{
	".bashrc":           Bash,
	".zshrc":            Bash,
	"Cargo.toml":        TOML,
	"package-lock.json": JSON,
	"go.mod":            Go,
}

// Detect picks a language from the file name alone.
func Detect(path string) ID {
	base := filepath.Base(path)
	if id, ok := fileMap[base]; ok {
		return id
	}
	ext := strings.ToLower(filepath.Ext(base))
	if id, ok := extMap[ext]; ok {
		return id
	}
	return Plain
}

// DetectWithShebang falls back to the shebang line for extensionless
// scripts.
func DetectWithShebang(path string, firstLine string) ID {
	if id := Detect(path); id != Plain {
		return id
	}

	if !strings.HasPrefix(firstLine, "#!") {
		return Plain
	}
	lower := strings.ToLower(firstLine)
	switch {
	case strings.Contains(lower, "python"):
		return Python
	case strings.Contains(lower, "bash") || strings.Contains(lower, "zsh") || strings.Contains(lower, "sh"):
		return Bash
	case strings.Contains(lower, "node"):
		return JavaScript
	default:
		return Plain
	}
}

// Parse validates a user-supplied language name.
func Parse(name string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range IDs() {
		if id == known {
			return id, true
		}
	}
	return Plain, false
}

// IDs lists every supported identifier, sorted.
func IDs() []ID {
	ids := []ID{Plain, Go, Rust, Python, JavaScript, TypeScript, TSX, YAML, TOML, JSON, Bash, C, CPP, Zig}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Suggest proposes the closest known identifier for a misspelled one.
func Suggest(input string) (ID, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	best, bestDist := Plain, 3
	for _, id := range IDs() {
		if d := levenshtein.ComputeDistance(input, string(id)); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist < 3
}

// ChromaLexer returns the chroma lexer for id, or nil when only the
// plain-text fallback applies.
func ChromaLexer(id ID) chroma.Lexer {
	if id == Plain {
		return nil
	}
	return lexers.Get(string(id))
}

var sitterLangs = map[ID]*sitter.Language{
	Go:         golang.GetLanguage(),
	Rust:       rust.GetLanguage(),
	Python:     python.GetLanguage(),
	TypeScript: tslang.GetLanguage(),
	TSX:        tsxlang.GetLanguage(),
	YAML:       yaml.GetLanguage(),
	TOML:       toml.GetLanguage(),
	Bash:       bashlang.GetLanguage(),
	C:          clang.GetLanguage(),
	CPP:        cpplang.GetLanguage(),
	JSON:       sitter.NewLanguage(tsjson.Language()),
	Zig:        sitter.NewLanguage(tszig.Language()),
}

// SitterLanguage returns the tree-sitter grammar for id. ok is false
// for languages without a compiled grammar.
func SitterLanguage(id ID) (*sitter.Language, bool) {
	l, ok := sitterLangs[id]
	return l, ok
}
