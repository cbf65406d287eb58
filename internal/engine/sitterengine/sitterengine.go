// Package sitterengine adapts a tree-sitter grammar to the grammar
// engine contract. The source is parsed once up front; the syntax tree
// is walked depth-first and classifiable nodes become push events at
// their start point and pop events at their end point, bucketed per
// row.
package sitterengine

import (
	"bytes"
	"context"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"

	"occlight/internal/engine"
	"occlight/internal/scope"
)

type Engine struct {
	rows [][]engine.Event
	row  int
}

// New parses source with language. name is the lowercase language name
// used for the source.* wrapper scope and for language-specific
// classification contexts.
func New(language *sitter.Language, name string, source []byte) (*Engine, error) {
	if language == nil {
		return nil, errors.New("nil tree-sitter language")
	}
	parser := sitter.NewParser()
	parser.SetLanguage(language)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, errors.Errorf("parsing source: %w", err)
	}
	defer tree.Close()

	e := &Engine{rows: make([][]engine.Event, countLines(source))}
	w := &walker{
		rows:    e.rows,
		src:     source,
		lang:    name,
		wrapper: "source." + name,
		scopes:  make(map[string]scope.Scope),
	}
	w.walk(tree.RootNode(), "", "", 0)
	return e, nil
}

// ParseLine returns the events for the next row. Lines must be fed in
// source order.
func (e *Engine) ParseLine(string) ([]engine.Event, error) {
	if e.row >= len(e.rows) {
		return nil, nil
	}
	events := e.rows[e.row]
	e.row++
	return events, nil
}

type walker struct {
	rows    [][]engine.Event
	src     []byte
	lang    string
	wrapper string
	scopes  map[string]scope.Scope
}

// walk emits a push at node start and a pop at node end for every node
// that classifies to a scope, then recurses. Events land in the rows
// slice in document order because children sit between their parent's
// boundaries.
func (w *walker) walk(n *sitter.Node, parentType, grandType string, depth int) {
	if n == nil {
		return
	}
	name, ok := w.scopeName(n, parentType, grandType, depth)
	if ok {
		p := n.StartPoint()
		w.add(int(p.Row), engine.Event{Offset: int(p.Column), Op: engine.Push{Scope: w.intern(name)}})
	}

	nodeType := strings.ToLower(n.Type())
	for i := 0; i < int(n.ChildCount()); i++ {
		w.walk(n.Child(i), nodeType, parentType, depth+1)
	}

	if ok {
		p := n.EndPoint()
		w.add(int(p.Row), engine.Event{Offset: int(p.Column), Op: engine.Pop{Count: 1}})
	}
}

func (w *walker) add(row int, ev engine.Event) {
	// A pop landing one past the last row (a node closed by the final
	// newline) is dropped; the per-line flush closes the span instead.
	if row < len(w.rows) {
		w.rows[row] = append(w.rows[row], ev)
	}
}

func (w *walker) intern(name string) scope.Scope {
	sc, ok := w.scopes[name]
	if !ok {
		sc = scope.Parse(name)
		w.scopes[name] = sc
	}
	return sc
}

// scopeName classifies a node. Comment, string and number containers
// classify even with children so nested grammars keep their outer
// scope; everything else only classifies at the leaves.
func (w *walker) scopeName(n *sitter.Node, parentType, grandType string, depth int) (string, bool) {
	if depth == 0 {
		return w.wrapper, true
	}
	nodeType := strings.ToLower(n.Type())

	switch {
	case nodeType == "error" || strings.Contains(nodeType, "invalid"):
		return "invalid.illegal", true
	case strings.Contains(nodeType, "comment"):
		return "comment.line", true
	case strings.Contains(nodeType, "escape"):
		return "constant.character.escape", true
	case strings.Contains(nodeType, "string") || strings.Contains(nodeType, "char") || strings.Contains(nodeType, "heredoc"):
		if parentType == "pair" || grandType == "pair" {
			return "support.type", true
		}
		return "string.quoted", true
	case strings.Contains(nodeType, "number") || strings.Contains(nodeType, "integer") ||
		strings.Contains(nodeType, "float") || strings.Contains(nodeType, "numeric"):
		return "constant.numeric", true
	}

	if n.ChildCount() > 0 {
		return "", false
	}

	lexeme := strings.ToLower(strings.TrimSpace(string(w.src[n.StartByte():n.EndByte()])))
	switch {
	case lexeme == "true" || lexeme == "false" || lexeme == "null" || lexeme == "nil" || lexeme == "none":
		return "constant.language", true
	case strings.HasSuffix(nodeType, "keyword") || keywordSet[lexeme]:
		return "keyword.control", true
	case strings.Contains(nodeType, "type_identifier") || strings.Contains(nodeType, "primitive_type") ||
		strings.Contains(nodeType, "predefined_type"):
		return "support.type", true
	case isIdentifierNode(nodeType):
		if w.isTypeContext(parentType, grandType) {
			return "support.type", true
		}
		if w.isFunctionContext(parentType, grandType) {
			return "entity.name.function", true
		}
		if isLikelyConstant(lexeme) {
			return "constant.other", true
		}
		return "variable.other", true
	}

	if !n.IsNamed() {
		switch {
		case bracketSet[lexeme]:
			return "punctuation.bracket", true
		case delimiterSet[lexeme]:
			return "punctuation.delimiter", true
		case quoteSet[lexeme]:
			return "punctuation.definition.string", true
		case operatorSet[lexeme] || looksLikeOperator(lexeme):
			return "operator", true
		}
	}
	return "", false
}

func isIdentifierNode(nodeType string) bool {
	return nodeType == "identifier" || nodeType == "property_identifier" ||
		strings.HasSuffix(nodeType, "identifier") || strings.HasSuffix(nodeType, "name")
}

func (w *walker) isFunctionContext(parentType, grandType string) bool {
	if strings.Contains(parentType, "function") || strings.Contains(parentType, "method") || strings.Contains(parentType, "call") ||
		strings.Contains(grandType, "function") || strings.Contains(grandType, "method") || strings.Contains(grandType, "call") {
		return true
	}
	if set, ok := functionContextByLang[w.lang]; ok && (set[parentType] || set[grandType]) {
		return true
	}
	return false
}

func (w *walker) isTypeContext(parentType, grandType string) bool {
	for _, t := range [...]string{parentType, grandType} {
		if strings.Contains(t, "type") || strings.Contains(t, "class") || strings.Contains(t, "struct") ||
			strings.Contains(t, "interface") || strings.Contains(t, "trait") {
			return true
		}
	}
	if set, ok := typeContextByLang[w.lang]; ok && (set[parentType] || set[grandType]) {
		return true
	}
	return false
}

func isLikelyConstant(s string) bool {
	if len(s) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case r == '_':
		case unicode.IsDigit(r):
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		default:
			return false
		}
	}
	return hasLetter
}

func looksLikeOperator(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '^', '~', ':', '?':
		default:
			return false
		}
	}
	return true
}

func countLines(source []byte) int {
	n := bytes.Count(source, []byte{'\n'})
	if len(source) > 0 && source[len(source)-1] != '\n' {
		n++
	}
	return n
}

var functionContextByLang = map[string]map[string]bool{
	"go": {
		"function_declaration": true,
		"method_declaration":   true,
		"call_expression":      true,
		"selector_expression":  true,
	},
	"rust": {
		"function_item":    true,
		"call_expression":  true,
		"field_expression": true,
	},
	"javascript": {
		"function_declaration": true,
		"method_definition":    true,
		"call_expression":      true,
		"member_expression":    true,
	},
	"typescript": {
		"function_declaration": true,
		"method_definition":    true,
		"call_expression":      true,
		"member_expression":    true,
	},
	"tsx": {
		"function_declaration": true,
		"method_definition":    true,
		"call_expression":      true,
		"member_expression":    true,
	},
	"python": {
		"function_definition": true,
		"call":                true,
	},
	"c": {
		"function_definition": true,
		"call_expression":     true,
	},
	"cpp": {
		"function_definition": true,
		"call_expression":     true,
	},
}

var typeContextByLang = map[string]map[string]bool{
	"go": {
		"type_spec":             true,
		"type_declaration":      true,
		"parameter_declaration": true,
		"var_declaration":       true,
	},
	"rust": {
		"struct_item": true,
		"enum_item":   true,
		"trait_item":  true,
		"type_item":   true,
	},
	"typescript": {
		"interface_declaration":  true,
		"type_alias_declaration": true,
		"type_annotation":        true,
		"class_declaration":      true,
	},
	"python": {
		"class_definition": true,
	},
}

var keywordSet = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "case": true,
	"catch": true, "class": true, "const": true, "continue": true, "def": true,
	"default": true, "defer": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "fallthrough": true, "finally": true,
	"fn": true, "for": true, "from": true, "func": true, "function": true,
	"go": true, "if": true, "impl": true, "import": true, "in": true,
	"include": true, "interface": true, "let": true, "loop": true, "match": true,
	"mod": true, "module": true, "mut": true, "namespace": true, "new": true,
	"package": true, "pub": true, "raise": true, "range": true, "return": true,
	"struct": true, "switch": true, "trait": true, "try": true, "type": true,
	"use": true, "var": true, "while": true, "with": true, "yield": true,
}

var operatorSet = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"=": true, "==": true, "!=": true, "<": true, "<=": true,
	">": true, ">=": true, "&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "~": true, "->": true,
	"=>": true, "::": true, ":=": true, "?": true,
}

var bracketSet = map[string]bool{
	"(": true, ")": true, "[": true, "]": true, "{": true, "}": true,
}

var delimiterSet = map[string]bool{
	",": true, ";": true, ".": true, ":": true,
}

var quoteSet = map[string]bool{
	`"`: true, "'": true, "`": true, `"""`: true, "'''": true,
}
