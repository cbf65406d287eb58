// Package chromaengine adapts a chroma lexer to the grammar engine
// contract. The whole source is tokenised once up front; each token is
// split at line boundaries and becomes a balanced push/pop event pair
// per line segment.
package chromaengine

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"gitlab.com/tozd/go/errors"

	"occlight/internal/engine"
	"occlight/internal/scope"
)

type Engine struct {
	rows [][]engine.Event
	row  int
}

// New tokenises source with lexer. A nil lexer falls back to chroma's
// plain-text lexer.
func New(lexer chroma.Lexer, source string) (*Engine, error) {
	if lexer == nil {
		lexer = lexers.Fallback
	}
	name := strings.ToLower(lexer.Config().Name)
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, errors.Errorf("tokenising source: %w", err)
	}

	e := &Engine{rows: make([][]engine.Event, countLines(source))}
	if len(e.rows) > 0 {
		// Top-level wrapper scope, like a grammar's source.* root. Its
		// atom is in the default ignored set; it stays open for the
		// whole document.
		e.add(0, engine.Event{Offset: 0, Op: engine.Push{Scope: scope.Parse("source." + name)}})
	}

	scopes := make(map[string]scope.Scope)
	row, col := 0, 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		scopeName, emit := scopeFor(tok.Type)
		value := tok.Value
		for value != "" {
			seg := value
			newline := false
			if i := strings.IndexByte(value, '\n'); i >= 0 {
				seg, value = value[:i], value[i+1:]
				newline = true
			} else {
				value = ""
			}

			if emit && seg != "" {
				sc, ok := scopes[scopeName]
				if !ok {
					sc = scope.Parse(scopeName)
					scopes[scopeName] = sc
				}
				e.add(row, engine.Event{Offset: col, Op: engine.Push{Scope: sc}})
				e.add(row, engine.Event{Offset: col + len(seg), Op: engine.Pop{Count: 1}})
			}

			col += len(seg)
			if newline {
				row++
				col = 0
			}
		}
	}
	return e, nil
}

func (e *Engine) add(row int, ev engine.Event) {
	if row < len(e.rows) {
		e.rows[row] = append(e.rows[row], ev)
	}
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

// scopeFor maps a chroma token type to a dotted scope name. Plain text
// and whitespace carry no scope at all; unknown categories map to
// names the resolver records as unhandled.
func scopeFor(t chroma.TokenType) (string, bool) {
	switch t.Category() {
	case chroma.Keyword:
		return "keyword.control", true
	case chroma.Name:
		switch t {
		case chroma.NameFunction, chroma.NameFunctionMagic:
			return "entity.name.function", true
		case chroma.NameClass, chroma.NameBuiltin, chroma.NameBuiltinPseudo:
			return "support.type", true
		default:
			return "variable.other", true
		}
	case chroma.Literal:
		switch t.SubCategory() {
		case chroma.LiteralString:
			return "string.quoted", true
		case chroma.LiteralNumber:
			return "constant.numeric", true
		default:
			return "constant.other", true
		}
	case chroma.Operator:
		return "operator", true
	case chroma.Punctuation:
		return "punctuation.bracket", true
	case chroma.Comment:
		return "comment.line", true
	case chroma.Text:
		return "", false
	default:
		return strings.ToLower(t.String()), true
	}
}

func countLines(source string) int {
	n := strings.Count(source, "\n")
	if len(source) > 0 && !strings.HasSuffix(source, "\n") {
		n++
	}
	return n
}
