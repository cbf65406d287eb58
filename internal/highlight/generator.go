// Package highlight turns a grammar engine's scope events into a flat,
// non-overlapping set of labeled character ranges.
package highlight

import (
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"occlight/internal/engine"
	"occlight/internal/occurrence"
	"occlight/internal/scope"
)

// ErrUnbalanced reports spans still open after the final per-line
// flush, which indicates broken push/pop bookkeeping rather than bad
// caller input.
var ErrUnbalanced = errors.New("highlight: unbalanced highlight stack")

type Options struct {
	// MaxLineLen skips highlighting for lines longer than this many
	// bytes. Zero means no limit. Skipped lines yield no occurrences
	// but the rest of the document is still processed.
	MaxLineLen int

	// Logger receives skip warnings and unhandled-scope diagnostics.
	Logger *zerolog.Logger
}

// Generator drives one highlighting request: it feeds lines to the
// grammar engine, walks the emitted events in order, and maintains the
// highlight stack. A Generator serves a single Generate call.
type Generator struct {
	eng     engine.Engine
	res     *Resolver
	opts    Options
	logger  zerolog.Logger
	stack   engine.ScopeStack
	skipped []int
}

func NewGenerator(eng engine.Engine, res *Resolver, opts Options) *Generator {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if res == nil {
		res = NewResolver(nil)
	}
	return &Generator{
		eng:    eng,
		res:    res,
		opts:   opts,
		logger: logger,
	}
}

// Generate highlights source and returns the finished document. On an
// internal invariant violation the partial document is withheld and
// the error is matchable via engine.ErrUnderflow or ErrUnbalanced.
func (g *Generator) Generate(source string) (*occurrence.Document, error) {
	doc := &occurrence.Document{}
	var hs highlightStack

	for row, line := range linesWithEndings(source) {
		skip := g.opts.MaxLineLen > 0 && len(line) > g.opts.MaxLineLen
		if skip {
			g.skipped = append(g.skipped, row)
			g.logger.Warn().
				Int("row", row).
				Int("bytes", len(line)).
				Int("max", g.opts.MaxLineLen).
				Msg("line exceeds max length, skipping highlight")
		}

		events, err := g.eng.ParseLine(line)
		if err != nil {
			return nil, errors.Errorf("parsing line %d: %w", row, err)
		}

		for _, ev := range events {
			// Offsets that do not land on a code point boundary (for
			// instance operations anchored past the last character)
			// have no effect on the stack.
			col, ok := characterIndex(line, ev.Offset)
			if !ok {
				continue
			}
			pos := occurrence.Position{Row: row, Col: col}

			err := g.stack.ApplyWithHook(ev.Op, func(basic engine.BasicOp, sc scope.Scope) error {
				if skip {
					return nil
				}
				switch basic {
				case engine.BasicPush:
					kind, live := g.res.Resolve(sc)
					sp := openSpan{start: pos, kind: kind, live: live}
					if closed, ok := hs.push(sp); ok {
						emit(doc, closed, sp.start)
					}
				case engine.BasicPop:
					if closed, ok := hs.pop(pos); ok {
						emit(doc, closed, pos)
					}
				}
				return nil
			})
			if err != nil {
				return nil, errors.Errorf("applying scope events on line %d: %w", row, err)
			}
		}

		// Highlighting never crosses a line boundary: everything still
		// open is finalized at the end of the line. The engine's own
		// scope state persists, so a scope spanning lines only shows
		// up again if the engine re-emits a push for it.
		end := occurrence.Position{Row: row, Col: utf8.RuneCountInString(line)}
		for {
			closed, ok := hs.pop(end)
			if !ok {
				break
			}
			emit(doc, closed, end)
		}
	}

	if n := hs.depth(); n > 0 {
		return nil, errors.Errorf("%d spans left open after final flush: %w", n, ErrUnbalanced)
	}

	if unhandled := g.res.Unhandled(); len(unhandled) > 0 {
		g.logger.Debug().Strs("scopes", unhandled).Msg("unhandled scopes")
	}

	return doc, nil
}

// UnhandledScopes returns the scopes the resolver could not classify.
// Diagnostics only; never affects output.
func (g *Generator) UnhandledScopes() []string {
	return g.res.Unhandled()
}

// SkippedLines returns the rows that were skipped for exceeding
// MaxLineLen.
func (g *Generator) SkippedLines() []int {
	return g.skipped
}

func emit(doc *occurrence.Document, sp openSpan, end occurrence.Position) {
	if !sp.live {
		return
	}
	r := occurrence.Range{Start: sp.start, End: end}
	if r.Empty() {
		return
	}
	doc.Append(r, sp.kind)
}

// linesWithEndings splits source into lines, each keeping its
// terminator. The final line is included even without one.
func linesWithEndings(source string) []string {
	var lines []string
	for len(source) > 0 {
		n := len(source)
		for i := 0; i < len(source); i++ {
			if source[i] == '\n' {
				n = i + 1
				break
			}
		}
		lines = append(lines, source[:n])
		source = source[n:]
	}
	return lines
}

// characterIndex maps a byte offset within line to the index of the
// code point beginning exactly there. ok is false when no code point
// starts at that offset (end of line, or mid-codepoint).
func characterIndex(line string, offset int) (int, bool) {
	if offset < 0 || offset >= len(line) {
		return 0, false
	}
	n := 0
	for i := range line {
		if i == offset {
			return n, true
		}
		if i > offset {
			break
		}
		n++
	}
	return 0, false
}
