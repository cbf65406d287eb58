package highlight

import (
	"testing"

	"gitlab.com/tozd/go/errors"

	"occlight/internal/engine"
	"occlight/internal/occurrence"
	"occlight/internal/scope"
)

// scriptEngine replays a fixed event script, one row per line fed in.
type scriptEngine struct {
	rows [][]engine.Event
	row  int
}

func (e *scriptEngine) ParseLine(string) ([]engine.Event, error) {
	if e.row >= len(e.rows) {
		e.row++
		return nil, nil
	}
	events := e.rows[e.row]
	e.row++
	return events, nil
}

func push(offset int, name string) engine.Event {
	return engine.Event{Offset: offset, Op: engine.Push{Scope: scope.Parse(name)}}
}

func pop(offset int) engine.Event {
	return engine.Event{Offset: offset, Op: engine.Pop{Count: 1}}
}

func generate(t *testing.T, source string, rows [][]engine.Event) *occurrence.Document {
	t.Helper()
	g := NewGenerator(&scriptEngine{rows: rows}, nil, Options{})
	doc, err := g.Generate(source)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return doc
}

func wantOccurrences(t *testing.T, doc *occurrence.Document, want []occurrence.Occurrence) {
	t.Helper()
	if len(doc.Occurrences) != len(want) {
		t.Fatalf("got %d occurrences %v, want %d", len(doc.Occurrences), doc.Occurrences, len(want))
	}
	for i := range want {
		if doc.Occurrences[i] != want[i] {
			t.Fatalf("occurrence[%d] = %v, want %v", i, doc.Occurrences[i], want[i])
		}
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	doc := generate(t, "", nil)
	if doc.Len() != 0 {
		t.Fatalf("empty input produced %d occurrences", doc.Len())
	}
}

func TestGenerateKeywordIdentifier(t *testing.T) {
	doc := generate(t, "package main", [][]engine.Event{{
		push(0, "keyword.control"),
		pop(7),
		push(8, "variable.other"),
		pop(12), // past the last byte: skipped, the flush closes it
	}})

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 7), Kind: occurrence.KindKeyword},
		{Range: occurrence.NewRange(0, 8, 0, 12), Kind: occurrence.KindIdentifier},
	})
}

func TestGenerateStringLiteralLine(t *testing.T) {
	doc := generate(t, `"inner string";`, [][]engine.Event{{
		push(0, "string.quoted"),
		push(0, "punctuation.definition"),
		pop(1),
		push(13, "punctuation.definition"),
		pop(14),
		pop(14),
		push(14, "punctuation.terminator"),
		pop(15),
	}})

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 1), Kind: occurrence.KindPunctuationBracket},
		{Range: occurrence.NewRange(0, 1, 0, 13), Kind: occurrence.KindStringLiteral},
		{Range: occurrence.NewRange(0, 13, 0, 14), Kind: occurrence.KindPunctuationBracket},
		{Range: occurrence.NewRange(0, 14, 0, 15), Kind: occurrence.KindPunctuationBracket},
	})
}

func TestGenerateCascadeSameStart(t *testing.T) {
	// Three scopes open at the same position and close in reverse
	// order; the result must tile, never overlap.
	doc := generate(t, "abcdefgh\n", [][]engine.Event{{
		push(0, "keyword.control"),
		push(0, "variable.other"),
		push(0, "string.quoted"),
		pop(2),
		pop(5),
		pop(8),
	}})

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 2), Kind: occurrence.KindStringLiteral},
		{Range: occurrence.NewRange(0, 2, 0, 5), Kind: occurrence.KindIdentifier},
		{Range: occurrence.NewRange(0, 5, 0, 8), Kind: occurrence.KindKeyword},
	})
}

func TestGenerateIgnoredWrapperOnly(t *testing.T) {
	doc := generate(t, "package main\n", [][]engine.Event{{
		push(0, "source.go"),
	}})
	if doc.Len() != 0 {
		t.Fatalf("ignored wrapper produced %d occurrences", doc.Len())
	}
}

func TestGenerateIgnoredGapInsideLiveSpan(t *testing.T) {
	// An ignored scope opening inside a live one leaves a hole in the
	// output where it sat.
	doc := generate(t, "abcdef\n", [][]engine.Event{{
		push(0, "keyword.control"),
		push(2, "meta.block"),
		pop(4),
		pop(6),
	}})

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 2), Kind: occurrence.KindKeyword},
		{Range: occurrence.NewRange(0, 4, 0, 6), Kind: occurrence.KindKeyword},
	})
}

func TestGenerateUnrecognizedScopeTracked(t *testing.T) {
	rows := [][]engine.Event{{
		push(0, "wibble.fancy"),
		pop(2),
	}}
	g := NewGenerator(&scriptEngine{rows: rows}, nil, Options{})
	doc, err := g.Generate("abc\n")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Len() != 0 {
		t.Fatalf("unrecognized scope produced %d occurrences", doc.Len())
	}
	unhandled := g.UnhandledScopes()
	if len(unhandled) != 1 || unhandled[0] != "wibble.fancy" {
		t.Fatalf("unhandled = %v, want [wibble.fancy]", unhandled)
	}
}

func TestGenerateMultibyteColumns(t *testing.T) {
	// Byte offsets translate to code-point columns.
	doc := generate(t, "世界 = 1\n", [][]engine.Event{{
		push(0, "variable.other"),
		pop(6),
		push(9, "constant.numeric"),
		pop(10),
	}})

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 2), Kind: occurrence.KindIdentifier},
		{Range: occurrence.NewRange(0, 5, 0, 6), Kind: occurrence.KindNumericLiteral},
	})
}

func TestGenerateMidCodepointOffsetSkipped(t *testing.T) {
	// An offset inside a multibyte sequence names no code point; the
	// push is dropped and the later pop underflows the scope stack.
	g := NewGenerator(&scriptEngine{rows: [][]engine.Event{{
		push(1, "variable.other"),
		pop(6),
	}}}, nil, Options{})
	_, err := g.Generate("世界\n")
	if !errors.Is(err, engine.ErrUnderflow) {
		t.Fatalf("err = %v, want ErrUnderflow", err)
	}
}

func TestGeneratePopUnderflowSurfaces(t *testing.T) {
	g := NewGenerator(&scriptEngine{rows: [][]engine.Event{{
		pop(0),
	}}}, nil, Options{})
	doc, err := g.Generate("ab\n")
	if !errors.Is(err, engine.ErrUnderflow) {
		t.Fatalf("err = %v, want ErrUnderflow", err)
	}
	if doc != nil {
		t.Fatal("partial document returned alongside an internal error")
	}
}

func TestGenerateScopeOpenAcrossLines(t *testing.T) {
	// The engine keeps the scope open across the boundary but does not
	// re-push it; the highlight flush at end of line 0 finalizes it and
	// line 1 stays unhighlighted. The line 1 pop only unwinds engine
	// state.
	doc := generate(t, "ab\ncde\n", [][]engine.Event{
		{push(0, "string.quoted")},
		{pop(3)},
	})

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 3), Kind: occurrence.KindStringLiteral},
	})
}

func TestGenerateMaxLineLenSkipsLine(t *testing.T) {
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n" // 30 bytes + newline
	source := "ok\n" + long + "go\n"
	rows := [][]engine.Event{
		{push(0, "keyword.control"), pop(2)},
		{push(0, "string.quoted"), pop(30)},
		{push(0, "keyword.control"), pop(2)},
	}

	g := NewGenerator(&scriptEngine{rows: rows}, nil, Options{MaxLineLen: 10})
	doc, err := g.Generate(source)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 2), Kind: occurrence.KindKeyword},
		{Range: occurrence.NewRange(2, 0, 2, 2), Kind: occurrence.KindKeyword},
	})
	skipped := g.SkippedLines()
	if len(skipped) != 1 || skipped[0] != 1 {
		t.Fatalf("skipped = %v, want [1]", skipped)
	}
}

func TestGenerateNoOverlapInvariant(t *testing.T) {
	// A deliberately nested script; every pair of emitted ranges must
	// be disjoint and non-empty, and same-row neighbors must abut at
	// nested boundaries.
	doc := generate(t, "abcdefghij\nklmnopqrst\n", [][]engine.Event{
		{
			push(0, "keyword.control"),
			push(2, "string.quoted"),
			push(4, "punctuation.definition"),
			pop(5),
			pop(7),
			pop(9),
		},
		{
			push(0, "variable.other"),
			push(0, "constant.numeric"),
			pop(4),
			pop(8),
		},
	})

	occs := doc.Occurrences
	if len(occs) == 0 {
		t.Fatal("no occurrences emitted")
	}
	for i, a := range occs {
		if a.Range.Empty() {
			t.Fatalf("occurrence[%d] %v is empty", i, a)
		}
		if !a.Range.Start.Before(a.Range.End) {
			t.Fatalf("occurrence[%d] %v is inverted", i, a)
		}
		for j, b := range occs {
			if i != j && a.Range.Overlaps(b.Range) {
				t.Fatalf("occurrences overlap: %v and %v", a, b)
			}
		}
	}
}

func TestGenerateFlushBalancesEveryLine(t *testing.T) {
	// Even with pushes left open on both lines, Generate completes and
	// each line's spans end at that line's boundary.
	doc := generate(t, "abc\ndef\n", [][]engine.Event{
		{push(0, "keyword.control"), push(1, "string.quoted")},
		{push(0, "variable.other")},
	})

	// The keyword's remainder is cascaded to the flush position by the
	// string's pop and comes out empty, so only three ranges survive.
	wantOccurrences(t, doc, []occurrence.Occurrence{
		{Range: occurrence.NewRange(0, 0, 0, 1), Kind: occurrence.KindKeyword},
		{Range: occurrence.NewRange(0, 1, 0, 4), Kind: occurrence.KindStringLiteral},
		{Range: occurrence.NewRange(1, 0, 1, 4), Kind: occurrence.KindIdentifier},
	})
}

func TestCharacterIndex(t *testing.T) {
	line := "a世b\n"
	cases := []struct {
		offset int
		col    int
		ok     bool
	}{
		{0, 0, true},
		{1, 1, true},
		{2, 0, false}, // inside 世
		{4, 2, true},
		{5, 3, true}, // the newline
		{6, 0, false},
		{-1, 0, false},
	}
	for _, c := range cases {
		col, ok := characterIndex(line, c.offset)
		if col != c.col || ok != c.ok {
			t.Fatalf("characterIndex(%d) = (%d, %v), want (%d, %v)", c.offset, col, ok, c.col, c.ok)
		}
	}
}

func TestLinesWithEndings(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"abc", []string{"abc"}},
		{"abc\n", []string{"abc\n"}},
		{"a\nb\nc", []string{"a\n", "b\n", "c"}},
		{"\n\n", []string{"\n", "\n"}},
	}
	for _, c := range cases {
		got := linesWithEndings(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("linesWithEndings(%q) = %q, want %q", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("linesWithEndings(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	var source string
	var rows [][]engine.Event
	for i := 0; i < 200; i++ {
		source += "package main\n"
		rows = append(rows, []engine.Event{
			push(0, "source.go"),
			push(0, "keyword.control"),
			pop(7),
			push(8, "variable.other"),
			pop(12),
			pop(12),
		})
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g := NewGenerator(&scriptEngine{rows: rows}, nil, Options{})
		if _, err := g.Generate(source); err != nil {
			b.Fatal(err)
		}
	}
}
