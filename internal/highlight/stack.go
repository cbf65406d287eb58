package highlight

import "occlight/internal/occurrence"

// openSpan is an in-flight highlight region. live=false marks a slot
// for an ignored or unrecognized scope: it keeps the stack depth in
// 1:1 correspondence with the open scopes but never produces output.
type openSpan struct {
	start occurrence.Position
	kind  occurrence.Kind
	live  bool
}

// highlightStack keeps the currently open spans, one per open scope,
// and guarantees that finalized ranges never overlap.
//
// Given nested scopes like
//
//	"asdf"
//	^        punctuation
//	^^^^^^   string
//	     ^   punctuation
//
// the stack resolves the overlap to
//
//	"asdf"
//	^        punctuation
//	 ^^^^    string
//	     ^   punctuation
//
// by cascading span boundaries forward: when an inner span opens or
// closes, the recorded start of the enclosing spans moves up so the
// territory already attributed is never claimed twice.
type highlightStack struct {
	spans []openSpan
}

// push opens a new span. If the current top is live, its visible run
// ends where the new span begins: the finished fragment (old start up
// to the new start) is returned for emission and the top's start is
// moved forward in place. Every deeper span that shared the old top's
// start moves with it, mirroring the pop cascade, so an ancestor can
// never later re-claim territory the fragment already covers. Stack
// depth always grows by exactly one.
func (s *highlightStack) push(sp openSpan) (openSpan, bool) {
	var closed openSpan
	var ok bool
	if n := len(s.spans); n > 0 && s.spans[n-1].live {
		closed, ok = s.spans[n-1], true
		for i := n - 1; i >= 0; i-- {
			if s.spans[i].start != closed.start {
				break
			}
			s.spans[i].start = sp.start
		}
	}
	s.spans = append(s.spans, sp)
	return closed, ok
}

// pop closes the innermost span at end. Every remaining span that
// started at the same position as the closing one has its start
// advanced to end; equal-start runs are contiguous from the top, so
// the scan stops at the first mismatch. Returns false on an empty
// stack, which is the benign cross-line continuation case.
func (s *highlightStack) pop(end occurrence.Position) (openSpan, bool) {
	n := len(s.spans)
	if n == 0 {
		return openSpan{}, false
	}
	closing := s.spans[n-1]
	s.spans = s.spans[:n-1]
	for i := len(s.spans) - 1; i >= 0; i-- {
		if s.spans[i].start != closing.start {
			break
		}
		s.spans[i].start = end
	}
	return closing, true
}

func (s *highlightStack) depth() int {
	return len(s.spans)
}
