package engine

import (
	"gitlab.com/tozd/go/errors"

	"occlight/internal/scope"
)

// ErrUnderflow reports more pops than open scopes, i.e. a broken event
// stream from the grammar engine.
var ErrUnderflow = errors.New("scope stack underflow")

// BasicOp is the unit step a raw Op expands into.
type BasicOp int

const (
	BasicPush BasicOp = iota
	BasicPop
)

// ScopeStack mirrors the set of currently open scopes. It persists for
// the whole highlighting request, across line boundaries.
type ScopeStack struct {
	scopes []scope.Scope
}

// ApplyWithHook applies a raw operation, invoking hook once per basic
// push or pop it expands into. For BasicPush the hook receives the
// opened scope; for BasicPop, the scope being closed. A hook error
// aborts the expansion.
func (s *ScopeStack) ApplyWithHook(op Op, hook func(basic BasicOp, sc scope.Scope) error) error {
	switch op := op.(type) {
	case Push:
		s.scopes = append(s.scopes, op.Scope)
		return hook(BasicPush, op.Scope)
	case Pop:
		for i := 0; i < op.Count; i++ {
			n := len(s.scopes)
			if n == 0 {
				return errors.Errorf("pop %d of %d: %w", i+1, op.Count, ErrUnderflow)
			}
			top := s.scopes[n-1]
			s.scopes = s.scopes[:n-1]
			if err := hook(BasicPop, top); err != nil {
				return err
			}
		}
		return nil
	case Noop:
		return nil
	default:
		return errors.Errorf("unknown scope operation %T", op)
	}
}

func (s *ScopeStack) Depth() int {
	return len(s.scopes)
}

func (s *ScopeStack) Top() (scope.Scope, bool) {
	if len(s.scopes) == 0 {
		return nil, false
	}
	return s.scopes[len(s.scopes)-1], true
}
