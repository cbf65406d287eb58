// Package engine defines the contract between the highlighting core
// and a grammar engine: an ordered stream of byte-offset scope events
// per line, plus the scope stack that expands raw operations into
// basic push/pop steps.
package engine

import "occlight/internal/scope"

// Op is a raw scope-stack operation reported by a grammar engine.
type Op interface {
	scopeOp()
}

// Push opens a scope.
type Push struct {
	Scope scope.Scope
}

// Pop closes the innermost Count scopes.
type Pop struct {
	Count int
}

// Noop leaves the stack unchanged. Engines may emit it for events that
// carry no net scope change.
type Noop struct{}

func (Push) scopeOp() {}
func (Pop) scopeOp()  {}
func (Noop) scopeOp() {}

// Event anchors an operation at a byte offset within the current line.
type Event struct {
	Offset int
	Op     Op
}

// Engine produces scope events for one line at a time. Lines must be
// fed in source order with their terminators intact; engines may keep
// internal state spanning line boundaries (multi-line strings, block
// comments).
type Engine interface {
	ParseLine(line string) ([]Event, error)
}
