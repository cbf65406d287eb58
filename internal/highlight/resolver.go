package highlight

import (
	"sort"

	"occlight/internal/occurrence"
	"occlight/internal/scope"
	"occlight/internal/scopemap"
)

// Resolver classifies a scope by its leading atom. Unrecognized atoms
// are tracked for diagnostics; like explicitly ignored ones they still
// occupy a stack slot so push/pop bookkeeping stays balanced.
type Resolver struct {
	table     *scopemap.Table
	unhandled map[string]struct{}
}

func NewResolver(table *scopemap.Table) *Resolver {
	if table == nil {
		table = scopemap.Default()
	}
	return &Resolver{
		table:     table,
		unhandled: make(map[string]struct{}),
	}
}

// Resolve returns the kind for sc and whether the resulting span is
// live. Ignored and unrecognized scopes both come back non-live.
func (r *Resolver) Resolve(sc scope.Scope) (occurrence.Kind, bool) {
	root := sc.Root()
	if kind, ok := r.table.Kind(root); ok {
		return kind, true
	}
	if !r.table.Ignored(root) {
		r.unhandled[sc.String()] = struct{}{}
	}
	return occurrence.KindUnspecified, false
}

// Unhandled returns the scopes whose leading atom had no table entry,
// sorted for stable diagnostics.
func (r *Resolver) Unhandled() []string {
	out := make([]string, 0, len(r.unhandled))
	for s := range r.unhandled {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
