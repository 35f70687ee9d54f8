// Package function implements the built-in scalar and aggregate function
// registry consulted by the validator (signature checks) and the executor
// (evaluation). Registration is host-extensible: callers may Register
// additional functions before a query is submitted.
package function

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwatts/graphlite"
)

// Context carries the resolved positional arguments (and, for aggregates,
// the full column of per-row values) into a Function's Execute call.
type Context struct {
	Args   []graphlite.Value
	Column []graphlite.Value // populated only when Function.IsAggregate()
	Star   bool               // COUNT(*): Column holds one entry per row, ignoring nulls
}

// Function is a named, arity-checked callable reachable from CALL-free
// expression position (scalar) or RETURN/WITH aggregation (aggregate).
type Function interface {
	Name() string
	MinArgs() int
	MaxArgs() int // -1 for unbounded
	IsAggregate() bool
	Execute(ctx *Context) (graphlite.Value, error)
}

// Registry maps a case-insensitive function name to its implementation.
type Registry struct {
	fns map[string]Function
}

func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Function)}
}

// Register adds or replaces a function under its own Name(), upper-cased.
func (r *Registry) Register(fn Function) {
	r.fns[strings.ToUpper(fn.Name())] = fn
}

// Lookup returns the function for name (case-insensitive), or ok=false.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.fns[strings.ToUpper(name)]
	return fn, ok
}

// Validate checks that name is registered and argCount falls within its
// declared arity, matching the validator's "function signatures" check
// (§4.3). Bespoke variadic functions (TYPE, SIZE, TRIM, REPLACE, SUBSTRING,
// ROUND) express their flexibility through MaxArgs/MinArgs rather than a
// separate rule table.
func (r *Registry) Validate(name string, argCount int) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown function %q (known: %s)", name, r.ListNames())
	}
	if argCount < fn.MinArgs() {
		return fmt.Errorf("function %s requires at least %d argument(s), got %d", fn.Name(), fn.MinArgs(), argCount)
	}
	if fn.MaxArgs() != -1 && argCount > fn.MaxArgs() {
		return fmt.Errorf("function %s accepts at most %d argument(s), got %d", fn.Name(), fn.MaxArgs(), argCount)
	}
	return nil
}

// ListNames returns every registered function name, sorted, for error
// messages and introspection.
func (r *Registry) ListNames() string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// IsAggregateName reports whether name (case-insensitive) names a
// registered aggregate, used by the validator's implicit-GROUP-BY and
// HAVING-requires-aggregate checks.
func (r *Registry) IsAggregateName(name string) bool {
	fn, ok := r.Lookup(name)
	return ok && fn.IsAggregate()
}

// DefaultRegistry is pre-populated with the builtin scalar, aggregate and
// temporal arithmetic (DATE_ADD/DATE_SUB) functions in builtins.go/temporal.go.
var DefaultRegistry = NewRegistry()
