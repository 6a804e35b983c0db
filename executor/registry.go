// Package executor runs materialized execution plans: it binds values
// to concepts step by step and invokes the registered callable of each
// transformation descriptor. The resolver never executes anything
// itself; this package is the output collaborator consuming its plans.
package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

// Callable is a registered transformation implementation. Args arrive
// bound in the descriptor's input order; the returned values are stored
// under the descriptor's output concepts, in declaration order.
type Callable func(ctx context.Context, args []any) ([]any, error)

// Registry maps transformation descriptor IDs to callables. Descriptors
// are assumed pre-registered: the resolver performs no automatic
// function discovery.
type Registry struct {
	mu        sync.RWMutex
	callables map[string]Callable
}

// NewRegistry creates an empty callable registry
func NewRegistry() *Registry {
	return &Registry{callables: make(map[string]Callable)}
}

// Register binds a callable to a descriptor ID. Re-registering an ID
// replaces the previous callable.
func (r *Registry) Register(descriptorID string, fn Callable) error {
	if descriptorID == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "empty descriptor ID")
	}
	if fn == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "nil callable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callables[descriptorID] = fn
	return nil
}

// Lookup returns the callable for a descriptor ID.
func (r *Registry) Lookup(descriptorID string) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callables[descriptorID]
	return fn, ok
}

// IDs returns the registered descriptor IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.callables))
	for id := range r.callables {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// missingCallable builds the error for an unregistered descriptor.
func missingCallable(descriptorID string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %q", errors.ErrCallableNotFound, descriptorID),
		"Runner", "Run", "look up callable")
}
