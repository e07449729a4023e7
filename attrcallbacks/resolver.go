package attrcallbacks

import (
	"context"
)

// Resolver answers "is there a hook of kind K for attribute A" and hands out a callable for it.
// A missing before hook resolves to one that allows the save, a missing after hook to a no-op,
// so absence is never an error.
type Resolver struct {
	registry *Registry
}

// NewResolver returns a Resolver reading from registry. A nil registry resolves nothing.
func NewResolver(registry *Registry) Resolver {
	if registry == nil {
		registry = NewRegistry()
	}

	return Resolver{registry: registry}
}

func allowChange(context.Context, Record, any, any) (bool, error) { return true, nil }

func ignoreChange(context.Context, Record, any, any) error { return nil }

func allowElement(context.Context, Record, Element) (bool, error) { return true, nil }

func ignoreElement(context.Context, Record, Element) error { return nil }

// ResolveBeforeChange returns before_<attribute>_change and whether it is registered.
func (r Resolver) ResolveBeforeChange(attribute string) (BeforeChangeFunc, bool) {
	if fn, ok := r.registry.beforeChange[attribute]; ok {
		return fn, true
	}

	return allowChange, false
}

// ResolveAfterChange returns the after hook of kind (HookAfterChange or HookChanged) for attribute.
func (r Resolver) ResolveAfterChange(kind HookKind, attribute string) (AfterChangeFunc, bool) {
	if fn, ok := r.registry.afterChange[hookKey{kind, attribute}]; ok {
		return fn, true
	}

	return ignoreChange, false
}

// ResolveBeforeElement returns the before hook of kind (HookBeforeAdd or HookBeforeRemove) for attribute.
func (r Resolver) ResolveBeforeElement(kind HookKind, attribute string) (BeforeElementFunc, bool) {
	if fn, ok := r.registry.beforeElement[hookKey{kind, attribute}]; ok {
		return fn, true
	}

	return allowElement, false
}

// ResolveAfterElement returns the after hook of kind (HookAfterAdd or HookAfterRemove) for attribute.
func (r Resolver) ResolveAfterElement(kind HookKind, attribute string) (AfterElementFunc, bool) {
	if fn, ok := r.registry.afterElement[hookKey{kind, attribute}]; ok {
		return fn, true
	}

	return ignoreElement, false
}

// HasElementHooks reports whether any add or remove hook of the given phase exists for attribute.
func (r Resolver) HasElementHooks(attribute string, before bool) bool {
	if before {
		return r.registry.Has(HookBeforeAdd, attribute) || r.registry.Has(HookBeforeRemove, attribute)
	}

	return r.registry.Has(HookAfterAdd, attribute) || r.registry.Has(HookAfterRemove, attribute)
}
