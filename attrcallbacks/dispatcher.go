package attrcallbacks

import (
	"context"
	"fmt"
)

// hookObserver is notified about every hook the Dispatcher actually calls.
type hookObserver interface {
	hookInvoked(ctx context.Context, kind HookKind, attribute string)
	hookVetoed(ctx context.Context, kind HookKind, attribute string)
	hookFailed(ctx context.Context, kind HookKind, attribute string, err error)
}

type noopHookObserver struct{}

func (noopHookObserver) hookInvoked(context.Context, HookKind, string) {}
func (noopHookObserver) hookVetoed(context.Context, HookKind, string) {}
func (noopHookObserver) hookFailed(context.Context, HookKind, string, error) {}

// Dispatcher runs the hooks of a single attribute change, before or after persisting it.
type Dispatcher struct {
	resolver Resolver
	observer hookObserver
}

// NewDispatcher returns a Dispatcher resolving hooks from registry.
func NewDispatcher(registry *Registry) Dispatcher {
	return Dispatcher{
		resolver: NewResolver(registry),
		observer: noopHookObserver{},
	}
}

func (d Dispatcher) withObserver(observer hookObserver) Dispatcher {
	d.observer = observer
	return d
}

// DispatchBefore runs the before hooks for entry and returns a *VetoError when one of them
// returns false. The scalar hook runs first. For collection kinds every addition is then offered to
// before_<attr>_add and every removal to before_<attr>_remove. All elements of one pass are
// evaluated, the veto names the first hook that refused. Removals are skipped when additions
// were vetoed. A hook error aborts immediately.
func (d Dispatcher) DispatchBefore(ctx context.Context, rec Record, entry ChangeEntry) error {
	hook, found := d.resolver.ResolveBeforeChange(entry.Attribute)
	if found {
		d.observer.hookInvoked(ctx, HookBeforeChange, entry.Attribute)

		ok, err := hook(ctx, rec, entry.Before, entry.After)
		if err != nil {
			d.observer.hookFailed(ctx, HookBeforeChange, entry.Attribute, err)
			return hookFault(HookBeforeChange, entry.Attribute, err)
		}

		if !ok {
			d.observer.hookVetoed(ctx, HookBeforeChange, entry.Attribute)
			return &VetoError{Attribute: entry.Attribute, Hook: HookName(HookBeforeChange, entry.Attribute)}
		}
	}

	if !entry.Kind.IsCollection() || !d.resolver.HasElementHooks(entry.Attribute, true) {
		return nil
	}

	diff, err := DiffKind(entry.Kind, entry.Before, entry.After)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", entry.Attribute, err)
	}

	if err = d.beforeElements(ctx, rec, HookBeforeAdd, entry.Attribute, diff.Added); err != nil {
		return err
	}

	return d.beforeElements(ctx, rec, HookBeforeRemove, entry.Attribute, diff.Removed)
}

func (d Dispatcher) beforeElements(
	ctx context.Context,
	rec Record,
	kind HookKind,
	attribute string,
	elements []Element,
) error {
	hook, found := d.resolver.ResolveBeforeElement(kind, attribute)
	if !found {
		return nil
	}

	var veto error

	for _, element := range elements {
		d.observer.hookInvoked(ctx, kind, attribute)

		ok, err := hook(ctx, rec, element)
		if err != nil {
			d.observer.hookFailed(ctx, kind, attribute, err)
			return hookFault(kind, attribute, err)
		}

		if !ok && veto == nil {
			d.observer.hookVetoed(ctx, kind, attribute)
			veto = &VetoError{Attribute: attribute, Hook: HookName(kind, attribute)}
		}
	}

	return veto
}

// DispatchAfter runs the after hooks for entry: after_<attr>_change, then <attr>_changed, then for
// collection kinds after_<attr>_add per addition and after_<attr>_remove per removal.
// Return values carry no veto; the first hook error is returned as a fault.
func (d Dispatcher) DispatchAfter(ctx context.Context, rec Record, entry ChangeEntry) error {
	for _, kind := range []HookKind{HookAfterChange, HookChanged} {
		hook, found := d.resolver.ResolveAfterChange(kind, entry.Attribute)
		if !found {
			continue
		}

		d.observer.hookInvoked(ctx, kind, entry.Attribute)

		if err := hook(ctx, rec, entry.Before, entry.After); err != nil {
			d.observer.hookFailed(ctx, kind, entry.Attribute, err)
			return hookFault(kind, entry.Attribute, err)
		}
	}

	if !entry.Kind.IsCollection() || !d.resolver.HasElementHooks(entry.Attribute, false) {
		return nil
	}

	diff, err := DiffKind(entry.Kind, entry.Before, entry.After)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", entry.Attribute, err)
	}

	if err = d.afterElements(ctx, rec, HookAfterAdd, entry.Attribute, diff.Added); err != nil {
		return err
	}

	return d.afterElements(ctx, rec, HookAfterRemove, entry.Attribute, diff.Removed)
}

func (d Dispatcher) afterElements(
	ctx context.Context,
	rec Record,
	kind HookKind,
	attribute string,
	elements []Element,
) error {
	hook, found := d.resolver.ResolveAfterElement(kind, attribute)
	if !found {
		return nil
	}

	for _, element := range elements {
		d.observer.hookInvoked(ctx, kind, attribute)

		if err := hook(ctx, rec, element); err != nil {
			d.observer.hookFailed(ctx, kind, attribute, err)
			return hookFault(kind, attribute, err)
		}
	}

	return nil
}
