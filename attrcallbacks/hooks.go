package attrcallbacks

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// HookKind identifies one hook naming convention.
type HookKind int

const (
	HookBeforeChange HookKind = iota
	HookAfterChange
	HookChanged
	HookBeforeAdd
	HookBeforeRemove
	HookAfterAdd
	HookAfterRemove
)

var hookNameTemplates = map[HookKind]string{
	HookBeforeChange: "before_%s_change",
	HookAfterChange:  "after_%s_change",
	HookChanged:      "%s_changed",
	HookBeforeAdd:    "before_%s_add",
	HookBeforeRemove: "before_%s_remove",
	HookAfterAdd:     "after_%s_add",
	HookAfterRemove:  "after_%s_remove",
}

func (k HookKind) String() string {
	return HookName(k, "<attr>")
}

// IsBefore reports whether hooks of this kind run before persisting and may veto.
func (k HookKind) IsBefore() bool {
	return k == HookBeforeChange || k == HookBeforeAdd || k == HookBeforeRemove
}

// HookName renders the conventional name of the hook of the given kind for attribute,
// e.g. HookName(HookBeforeAdd, "colors") is "before_colors_add".
func HookName(kind HookKind, attribute string) string {
	template, ok := hookNameTemplates[kind]
	if !ok {
		return fmt.Sprintf("unknown_%s_hook", attribute)
	}

	return fmt.Sprintf(template, attribute)
}

// BeforeChangeFunc is called before an attribute change is persisted. Returning false vetoes the save.
type BeforeChangeFunc func(ctx context.Context, rec Record, before, after any) (bool, error)

// AfterChangeFunc is called after an attribute change was persisted.
type AfterChangeFunc func(ctx context.Context, rec Record, before, after any) error

// BeforeElementFunc is called for each element added to or removed from a collection before the
// change is persisted. Returning false vetoes the save.
type BeforeElementFunc func(ctx context.Context, rec Record, element Element) (bool, error)

// AfterElementFunc is called for each element added to or removed from a collection after the
// change was persisted.
type AfterElementFunc func(ctx context.Context, rec Record, element Element) error

type hookKey struct {
	kind      HookKind
	attribute string
}

// Registry maps (hook kind, attribute) to the hook to call. It is populated once, when the record
// type is defined, and only read afterward, so concurrent dispatch is safe.
//
// Registering a hook for a key that already has one replaces it.
// Registration mistakes are collected and reported by Err.
type Registry struct {
	beforeChange  map[string]BeforeChangeFunc
	afterChange   map[hookKey]AfterChangeFunc
	beforeElement map[hookKey]BeforeElementFunc
	afterElement  map[hookKey]AfterElementFunc
	errs          []error
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		beforeChange:  make(map[string]BeforeChangeFunc),
		afterChange:   make(map[hookKey]AfterChangeFunc),
		beforeElement: make(map[hookKey]BeforeElementFunc),
		afterElement:  make(map[hookKey]AfterElementFunc),
	}
}

// BeforeChange registers before_<attribute>_change.
func (r *Registry) BeforeChange(attribute string, fn BeforeChangeFunc) *Registry {
	if r.accept(HookBeforeChange, attribute, fn == nil) {
		r.beforeChange[attribute] = fn
	}

	return r
}

// AfterChange registers after_<attribute>_change.
func (r *Registry) AfterChange(attribute string, fn AfterChangeFunc) *Registry {
	return r.registerAfterChange(HookAfterChange, attribute, fn)
}

// Changed registers <attribute>_changed.
func (r *Registry) Changed(attribute string, fn AfterChangeFunc) *Registry {
	return r.registerAfterChange(HookChanged, attribute, fn)
}

// BeforeAdd registers before_<attribute>_add.
func (r *Registry) BeforeAdd(attribute string, fn BeforeElementFunc) *Registry {
	return r.registerBeforeElement(HookBeforeAdd, attribute, fn)
}

// BeforeRemove registers before_<attribute>_remove.
func (r *Registry) BeforeRemove(attribute string, fn BeforeElementFunc) *Registry {
	return r.registerBeforeElement(HookBeforeRemove, attribute, fn)
}

// AfterAdd registers after_<attribute>_add.
func (r *Registry) AfterAdd(attribute string, fn AfterElementFunc) *Registry {
	return r.registerAfterElement(HookAfterAdd, attribute, fn)
}

// AfterRemove registers after_<attribute>_remove.
func (r *Registry) AfterRemove(attribute string, fn AfterElementFunc) *Registry {
	return r.registerAfterElement(HookAfterRemove, attribute, fn)
}

func (r *Registry) registerAfterChange(kind HookKind, attribute string, fn AfterChangeFunc) *Registry {
	if r.accept(kind, attribute, fn == nil) {
		r.afterChange[hookKey{kind, attribute}] = fn
	}

	return r
}

func (r *Registry) registerBeforeElement(kind HookKind, attribute string, fn BeforeElementFunc) *Registry {
	if r.accept(kind, attribute, fn == nil) {
		r.beforeElement[hookKey{kind, attribute}] = fn
	}

	return r
}

func (r *Registry) registerAfterElement(kind HookKind, attribute string, fn AfterElementFunc) *Registry {
	if r.accept(kind, attribute, fn == nil) {
		r.afterElement[hookKey{kind, attribute}] = fn
	}

	return r
}

func (r *Registry) accept(kind HookKind, attribute string, nilFunc bool) bool {
	switch {
	case attribute == "":
		r.errs = append(r.errs, fmt.Errorf("%w: %s", ErrEmptyAttributeName, kind))
		return false
	case nilFunc:
		r.errs = append(r.errs, fmt.Errorf("%w: %s", ErrNilHook, HookName(kind, attribute)))
		return false
	default:
		return true
	}
}

// Err returns the registration mistakes collected so far, or nil.
func (r *Registry) Err() error {
	return errors.Join(r.errs...)
}

// Has reports whether a hook of the given kind is registered for attribute.
func (r *Registry) Has(kind HookKind, attribute string) bool {
	key := hookKey{kind, attribute}

	switch kind {
	case HookBeforeChange:
		_, ok := r.beforeChange[attribute]
		return ok
	case HookAfterChange, HookChanged:
		_, ok := r.afterChange[key]
		return ok
	case HookBeforeAdd, HookBeforeRemove:
		_, ok := r.beforeElement[key]
		return ok
	case HookAfterAdd, HookAfterRemove:
		_, ok := r.afterElement[key]
		return ok
	default:
		return false
	}
}

// HookNames returns the conventional names of all registered hooks, sorted.
func (r *Registry) HookNames() []string {
	names := make([]string, 0, len(r.beforeChange)+len(r.afterChange)+len(r.beforeElement)+len(r.afterElement))

	for attribute := range r.beforeChange {
		names = append(names, HookName(HookBeforeChange, attribute))
	}
	for key := range r.afterChange {
		names = append(names, HookName(key.kind, key.attribute))
	}
	for key := range r.beforeElement {
		names = append(names, HookName(key.kind, key.attribute))
	}
	for key := range r.afterElement {
		names = append(names, HookName(key.kind, key.attribute))
	}

	slices.Sort(names)

	return names
}
