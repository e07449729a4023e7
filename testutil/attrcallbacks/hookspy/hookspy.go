// Package hookspy provides a HookSpy that registers recording hooks in an attrcallbacks.Registry,
// so tests can assert which hooks ran, with which arguments and in which order.
package hookspy

import (
	"context"
	"fmt"
	"sync"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// HookSpy records hook calls as strings such as "before_name_change(<nil>,widget)" or
// "after_colors_add(blue)". Vetoes and failures are configured per hook name.
type HookSpy struct {
	calls    []string
	vetoes   map[string]func(arg string) bool
	failures map[string]error
	mu       sync.Mutex
}

// New creates an empty HookSpy.
func New() *HookSpy {
	return &HookSpy{
		vetoes:   make(map[string]func(arg string) bool),
		failures: make(map[string]error),
	}
}

// Veto makes the before hook named hookName return false for every call.
func (s *HookSpy) Veto(hookName string) *HookSpy {
	return s.VetoWhen(hookName, func(string) bool { return true })
}

// VetoWhen makes the before hook named hookName return false when refuse returns true for the
// rendered call arguments.
func (s *HookSpy) VetoWhen(hookName string, refuse func(arg string) bool) *HookSpy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vetoes[hookName] = refuse

	return s
}

// Fail makes the hook named hookName return err.
func (s *HookSpy) Fail(hookName string, err error) *HookSpy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[hookName] = err

	return s
}

// RegisterAll registers recording hooks of every kind for each attribute.
func (s *HookSpy) RegisterAll(reg *attrcallbacks.Registry, attributes ...string) *attrcallbacks.Registry {
	for _, attribute := range attributes {
		s.RegisterScalar(reg, attribute)
		s.RegisterElements(reg, attribute)
	}

	return reg
}

// RegisterScalar registers recording before/after change hooks and the changed hook for attribute.
func (s *HookSpy) RegisterScalar(reg *attrcallbacks.Registry, attribute string) *attrcallbacks.Registry {
	reg.BeforeChange(attribute, func(_ context.Context, _ attrcallbacks.Record, before, after any) (bool, error) {
		return s.before(attrcallbacks.HookName(attrcallbacks.HookBeforeChange, attribute), renderPair(before, after))
	})
	reg.AfterChange(attribute, func(_ context.Context, _ attrcallbacks.Record, before, after any) error {
		return s.after(attrcallbacks.HookName(attrcallbacks.HookAfterChange, attribute), renderPair(before, after))
	})
	reg.Changed(attribute, func(_ context.Context, _ attrcallbacks.Record, before, after any) error {
		return s.after(attrcallbacks.HookName(attrcallbacks.HookChanged, attribute), renderPair(before, after))
	})

	return reg
}

// RegisterElements registers recording add and remove hooks, before and after, for attribute.
func (s *HookSpy) RegisterElements(reg *attrcallbacks.Registry, attribute string) *attrcallbacks.Registry {
	reg.BeforeAdd(attribute, func(_ context.Context, _ attrcallbacks.Record, el attrcallbacks.Element) (bool, error) {
		return s.before(attrcallbacks.HookName(attrcallbacks.HookBeforeAdd, attribute), el.String())
	})
	reg.BeforeRemove(attribute, func(_ context.Context, _ attrcallbacks.Record, el attrcallbacks.Element) (bool, error) {
		return s.before(attrcallbacks.HookName(attrcallbacks.HookBeforeRemove, attribute), el.String())
	})
	reg.AfterAdd(attribute, func(_ context.Context, _ attrcallbacks.Record, el attrcallbacks.Element) error {
		return s.after(attrcallbacks.HookName(attrcallbacks.HookAfterAdd, attribute), el.String())
	})
	reg.AfterRemove(attribute, func(_ context.Context, _ attrcallbacks.Record, el attrcallbacks.Element) error {
		return s.after(attrcallbacks.HookName(attrcallbacks.HookAfterRemove, attribute), el.String())
	})

	return reg
}

func (s *HookSpy) before(hookName, arg string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, fmt.Sprintf("%s(%s)", hookName, arg))

	if err, ok := s.failures[hookName]; ok {
		return false, err
	}

	if refuse, ok := s.vetoes[hookName]; ok && refuse(arg) {
		return false, nil
	}

	return true, nil
}

func (s *HookSpy) after(hookName, arg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, fmt.Sprintf("%s(%s)", hookName, arg))

	return s.failures[hookName]
}

// Calls returns the recorded calls in order.
func (s *HookSpy) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]string, len(s.calls))
	copy(calls, s.calls)

	return calls
}

// Reset forgets the recorded calls but keeps configured vetoes and failures.
func (s *HookSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = s.calls[:0]
}

func renderPair(before, after any) string {
	return fmt.Sprintf("%v,%v", before, after)
}
