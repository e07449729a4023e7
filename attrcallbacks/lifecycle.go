package attrcallbacks

import (
	"context"
)

// Record is the view of a persistable record the lifecycle needs.
type Record interface {
	// IsNew reports whether the record has not been persisted yet.
	IsNew() bool

	// AttributeNames returns the record's attribute names in declaration order.
	AttributeNames() []string

	// Attribute returns the current value of an attribute.
	Attribute(name string) (any, bool)

	// PendingChanges returns the changes of a persisted record that the next save will write.
	PendingChanges() ChangeSet
}

// KindDeclarer is implemented by records that know the kind of their attributes up front,
// for example from a schema. Declared kinds take precedence over structural inference.
type KindDeclarer interface {
	AttributeKind(name string) (Kind, bool)
}

// Operation is the persistence operation a lifecycle run belongs to.
type Operation int

const (
	OperationCreate Operation = iota
	OperationUpdate
)

func (o Operation) String() string {
	if o == OperationCreate {
		return "create"
	}

	return "update"
}

// OperationFor returns OperationCreate for new records and OperationUpdate otherwise.
func OperationFor(rec Record) Operation {
	if rec.IsNew() {
		return OperationCreate
	}

	return OperationUpdate
}

// Phase is one of the four lifecycle points at which observers run.
type Phase string

const (
	PhaseBeforeCreate Phase = "before_create"
	PhaseAfterCreate  Phase = "after_create"
	PhaseBeforeUpdate Phase = "before_update"
	PhaseAfterUpdate  Phase = "after_update"
)

// PhaseFor maps an operation and a side (before or after persisting) to its Phase.
func PhaseFor(op Operation, before bool) Phase {
	switch {
	case op == OperationCreate && before:
		return PhaseBeforeCreate
	case op == OperationCreate:
		return PhaseAfterCreate
	case before:
		return PhaseBeforeUpdate
	default:
		return PhaseAfterUpdate
	}
}

// Observer takes part in a record's save lifecycle. Before may reject the save by returning an error,
// After runs once the statement was executed and may still fail the surrounding transaction.
type Observer interface {
	Before(ctx context.Context, op Operation, rec Record, changes ChangeSet) error
	After(ctx context.Context, op Operation, rec Record, changes ChangeSet) error
}

// ObserverFuncs adapts a pair of functions to Observer. Nil functions do nothing.
type ObserverFuncs struct {
	BeforeFunc func(ctx context.Context, op Operation, rec Record, changes ChangeSet) error
	AfterFunc  func(ctx context.Context, op Operation, rec Record, changes ChangeSet) error
}

func (o ObserverFuncs) Before(ctx context.Context, op Operation, rec Record, changes ChangeSet) error {
	if o.BeforeFunc == nil {
		return nil
	}

	return o.BeforeFunc(ctx, op, rec, changes)
}

func (o ObserverFuncs) After(ctx context.Context, op Operation, rec Record, changes ChangeSet) error {
	if o.AfterFunc == nil {
		return nil
	}

	return o.AfterFunc(ctx, op, rec, changes)
}

// PersistFunc executes the statement for a save inside the caller's transaction.
type PersistFunc func(ctx context.Context, op Operation, changes ChangeSet) error

// Lifecycle is an ordered chain of observers. Observers registered first wrap the ones registered
// later: their before side runs first and their after side runs last.
type Lifecycle struct {
	observers []Observer
}

// NewLifecycle returns a Lifecycle with the given observers in order. Nil observers are skipped.
func NewLifecycle(observers ...Observer) *Lifecycle {
	l := &Lifecycle{}
	l.Register(observers...)

	return l
}

// Register appends observers to the end of the chain.
func (l *Lifecycle) Register(observers ...Observer) {
	for _, observer := range observers {
		if observer != nil {
			l.observers = append(l.observers, observer)
		}
	}
}

// Len returns the number of registered observers.
func (l *Lifecycle) Len() int {
	return len(l.observers)
}

// RunBefore calls Before on every observer in registration order and stops at the first error.
func (l *Lifecycle) RunBefore(ctx context.Context, op Operation, rec Record, changes ChangeSet) error {
	if rec == nil {
		return ErrNilRecord
	}

	for _, observer := range l.observers {
		if err := observer.Before(ctx, op, rec, changes); err != nil {
			return err
		}
	}

	return nil
}

// RunAfter calls After on every observer in reverse registration order and stops at the first error.
func (l *Lifecycle) RunAfter(ctx context.Context, op Operation, rec Record, changes ChangeSet) error {
	if rec == nil {
		return ErrNilRecord
	}

	for i := len(l.observers) - 1; i >= 0; i-- {
		if err := l.observers[i].After(ctx, op, rec, changes); err != nil {
			return err
		}
	}

	return nil
}

// Run is the canonical save sequence: compute the changes once, run the before side, persist,
// run the after side. It does not manage transactions; callers run it inside one and roll back
// when it returns an error.
func (l *Lifecycle) Run(ctx context.Context, rec Record, persist PersistFunc) (ChangeSet, error) {
	if rec == nil {
		return ChangeSet{}, ErrNilRecord
	}

	op := OperationFor(rec)
	changes := ChangesFor(rec)

	if err := l.RunBefore(ctx, op, rec, changes); err != nil {
		return changes, err
	}

	if err := persist(ctx, op, changes); err != nil {
		return changes, err
	}

	if err := l.RunAfter(ctx, op, rec, changes); err != nil {
		return changes, err
	}

	return changes, nil
}

// ChangesFor returns the changes a save of rec will report to hooks: CreationChanges for new
// records, the record's pending changes otherwise.
func ChangesFor(rec Record) ChangeSet {
	if rec.IsNew() {
		return CreationChanges(rec)
	}

	return rec.PendingChanges()
}

// CreationChanges treats every attribute of a new record that holds a non-nil value as a change
// from nil. Attributes keep their declaration order.
func CreationChanges(rec Record) ChangeSet {
	declarer, hasKinds := rec.(KindDeclarer)

	var changes ChangeSet

	for _, name := range rec.AttributeNames() {
		value, ok := rec.Attribute(name)
		if !ok || isAbsent(value) {
			continue
		}

		if hasKinds {
			if kind, declared := declarer.AttributeKind(name); declared {
				changes.AddWithKind(name, kind, nil, value)
				continue
			}
		}

		changes.Add(name, nil, value)
	}

	return changes
}
