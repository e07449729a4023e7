package attrcallbacks

import (
	"reflect"
)

// Kind classifies the value of an attribute change.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "scalar"
	}
}

// IsCollection reports whether changes of this kind are decomposed into element events.
func (k Kind) IsCollection() bool {
	return k == KindSequence || k == KindMap
}

// KindOf infers the kind of a single value structurally.
// Slices and arrays (except byte slices) are sequences, maps are maps, everything else is scalar.
func KindOf(v any) Kind {
	rv, ok := indirect(v)
	if !ok {
		return KindScalar
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindScalar
		}
		return KindSequence
	case reflect.Map:
		return KindMap
	default:
		return KindScalar
	}
}

// classify decides the kind of a before/after pair. An absent side takes the kind of the other one,
// two present sides must agree or the pair is treated as scalar.
func classify(before, after any) Kind {
	beforeKind, afterKind := KindOf(before), KindOf(after)

	switch {
	case isAbsent(before):
		return afterKind
	case isAbsent(after):
		return beforeKind
	case beforeKind == afterKind:
		return beforeKind
	default:
		return KindScalar
	}
}

// isAbsent reports whether v is nil, including typed nil pointers, slices and maps.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// indirect dereferences pointers and reports false for nil values.
func indirect(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}

	return rv, true
}

// ChangeEntry is the before/after pair of one attribute during one save.
// Before is nil for attributes of a record that is being created.
type ChangeEntry struct {
	Attribute string
	Before    any
	After     any
	Kind      Kind
}

// NewChangeEntry builds a ChangeEntry and infers its kind from the values.
func NewChangeEntry(attribute string, before, after any) ChangeEntry {
	return ChangeEntry{Attribute: attribute, Before: before, After: after, Kind: classify(before, after)}
}

// NewChangeEntryWithKind builds a ChangeEntry with a declared kind.
func NewChangeEntryWithKind(attribute string, kind Kind, before, after any) ChangeEntry {
	return ChangeEntry{Attribute: attribute, Before: before, After: after, Kind: kind}
}

// ChangeSet is an insertion-ordered mapping from attribute name to ChangeEntry.
// The zero value is an empty ChangeSet ready to use.
type ChangeSet struct {
	entries []ChangeEntry
	index   map[string]int
}

// NewChangeSet builds a ChangeSet from entries, keeping their order.
func NewChangeSet(entries ...ChangeEntry) ChangeSet {
	cs := ChangeSet{}
	for _, entry := range entries {
		cs.Put(entry)
	}

	return cs
}

// Add records a change with an inferred kind.
func (cs *ChangeSet) Add(attribute string, before, after any) {
	cs.Put(NewChangeEntry(attribute, before, after))
}

// AddWithKind records a change with a declared kind.
func (cs *ChangeSet) AddWithKind(attribute string, kind Kind, before, after any) {
	cs.Put(NewChangeEntryWithKind(attribute, kind, before, after))
}

// Put records entry. An attribute that is already present keeps its position.
func (cs *ChangeSet) Put(entry ChangeEntry) {
	if cs.index == nil {
		cs.index = make(map[string]int)
	}

	if i, exists := cs.index[entry.Attribute]; exists {
		cs.entries[i] = entry
		return
	}

	cs.index[entry.Attribute] = len(cs.entries)
	cs.entries = append(cs.entries, entry)
}

// Len returns the number of changed attributes.
func (cs ChangeSet) Len() int {
	return len(cs.entries)
}

// IsEmpty reports whether no attribute changed.
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.entries) == 0
}

// Get returns the entry for attribute.
func (cs ChangeSet) Get(attribute string) (ChangeEntry, bool) {
	i, exists := cs.index[attribute]
	if !exists {
		return ChangeEntry{}, false
	}

	return cs.entries[i], true
}

// Entries returns a copy of the entries in insertion order.
func (cs ChangeSet) Entries() []ChangeEntry {
	out := make([]ChangeEntry, len(cs.entries))
	copy(out, cs.entries)

	return out
}

// Names returns the changed attribute names in insertion order.
func (cs ChangeSet) Names() []string {
	names := make([]string, len(cs.entries))
	for i, entry := range cs.entries {
		names[i] = entry.Attribute
	}

	return names
}
