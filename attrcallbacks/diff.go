package attrcallbacks

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Element is one member of a collection-valued attribute.
// Elements of maps are keyed: Key holds the map key and Value the value stored under it.
type Element struct {
	Key   any
	Value any
	Keyed bool
}

func (e Element) String() string {
	if e.Keyed {
		return fmt.Sprintf("%v=%v", e.Key, e.Value)
	}

	return fmt.Sprint(e.Value)
}

// CollectionDiff holds the elements only present after a change (Added)
// and the elements only present before it (Removed).
type CollectionDiff struct {
	Added   []Element
	Removed []Element
}

// IsEmpty reports whether the diff contains neither additions nor removals.
func (d CollectionDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// IsCollection reports whether v can be converted into a sequence of elements.
func IsCollection(v any) bool {
	return KindOf(v).IsCollection()
}

// Diff computes the element level difference between before and after.
// Both sides must be collections of the same kind; a nil side counts as empty.
func Diff(before, after any) (CollectionDiff, error) {
	kind := classify(before, after)
	if !kind.IsCollection() {
		return CollectionDiff{}, ErrNotCollection
	}

	return DiffKind(kind, before, after)
}

// DiffKind computes the element level difference for a pair of the given collection kind.
//
// The difference is set-like: an element found on both sides never shows up, however often
// it occurs on either side. Elements missing on the other side are reported as often as they occur.
// Sequences keep their order, maps are walked in ascending key order. Map entries are compared as
// key/value pairs, so replacing the value under a key yields one removal and one addition.
func DiffKind(kind Kind, before, after any) (CollectionDiff, error) {
	beforeElements, err := toElements(kind, before)
	if err != nil {
		return CollectionDiff{}, err
	}

	afterElements, err := toElements(kind, after)
	if err != nil {
		return CollectionDiff{}, err
	}

	return CollectionDiff{
		Added:   subtract(afterElements, beforeElements),
		Removed: subtract(beforeElements, afterElements),
	}, nil
}

// toElements copies the members of v into a fresh slice; v itself is never modified.
func toElements(kind Kind, v any) ([]Element, error) {
	rv, ok := indirect(v)
	if !ok {
		return nil, nil
	}

	switch kind {
	case KindSequence:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, errors.Join(ErrNotCollection, fmt.Errorf("expected a sequence, got %T", v))
		}

		elements := make([]Element, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elements = append(elements, Element{Value: rv.Index(i).Interface()})
		}

		return elements, nil

	case KindMap:
		if rv.Kind() != reflect.Map {
			return nil, errors.Join(ErrNotCollection, fmt.Errorf("expected a map, got %T", v))
		}

		keys := rv.MapKeys()
		slices.SortStableFunc(keys, compareKeys)

		elements := make([]Element, 0, len(keys))
		for _, key := range keys {
			elements = append(elements, Element{Key: key.Interface(), Value: rv.MapIndex(key).Interface(), Keyed: true})
		}

		return elements, nil

	default:
		return nil, ErrNotCollection
	}
}

// compareKeys orders map keys by their rendering. Keys that render alike, such as 1 and "1"
// in a map[any]any, are ordered by their dynamic type and then by their Go syntax representation.
func compareKeys(a, b reflect.Value) int {
	ka, kb := a.Interface(), b.Interface()

	return cmp.Or(
		cmp.Compare(fmt.Sprint(ka), fmt.Sprint(kb)),
		cmp.Compare(fmt.Sprintf("%T", ka), fmt.Sprintf("%T", kb)),
		cmp.Compare(fmt.Sprintf("%#v", ka), fmt.Sprintf("%#v", kb)),
	)
}

// subtract returns the elements of from that do not occur in other.
func subtract(from, other []Element) []Element {
	out := make([]Element, 0)
	for _, element := range from {
		if !containsElement(other, element) {
			out = append(out, element)
		}
	}

	return out
}

func containsElement(elements []Element, wanted Element) bool {
	for _, element := range elements {
		if reflect.DeepEqual(element, wanted) {
			return true
		}
	}

	return false
}
