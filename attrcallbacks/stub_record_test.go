package attrcallbacks_test

import (
	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// stubRecord is a minimal attrcallbacks.Record with fixed values and pending changes.
type stubRecord struct {
	isNew   bool
	names   []string
	values  map[string]any
	kinds   map[string]attrcallbacks.Kind
	changes attrcallbacks.ChangeSet
}

func newStubRecord(names ...string) *stubRecord {
	return &stubRecord{
		isNew:  true,
		names:  names,
		values: make(map[string]any),
		kinds:  make(map[string]attrcallbacks.Kind),
	}
}

func (r *stubRecord) with(name string, value any) *stubRecord {
	r.values[name] = value
	return r
}

func (r *stubRecord) IsNew() bool { return r.isNew }

func (r *stubRecord) AttributeNames() []string { return r.names }

func (r *stubRecord) Attribute(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *stubRecord) PendingChanges() attrcallbacks.ChangeSet { return r.changes }

// declaredStubRecord additionally declares attribute kinds.
type declaredStubRecord struct {
	*stubRecord
}

func (r declaredStubRecord) AttributeKind(name string) (attrcallbacks.Kind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}
