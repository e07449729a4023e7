package attrcallbacks

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks/internal/naming"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	boolType    = reflect.TypeFor[bool]()
	anyType     = reflect.TypeFor[any]()
	elementType = reflect.TypeFor[Element]()
)

// methodPattern maps a hook kind to the prefix and suffix of the method name implementing it.
type methodPattern struct {
	kind   HookKind
	prefix string
	suffix string
}

// Longer suffixes come first so that NameChanged is not read as a "Change" hook for "name_d".
var methodPatterns = []methodPattern{
	{kind: HookChanged, suffix: "Changed"},
	{kind: HookBeforeChange, prefix: "Before", suffix: "Change"},
	{kind: HookAfterChange, prefix: "After", suffix: "Change"},
	{kind: HookBeforeRemove, prefix: "Before", suffix: "Remove"},
	{kind: HookAfterRemove, prefix: "After", suffix: "Remove"},
	{kind: HookBeforeAdd, prefix: "Before", suffix: "Add"},
	{kind: HookAfterAdd, prefix: "After", suffix: "Add"},
}

// RegisterMethods registers every exported method of sample's type that follows the hook naming
// convention, for example:
//
//	func (w *Widget) BeforeNameChange(ctx context.Context, before, after any) (bool, error)
//	func (w *Widget) AfterNameChange(ctx context.Context, before, after any) error
//	func (w *Widget) NameChanged(ctx context.Context, before, after any) error
//	func (w *Widget) BeforeColorsAdd(ctx context.Context, el attrcallbacks.Element) (bool, error)
//	func (w *Widget) AfterColorsRemove(ctx context.Context, el attrcallbacks.Element) error
//
// The CamelCase attribute part is converted to snake_case ("FirstName" becomes "first_name").
// Methods are looked up once here; at dispatch the record's own method is invoked, and a record of
// another type yields ErrRecordTypeMismatch.
func RegisterMethods(reg *Registry, sample Record) error {
	if reg == nil {
		return ErrNilRegistry
	}

	if sample == nil {
		return ErrNilRecord
	}

	recordType := reflect.TypeOf(sample)

	for i := range recordType.NumMethod() {
		method := recordType.Method(i)

		kind, attribute, ok := parseHookMethodName(method.Name)
		if !ok {
			continue
		}

		if err := checkHookSignature(kind, method.Type); err != nil {
			return fmt.Errorf("%w: %s.%s: %v", ErrInvalidHookSignature, recordType, method.Name, err)
		}

		registerMethod(reg, kind, attribute, recordType, method.Index)
	}

	return reg.Err()
}

func parseHookMethodName(name string) (HookKind, string, bool) {
	for _, pattern := range methodPatterns {
		if !strings.HasPrefix(name, pattern.prefix) || !strings.HasSuffix(name, pattern.suffix) {
			continue
		}

		if len(name) <= len(pattern.prefix)+len(pattern.suffix) {
			continue
		}

		camel := name[len(pattern.prefix) : len(name)-len(pattern.suffix)]

		return pattern.kind, naming.ToSnakeCase(camel), true
	}

	return 0, "", false
}

// checkHookSignature validates the method type, whose first input is the receiver.
func checkHookSignature(kind HookKind, methodType reflect.Type) error {
	var wantIn []reflect.Type
	var wantOut []reflect.Type

	switch kind {
	case HookBeforeChange:
		wantIn = []reflect.Type{contextType, anyType, anyType}
		wantOut = []reflect.Type{boolType, errorType}
	case HookAfterChange, HookChanged:
		wantIn = []reflect.Type{contextType, anyType, anyType}
		wantOut = []reflect.Type{errorType}
	case HookBeforeAdd, HookBeforeRemove:
		wantIn = []reflect.Type{contextType, elementType}
		wantOut = []reflect.Type{boolType, errorType}
	default:
		wantIn = []reflect.Type{contextType, elementType}
		wantOut = []reflect.Type{errorType}
	}

	if methodType.NumIn()-1 != len(wantIn) || methodType.NumOut() != len(wantOut) {
		return fmt.Errorf("want func%v %v", wantIn, wantOut)
	}

	for i, want := range wantIn {
		if methodType.In(i+1) != want {
			return fmt.Errorf("argument %d is %s, want %s", i+1, methodType.In(i+1), want)
		}
	}

	for i, want := range wantOut {
		if methodType.Out(i) != want {
			return fmt.Errorf("result %d is %s, want %s", i+1, methodType.Out(i), want)
		}
	}

	return nil
}

func registerMethod(reg *Registry, kind HookKind, attribute string, recordType reflect.Type, index int) {
	call := func(rec Record, args ...reflect.Value) ([]reflect.Value, error) {
		recordValue := reflect.ValueOf(rec)
		if !recordValue.IsValid() || recordValue.Type() != recordType {
			return nil, fmt.Errorf("%w: want %s, got %T", ErrRecordTypeMismatch, recordType, rec)
		}

		return recordValue.Method(index).Call(args), nil
	}

	switch kind {
	case HookBeforeChange:
		reg.BeforeChange(attribute, func(ctx context.Context, rec Record, before, after any) (bool, error) {
			out, err := call(rec, reflect.ValueOf(&ctx).Elem(), anyValue(before), anyValue(after))
			if err != nil {
				return false, err
			}
			return out[0].Bool(), errorResult(out[1])
		})
	case HookAfterChange, HookChanged:
		fn := func(ctx context.Context, rec Record, before, after any) error {
			out, err := call(rec, reflect.ValueOf(&ctx).Elem(), anyValue(before), anyValue(after))
			if err != nil {
				return err
			}
			return errorResult(out[0])
		}
		if kind == HookChanged {
			reg.Changed(attribute, fn)
		} else {
			reg.AfterChange(attribute, fn)
		}
	case HookBeforeAdd, HookBeforeRemove:
		fn := func(ctx context.Context, rec Record, element Element) (bool, error) {
			out, err := call(rec, reflect.ValueOf(&ctx).Elem(), reflect.ValueOf(element))
			if err != nil {
				return false, err
			}
			return out[0].Bool(), errorResult(out[1])
		}
		reg.registerBeforeElement(kind, attribute, fn)
	default:
		fn := func(ctx context.Context, rec Record, element Element) error {
			out, err := call(rec, reflect.ValueOf(&ctx).Elem(), reflect.ValueOf(element))
			if err != nil {
				return err
			}
			return errorResult(out[0])
		}
		reg.registerAfterElement(kind, attribute, fn)
	}
}

// anyValue wraps v so that nil survives reflect.Value.Call as a nil interface argument.
func anyValue(v any) reflect.Value {
	return reflect.ValueOf(&v).Elem()
}

func errorResult(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}

	return v.Interface().(error)
}
