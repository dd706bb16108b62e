package plugin

import (
	"fmt"
	"reflect"
	"strings"

	"arcade-go/internal/game"
)

var gameType = reflect.TypeOf((*game.Game)(nil)).Elem()

// Factory is what a BundleLoader produces: the type the bundle provides and
// the ways to obtain an instance of it.
type Factory struct {
	Type reflect.Type
	// Instance returns the bundle's shared instance. Preferred when set.
	Instance func() any
	// New constructs a fresh instance.
	New func() any
}

// checkCapabilities reports which Game methods t lacks.
func checkCapabilities(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: bundle exposes no type", ErrCapabilityMismatch)
	}
	if t.Implements(gameType) {
		return nil
	}

	receiver := 1
	if t.Kind() == reflect.Interface {
		receiver = 0
	}
	var missing []string
	for i := 0; i < gameType.NumMethod(); i++ {
		want := gameType.Method(i)
		got, ok := t.MethodByName(want.Name)
		switch {
		case !ok:
			missing = append(missing, want.Name)
		case !sameSignature(want.Type, got.Type, receiver):
			missing = append(missing, want.Name+" (wrong signature)")
		}
	}
	return fmt.Errorf("%w: %s lacks %s", ErrCapabilityMismatch, t, strings.Join(missing, ", "))
}

// sameSignature compares an interface method type with a method type that
// carries skip leading receiver arguments.
func sameSignature(want, got reflect.Type, skip int) bool {
	if got.NumIn()-skip != want.NumIn() || got.NumOut() != want.NumOut() {
		return false
	}
	for i := 0; i < want.NumIn(); i++ {
		if got.In(i+skip) != want.In(i) {
			return false
		}
	}
	for i := 0; i < want.NumOut(); i++ {
		if got.Out(i) != want.Out(i) {
			return false
		}
	}
	return true
}

// instantiate prefers the shared accessor and falls back to the constructor.
func instantiate(f *Factory) (g game.Game, err error) {
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = fmt.Errorf("%w: panic: %v", ErrInstantiation, r)
		}
	}()

	var v any
	switch {
	case f.Instance != nil:
		v = f.Instance()
	case f.New != nil:
		v = f.New()
	default:
		return nil, fmt.Errorf("%w: no shared accessor or constructor", ErrInstantiation)
	}

	if isNil(v) {
		return nil, fmt.Errorf("%w: factory returned nil", ErrInstantiation)
	}
	g, ok := v.(game.Game)
	if !ok {
		return nil, fmt.Errorf("%w: factory returned %T", ErrInstantiation, v)
	}
	return g, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// factoryFromSymbol interprets an exported symbol: a zero-argument function is
// a constructor, a pointer to a package variable is a shared instance.
func factoryFromSymbol(sym any) (*Factory, error) {
	v := reflect.ValueOf(sym)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: nil symbol", ErrCapabilityMismatch)
	}

	switch v.Kind() {
	case reflect.Func:
		fn, out, ok := zeroArgFunc(v)
		if !ok {
			return nil, fmt.Errorf("%w: entry point %s is not a zero-argument constructor", ErrInstantiation, v.Type())
		}
		return &Factory{Type: out, New: fn}, nil

	case reflect.Ptr:
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil symbol", ErrInstantiation)
		}
		elem := v.Elem()
		if elem.Kind() == reflect.Interface {
			if elem.IsNil() {
				return nil, fmt.Errorf("%w: entry point variable is nil", ErrInstantiation)
			}
			dynamic := elem.Elem()
			return &Factory{
				Type:     dynamic.Type(),
				Instance: func() any { return dynamic.Interface() },
			}, nil
		}
		if elem.Kind() == reflect.Ptr && !elem.IsNil() {
			return &Factory{
				Type:     elem.Type(),
				Instance: func() any { return elem.Interface() },
			}, nil
		}
		return &Factory{
			Type:     v.Type(),
			Instance: func() any { return sym },
		}, nil
	}
	return nil, fmt.Errorf("%w: unsupported entry point %s", ErrCapabilityMismatch, v.Type())
}

func zeroArgFunc(v reflect.Value) (func() any, reflect.Type, bool) {
	t := v.Type()
	if t.Kind() != reflect.Func || t.NumIn() != 0 || t.NumOut() != 1 {
		return nil, nil, false
	}
	return func() any { return v.Call(nil)[0].Interface() }, t.Out(0), true
}
