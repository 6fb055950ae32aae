package cell

import "reflect"

// sameState reports whether next is the same state as prev by reference.
//
// Pointers, maps, channels and funcs are the same when they share an address.
// Slices are the same when they share a backing array, length and capacity.
// Go gives zero-capacity slices no address of their own, so two distinct
// empty slices made with make([]T, 0) compare as the same.
// Scalars and strings have no identity beyond their value and compare with ==.
// Structs, arrays and interfaces are the same when every element is.
func sameState[S any](prev, next S) bool {
	return sameValue(reflect.ValueOf(&prev).Elem(), reflect.ValueOf(&next).Elem())
}

func sameValue(a, b reflect.Value) bool {
	if a.IsValid() != b.IsValid() {
		return false
	}
	if !a.IsValid() {
		return true
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len() && a.Cap() == b.Cap()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return sameValue(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !sameValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}
