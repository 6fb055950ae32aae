package cell

import "fmt"

// Func is a function of any number of T values returning a T.
// Compose chains these right to left.
type Func[T any] func(args ...T) T

// Compose returns the right-to-left composition of fns.
//
// The rightmost function receives every argument passed to the composed
// function; each function to its left receives exactly one argument, the
// result of the function to its right:
//
//	Compose(f, g, h)(x, y, z) == f(g(h(x, y, z)))
//
// With no functions the result is the identity over the first argument
// (extra arguments are ignored, no arguments yields the zero value). With
// one non-nil function that function is returned unchanged.
//
// A nil element is reported when the composed function is invoked, by a
// panic carrying an error that wraps ErrTypeMismatch.
func Compose[T any](fns ...Func[T]) Func[T] {
	switch len(fns) {
	case 0:
		return identity[T]
	case 1:
		if fns[0] == nil {
			return func(args ...T) T { return call(nil, 0, args...) }
		}
		return fns[0]
	}

	chain := make([]Func[T], len(fns))
	copy(chain, fns)

	return func(args ...T) T {
		last := len(chain) - 1
		result := call(chain[last], last, args...)
		for i := last - 1; i >= 0; i-- {
			result = call(chain[i], i, result)
		}
		return result
	}
}

// Unary adapts a single-argument function to Func. The adapted function
// receives the first argument, or the zero value when called with none.
// A nil fn stays nil so Compose reports it on invocation.
func Unary[T any](fn func(T) T) Func[T] {
	if fn == nil {
		return nil
	}
	return func(args ...T) T {
		return fn(first(args))
	}
}

func identity[T any](args ...T) T {
	return first(args)
}

func first[T any](args []T) T {
	if len(args) == 0 {
		var zero T
		return zero
	}
	return args[0]
}

func call[T any](fn Func[T], index int, args ...T) T {
	if fn == nil {
		panic(fmt.Errorf("%w: compose argument %d is not a function", ErrTypeMismatch, index))
	}
	return fn(args...)
}
