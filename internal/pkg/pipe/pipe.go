// Package pipe composes unary transforms left to right.
//
// AsyncPipe is the substrate outcome builders are written in: each stage
// receives the output of the previous one, stages run strictly in order and
// the first error aborts the whole pipe. When is the only way to skip a stage.
package pipe

import "context"

// Func is a transform that may block and may fail
type Func[T any] func(ctx context.Context, v T) (T, error)

// Pipe applies fns left to right
func Pipe[T any](fns ...func(T) T) func(T) T {
	return func(v T) T {
		for _, fn := range fns {
			v = fn(v)
		}
		return v
	}
}

// AsyncPipe applies fns left to right, threading each result into the next
// stage. The first error is returned together with the zero value of T.
func AsyncPipe[T any](fns ...Func[T]) Func[T] {
	return func(ctx context.Context, v T) (T, error) {
		var err error
		for _, fn := range fns {
			v, err = fn(ctx, v)
			if err != nil {
				var zero T
				return zero, err
			}
		}
		return v, nil
	}
}

// When applies fn only if pred holds for the incoming value; otherwise the
// value passes through unchanged.
func When[T any](pred func(T) bool, fn Func[T]) Func[T] {
	return func(ctx context.Context, v T) (T, error) {
		if !pred(v) {
			return v, nil
		}
		return fn(ctx, v)
	}
}

// Lift turns a plain transform into a Func
func Lift[T any](fn func(T) T) Func[T] {
	return func(_ context.Context, v T) (T, error) {
		return fn(v), nil
	}
}
