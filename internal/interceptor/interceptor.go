package interceptor

import (
	"context"
)

// Interceptor wraps a node value on init and releases the wrapper on teardown.
type Interceptor interface {
	// Init receives the value produced so far and returns the wrapped value.
	Init(ctx context.Context, value any) (any, error)
	// Release receives exactly the value this interceptor returned from Init.
	Release(ctx context.Context, wrapped any) error
}

// Func adapts plain functions to the Interceptor interface. Either field may
// be nil: a nil OnInit passes the value through, a nil OnRelease does nothing.
type Func struct {
	OnInit    func(ctx context.Context, value any) (any, error)
	OnRelease func(ctx context.Context, wrapped any) error
}

func (f Func) Init(ctx context.Context, value any) (any, error) {
	if f.OnInit == nil {
		return value, nil
	}
	return f.OnInit(ctx, value)
}

func (f Func) Release(ctx context.Context, wrapped any) error {
	if f.OnRelease == nil {
		return nil
	}
	return f.OnRelease(ctx, wrapped)
}

type targetKey struct{}

// WithTarget annotates ctx with the name of the node being intercepted.
func WithTarget(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, targetKey{}, name)
}

// Target returns the node name stored by WithTarget, or "" if absent.
func Target(ctx context.Context) string {
	name, _ := ctx.Value(targetKey{}).(string)
	return name
}
