package interceptor

import (
	"context"
	"errors"
	"fmt"
)

// Chain is an ordered list of interceptors.
type Chain []Interceptor

// Stack records every layer produced while applying a Chain. Layer 0 is the
// raw factory output; layer i+1 is the output of interceptor i.
type Stack struct {
	chain  Chain
	layers []any
}

// StepError reports which interceptor of a chain failed.
type StepError struct {
	Index int
	Phase string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("interceptor %d %s: %v", e.Index, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Apply folds the chain over raw in registration order. If interceptor k
// fails, interceptors k-1..0 are unwound before the error is returned, so
// the caller only has to release the raw value.
func (c Chain) Apply(ctx context.Context, raw any) (*Stack, error) {
	s := &Stack{chain: c, layers: make([]any, 1, len(c)+1)}
	s.layers[0] = raw

	for i, ic := range c {
		wrapped, err := initLayer(ctx, ic, s.layers[len(s.layers)-1])
		if err != nil {
			stepErr := &StepError{Index: i, Phase: "init", Err: err}
			if unwindErr := s.Unwind(ctx); unwindErr != nil {
				return nil, errors.Join(stepErr, unwindErr)
			}
			return nil, stepErr
		}
		s.layers = append(s.layers, wrapped)
	}
	return s, nil
}

// Value returns the outermost layer, which is what the graph publishes.
func (s *Stack) Value() any {
	return s.layers[len(s.layers)-1]
}

// Raw returns the factory output underneath every wrapper.
func (s *Stack) Raw() any {
	return s.layers[0]
}

// Depth returns the number of applied interceptors.
func (s *Stack) Depth() int {
	return len(s.layers) - 1
}

// Unwind releases the applied wrappers last-first. Every wrapper gets a
// release attempt; the failures are returned joined. Unwind is idempotent.
func (s *Stack) Unwind(ctx context.Context) error {
	var errs []error
	for i := len(s.layers) - 1; i >= 1; i-- {
		if err := releaseLayer(ctx, s.chain[i-1], s.layers[i]); err != nil {
			errs = append(errs, &StepError{Index: i - 1, Phase: "release", Err: err})
		}
		s.layers = s.layers[:i]
	}
	return errors.Join(errs...)
}

func initLayer(ctx context.Context, ic Interceptor, value any) (wrapped any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
		}
	}()
	return ic.Init(ctx, value)
}

func releaseLayer(ctx context.Context, ic Interceptor, wrapped any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
		}
	}()
	return ic.Release(ctx, wrapped)
}
