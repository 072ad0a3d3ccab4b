package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Middleware wraps a runner (timeouts, recovery, metrics).
type Middleware func(Runner) Runner

// Apply wraps r so that the first middleware is the outermost.
func Apply(r Runner, mws ...Middleware) Runner {
	for i := len(mws) - 1; i >= 0; i-- {
		r = mws[i](r)
	}
	return r
}

// WithTimeout bounds every run by d. A zero d leaves the context alone.
func WithTimeout(d time.Duration) Middleware {
	return func(next Runner) Runner {
		if d <= 0 {
			return next
		}
		return RunnerFunc(func(ctx context.Context, inv *Invocation) *Result {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Run(ctx, inv)
		})
	}
}

// PanicError is the error carried by results of runners that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// WithRecover turns a panicking run into an ERROR result.
func WithRecover() Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, inv *Invocation) (res *Result) {
			defer func() {
				if p := recover(); p != nil {
					res = Fail(&PanicError{Value: p, Stack: debug.Stack()})
				}
			}()
			return next.Run(ctx, inv)
		})
	}
}
