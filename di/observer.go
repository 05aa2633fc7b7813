package di

import (
	"context"
	"time"
)

// Observer receives one callback per produced value and per injected node.
// Implementations must be cheap; they run inline with resolution.
type Observer interface {
	ObserveResolve(ctx context.Context, key, strategy string, d time.Duration, err error)
	ObserveInject(ctx context.Context, node string, slots int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveResolve(context.Context, string, string, time.Duration, error) {}
func (nopObserver) ObserveInject(context.Context, string, int, error)                    {}
