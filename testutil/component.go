package testutil

import (
	"context"

	"github.com/kbukum/scenedi/component"
)

// TestComponent extends component.Component with test lifecycle methods.
// A test component can be registered with a component.Registry like any
// other component and also be reset between test cases.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state of the component. The returned
	// value can be passed to Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
