package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager starts, stops and resets a group of test components together.
type Manager struct {
	ctx        context.Context
	components []TestComponent
	mu         sync.RWMutex
}

// NewManager creates an empty manager using ctx for every operation.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add registers a component. Components start in the order they are added.
func (m *Manager) Add(c TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Get returns the component named name, or nil.
func (m *Manager) Get(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts every component in order and stops at the first failure.
func (m *Manager) StartAll() error {
	for _, c := range m.snapshot() {
		if err := c.Start(m.ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", c.Name(), err)
		}
	}
	return nil
}

// StopAll stops every component in reverse order and returns all failures.
func (m *Manager) StopAll() error {
	list := m.snapshot()
	var errs []error
	for i := len(list) - 1; i >= 0; i-- {
		if err := list[i].Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", list[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ResetAll resets every component and returns all failures.
func (m *Manager) ResetAll() error {
	var errs []error
	for _, c := range m.snapshot() {
		if err := c.Reset(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to reset %s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) snapshot() []TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TestComponent, len(m.components))
	copy(out, m.components)
	return out
}
