package testutil

import (
	"sync"

	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/logger"
)

// NewRegistry creates a registry that logs nothing.
func NewRegistry(opts ...di.Option) *di.Registry {
	return di.NewRegistry(append([]di.Option{di.WithLogger(logger.Nop())}, opts...)...)
}

// Recorder is a consumer that declares the given slots and records every
// value injected into them.
type Recorder struct {
	slots  []di.Slot
	values map[string]any
	order  []string
	posts  int
	mu     sync.Mutex
}

// NewRecorder creates a recorder declaring slots.
func NewRecorder(slots ...di.Slot) *Recorder {
	return &Recorder{slots: slots, values: make(map[string]any)}
}

// Dependencies implements di.Consumer.
func (r *Recorder) Dependencies() []di.Slot { return r.slots }

// Inject implements di.Consumer.
func (r *Recorder) Inject(slot string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[slot] = value
	r.order = append(r.order, slot)
	return nil
}

// PostInject implements di.PostInjector.
func (r *Recorder) PostInject() error {
	r.mu.Lock()
	r.posts++
	r.mu.Unlock()
	return nil
}

// Value returns the last value injected into slot.
func (r *Recorder) Value(slot string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[slot]
	return v, ok
}

// Injected returns slot names in injection order, repeats included.
func (r *Recorder) Injected() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// PostInjects returns how many times the post-injection hook ran.
func (r *Recorder) PostInjects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts
}
