package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/scenedi/component"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/scene"
)

// SceneFixture is a TestComponent owning a registry and an injected scene
// tree. Start binds, builds and injects; Stop frees the tree.
//
//	fx := testutil.NewSceneFixture("world",
//	    func(r *di.Registry) error {
//	        r.Bind(di.Literal("debug"), di.Value).ToVar("mode")
//	        return nil
//	    },
//	    func() (*scene.Node, error) {
//	        return scene.NewRoot("root", scene.WithChildren(player)), nil
//	    },
//	)
//	testutil.T(t).Setup(fx)
type SceneFixture struct {
	Registry *di.Registry
	Root     *scene.Node

	name      string
	configure func(r *di.Registry) error
	build     func() (*scene.Node, error)
	opts      []di.Option
	started   bool
	mu        sync.Mutex
}

// Layout records which children each node of a tree had.
type Layout map[*scene.Node][]*scene.Node

var _ TestComponent = (*SceneFixture)(nil)

// NewSceneFixture creates a fixture. configure may be nil; build is called
// on every Start so each run gets a fresh tree.
func NewSceneFixture(name string, configure func(r *di.Registry) error, build func() (*scene.Node, error), opts ...di.Option) *SceneFixture {
	return &SceneFixture{name: name, configure: configure, build: build, opts: opts}
}

func (f *SceneFixture) Name() string { return f.name }

// Start creates a quiet registry, runs configure, builds the tree and
// injects it.
func (f *SceneFixture) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := NewRegistry(f.opts...)
	if f.configure != nil {
		if err := f.configure(r); err != nil {
			return fmt.Errorf("configure %s: %w", f.name, err)
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	root, err := f.build()
	if err != nil {
		return fmt.Errorf("build %s: %w", f.name, err)
	}
	if root == nil {
		return errors.InvalidInput("root", "build returned no root")
	}
	if err := r.Injector().ProvideTreeContext(ctx, root); err != nil {
		root.Free()
		return err
	}

	f.Registry, f.Root, f.started = r, root, true
	return nil
}

// Stop frees the tree.
func (f *SceneFixture) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Root != nil {
		f.Root.Free()
	}
	f.started = false
	return nil
}

func (f *SceneFixture) Health(ctx context.Context) component.Health {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := component.Health{Name: f.name, Status: component.StatusHealthy}
	switch {
	case !f.started || f.Root == nil || !f.Root.Alive():
		h.Status = component.StatusUnhealthy
		h.Message = "tree not running"
	case f.Registry.Err() != nil:
		h.Status = component.StatusDegraded
		h.Message = f.Registry.Err().Error()
	}
	return h
}

// Reset frees the tree and starts over with a new registry.
func (f *SceneFixture) Reset(ctx context.Context) error {
	if err := f.Stop(ctx); err != nil {
		return err
	}
	return f.Start(ctx)
}

// Snapshot returns the current Layout of the tree.
func (f *SceneFixture) Snapshot(ctx context.Context) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Root == nil {
		return nil, errors.ServiceUnavailable(f.name)
	}
	layout := make(Layout)
	f.Root.Walk(func(n *scene.Node) bool {
		layout[n] = n.ChildNodes()
		return true
	})
	return layout, nil
}

// Restore brings the tree back to a Layout. Nodes added since the snapshot,
// such as scene instances, are freed. Nodes removed since are attached
// again at the end of their parent's children.
func (f *SceneFixture) Restore(ctx context.Context, snapshot any) error {
	layout, ok := snapshot.(Layout)
	if !ok {
		return errors.InvalidInput("snapshot", fmt.Sprintf("expected testutil.Layout, got %T", snapshot))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for parent, want := range layout {
		keep := make(map[*scene.Node]bool, len(want))
		for _, c := range want {
			keep[c] = true
		}
		for _, c := range parent.ChildNodes() {
			if !keep[c] {
				c.Free()
			}
		}
	}
	for parent, want := range layout {
		for _, c := range want {
			if c.Parent() == parent {
				continue
			}
			c.Detach()
			if err := parent.AddChild(c); err != nil {
				return err
			}
		}
	}
	return nil
}
