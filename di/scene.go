package di

// Node is an element of the host tree visited by the injector.
type Node interface {
	// ID identifies the node for the lifetime of the tree.
	ID() string
	Name() string
	Children() []Node
}

// Parent is a node scene instances can be attached to.
type Parent interface {
	Node
	AddChild(child Node) error
}

// Liveness is implemented by nodes that can be freed or detached by code
// outside the registry. Scene singletons whose root is no longer alive are
// instantiated again on their next resolution.
type Liveness interface {
	Alive() bool
}

// SceneSource loads and instantiates a scene resource.
type SceneSource interface {
	Path() string
	Instantiate() (Node, error)
}

// SetDefaultSceneParent sets the parent scene strategies attach new
// instances to when no explicit parent is given. It replaces any previous
// default; nil clears it.
func (r *Registry) SetDefaultSceneParent(p Parent) {
	r.mu.Lock()
	r.defaultParent = p
	r.mu.Unlock()

	if p != nil {
		r.log.Debug("default scene parent set", map[string]interface{}{
			"parent": p.Name(),
		})
	}
}

// DefaultSceneParent returns the current default scene parent, or nil.
func (r *Registry) DefaultSceneParent() Parent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultParent
}

func isAlive(n Node) bool {
	if l, ok := n.(Liveness); ok {
		return l.Alive()
	}
	return true
}
