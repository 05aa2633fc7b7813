package scene

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/errors"
)

// Node is an in-memory scene tree element. It satisfies di.Parent and
// di.Liveness, and carries an optional consumer payload.
type Node struct {
	id       string
	name     string
	root     bool
	freed    bool
	parent   *Node
	children []*Node
	consumer di.Consumer
	mu       sync.RWMutex
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithConsumer attaches c as the node's dependency payload.
func WithConsumer(c di.Consumer) NodeOption {
	return func(n *Node) {
		n.consumer = c
	}
}

// WithChildren adds children to the new node in order.
func WithChildren(children ...*Node) NodeOption {
	return func(n *Node) {
		for _, c := range children {
			if c == nil {
				continue
			}
			c.parent = n
			n.children = append(n.children, c)
		}
	}
}

// NewNode creates a detached node.
func NewNode(name string, opts ...NodeOption) *Node {
	n := &Node{id: uuid.NewString(), name: name}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewRoot creates the root of a tree. A root is alive until freed even
// though it has no parent.
func NewRoot(name string, opts ...NodeOption) *Node {
	n := NewNode(name, opts...)
	n.root = true
	return n
}

func (n *Node) ID() string   { return n.id }
func (n *Node) Name() string { return n.name }

// Children returns the node's children as di nodes.
func (n *Node) Children() []di.Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]di.Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

// ChildNodes returns the node's children.
func (n *Node) ChildNodes() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Parent returns the node's parent, nil for roots and detached nodes.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Consumer implements di.ConsumerHolder.
func (n *Node) Consumer() di.Consumer {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.consumer
}

// Attach replaces the node's consumer payload.
func (n *Node) Attach(c di.Consumer) {
	n.mu.Lock()
	n.consumer = c
	n.mu.Unlock()
}

// AddChild appends child to the node. The child must be a detached *Node
// that is not freed and is not an ancestor of n.
func (n *Node) AddChild(child di.Node) error {
	c, ok := child.(*Node)
	if !ok || c == nil {
		return errors.InvalidInput("child", "child must be a *scene.Node")
	}
	if n.isFreed() {
		return errors.InvalidInput("parent", "node "+n.Path()+" is freed")
	}
	if c.isFreed() {
		return errors.InvalidInput("child", "node "+c.name+" is freed")
	}
	if c.Parent() != nil {
		return errors.InvalidInput("child", "node "+c.name+" already has a parent")
	}
	for a := n; a != nil; a = a.Parent() {
		if a == c {
			return errors.InvalidInput("child", "node "+c.name+" is an ancestor of "+n.name)
		}
	}

	n.mu.Lock()
	n.children = append(n.children, c)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()
	return nil
}

// RemoveChild detaches child from n and reports whether it was a child.
func (n *Node) RemoveChild(child *Node) bool {
	n.mu.Lock()
	idx := -1
	for i, c := range n.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		n.mu.Unlock()
		return false
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	n.mu.Unlock()

	child.mu.Lock()
	child.parent = nil
	child.mu.Unlock()
	return true
}

// Detach removes the node from its parent.
func (n *Node) Detach() {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}

// Free detaches the node and marks it and its whole subtree as freed.
func (n *Node) Free() {
	n.Detach()
	n.Walk(func(node *Node) bool {
		node.mu.Lock()
		node.freed = true
		node.mu.Unlock()
		return true
	})
}

// Alive reports whether the node is not freed and is still connected to a
// root. It implements di.Liveness.
func (n *Node) Alive() bool {
	for a := n; a != nil; {
		a.mu.RLock()
		freed, root, parent := a.freed, a.root, a.parent
		a.mu.RUnlock()
		if freed {
			return false
		}
		if root {
			return true
		}
		a = parent
	}
	return false
}

// Path returns the slash-separated names from the topmost ancestor.
func (n *Node) Path() string {
	var names []string
	for a := n; a != nil; a = a.Parent() {
		names = append(names, a.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/")
}

// Find returns the node at path. Absolute paths start at the topmost
// ancestor and must name it first; relative paths start at n's children.
func (n *Node) Find(path string) (*Node, bool) {
	if path == "" {
		return nil, false
	}
	cur := n
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if strings.HasPrefix(path, "/") {
		for cur.Parent() != nil {
			cur = cur.Parent()
		}
		if parts[0] != cur.name {
			return nil, false
		}
		parts = parts[1:]
	}
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		next := cur.child(part)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits the node and its descendants in pre-order. Returning false
// from fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		c.Walk(fn)
	}
}

func (n *Node) child(name string) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *Node) isFreed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.freed
}
