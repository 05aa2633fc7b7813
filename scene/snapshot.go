package scene

// Snapshot is a serializable view of a node subtree.
type Snapshot struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Alive    bool       `json:"alive"`
	Slots    []string   `json:"slots,omitempty"`
	Children []Snapshot `json:"children,omitempty"`
}

// Snapshot captures n and its descendants.
func (n *Node) Snapshot() Snapshot {
	s := Snapshot{
		ID:    n.id,
		Name:  n.name,
		Path:  n.Path(),
		Alive: n.Alive(),
	}
	if c := n.Consumer(); c != nil {
		for _, slot := range c.Dependencies() {
			s.Slots = append(s.Slots, slot.Name)
		}
	}
	for _, child := range n.ChildNodes() {
		s.Children = append(s.Children, child.Snapshot())
	}
	return s
}
