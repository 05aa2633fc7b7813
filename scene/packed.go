package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/errors"
)

// Template builds a fresh node tree for one instantiation.
type Template func() (*Node, error)

// PackedScene is a named scene resource. Every Instantiate call builds a new
// tree from its template.
type PackedScene struct {
	path     string
	template Template
}

// NewPackedScene creates a scene resource at path.
func NewPackedScene(path string, template Template) *PackedScene {
	return &PackedScene{path: path, template: template}
}

// Path implements di.SceneSource.
func (s *PackedScene) Path() string { return s.path }

// Instantiate implements di.SceneSource.
func (s *PackedScene) Instantiate() (di.Node, error) {
	root, err := s.InstantiateNode()
	if err != nil {
		return nil, err
	}
	return root, nil
}

// InstantiateNode builds a new tree and returns its concrete root.
func (s *PackedScene) InstantiateNode() (*Node, error) {
	if s.template == nil {
		return nil, fmt.Errorf("scene %s has no template", s.path)
	}
	root, err := s.template()
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", s.path, err)
	}
	if root == nil {
		return nil, fmt.Errorf("scene %s template returned no root", s.path)
	}
	return root, nil
}

// Library holds packed scenes by path.
type Library struct {
	scenes map[string]*PackedScene
	mu     sync.RWMutex
}

// NewLibrary creates an empty scene library.
func NewLibrary() *Library {
	return &Library{scenes: make(map[string]*PackedScene)}
}

// Register adds a scene, replacing any scene at the same path.
func (l *Library) Register(s *PackedScene) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scenes[s.path] = s
}

// Load returns the scene at path.
func (l *Library) Load(path string) (*PackedScene, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.scenes[path]
	if !ok {
		return nil, errors.NotFound("scene", path)
	}
	return s, nil
}

// Paths returns the registered scene paths in sorted order.
func (l *Library) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.scenes))
	for p := range l.scenes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
