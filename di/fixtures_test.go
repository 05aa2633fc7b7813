package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/scenedi/logger"
)

func newTestRegistry(opts ...Option) *Registry {
	return NewRegistry(append([]Option{WithLogger(logger.Nop())}, opts...)...)
}

type Logger struct {
	Prefix string
	inits  int
}

func (l *Logger) Init() error {
	l.inits++
	return nil
}

type Damage interface {
	Deal() string
}

type Kind int

const (
	Fire Kind = iota + 1
	Ice
)

type DamageDealer struct{}

func (*DamageDealer) Deal() string { return "fire" }

type FreezeDealer struct{}

func (*FreezeDealer) Deal() string { return "ice" }

type PlasmaDealer struct{}

func (*PlasmaDealer) Deal() string { return "plasma" }

// fakeNode is a tree node that records how the injector treats it.
type fakeNode struct {
	id       string
	name     string
	children []Node
	dead     bool

	deps      []Slot
	got       map[string]any
	posts     int
	order     *[]string
	postHook  func() error
	injectErr error
}

var nodeSeq int

func newFakeNode(name string, deps ...Slot) *fakeNode {
	nodeSeq++
	return &fakeNode{
		id:   fmt.Sprintf("%s-%d", name, nodeSeq),
		name: name,
		deps: deps,
		got:  make(map[string]any),
	}
}

func (n *fakeNode) with(children ...*fakeNode) *fakeNode {
	for _, c := range children {
		n.children = append(n.children, c)
	}
	return n
}

func (n *fakeNode) ID() string       { return n.id }
func (n *fakeNode) Name() string     { return n.name }
func (n *fakeNode) Children() []Node { return n.children }
func (n *fakeNode) Alive() bool      { return !n.dead }

func (n *fakeNode) AddChild(child Node) error {
	n.children = append(n.children, child)
	return nil
}

func (n *fakeNode) Dependencies() []Slot {
	if n.order != nil {
		*n.order = append(*n.order, n.name)
	}
	return n.deps
}

func (n *fakeNode) Inject(slot string, value any) error {
	if n.injectErr != nil {
		return n.injectErr
	}
	n.got[slot] = value
	return nil
}

func (n *fakeNode) PostInject() error {
	n.posts++
	if n.postHook != nil {
		return n.postHook()
	}
	return nil
}

// fakeScene builds a new fakeNode root per instantiation.
type fakeScene struct {
	path  string
	count int
	err   error
	build func() Node
}

func (s *fakeScene) Path() string { return s.path }

func (s *fakeScene) Instantiate() (Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.count++
	if s.build != nil {
		return s.build(), nil
	}
	return newFakeNode(fmt.Sprintf("instance%d", s.count)), nil
}

type resolveCall struct {
	key      string
	strategy string
	err      error
}

type injectCall struct {
	node  string
	slots int
	err   error
}

type recordingObserver struct {
	mu       sync.Mutex
	resolves []resolveCall
	injects  []injectCall
}

func (o *recordingObserver) ObserveResolve(_ context.Context, key, strategy string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolves = append(o.resolves, resolveCall{key: key, strategy: strategy, err: err})
}

func (o *recordingObserver) ObserveInject(_ context.Context, node string, slots int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.injects = append(o.injects, injectCall{node: node, slots: slots, err: err})
}
