package di

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/scenedi/errors"
)

func TestProvideTreePreOrderOnce(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Type[Logger](), Singleton)

	var order []string
	node := func(name string) *fakeNode {
		n := newFakeNode(name, Slot{Name: "log", Key: TypeOf[*Logger]()})
		n.order = &order
		return n
	}
	c, d := node("c"), node("d")
	b := node("b").with(c, d)
	e := node("e")
	root := node("a").with(b, e)

	if err := r.ProvideTree(root); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if got := fmt.Sprint(order); got != "[a b c d e]" {
		t.Errorf("expected pre-order [a b c d e], got %s", got)
	}

	log := MustGet[*Logger](r)
	for _, n := range []*fakeNode{root, b, c, d, e} {
		if n.got["log"] != log {
			t.Errorf("node %s: expected shared logger, got %v", n.name, n.got["log"])
		}
		if n.posts != 1 {
			t.Errorf("node %s: expected one post-inject, got %d", n.name, n.posts)
		}
	}
}

func TestProvideTreeRecursesThroughNodesWithoutSlots(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Literal("debug-mode"), Value).ToVar("mode")

	leaf := newFakeNode("leaf", Slot{Name: "mode"})
	root := newFakeNode("root").with(newFakeNode("empty").with(leaf))

	if err := r.ProvideTree(root); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if leaf.got["mode"] != "debug-mode" {
		t.Errorf("expected leaf to be injected, got %v", leaf.got["mode"])
	}
}

func TestProvideTreeVarNamePrecedence(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Literal("by-key"), Value).ToVar("other")
	r.Bind(Literal(7), Value).ToVar("mode")

	n := newFakeNode("n", Slot{Name: "mode", Key: VarName("other")})
	if err := r.ProvideTree(n); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if n.got["mode"] != 7 {
		t.Errorf("expected the var binding named after the slot, got %v", n.got["mode"])
	}

	fallback := newFakeNode("f", Slot{Name: "unbound", Key: VarName("other")})
	if err := r.ProvideTree(fallback); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if fallback.got["unbound"] != "by-key" {
		t.Errorf("expected the declared key to be used, got %v", fallback.got["unbound"])
	}
}

func TestProvideTreeMissingBinding(t *testing.T) {
	tests := []struct {
		name string
		slot Slot
		key  string
	}{
		{"by key", Slot{Name: "log", Key: TypeOf[*Logger]()}, "type(*di.Logger)"},
		{"by name only", Slot{Name: "mode"}, "var(mode)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			child := newFakeNode("child", tt.slot)
			sibling := newFakeNode("sibling")
			root := newFakeNode("root").with(child, sibling)

			err := r.ProvideTree(root)
			if !IsBindingNotFound(err) {
				t.Fatalf("expected binding not found, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			if appErr.Details["node"] != "/root/child" {
				t.Errorf("expected node detail /root/child, got %v", appErr.Details["node"])
			}
			if appErr.Details["slot"] != tt.slot.Name {
				t.Errorf("expected slot detail %s, got %v", tt.slot.Name, appErr.Details["slot"])
			}
			if appErr.Details["key"] != tt.key {
				t.Errorf("expected key detail %s, got %v", tt.key, appErr.Details["key"])
			}
			if child.posts != 0 {
				t.Error("expected post-inject not to run for a failed node")
			}
			if sibling.posts != 0 {
				t.Error("expected the walk to stop at the first failure")
			}
		})
	}
}

func TestProvideTreeOptionalSlot(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Literal("debug-mode"), Value).ToVar("mode")

	n := newFakeNode("n",
		Slot{Name: "log", Key: TypeOf[*Logger](), Optional: true},
		Slot{Name: "extra", Optional: true},
		Slot{Name: "mode"},
	)
	if err := r.ProvideTree(n); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if _, set := n.got["log"]; set {
		t.Error("expected unbound optional slot to stay unset")
	}
	if n.got["mode"] != "debug-mode" {
		t.Errorf("expected mode to be injected, got %v", n.got["mode"])
	}
}

func TestProvideTreeNoParentConfigured(t *testing.T) {
	r := newTestRegistry()
	r.Bind(SceneOf[*fakeNode](&fakeScene{path: "res://bullet"}), SceneInstance).ToVar("bullet")

	child := newFakeNode("gun", Slot{Name: "bullet"})
	root := newFakeNode("root").with(child)

	err := r.ProvideTree(root)
	if !IsNoParentConfigured(err) {
		t.Fatalf("expected no parent configured, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["node"] != "/root/gun" || appErr.Details["slot"] != "bullet" {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}

func TestProvideTreeSceneSlot(t *testing.T) {
	r := newTestRegistry()
	world := newFakeNode("world")
	r.SetDefaultSceneParent(world)
	r.Bind(SceneOf[*fakeNode](&fakeScene{path: "res://bullet"}), SceneInstance).ToVar("bullet")

	gun := newFakeNode("gun", Slot{Name: "bullet"})
	if err := r.ProvideTree(gun); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if _, ok := gun.got["bullet"].(*fakeNode); !ok {
		t.Errorf("expected a scene root, got %T", gun.got["bullet"])
	}
	if len(world.children) != 1 {
		t.Errorf("expected the instance under the default parent, got %d children", len(world.children))
	}
}

func TestProvideTreeDuplicateNode(t *testing.T) {
	r := newTestRegistry()
	shared := newFakeNode("shared")
	root := newFakeNode("root").with(shared, shared)

	err := r.ProvideTree(root)
	if !IsCircularDependency(err) {
		t.Fatalf("expected circular dependency, got %v", err)
	}
	if shared.posts != 1 {
		t.Errorf("expected the node to be injected once, got %d", shared.posts)
	}
}

func TestProvideTreeSelfContainingNode(t *testing.T) {
	r := newTestRegistry()
	loop := newFakeNode("loop")
	loop.children = append(loop.children, loop)

	if err := r.ProvideTree(loop); !IsCircularDependency(err) {
		t.Errorf("expected circular dependency, got %v", err)
	}
}

func TestProvideTreeReentrantAncestor(t *testing.T) {
	r := newTestRegistry()
	child := newFakeNode("child")
	root := newFakeNode("root").with(child)
	child.postHook = func() error {
		return r.ProvideTree(root)
	}

	err := r.ProvideTree(root)
	if !IsCircularDependency(err) {
		t.Fatalf("expected circular dependency, got %v", err)
	}

	// The active set is released after a failed pass.
	child.postHook = nil
	if err := r.ProvideTree(root); err != nil {
		t.Errorf("expected a clean pass afterwards, got %v", err)
	}
}

func TestProvideTreeSequentialPasses(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Type[Logger](), Instance)
	n := newFakeNode("n", Slot{Name: "log", Key: TypeOf[*Logger]()})

	for i := 0; i < 2; i++ {
		if err := r.ProvideTree(n); err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
	}
	if n.posts != 2 {
		t.Errorf("expected one post-inject per pass, got %d", n.posts)
	}
}

func TestProvideTreeOverlappingPasses(t *testing.T) {
	r := newTestRegistry()
	shared := newFakeNode("shared")
	other := newFakeNode("other").with(shared)

	var overlapErr error
	shared.postHook = func() error {
		shared.postHook = nil
		done := make(chan error)
		go func() { done <- r.ProvideTree(other) }()
		overlapErr = <-done
		return nil
	}

	if err := r.ProvideTree(newFakeNode("root").with(shared)); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if !IsCircularDependency(overlapErr) {
		t.Errorf("expected an overlapping pass to report a cycle, got %v", overlapErr)
	}
	if err := r.ProvideTree(other); err != nil {
		t.Errorf("expected the pass to succeed once the first one finished, got %v", err)
	}
}

func TestProvideTreeInjectError(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Literal("x"), Value).ToVar("mode")
	n := newFakeNode("n", Slot{Name: "mode"})
	n.injectErr = fmt.Errorf("read-only")

	if err := r.ProvideTree(n); !IsResolutionFailed(err) {
		t.Errorf("expected resolution failed, got %v", err)
	}
}

func TestProvideTreePostInjectError(t *testing.T) {
	r := newTestRegistry()
	n := newFakeNode("n")
	n.postHook = func() error { return fmt.Errorf("not ready") }

	err := r.ProvideTree(n)
	if !IsResolutionFailed(err) {
		t.Fatalf("expected resolution failed, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["node"] != "/n" {
		t.Errorf("expected node detail /n, got %v", appErr.Details["node"])
	}
}

func TestProvideTreeNilRoot(t *testing.T) {
	r := newTestRegistry()
	if err := r.ProvideTree(nil); err == nil {
		t.Error("expected error for nil root")
	}
	if err := r.Inject(nil); err == nil {
		t.Error("expected error for nil node")
	}
}

func TestInjectSingleNode(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Literal("debug-mode"), Value).ToVar("mode")

	child := newFakeNode("child", Slot{Name: "mode"})
	root := newFakeNode("root", Slot{Name: "mode"}).with(child)

	if err := r.Inject(root); err != nil {
		t.Fatalf("Inject failed: %v", err)
	}
	if root.got["mode"] != "debug-mode" || root.posts != 1 {
		t.Error("expected root to be injected")
	}
	if len(child.got) != 0 || child.posts != 0 {
		t.Error("expected children to be left alone")
	}
}

func TestInjectObserver(t *testing.T) {
	obs := &recordingObserver{}
	r := newTestRegistry(WithObserver(obs))
	r.Bind(Literal("debug-mode"), Value).ToVar("mode")

	ok := newFakeNode("ok", Slot{Name: "mode"})
	bad := newFakeNode("bad", Slot{Name: "missing"})
	root := newFakeNode("root").with(ok, bad)

	_ = r.Injector().ProvideTreeContext(context.Background(), root)

	if len(obs.injects) != 3 {
		t.Fatalf("expected 3 observed nodes, got %d", len(obs.injects))
	}
	if obs.injects[1].node != "/root/ok" || obs.injects[1].slots != 1 || obs.injects[1].err != nil {
		t.Errorf("unexpected observation %+v", obs.injects[1])
	}
	if obs.injects[2].err == nil {
		t.Error("expected the failing node to be observed with its error")
	}
}

type player struct {
	Slots
	log     *Logger
	mode    string
	dealers []Damage
	ready   bool
}

func newPlayer() *player {
	p := &player{}
	Declare(&p.Slots, "log", TypeOf[*Logger](), &p.log)
	DeclareOptional(&p.Slots, "mode", Key{}, &p.mode)
	DeclareAll(&p.Slots, "dealers", &p.dealers)
	p.OnInjected(func() error {
		p.ready = p.log != nil
		return nil
	})
	return p
}

// playerNode carries its consumer as a payload instead of being one.
type playerNode struct {
	id     string
	script *player
}

func (n *playerNode) ID() string         { return n.id }
func (n *playerNode) Name() string       { return "player" }
func (n *playerNode) Children() []Node   { return nil }
func (n *playerNode) Consumer() Consumer { return n.script }

func TestSlotsConsumer(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Type[Logger](), Singleton)
	r.Bind(Literal("debug-mode"), Value).ToVar("mode")
	ToBase[Damage](r.Bind(Type[DamageDealer](), Instance), Fire)
	ToBase[Damage](r.Bind(Type[FreezeDealer](), Instance), Ice)

	p := newPlayer()
	if err := r.ProvideTree(p.asNode()); err != nil {
		t.Fatalf("ProvideTree failed: %v", err)
	}
	if p.log != MustGet[*Logger](r) {
		t.Error("expected logger slot to be filled")
	}
	if p.mode != "debug-mode" {
		t.Errorf("expected mode debug-mode, got %q", p.mode)
	}
	if len(p.dealers) != 2 || p.dealers[0].Deal() != "fire" || p.dealers[1].Deal() != "ice" {
		t.Errorf("unexpected dealers %v", p.dealers)
	}
	if !p.ready {
		t.Error("expected OnInjected callback to run")
	}
}

func (p *player) asNode() Node {
	nodeSeq++
	return &playerNode{id: fmt.Sprintf("player-%d", nodeSeq), script: p}
}

func TestSlotsTypeMismatch(t *testing.T) {
	r := newTestRegistry()
	r.Bind(Literal(42), Value).ToVar("log")

	p := newPlayer()
	if err := r.ProvideTree(p.asNode()); !IsResolutionFailed(err) {
		t.Errorf("expected resolution failed, got %v", err)
	}
}

func TestSlotsUnknownSlot(t *testing.T) {
	var s Slots
	if err := s.Inject("nope", 1); err == nil {
		t.Error("expected error for undeclared slot")
	}
}

func TestAssign(t *testing.T) {
	var n int
	if err := Assign(&n, 5, "n"); err != nil || n != 5 {
		t.Errorf("expected 5, got %d (%v)", n, err)
	}
	if err := Assign(&n, "five", "n"); err == nil {
		t.Error("expected error for wrong type")
	}
	if err := Assign(n, 5, "n"); err == nil {
		t.Error("expected error for non-pointer destination")
	}

	var d Damage
	if err := Assign(&d, &FreezeDealer{}, "d"); err != nil || d.Deal() != "ice" {
		t.Errorf("expected interface assignment, got %v", err)
	}
	if err := Assign(&d, nil, "d"); err != nil || d != nil {
		t.Errorf("expected nil to reset the destination, got %v", err)
	}
}
