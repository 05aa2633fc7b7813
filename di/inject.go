package di

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
	"github.com/kbukum/scenedi/observability"
)

// Slot is a dependency declared by a consumer.
type Slot struct {
	// Name is the slot identifier. A binding registered with ToVar(Name)
	// takes precedence over Key.
	Name string
	// Key is looked up when no variable binding matches Name.
	Key Key
	// Optional slots are skipped when nothing is bound for them.
	Optional bool
}

// Consumer is implemented by nodes, or payloads attached to nodes, that
// declare dependencies.
type Consumer interface {
	Dependencies() []Slot
	Inject(slot string, value any) error
}

// PostInjector is optionally implemented by consumers that need to run once
// all of their slots are filled.
type PostInjector interface {
	PostInject() error
}

// ConsumerHolder is implemented by nodes that carry a separate consumer
// payload instead of being one.
type ConsumerHolder interface {
	Consumer() Consumer
}

// ConsumerOf returns the consumer for node, or nil if it declares nothing.
func ConsumerOf(node Node) Consumer {
	if c, ok := node.(Consumer); ok {
		return c
	}
	if h, ok := node.(ConsumerHolder); ok {
		return h.Consumer()
	}
	return nil
}

// Injector walks consumer trees and fills their slots from a Registry.
//
// Nodes whose subtree is being injected are tracked, so a post-injection
// hook that injects one of its ancestors again fails with a circular
// dependency error instead of recursing without bound.
//
// The tracked set is shared by every pass of one Injector. Passes over
// disjoint trees may run concurrently, but passes that share a node must
// run one at a time: a pass reaching a node another pass is still inside
// reports a circular dependency.
type Injector struct {
	r      *Registry
	active map[string]struct{}
	mu     sync.Mutex
}

// NewInjector creates an injector resolving from r.
func NewInjector(r *Registry) *Injector {
	return &Injector{r: r, active: make(map[string]struct{})}
}

type injectStats struct {
	nodes int
	slots int
}

// ProvideTree injects root and then every descendant in pre-order, each
// exactly once. A missing binding aborts the walk with an error naming the
// node path and slot.
func (in *Injector) ProvideTree(root Node) error {
	return in.ProvideTreeContext(context.Background(), root)
}

// ProvideTreeContext is ProvideTree with a context for tracing.
func (in *Injector) ProvideTreeContext(ctx context.Context, root Node) error {
	if root == nil {
		return errors.InvalidInput("root", "root node is nil")
	}

	ctx, span := observability.StartSpan(ctx, SpanProvideTree)
	defer span.End()

	start := time.Now()
	visited := make(map[string]struct{})
	stats := &injectStats{}

	err := in.walk(ctx, root, nil, visited, stats)

	span.SetAttributes(
		attribute.Int(AttrNodes, stats.nodes),
		attribute.Int(AttrSlots, stats.slots),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	in.r.log.WithContext(ctx).Info("tree provided", logger.Fields(
		logger.FieldNode, root.Name(),
		logger.FieldNodes, stats.nodes,
		logger.FieldSlots, stats.slots,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return nil
}

// Inject fills the slots of node only. Children are not visited, so their
// dependencies stay unset; prefer ProvideTree.
func (in *Injector) Inject(node Node) error {
	return in.InjectContext(context.Background(), node)
}

// InjectContext is Inject with a context for tracing.
func (in *Injector) InjectContext(ctx context.Context, node Node) error {
	if node == nil {
		return errors.InvalidInput("node", "node is nil")
	}
	ctx, span := observability.StartSpan(ctx, SpanInject)
	defer span.End()

	if err := in.begin(node, []string{node.Name()}); err != nil {
		return err
	}
	defer in.end(node)

	_, err := in.injectNode(ctx, node, "/"+node.Name())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (in *Injector) walk(ctx context.Context, node Node, path []string, visited map[string]struct{}, stats *injectStats) error {
	path = append(path, node.Name())

	id := node.ID()
	if _, seen := visited[id]; seen {
		return errors.CircularDependency(path).WithDetail(logger.FieldNode, nodePath(path))
	}
	visited[id] = struct{}{}

	if err := in.begin(node, path); err != nil {
		return err
	}
	defer in.end(node)

	slots, err := in.injectNode(ctx, node, nodePath(path))
	stats.nodes++
	stats.slots += slots
	if err != nil {
		return err
	}

	for _, child := range node.Children() {
		if child == nil {
			continue
		}
		if err := in.walk(ctx, child, path, visited, stats); err != nil {
			return err
		}
	}
	return nil
}

func (in *Injector) begin(node Node, path []string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, busy := in.active[node.ID()]; busy {
		return errors.CircularDependency(append([]string(nil), path...)).
			WithDetail(logger.FieldNode, nodePath(path))
	}
	in.active[node.ID()] = struct{}{}
	return nil
}

func (in *Injector) end(node Node) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.active, node.ID())
}

// injectNode resolves and assigns every slot of node, then runs its
// post-injection hook. It returns the number of slots filled.
func (in *Injector) injectNode(ctx context.Context, node Node, path string) (filled int, err error) {
	consumer := ConsumerOf(node)
	if consumer == nil {
		return 0, nil
	}
	defer func() {
		in.r.observer.ObserveInject(ctx, path, filled, err)
	}()

	res := in.r.newResolution(ctx)
	for _, slot := range consumer.Dependencies() {
		key := in.slotKey(slot)
		if key.IsZero() {
			if slot.Optional {
				continue
			}
			return filled, slotError(errors.BindingNotFound(VarName(slot.Name).String()), path, slot.Name)
		}

		v, err := res.Resolve(key)
		if err != nil {
			if slot.Optional && IsBindingNotFound(err) {
				continue
			}
			return filled, slotError(err, path, slot.Name)
		}
		if err := consumer.Inject(slot.Name, v); err != nil {
			return filled, slotError(errors.ResolutionFailed(key.String(), err), path, slot.Name)
		}
		filled++

		in.r.log.Debug("slot injected", logger.Fields(
			logger.FieldNode, path,
			logger.FieldSlot, slot.Name,
			logger.FieldKey, key.String(),
		))
	}

	if hook, ok := consumer.(PostInjector); ok {
		if err := hook.PostInject(); err != nil {
			return filled, wrapHookError(err, path)
		}
	}
	return filled, nil
}

// slotKey prefers a variable binding named after the slot over its declared key.
func (in *Injector) slotKey(slot Slot) Key {
	if slot.Name != "" {
		if byName := VarName(slot.Name); in.r.Has(byName) {
			return byName
		}
	}
	return slot.Key
}

func slotError(err error, path, slot string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail(logger.FieldNode, path).WithDetail(logger.FieldSlot, slot)
	}
	return fmt.Errorf("node %s slot %s: %w", path, slot, err)
}

func wrapHookError(err error, path string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail(logger.FieldNode, path)
	}
	return errors.ResolutionFailed("post_inject", err).WithDetail(logger.FieldNode, path)
}

func nodePath(names []string) string {
	return "/" + strings.Join(names, "/")
}

// Span and attribute names reported by the injector.
const (
	SpanProvideTree = "di.provide_tree"
	SpanInject      = "di.inject"
	AttrNodes       = "di.nodes"
	AttrSlots       = "di.slots"
)
