package di

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
)

// Resolver produces values for keys. The Registry is a Resolver; so is the
// handle passed to Constructor functions, which carries the current
// resolution chain for cycle detection.
type Resolver interface {
	Resolve(key Key, opts ...ResolveOption) (any, error)
	GetWithClass(t reflect.Type) (any, error)
	GetWithVarName(name string) (any, error)
	GetMapped(iface reflect.Type, disc any) (any, error)
	GetAllMapped(iface reflect.Type) ([]any, error)
}

// ResolveOption adjusts a single resolution.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	parent Parent
}

// WithParent attaches scene instances produced by this resolution to p
// instead of the default scene parent.
func WithParent(p Parent) ResolveOption {
	return func(o *resolveOptions) {
		o.parent = p
	}
}

// Resolve produces the value bound to key.
func (r *Registry) Resolve(key Key, opts ...ResolveOption) (any, error) {
	return r.newResolution(context.Background()).Resolve(key, opts...)
}

// GetWithClass resolves the binding keyed by type t. For a struct type the
// pointer binding created by Type is used when t itself is not bound.
func (r *Registry) GetWithClass(t reflect.Type) (any, error) {
	return r.newResolution(context.Background()).GetWithClass(t)
}

// GetWithVarName resolves the binding registered with ToVar(name).
func (r *Registry) GetWithVarName(name string) (any, error) {
	return r.newResolution(context.Background()).GetWithVarName(name)
}

// GetMapped resolves the implementation of iface registered under disc.
func (r *Registry) GetMapped(iface reflect.Type, disc any) (any, error) {
	return r.newResolution(context.Background()).GetMapped(iface, disc)
}

// GetAllMapped resolves every implementation mapped to iface, in the order
// they were registered, each with its own strategy. A group with no members
// yields an empty slice and no error.
func (r *Registry) GetAllMapped(iface reflect.Type) ([]any, error) {
	return r.newResolution(context.Background()).GetAllMapped(iface)
}

// WithContext returns a Resolver whose resolutions report spans and
// metrics against ctx.
func (r *Registry) WithContext(ctx context.Context) Resolver {
	return r.newResolution(ctx)
}

// --- typed helpers ---

// Get resolves the binding keyed by type T.
func Get[T any](r Resolver) (T, error) {
	var zero T
	v, err := r.GetWithClass(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	return cast[T](TypeOf[T](), v)
}

// MustGet resolves the binding keyed by type T and panics on failure.
func MustGet[T any](r Resolver) T {
	v, err := Get[T](r)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", TypeOf[T](), err))
	}
	return v
}

// GetVar resolves the binding registered with ToVar(name) as a T.
func GetVar[T any](r Resolver, name string) (T, error) {
	var zero T
	v, err := r.GetWithVarName(name)
	if err != nil {
		return zero, err
	}
	return cast[T](VarName(name), v)
}

// GetMapped resolves the implementation of I registered under disc.
func GetMapped[I any](r Resolver, disc any) (I, error) {
	var zero I
	v, err := r.GetMapped(reflect.TypeOf((*I)(nil)).Elem(), disc)
	if err != nil {
		return zero, err
	}
	return cast[I](Mapped[I](disc), v)
}

// GetAllMapped resolves every implementation of I in registration order.
// It returns an empty slice, not BindingNotFound, when nothing is mapped to I.
func GetAllMapped[I any](r Resolver) ([]I, error) {
	vs, err := r.GetAllMapped(reflect.TypeOf((*I)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	out := make([]I, 0, len(vs))
	for _, v := range vs {
		typed, err := cast[I](AllMappedOf[I](), v)
		if err != nil {
			return nil, err
		}
		out = append(out, typed)
	}
	return out, nil
}

// TryGet resolves T, returning false instead of an error when it cannot.
func TryGet[T any](r Resolver) (T, bool) {
	v, err := Get[T](r)
	return v, err == nil
}

func cast[T any](key Key, v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.InvalidBinding(key.String(), fmt.Sprintf("resolved %T, expected %s", v, reflect.TypeOf((*T)(nil)).Elem()))
	}
	return typed, nil
}

// --- resolution ---

type chainLink struct {
	key     Key
	binding *Binding
}

// resolution is one resolution chain. It is handed to constructors so
// nested lookups extend the chain.
type resolution struct {
	r     *Registry
	ctx   context.Context
	chain []chainLink
}

func (r *Registry) newResolution(ctx context.Context) *resolution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &resolution{r: r, ctx: ctx}
}

func (res *resolution) Resolve(key Key, opts ...ResolveOption) (any, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if key.kind == KindMapped && key.disc != nil && !reflect.TypeOf(key.disc).Comparable() {
		return nil, errors.InvalidBinding(typeName(key.typ), "mapped discriminator must be comparable")
	}

	binding, ok := res.r.lookup(key)
	if !ok {
		if key.kind == KindAllMapped {
			vs, err := res.gather(key, key.typ, o)
			if err != nil {
				return nil, err
			}
			return vs, nil
		}
		return nil, errors.BindingNotFound(key.String())
	}
	return res.produce(key, binding, o)
}

func (res *resolution) GetWithClass(t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.BindingNotFound(TypeKey(nil).String())
	}
	key := TypeKey(t)
	if !res.r.Has(key) && t.Kind() == reflect.Struct {
		if ptr := TypeKey(reflect.PointerTo(t)); res.r.Has(ptr) {
			key = ptr
		}
	}
	return res.Resolve(key)
}

func (res *resolution) GetWithVarName(name string) (any, error) {
	return res.Resolve(VarName(name))
}

func (res *resolution) GetMapped(iface reflect.Type, disc any) (any, error) {
	return res.Resolve(MappedKey(iface, disc))
}

func (res *resolution) GetAllMapped(iface reflect.Type) ([]any, error) {
	v, err := res.Resolve(AllMappedKey(iface))
	if err != nil {
		return nil, err
	}
	vs, _ := v.([]any)
	return vs, nil
}

// enter pushes binding onto the chain, failing if it is already on it.
func (res *resolution) enter(key Key, b *Binding) (*resolution, error) {
	for i, link := range res.chain {
		if link.binding == b {
			names := make([]string, 0, len(res.chain)-i+1)
			for _, l := range res.chain[i:] {
				names = append(names, l.key.String())
			}
			names = append(names, key.String())
			return nil, errors.CircularDependency(names)
		}
	}
	chain := make([]chainLink, len(res.chain), len(res.chain)+1)
	copy(chain, res.chain)
	return &resolution{r: res.r, ctx: res.ctx, chain: append(chain, chainLink{key: key, binding: b})}, nil
}

func (res *resolution) produce(key Key, b *Binding, o resolveOptions) (v any, err error) {
	if b.strategy == Value {
		return b.source.(*literalSource).value, nil
	}

	start := time.Now()
	defer func() {
		res.r.observer.ObserveResolve(res.ctx, key.String(), b.strategy.String(), time.Since(start), err)
	}()

	next, err := res.enter(key, b)
	if err != nil {
		return nil, err
	}

	switch b.strategy {
	case Instance:
		v, err = next.build(key, b)
	case Singleton:
		v, err = next.singleton(key, b)
	case SceneInstance:
		v, err = next.instantiate(key, b, o)
	case SceneSingleton:
		v, err = next.sceneSingleton(key, b, o)
	case AllMapped:
		v, err = next.gather(key, b.source.(*interfaceSource).typ, o)
	default:
		err = errInvalid(key, "unknown "+b.strategy.String())
	}
	if err != nil {
		return nil, err
	}

	res.r.log.Debug("resolved", logger.Fields(
		logger.FieldKey, key.String(),
		logger.FieldStrategy, b.strategy.String(),
	))
	return v, nil
}

func (res *resolution) build(key Key, b *Binding) (any, error) {
	src := b.source.(*typeSource)
	v, err := src.build(res)
	if err != nil {
		return nil, wrapFailure(key, err)
	}
	return v, nil
}

func (res *resolution) singleton(key Key, b *Binding) (any, error) {
	if v, ok := res.r.cached(b); ok {
		return v, nil
	}
	v, err := res.build(key, b)
	if err != nil {
		return nil, err
	}
	return res.r.storeSingleton(b, v), nil
}

func (res *resolution) instantiate(key Key, b *Binding, o resolveOptions) (any, error) {
	parent := o.parent
	if parent == nil {
		parent = res.r.DefaultSceneParent()
	}
	if parent == nil {
		return nil, errors.NoParentConfigured(key.String())
	}

	src := b.source.(*sceneSource)
	root, err := src.scene.Instantiate()
	if err != nil {
		return nil, wrapFailure(key, err)
	}
	if root == nil {
		return nil, errors.ResolutionFailed(key.String(), fmt.Errorf("scene %s produced no root", src.scene.Path()))
	}
	if !reflect.TypeOf(root).AssignableTo(src.typ) {
		return nil, errInvalid(key, fmt.Sprintf("scene %s root is %T, expected %s", src.scene.Path(), root, src.typ))
	}
	if err := parent.AddChild(root); err != nil {
		return nil, wrapFailure(key, err)
	}

	res.r.log.Debug("scene instantiated", logger.Fields(
		logger.FieldKey, key.String(),
		"scene", src.scene.Path(),
		"parent", parent.Name(),
	))
	return root, nil
}

// sceneSingleton reuses the cached root while it is alive. A root that was
// freed or detached outside the registry is dropped and the scene is
// instantiated again.
func (res *resolution) sceneSingleton(key Key, b *Binding, o resolveOptions) (any, error) {
	if v, ok := res.r.cached(b); ok {
		if node, isNode := v.(Node); !isNode || isAlive(node) {
			return v, nil
		}
		res.r.log.Warn("scene singleton is no longer alive, instantiating again", logger.Fields(
			logger.FieldKey, key.String(),
		))
		res.r.evictSingleton(b, v)
	}
	v, err := res.instantiate(key, b, o)
	if err != nil {
		return nil, err
	}
	return res.r.storeSingleton(b, v), nil
}

func (res *resolution) gather(key Key, iface reflect.Type, o resolveOptions) ([]any, error) {
	keys := res.r.MappedKeys(iface)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		b, ok := res.r.lookup(k)
		if !ok {
			continue
		}
		v, err := res.produce(k, b, o)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
