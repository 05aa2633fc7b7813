package di

import (
	stderrors "errors"
	"reflect"
	"sort"
	"sync"

	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
)

// Registry maps keys to bindings and caches singleton values.
//
// The mutex guards the maps only; it is never held while constructors,
// initializers or scenes run, so producers may resolve further dependencies.
type Registry struct {
	bindings   map[Key]*Binding
	mapped     map[reflect.Type][]Key
	singletons map[*Binding]any
	errs       []error

	defaultParent Parent
	injector      *Injector

	log      *logger.Logger
	observer Observer
	mu       sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for binding, resolution and injection logs.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithObserver registers an observer notified of every resolution and injection.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithDefaultSceneParent sets the initial default scene parent.
func WithDefaultSceneParent(p Parent) Option {
	return func(r *Registry) {
		r.defaultParent = p
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bindings:   make(map[Key]*Binding),
		mapped:     make(map[reflect.Type][]Key),
		singletons: make(map[*Binding]any),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("di")
	}
	r.injector = NewInjector(r)
	return r
}

// Bind registers src under its primary key with the given strategy and
// returns a Binder for adding aliases. Binding a key that is already bound
// replaces the previous binding: its ToVar and ToBase aliases move to the
// new binding, keeping their mapped positions, and its cached singleton is
// dropped. When both bindings are Value literals the aliases stay with the
// old literal, which remains reachable by them. Invalid pairings are
// rejected immediately: the binding is not registered and the error is
// reported by Binder.Err and Registry.Err.
func (r *Registry) Bind(src Source, s Strategy) *Binder {
	b := &Binder{r: r}
	if err := validateSource(src, s); err != nil {
		b.binding = &Binding{key: keyOrZero(src), source: src, strategy: s}
		return b.fail(err)
	}

	binding := &Binding{key: src.primaryKey(), source: src, strategy: s}
	b.binding = binding

	r.mu.Lock()
	old, replaced := r.bindings[binding.key]
	r.bindings[binding.key] = binding
	if replaced {
		r.retire(old, binding)
	}
	r.mu.Unlock()

	r.log.Debug("binding registered", logger.Fields(
		logger.FieldKey, binding.key.String(),
		logger.FieldStrategy, s.String(),
		"source", src.String(),
		"replaced", replaced,
	))
	return b
}

// BindValues binds every entry as a Value literal reachable by its name.
// Entries are bound in name order; all failures are returned joined.
func (r *Registry) BindValues(values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := r.Bind(Literal(values[name]), Value).ToVar(name).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Lookup returns the binding registered under key without resolving it.
func (r *Registry) Lookup(key Key) (*Binding, bool) {
	return r.lookup(key)
}

// Has reports whether a binding is registered under key.
func (r *Registry) Has(key Key) bool {
	_, ok := r.lookup(key)
	return ok
}

// Err returns every bind-time error recorded so far, joined, or nil.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return stderrors.Join(r.errs...)
}

// BindingInfo describes a registered binding for introspection.
type BindingInfo struct {
	Key      string   `json:"key"`
	Aliases  []string `json:"aliases,omitempty"`
	Strategy string   `json:"strategy"`
	Source   string   `json:"source"`
	Cached   bool     `json:"cached"`
}

// Bindings returns every reachable binding, ordered by primary key.
// Aliases only list keys that still lead to the binding.
func (r *Registry) Bindings() []BindingInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make(map[*Binding][]Key)
	for k, b := range r.bindings {
		keys[b] = append(keys[b], k)
	}

	result := make([]BindingInfo, 0, len(keys))
	for b, ks := range keys {
		aliases := make([]string, 0, len(ks))
		for _, k := range ks {
			if k != b.key {
				aliases = append(aliases, k.String())
			}
		}
		sort.Strings(aliases)
		primary := b.key.String()
		if r.bindings[b.key] != b && len(aliases) > 0 {
			// A replaced literal is listed under the first alias it kept.
			primary, aliases = aliases[0], aliases[1:]
		}
		_, cached := r.singletons[b]
		result = append(result, BindingInfo{
			Key:      primary,
			Aliases:  aliases,
			Strategy: b.strategy.String(),
			Source:   b.source.String(),
			Cached:   cached,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Key != result[j].Key {
			return result[i].Key < result[j].Key
		}
		return result[i].Source < result[j].Source
	})
	return result
}

// MappedKeys returns the keys of iface's mapped group in registration order.
func (r *Registry) MappedKeys(iface reflect.Type) []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Key, len(r.mapped[iface]))
	copy(out, r.mapped[iface])
	return out
}

// ProvideTree injects root and all of its descendants. See Injector.ProvideTree.
func (r *Registry) ProvideTree(root Node) error {
	return r.injector.ProvideTree(root)
}

// Inject fills the slots of a single node. See Injector.Inject.
func (r *Registry) Inject(node Node) error {
	return r.injector.Inject(node)
}

// Injector returns the injector shared by ProvideTree and Inject.
func (r *Registry) Injector() *Injector {
	return r.injector
}

// --- internal ---

func (r *Registry) lookup(key Key) (*Binding, bool) {
	if key.kind == KindMapped && key.disc != nil && !reflect.TypeOf(key.disc).Comparable() {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[key]
	return b, ok
}

func (r *Registry) alias(key Key, b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[key] = b
	b.aliases = appendUnique(b.aliases, key)
}

// mapTo aliases key and appends it to its interface group. A key that is
// mapped again keeps its original position.
func (r *Registry) mapTo(key Key, b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[key] = b
	b.aliases = appendUnique(b.aliases, key)
	for _, k := range r.mapped[key.typ] {
		if k == key {
			return
		}
	}
	r.mapped[key.typ] = append(r.mapped[key.typ], key)
}

// retire hands the aliases of a replaced binding to its successor. The
// caller holds the write lock.
func (r *Registry) retire(old, next *Binding) {
	delete(r.singletons, old)
	if old.strategy == Value && next.strategy == Value {
		return
	}
	for _, k := range old.aliases {
		if r.bindings[k] != old {
			continue
		}
		r.bindings[k] = next
		next.aliases = appendUnique(next.aliases, k)
	}
	old.aliases = nil
}

func (r *Registry) recordErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *Registry) cached(b *Binding) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.singletons[b]
	return v, ok
}

// storeSingleton caches v unless another resolution got there first, and
// returns the value that won.
func (r *Registry) storeSingleton(b *Binding, v any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.singletons[b]; ok {
		return existing
	}
	r.singletons[b] = v
	return v
}

func (r *Registry) evictSingleton(b *Binding, stale any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.singletons[b]
	if !ok {
		return
	}
	if t := reflect.TypeOf(current); t != nil && t.Comparable() && current != stale {
		return
	}
	delete(r.singletons, b)
}

func keyOrZero(src Source) Key {
	if src == nil {
		return Key{}
	}
	return src.primaryKey()
}

func appendUnique(keys []Key, key Key) []Key {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}

// errInvalid is a shorthand used by resolution paths that detect a binding
// whose produced value does not match what its source promised.
func errInvalid(key Key, reason string) error {
	return errors.InvalidBinding(key.String(), reason)
}
