package di

import (
	"reflect"

	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
)

// Binding is a registered rule: a source produced with a strategy, reachable
// through its primary key and any aliases added with ToVar and ToBase.
type Binding struct {
	key      Key
	source   Source
	strategy Strategy
	aliases  []Key
}

func (b *Binding) Key() Key           { return b.key }
func (b *Binding) Source() Source     { return b.source }
func (b *Binding) Strategy() Strategy { return b.strategy }

// Aliases returns the extra keys the binding was registered under.
func (b *Binding) Aliases() []Key {
	out := make([]Key, len(b.aliases))
	copy(out, b.aliases)
	return out
}

// Binder refines a binding returned by Registry.Bind. After the first error
// every further call is a no-op and Err reports that error.
type Binder struct {
	r       *Registry
	binding *Binding
	err     error
}

// ToVar also registers the binding under VarName(name), which is how the
// injector matches slots by name.
func (b *Binder) ToVar(name string) *Binder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(errors.InvalidBinding(b.binding.key.String(), "variable name is empty"))
	}
	key := VarName(name)
	b.r.alias(key, b.binding)
	b.r.log.Debug("binding aliased", logger.Fields(
		logger.FieldKey, b.binding.key.String(),
		"alias", key.String(),
	))
	return b
}

// ToBase also registers the binding under MappedKey(iface, disc) and appends
// it to iface's mapped group, which GetAllMapped returns in registration
// order. disc must be comparable.
func (b *Binder) ToBase(iface reflect.Type, disc any) *Binder {
	if b.err != nil {
		return b
	}
	if iface == nil || iface.Kind() != reflect.Interface {
		return b.fail(errors.InvalidBinding(b.binding.key.String(), "mapped base must be an interface type, got "+typeName(iface)))
	}
	if disc == nil || !reflect.TypeOf(disc).Comparable() {
		return b.fail(errors.InvalidBinding(b.binding.key.String(), "mapped discriminator must be a non-nil comparable value"))
	}
	if b.binding.strategy == AllMapped {
		return b.fail(errors.InvalidBinding(b.binding.key.String(), "an all_mapped binding cannot itself be mapped"))
	}
	if t := b.binding.source.produces(); t != nil && !t.Implements(iface) {
		return b.fail(errors.InvalidBinding(b.binding.key.String(), t.String()+" does not implement "+iface.String()))
	}
	key := MappedKey(iface, disc)
	b.r.mapTo(key, b.binding)
	b.r.log.Debug("binding mapped", logger.Fields(
		logger.FieldKey, b.binding.key.String(),
		"alias", key.String(),
	))
	return b
}

// Err returns the first error met while binding, or nil.
func (b *Binder) Err() error { return b.err }

// Binding returns the registered binding, nil if binding failed.
func (b *Binder) Binding() *Binding {
	if b.err != nil {
		return nil
	}
	return b.binding
}

func (b *Binder) fail(err *errors.AppError) *Binder {
	b.err = err
	b.r.recordErr(err)
	b.r.log.Error("invalid binding", logger.Fields(
		logger.FieldKey, err.Details["key"],
		logger.FieldError, err.Message,
	))
	return b
}

func validateSource(src Source, s Strategy) *errors.AppError {
	if src == nil {
		return errors.InvalidBinding("<nil>", "source is nil")
	}
	key := src.primaryKey().String()
	if _, ok := strategyNames[s]; !ok {
		return errors.InvalidBinding(key, "unknown "+s.String())
	}
	if !s.accepts(src.kind()) {
		return errors.InvalidBinding(key, s.String()+" strategy cannot use a "+src.kind().String()+" source")
	}
	switch v := src.(type) {
	case *literalSource:
		if v.value == nil {
			return errors.InvalidBinding(key, "literal value is nil")
		}
	case *sceneSource:
		if v.scene == nil {
			return errors.InvalidBinding(key, "scene is nil")
		}
	case *interfaceSource:
		if v.typ.Kind() != reflect.Interface {
			return errors.InvalidBinding(key, v.typ.String()+" is not an interface")
		}
	}
	return nil
}

// ToBase is the generic form of Binder.ToBase for interface I.
func ToBase[I any](b *Binder, disc any) *Binder {
	return b.ToBase(reflect.TypeOf((*I)(nil)).Elem(), disc)
}
