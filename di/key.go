package di

import (
	"fmt"
	"reflect"
)

// KeyKind tags the variant held by a Key.
type KeyKind uint8

const (
	KindType KeyKind = iota + 1
	KindVarName
	KindMapped
	KindAllMapped
)

func (k KeyKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindVarName:
		return "var"
	case KindMapped:
		return "mapped"
	case KindAllMapped:
		return "all"
	default:
		return "invalid"
	}
}

// Key identifies a binding in the Registry. It is comparable and can be used
// as a map key; the zero Key matches nothing.
type Key struct {
	kind KeyKind
	typ  reflect.Type
	name string
	disc any
}

// TypeKey returns the key for bindings looked up by type.
func TypeKey(t reflect.Type) Key {
	return Key{kind: KindType, typ: t}
}

// TypeOf returns the type key for T.
func TypeOf[T any]() Key {
	return TypeKey(reflect.TypeOf((*T)(nil)).Elem())
}

// VarName returns the key for bindings looked up by slot name.
func VarName(name string) Key {
	return Key{kind: KindVarName, name: name}
}

// MappedKey returns the key of the implementation of iface registered under
// the discriminator disc.
func MappedKey(iface reflect.Type, disc any) Key {
	return Key{kind: KindMapped, typ: iface, disc: disc}
}

// Mapped returns the mapped key for interface I and discriminator disc.
func Mapped[I any](disc any) Key {
	return MappedKey(reflect.TypeOf((*I)(nil)).Elem(), disc)
}

// AllMappedKey returns the key resolving every implementation mapped to iface.
func AllMappedKey(iface reflect.Type) Key {
	return Key{kind: KindAllMapped, typ: iface}
}

// AllMappedOf returns the all-mapped key for interface I.
func AllMappedOf[I any]() Key {
	return AllMappedKey(reflect.TypeOf((*I)(nil)).Elem())
}

func (k Key) Kind() KeyKind { return k.kind }

// Type returns the type or interface the key refers to, nil for var keys.
func (k Key) Type() reflect.Type { return k.typ }

// Name returns the variable name of a var key.
func (k Key) Name() string { return k.name }

// Discriminator returns the discriminator of a mapped key.
func (k Key) Discriminator() any { return k.disc }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.kind == 0 }

func (k Key) String() string {
	switch k.kind {
	case KindType:
		return fmt.Sprintf("type(%s)", typeName(k.typ))
	case KindVarName:
		return fmt.Sprintf("var(%s)", k.name)
	case KindMapped:
		return fmt.Sprintf("mapped(%s#%v)", typeName(k.typ), k.disc)
	case KindAllMapped:
		return fmt.Sprintf("all(%s)", typeName(k.typ))
	default:
		return "<none>"
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
