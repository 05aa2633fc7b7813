package di

import (
	"fmt"
	"reflect"
)

type sourceKind uint8

const (
	sourceType sourceKind = iota + 1
	sourceLiteral
	sourceScene
	sourceInterface
)

func (k sourceKind) String() string {
	switch k {
	case sourceType:
		return "type"
	case sourceLiteral:
		return "literal"
	case sourceScene:
		return "scene"
	case sourceInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Source is what a binding produces its value from: a type to construct, a
// literal, a scene to instantiate or an interface whose mapped
// implementations are gathered.
type Source interface {
	kind() sourceKind
	// produces is the type of the produced value, nil when unknown.
	produces() reflect.Type
	primaryKey() Key
	String() string
}

// Initializer is implemented by values that need setup after construction.
// Init is called once per constructed value, before it is cached or returned.
type Initializer interface {
	Init() error
}

type typeSource struct {
	typ   reflect.Type
	build func(Resolver) (any, error)
	label string
}

func (s *typeSource) kind() sourceKind       { return sourceType }
func (s *typeSource) produces() reflect.Type { return s.typ }
func (s *typeSource) primaryKey() Key        { return TypeKey(s.typ) }
func (s *typeSource) String() string         { return s.label }

// Type constructs a fresh *T. Values implementing Initializer are initialized
// before use. The binding is keyed by the pointer type *T.
func Type[T any]() Source {
	return &typeSource{
		typ: reflect.TypeOf((**T)(nil)).Elem(),
		build: func(Resolver) (any, error) {
			v := new(T)
			if init, ok := any(v).(Initializer); ok {
				if err := init.Init(); err != nil {
					return nil, err
				}
			}
			return v, nil
		},
		label: "new(" + reflect.TypeOf((*T)(nil)).Elem().String() + ")",
	}
}

// Constructor produces values with fn. The Resolver handed to fn resolves
// further dependencies on the same resolution chain, so constructor cycles
// are reported instead of recursing forever. The binding is keyed by T.
func Constructor[T any](fn func(Resolver) (T, error)) Source {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return &typeSource{
		typ: t,
		build: func(r Resolver) (any, error) {
			if fn == nil {
				return nil, fmt.Errorf("nil constructor for %s", t)
			}
			v, err := fn(r)
			if err != nil {
				return nil, err
			}
			if init, ok := any(v).(Initializer); ok {
				if err := init.Init(); err != nil {
					return nil, err
				}
			}
			return v, nil
		},
		label: "func() " + t.String(),
	}
}

type literalSource struct {
	value any
}

func (s *literalSource) kind() sourceKind { return sourceLiteral }

func (s *literalSource) produces() reflect.Type { return reflect.TypeOf(s.value) }

func (s *literalSource) primaryKey() Key { return TypeKey(reflect.TypeOf(s.value)) }

func (s *literalSource) String() string { return fmt.Sprintf("literal(%v)", s.value) }

// Literal binds v itself. The binding is keyed by v's dynamic type; give it a
// name with ToVar to tell literals of the same type apart.
func Literal(v any) Source {
	return &literalSource{value: v}
}

type sceneSource struct {
	typ   reflect.Type
	scene SceneSource
}

func (s *sceneSource) kind() sourceKind       { return sourceScene }
func (s *sceneSource) produces() reflect.Type { return s.typ }
func (s *sceneSource) primaryKey() Key        { return TypeKey(s.typ) }

func (s *sceneSource) String() string {
	if s.scene == nil {
		return "scene(<nil>)"
	}
	return "scene(" + s.scene.Path() + ")"
}

// SceneOf instantiates scene, whose root must be a T. The binding is keyed by T.
func SceneOf[T any](scene SceneSource) Source {
	return &sceneSource{typ: reflect.TypeOf((*T)(nil)).Elem(), scene: scene}
}

type interfaceSource struct {
	typ reflect.Type
}

func (s *interfaceSource) kind() sourceKind       { return sourceInterface }
func (s *interfaceSource) produces() reflect.Type { return nil }
func (s *interfaceSource) primaryKey() Key        { return AllMappedKey(s.typ) }
func (s *interfaceSource) String() string         { return "interface(" + typeName(s.typ) + ")" }

// Interface names the interface I for an AllMapped binding. The binding is
// keyed by AllMappedOf[I]().
func Interface[I any]() Source {
	return &interfaceSource{typ: reflect.TypeOf((*I)(nil)).Elem()}
}
