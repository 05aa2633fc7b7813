package di

import (
	"fmt"
	"reflect"
)

// Slots is a ready-made Consumer: declare typed slots with Declare and embed
// or attach the set to a node.
//
//	type Player struct {
//	    di.Slots
//	    Log  *Logger
//	    Mode string
//	}
//
//	p := &Player{}
//	di.Declare(&p.Slots, "log", di.TypeOf[*Logger](), &p.Log)
//	di.Declare(&p.Slots, "mode", di.Key{}, &p.Mode)
type Slots struct {
	list   []Slot
	assign map[string]func(any) error
	after  []func() error
}

// Declare adds a required slot that stores resolved values into dst.
func Declare[T any](s *Slots, name string, key Key, dst *T) {
	s.add(Slot{Name: name, Key: key}, dst)
}

// DeclareOptional adds a slot that is skipped when nothing is bound for it.
func DeclareOptional[T any](s *Slots, name string, key Key, dst *T) {
	s.add(Slot{Name: name, Key: key, Optional: true}, dst)
}

// DeclareAll adds a slot receiving every implementation mapped to I. An empty
// group is assigned as an empty slice.
func DeclareAll[I any](s *Slots, name string, dst *[]I) {
	if s.assign == nil {
		s.assign = make(map[string]func(any) error)
	}
	s.list = append(s.list, Slot{Name: name, Key: AllMappedOf[I]()})
	s.assign[name] = func(v any) error {
		vs, ok := v.([]any)
		if !ok {
			return fmt.Errorf("slot %s: got %T, expected []any", name, v)
		}
		out := make([]I, 0, len(vs))
		for _, item := range vs {
			typed, ok := item.(I)
			if !ok {
				var zero I
				return fmt.Errorf("slot %s: element %T is not %T", name, item, zero)
			}
			out = append(out, typed)
		}
		*dst = out
		return nil
	}
}

// OnInjected registers fn to run once after every slot is filled.
func (s *Slots) OnInjected(fn func() error) {
	s.after = append(s.after, fn)
}

// Dependencies implements Consumer.
func (s *Slots) Dependencies() []Slot {
	out := make([]Slot, len(s.list))
	copy(out, s.list)
	return out
}

// Inject implements Consumer.
func (s *Slots) Inject(slot string, value any) error {
	set, ok := s.assign[slot]
	if !ok {
		return fmt.Errorf("unknown slot %q", slot)
	}
	return set(value)
}

// PostInject implements PostInjector by running the OnInjected callbacks.
func (s *Slots) PostInject() error {
	for _, fn := range s.after {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Slots) add(slot Slot, dst any) {
	if s.assign == nil {
		s.assign = make(map[string]func(any) error)
	}
	s.list = append(s.list, slot)
	s.assign[slot.Name] = assignTo(slot.Name, dst)
}

func assignTo(name string, dst any) func(any) error {
	return func(v any) error {
		return Assign(dst, v, name)
	}
}

// Assign stores v into the pointer dst when v is assignable to its element
// type. It is a helper for hand-written Consumer.Inject implementations.
func Assign(dst any, v any, slot string) error {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("slot %s: destination must be a non-nil pointer, got %T", slot, dst)
	}
	elem := rv.Elem()
	if v == nil {
		elem.SetZero()
		return nil
	}
	val := reflect.ValueOf(v)
	if !val.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("slot %s: cannot assign %T to %s", slot, v, elem.Type())
	}
	elem.Set(val)
	return nil
}
