package di

import (
	"fmt"
	"strings"
)

// Strategy determines how a binding produces its value.
type Strategy int

const (
	Instance       Strategy = iota + 1 // New value on every resolution
	Singleton                          // Built once, then shared
	SceneInstance                      // Scene instantiated and attached on every resolution
	SceneSingleton                     // Scene instantiated once, then shared while alive
	Value                              // Literal returned unchanged
	AllMapped                          // Every implementation mapped to an interface
)

var strategyNames = map[Strategy]string{
	Instance:       "instance",
	Singleton:      "singleton",
	SceneInstance:  "scene_instance",
	SceneSingleton: "scene_singleton",
	Value:          "value",
	AllMapped:      "all_mapped",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy parses the names produced by Strategy.String, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range strategyNames {
		if sn == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// accepts reports whether the strategy can be paired with a source kind.
func (s Strategy) accepts(k sourceKind) bool {
	switch s {
	case Instance, Singleton:
		return k == sourceType
	case SceneInstance, SceneSingleton:
		return k == sourceScene
	case Value:
		return k == sourceLiteral
	case AllMapped:
		return k == sourceInterface
	default:
		return false
	}
}

func (s Strategy) isScene() bool {
	return s == SceneInstance || s == SceneSingleton
}
