package config

import (
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
	"github.com/kbukum/scenedi/scene"
	"github.com/kbukum/scenedi/validation"
)

// InjectorConfig holds the registry settings that can be driven from
// configuration.
//
//	injector:
//	  default_parent: /root/world
//	  values:
//	    mode: debug-mode
type InjectorConfig struct {
	// DefaultParent is the absolute path of the node scene strategies
	// attach new instances to. Empty leaves the registry without one.
	DefaultParent string `yaml:"default_parent" mapstructure:"default_parent" validate:"omitempty,nodepath"`
	// Values are bound with the Value strategy, each reachable by its name.
	Values map[string]any `yaml:"values" mapstructure:"values"`
}

// Validate checks the default parent path and every value name.
func (c *InjectorConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for name := range c.Values {
		v.VarName("values."+name, name)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Apply binds the configured values on r and, when a default parent is
// configured, looks it up under root and installs it.
func (c *InjectorConfig) Apply(r *di.Registry, root *scene.Node) error {
	if err := r.BindValues(c.Values); err != nil {
		return err
	}
	if c.DefaultParent == "" {
		return nil
	}
	if root == nil {
		return errors.InvalidInput("default_parent", "no scene root to resolve "+c.DefaultParent)
	}
	parent, ok := root.Find(c.DefaultParent)
	if !ok {
		return errors.NotFound("scene node", c.DefaultParent)
	}
	r.SetDefaultSceneParent(parent)

	logger.Get("config").Debug("injector configured", logger.Fields(
		"default_parent", c.DefaultParent,
		"values", len(c.Values),
	))
	return nil
}
