package bootstrap

import (
	"fmt"

	"github.com/kbukum/scenedi/config"
	"github.com/kbukum/scenedi/inspector"
	"github.com/kbukum/scenedi/observability"
	"github.com/kbukum/scenedi/validation"
)

// Settings bundles the configuration sections App reads. Application
// configs embed it and add their own sections.
//
//	type DemoConfig struct {
//	    bootstrap.Settings `yaml:",inline" mapstructure:",squash"`
//	    Arena ArenaConfig  `yaml:"arena" mapstructure:"arena"`
//	}
type Settings struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Injector      config.InjectorConfig `yaml:"injector" mapstructure:"injector"`
	Observability observability.Config  `yaml:"observability" mapstructure:"observability"`
	Inspector     inspector.Config      `yaml:"inspector" mapstructure:"inspector"`
}

// GetSettings returns the embedded Settings. It is promoted to embedding
// structs so they satisfy Config.
func (s *Settings) GetSettings() *Settings {
	return s
}

// ApplyDefaults applies defaults to every section.
func (s *Settings) ApplyDefaults() {
	s.ServiceConfig.ApplyDefaults()
	s.Observability.ApplyDefaults()
	s.Inspector.ApplyDefaults()
}

// Validate validates every section.
func (s *Settings) Validate() error {
	if err := s.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := s.Injector.Validate(); err != nil {
		return fmt.Errorf("injector: %w", err)
	}
	if err := validation.Validate(&s.Observability); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	if err := s.Inspector.Validate(); err != nil {
		return fmt.Errorf("inspector: %w", err)
	}
	return nil
}

// Config is the constraint for application configuration types. Any
// struct embedding Settings satisfies it through promoted methods; an
// embedding struct may override ApplyDefaults and Validate, calling the
// Settings versions first.
type Config interface {
	GetSettings() *Settings
	ApplyDefaults()
	Validate() error
}
