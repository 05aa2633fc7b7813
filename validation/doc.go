// Package validation checks configuration and request input.
//
// Struct tag validation runs go-playground/validator with two extra tags,
// nodepath and varname, and reports fields by their config key:
//
//	type InjectorConfig struct {
//	    DefaultParent string `mapstructure:"default_parent" validate:"omitempty,nodepath"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors fluently:
//
//	v := validation.New().OptionalUUID("node", id).NodePath("path", path)
//	if appErr := v.Validate(); appErr != nil {
//	    return appErr
//	}
package validation
