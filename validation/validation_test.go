package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/scenedi/errors"
)

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"mode", false},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		v := New().Required("name", tt.value)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("Required(%q): expected error %v, got %v", tt.value, tt.wantErr, v.Errors())
		}
	}
}

func TestValidatorOptionalUUID(t *testing.T) {
	if v := New().OptionalUUID("node", ""); v.HasErrors() {
		t.Error("expected empty UUID to be accepted")
	}
	if v := New().OptionalUUID("node", uuid.NewString()); v.HasErrors() {
		t.Errorf("expected valid UUID to be accepted, got %v", v.Errors())
	}
	v := New().OptionalUUID("node", "not-a-uuid")
	if !v.HasErrors() {
		t.Fatal("expected error for invalid UUID")
	}
	if v.Errors()[0].Field != "node" {
		t.Errorf("expected field 'node', got %s", v.Errors()[0].Field)
	}
}

func TestIsNodePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/root", true},
		{"/root/world", true},
		{"/root/world/player_1", true},
		{"", false},
		{"/", false},
		{"root/world", false},
		{"/root//world", false},
		{"/root/world/", false},
		{"/root/ world", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsNodePath(tt.path); got != tt.want {
				t.Errorf("IsNodePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsVarName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"mode", true},
		{"max_health", true},
		{"", false},
		{"a/b", false},
		{"two words", false},
	}
	for _, tt := range tests {
		if got := IsVarName(tt.name); got != tt.want {
			t.Errorf("IsVarName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidatorChain(t *testing.T) {
	v := New().
		Required("name", "").
		NodePath("default_parent", "world").
		VarName("var", "a b").
		OneOf("format", "xml", []string{"json", "console"}).
		Custom(false, "port", "must be positive")

	if len(v.Errors()) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(v.Errors()), v.Errors())
	}

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected validation code, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "default_parent: must be an absolute node path") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 5 {
		t.Errorf("expected 5 field details, got %v", appErr.Details["fields"])
	}
}

func TestValidatorNoErrors(t *testing.T) {
	v := New().
		Required("name", "demo").
		NodePath("default_parent", "").
		VarName("var", "mode").
		OneOf("format", "", []string{"json"})
	if appErr := v.Validate(); appErr != nil {
		t.Errorf("expected nil, got %v", appErr)
	}
}

func TestValidateUUID(t *testing.T) {
	id := uuid.New()
	got, err := ValidateUUID("node", id.String())
	if err != nil || got != id {
		t.Errorf("expected %s, got %s (%v)", id, got, err)
	}
	if _, err := ValidateUUID("node", ""); err == nil {
		t.Error("expected error for empty UUID")
	}
	if _, err := ValidateUUID("node", "xyz"); err == nil {
		t.Error("expected error for invalid UUID")
	}
}

type injectorSection struct {
	DefaultParent string `mapstructure:"default_parent" validate:"omitempty,nodepath"`
	Alias         string `yaml:"alias" validate:"omitempty,varname"`
}

type exporterSection struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

type appSection struct {
	Name      string          `mapstructure:"name" validate:"required"`
	Injector  injectorSection `mapstructure:"injector"`
	Exporter  exporterSection `mapstructure:"exporter"`
	Port      int             `json:"port" validate:"min=1,max=65535"`
	MaxActive int             `validate:"gte=1"`
}

func validApp() appSection {
	return appSection{
		Name:      "demo",
		Injector:  injectorSection{DefaultParent: "/root/world", Alias: "mode"},
		Exporter:  exporterSection{SampleRate: 0.5},
		Port:      8089,
		MaxActive: 1,
	}
}

func TestValidateStruct(t *testing.T) {
	if err := Validate(validApp()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*appSection)
		field  string
		msg    string
	}{
		{"missing name", func(a *appSection) { a.Name = "" }, "name", "is required"},
		{"relative parent", func(a *appSection) { a.Injector.DefaultParent = "world" }, "injector.default_parent", "must be an absolute node path"},
		{"bad alias", func(a *appSection) { a.Injector.Alias = "a/b" }, "injector.alias", "must be a variable name"},
		{"endpoint required", func(a *appSection) { a.Exporter.Enabled = true }, "exporter.endpoint", "is required"},
		{"rate too high", func(a *appSection) { a.Exporter.SampleRate = 2 }, "exporter.sample_rate", "less than or equal to 1"},
		{"port zero", func(a *appSection) { a.Port = 0 }, "port", "must be at least 1"},
		{"snake case fallback", func(a *appSection) { a.MaxActive = 0 }, "max_active", "greater than or equal to 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApp()
			tt.mutate(&app)

			err := Validate(app)
			if err == nil {
				t.Fatal("expected validation error")
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			fields, ok := appErr.Details["fields"].([]FieldError)
			if !ok || len(fields) != 1 {
				t.Fatalf("expected one field error, got %v", appErr.Details["fields"])
			}
			if fields[0].Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, fields[0].Field)
			}
			if !strings.Contains(fields[0].Message, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, fields[0].Message)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":          "name",
		"DefaultParent": "default_parent",
		"ID":            "i_d",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
