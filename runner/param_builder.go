package runner

import (
	"github.com/notargets/fdtransport/utils"
)

// FieldBuilder provides a fluent interface for declaring a field and its dependencies
type FieldBuilder struct {
	spec FieldSpec
}

// FieldSpec holds the complete declaration of a field
type FieldSpec struct {
	Name    string
	Stepper Stepper

	// Dependencies in declaration order
	SameLayer []string
	Lagged    []string

	// Times overrides the runner's layer count when TimesSet
	Times    int
	TimesSet bool
}

// Field starts the declaration of a computed field
func Field(name string) *FieldBuilder {
	return &FieldBuilder{spec: FieldSpec{Name: name}}
}

// Stepper sets the stepper that produces the field's layers
func (f *FieldBuilder) Stepper(s Stepper) *FieldBuilder {
	f.spec.Stepper = s
	return f
}

// DependsOn declares helpers whose layer tl is read while computing layer tl
func (f *FieldBuilder) DependsOn(names ...string) *FieldBuilder {
	f.spec.SameLayer = append(f.spec.SameLayer, names...)
	return f
}

// Lagged declares helpers whose layer tl-1 is read while computing layer tl
func (f *FieldBuilder) Lagged(names ...string) *FieldBuilder {
	f.spec.Lagged = append(f.spec.Lagged, names...)
	return f
}

// Times overrides the runner's layer count for this field
func (f *FieldBuilder) Times(n int) *FieldBuilder {
	f.spec.Times = n
	f.spec.TimesSet = true
	return f
}

// Spec returns the accumulated declaration
func (f *FieldBuilder) Spec() FieldSpec { return f.spec }

// Validate checks that the declaration is complete
func (fs *FieldSpec) Validate() error {
	if fs.Name == "" {
		return utils.NewConfigError("", "field", "field name cannot be empty")
	}
	if fs.Stepper == nil {
		return utils.NewConfigError("", fs.Name, "no stepper bound")
	}
	if fs.Stepper.FieldName() != fs.Name {
		return utils.NewConfigError("", fs.Name, "stepper produces field %q", fs.Stepper.FieldName())
	}
	if fs.TimesSet && fs.Times < 0 {
		return utils.NewConfigError("", fs.Name, "times must not be negative, got %d", fs.Times)
	}
	for _, d := range append(append([]string(nil), fs.SameLayer...), fs.Lagged...) {
		if d == "" {
			return utils.NewConfigError("", fs.Name, "empty dependency name")
		}
	}
	for _, d := range fs.SameLayer {
		if d == fs.Name {
			return utils.NewConfigError("", fs.Name, "field cannot depend on its own layer")
		}
	}
	return nil
}
