// File: runner/binding.go
// Field bindings: computed fields defined through FieldBuilder and preset series
// bound from earlier runs.

package runner

import (
	"fmt"

	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/utils"
)

// FieldBinding is one field known to the runner
type FieldBinding struct {
	Name string

	// Exactly one of Stepper and Preset is set
	Stepper Stepper
	Preset  field.Series

	// Times is the last layer this field produces
	Times int

	deps     map[string]DependencyFlags
	depOrder []string
}

// IsPreset reports whether the field was bound rather than computed
func (fb *FieldBinding) IsPreset() bool { return fb.Preset != nil }

// Dependency returns how this field reads name
func (fb *FieldBinding) Dependency(name string) DependencyFlags { return fb.deps[name] }

// HasDependency checks a specific dependency flag
func (fb *FieldBinding) HasDependency(name string, flag DependencyFlags) bool {
	return fb.deps[name]&flag != 0
}

// Dependencies lists helpers in declaration order
func (fb *FieldBinding) Dependencies() []string {
	return append([]string(nil), fb.depOrder...)
}

// LastLayer is the highest time layer the field holds once run
func (fb *FieldBinding) LastLayer() int {
	if fb.Preset != nil {
		return fb.Preset.First() + fb.Preset.TimeLayers() - 1
	}
	return fb.Times
}

func (fb *FieldBinding) addDependency(name string, flag DependencyFlags) {
	if _, ok := fb.deps[name]; !ok {
		fb.depOrder = append(fb.depOrder, name)
	}
	fb.deps[name] |= flag
}

// DefineFields declares computed fields. Fields may be declared in any order;
// the plan orders them by dependency.
func (r *Runner) DefineFields(fields ...*FieldBuilder) error {
	if r.hasRun {
		return fmt.Errorf("fields cannot be defined after Run has been called")
	}
	for i, f := range fields {
		spec := f.Spec()
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("field %d: %w", i, utils.WithModel(r.Model, err))
		}
		if _, exists := r.bindings[spec.Name]; exists {
			return utils.NewConfigError(r.Model, spec.Name, "field defined twice")
		}
		times := r.Times
		if spec.TimesSet {
			times = spec.Times
		}
		b := &FieldBinding{
			Name:    spec.Name,
			Stepper: spec.Stepper,
			Times:   times,
			deps:    make(map[string]DependencyFlags),
		}
		for _, d := range spec.SameLayer {
			b.addDependency(d, SameLayer)
		}
		for _, d := range spec.Lagged {
			b.addDependency(d, PreviousLayer)
		}
		r.bindings[b.Name] = b
		r.order = append(r.order, b.Name)
	}
	r.plan = nil
	return nil
}

// Bind makes an already computed series available as a helper field
func (r *Runner) Bind(series field.Series) error {
	if r.hasRun {
		return fmt.Errorf("fields cannot be bound after Run has been called")
	}
	if series == nil {
		return utils.NewConfigError(r.Model, "field", "nil series")
	}
	if _, exists := r.bindings[series.Name()]; exists {
		return utils.NewConfigError(r.Model, series.Name(), "field defined twice")
	}
	r.bindings[series.Name()] = &FieldBinding{
		Name:   series.Name(),
		Preset: series,
		deps:   make(map[string]DependencyFlags),
	}
	r.order = append(r.order, series.Name())
	r.plan = nil
	return nil
}

// Binding returns the named field binding
func (r *Runner) Binding(name string) (*FieldBinding, bool) {
	b, ok := r.bindings[name]
	return b, ok
}
