package models

import (
	"errors"
	"io"

	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/utils"
	"gopkg.in/yaml.v3"
)

// Load allocates the named model and decodes YAML parameters from r over its
// defaults, so the document only needs the values that change
func Load(name string, r io.Reader) (Model, error) {
	m, err := New(name)
	if err != nil {
		return nil, err
	}
	if r != nil {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err = dec.Decode(m.Params()); err != nil && !errors.Is(err, io.EOF) {
			return nil, utils.NewConfigError(name, "config", "%v", err)
		}
	}
	if err = m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func positive(model, param string, v float64) error {
	if !utils.IsFinite(v) || v <= 0 {
		return utils.NewConfigError(model, param, "must be positive, got %v", v)
	}
	return nil
}

func nonNegative(model, param string, v int) error {
	if v < 0 {
		return utils.NewConfigError(model, param, "must not be negative, got %d", v)
	}
	return nil
}

func atLeast(model, param string, v, min int) error {
	if v < min {
		return utils.NewConfigError(model, param, "must be at least %d, got %d", min, v)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func grid1D(model string, extent, spacing float64) (grid.Grid1D, error) {
	g, err := grid.NewGrid1D(0, extent, spacing)
	if err != nil {
		return g, utils.WithModel(model, err)
	}
	return g, nil
}

func grid2D(model string, lx, hx, ly, hy float64) (grid.Grid2D, error) {
	g, err := grid.NewGrid2D(lx, hx, ly, hy)
	if err != nil {
		return g, utils.WithModel(model, err)
	}
	return g, nil
}
