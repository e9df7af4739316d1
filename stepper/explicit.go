package stepper

import (
	"fmt"

	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/utils"
)

// EvalFunc fills dst with layer ctx.Layer. ctx.Prev is nil.
type EvalFunc func(ctx Context, dst []float64) error

// Explicit1D is a field recomputed from other fields on every layer without a
// solve. With First = 1 the field has no layer 0.
type Explicit1D struct {
	Name  string
	Grid  grid.Grid1D
	First int
	Eval  EvalFunc
}

func (e *Explicit1D) FieldName() string { return e.Name }

func (e *Explicit1D) Start(st *field.Store) error {
	if e.Eval == nil {
		return utils.NewConfigError("", e.Name, "evaluation function is required")
	}
	if e.First != 0 && e.First != 1 {
		return utils.NewConfigError("", e.Name, "first layer must be 0 or 1, got %d", e.First)
	}
	if err := st.Add(field.NewSeries1D(e.Name, e.Grid, e.First)); err != nil {
		return err
	}
	if e.First == 0 {
		return e.Step(0, st)
	}
	return nil
}

func (e *Explicit1D) Step(tl int, st *field.Store) error {
	series, err := st.Series1D(e.Name)
	if err != nil {
		return err
	}
	if tl < e.First {
		return nil
	}
	if series.Last() != tl-1 {
		return fmt.Errorf("%s: cannot compute layer %d after layer %d", e.Name, tl, series.Last())
	}
	dst := make([]float64, e.Grid.PointCount())
	if err = e.Eval(Context{Field: e.Name, Layer: tl, Store: st}, dst); err != nil {
		return err
	}
	return series.Append(dst)
}
