// Package models holds the transport models: each wires grids, boundary
// functions and steppers into a coupled run and exposes its named outputs.
package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/runner"
	"github.com/notargets/fdtransport/utils"
	"github.com/rs/zerolog"
)

// Output selects one named sub-series of a model
type Output uint8

const (
	// OutputDefault is the first output a model lists
	OutputDefault Output = iota
	OutputMass
	OutputHeat
	OutputMoisture
	OutputFiltration
	OutputConsolidation
)

var outputNames = map[Output]string{
	OutputDefault:       "default",
	OutputMass:          "mass",
	OutputHeat:          "heat",
	OutputMoisture:      "moisture",
	OutputFiltration:    "filtration",
	OutputConsolidation: "consolidation",
}

func (o Output) String() string {
	if s, ok := outputNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Output(%d)", uint8(o))
}

// ParseOutput maps an output name back to its selector
func ParseOutput(s string) (Output, error) {
	for o, name := range outputNames {
		if strings.EqualFold(s, name) {
			return o, nil
		}
	}
	return OutputDefault, utils.NewConfigError("", "output", "unknown output %q", s)
}

// Presentation carries display constants for renderers; solvers never read them
type Presentation struct {
	ChartStepX float64 `yaml:"chart_step_x"`
	ChartStepY float64 `yaml:"chart_step_y"`
	StepTime   float64 `yaml:"step_time"`
	MaxX       float64 `yaml:"max_x,omitempty"` // 0 when unset
	Precision  int     `yaml:"precision"`
	Is3D       bool    `yaml:"is_3d"`
}

func defaultPresentation() Presentation {
	return Presentation{ChartStepX: 1, ChartStepY: 1, StepTime: 1, Precision: 4}
}

// Model is one transport model bound to its parameter set
type Model interface {
	Name() string
	// Outputs lists the named series in default-first order
	Outputs() []Output
	// Params returns a pointer to the model's configuration struct
	Params() interface{}
	Validate() error
	// ComputeAll computes every output together; results are reused until the
	// parameters change. A strict run that meets numeric degeneracy returns its
	// results along with the error.
	ComputeAll() (*Results, error)
	Compute(out Output) (field.Series, error)
	Presentation() Presentation
	SetLogger(l zerolog.Logger)
	// SetStrict makes numeric degeneracy fail the computation
	SetStrict(strict bool)
}

// base carries the run options shared by every model
type base struct {
	logger zerolog.Logger
	strict bool
}

func (b *base) SetLogger(l zerolog.Logger) { b.logger = l }
func (b *base) SetStrict(strict bool)      { b.strict = strict }

func (b *base) run(model string, times int, mode runner.Mode, fields ...*runner.FieldBuilder) (*field.Store, error) {
	r := runner.NewRunner(runner.Config{
		Model:  model,
		Times:  times,
		Mode:   mode,
		Strict: b.strict,
		Logger: b.logger,
	})
	if err := r.DefineFields(fields...); err != nil {
		return nil, err
	}
	return r.Run()
}

// Results is the named container produced by one computation
type Results struct {
	Model   string
	Store   *field.Store
	outputs []Output
}

func newResults(model string, st *field.Store, outputs ...Output) *Results {
	return &Results{Model: model, Store: st, outputs: outputs}
}

// Outputs lists the available outputs
func (r *Results) Outputs() []Output { return append([]Output(nil), r.outputs...) }

// Get returns the selected output
func (r *Results) Get(out Output) (field.Series, error) {
	if out == OutputDefault {
		out = r.outputs[0]
	}
	for _, o := range r.outputs {
		if o == out {
			s, ok := r.Store.Get(o.String())
			if !ok {
				return nil, fmt.Errorf("%s: output %v was not computed", r.Model, o)
			}
			return s, nil
		}
	}
	return nil, utils.NewConfigError(r.Model, "output", "model has no %v output", out)
}

// Series1D returns the selected output as a 1-D series
func (r *Results) Series1D(out Output) (*field.Series1D, error) {
	s, err := r.Get(out)
	if err != nil {
		return nil, err
	}
	s1, ok := s.(*field.Series1D)
	if !ok {
		return nil, fmt.Errorf("%s: output %v is not 1D", r.Model, out)
	}
	return s1, nil
}

// Series2D returns the selected output as a 2-D series
func (r *Results) Series2D(out Output) (*field.Series2D, error) {
	s, err := r.Get(out)
	if err != nil {
		return nil, err
	}
	s2, ok := s.(*field.Series2D)
	if !ok {
		return nil, fmt.Errorf("%s: output %v is not 2D", r.Model, out)
	}
	return s2, nil
}

// memo caches results for the last parameter set
type memo[C comparable] struct {
	cfg    C
	strict bool
	res    *Results
	valid  bool
}

func (m *memo[C]) get(cfg C, b *base, compute func() (*Results, error)) (*Results, error) {
	if m.valid && m.cfg == cfg && m.strict == b.strict {
		return m.res, nil
	}
	res, err := compute()
	if err != nil {
		return res, err
	}
	m.cfg, m.strict, m.res, m.valid = cfg, b.strict, res, true
	return res, nil
}

// compute selects one output from the memoized results
func compute(m Model, out Output) (field.Series, error) {
	res, err := m.ComputeAll()
	if res == nil {
		return nil, err
	}
	s, gerr := res.Get(out)
	if gerr != nil {
		return nil, gerr
	}
	return s, err
}

type allocator func() Model

var registry = map[string]allocator{}

func register(name string, alloc allocator) {
	if _, exists := registry[name]; exists {
		panic("models: duplicate registration of " + name)
	}
	registry[name] = alloc
}

// New allocates the named model with default parameters
func New(name string) (Model, error) {
	alloc, ok := registry[name]
	if !ok {
		return nil, utils.NewConfigError(name, "model", "unknown model, have %s", strings.Join(Names(), ", "))
	}
	return alloc(), nil
}

// Names lists registered models
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
