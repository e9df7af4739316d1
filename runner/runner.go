package runner

import (
	"fmt"
	"time"

	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/utils"
	"github.com/rs/zerolog"
)

// Config controls one coupled run
type Config struct {
	Model string
	// Times is the default last layer of every computed field
	Times int
	Mode  Mode
	// Strict turns recorded degeneracy warnings into an error after the run
	Strict bool
	Logger zerolog.Logger
}

// Runner orchestrates coupled fields: fields are defined, planned into a
// dependency order, and run into a shared store
type Runner struct {
	Config
	Store *field.Store

	bindings map[string]*FieldBinding
	order    []string // definition order
	plan     []string
	hasRun   bool
}

// NewRunner creates a Runner. The zero Logger discards everything.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		Config:   cfg,
		Store:    field.NewStore(),
		bindings: make(map[string]*FieldBinding),
	}
}

// Run plans and executes every computed field. The store is returned even when
// a strict run fails on degeneracy.
func (r *Runner) Run() (*field.Store, error) {
	if r.hasRun {
		return nil, fmt.Errorf("%s: runner has already run", r.Model)
	}
	plan, err := r.Plan()
	if err != nil {
		return nil, err
	}
	r.hasRun = true
	start := time.Now()

	for _, name := range plan {
		if b := r.bindings[name]; b.IsPreset() {
			if err = r.Store.Add(b.Preset); err != nil {
				return nil, utils.WithModel(r.Model, err)
			}
		}
	}

	switch r.Mode {
	case Sequential:
		err = r.runSequential(plan)
	case Lockstep:
		err = r.runLockstep(plan)
	default:
		err = utils.NewConfigError(r.Model, "mode", "unknown mode %v", r.Mode)
	}
	if err != nil {
		return nil, err
	}

	ws := r.Store.Warnings()
	for _, w := range ws {
		r.Logger.Warn().
			Str("model", r.Model).
			Str("field", w.Field).
			Int("layer", w.Layer).
			Int("line", w.Line).
			Int("index", w.Index).
			Float64("denominator", w.Denominator).
			Msg(w.Reason)
	}
	r.Logger.Info().
		Str("model", r.Model).
		Strs("fields", plan).
		Int("warnings", len(ws)).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")

	if r.Strict && len(ws) > 0 {
		return r.Store, fmt.Errorf("%s: %w: %d degenerate rows, first at %v",
			r.Model, utils.ErrNumericDegeneracy, len(ws), ws[0])
	}
	return r.Store, nil
}

func (r *Runner) start(b *FieldBinding) error {
	r.Logger.Debug().Str("model", r.Model).Str("field", b.Name).Int("times", b.Times).Msg("start")
	if err := b.Stepper.Start(r.Store); err != nil {
		return fmt.Errorf("%s: field %s layer 0: %w", r.Model, b.Name, utils.WithModel(r.Model, err))
	}
	return nil
}

func (r *Runner) step(b *FieldBinding, tl int) error {
	r.Logger.Trace().Str("model", r.Model).Str("field", b.Name).Int("layer", tl).Msg("step")
	if err := b.Stepper.Step(tl, r.Store); err != nil {
		return fmt.Errorf("%s: field %s layer %d: %w", r.Model, b.Name, tl, utils.WithModel(r.Model, err))
	}
	return nil
}

func (r *Runner) runSequential(plan []string) error {
	for _, name := range plan {
		b := r.bindings[name]
		if b.IsPreset() {
			continue
		}
		if err := r.start(b); err != nil {
			return err
		}
		for tl := 1; tl <= b.Times; tl++ {
			if err := r.step(b, tl); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runLockstep(plan []string) error {
	last := 0
	for _, name := range plan {
		b := r.bindings[name]
		if b.IsPreset() {
			continue
		}
		if err := r.start(b); err != nil {
			return err
		}
		if b.Times > last {
			last = b.Times
		}
	}
	for tl := 1; tl <= last; tl++ {
		for _, name := range plan {
			b := r.bindings[name]
			if b.IsPreset() || tl > b.Times {
				continue
			}
			if err := r.step(b, tl); err != nil {
				return err
			}
		}
	}
	return nil
}
