package main

import (
	"fmt"
	"io"
	"os"

	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/models"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

type runOptions struct {
	config    string
	output    string
	strict    bool
	precision int
}

type runDump struct {
	Model        string              `yaml:"model"`
	Params       interface{}         `yaml:"params"`
	Presentation models.Presentation `yaml:"presentation"`
	Series       []seriesDump        `yaml:"series"`
}

type seriesDump struct {
	Name     string        `yaml:"name"`
	First    int           `yaml:"first"`
	X        []float64     `yaml:"x"`
	Y        []float64     `yaml:"y,omitempty"`
	Layers   [][]float64   `yaml:"layers,omitempty"`
	Layers2D [][][]float64 `yaml:"layers_2d,omitempty"`
	Warnings []string      `yaml:"warnings,omitempty"`
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <model>",
		Short: "Compute a model and dump its layers as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModel(cmd.OutOrStdout(), args[0], opts, g)
		},
	}
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "YAML file overriding the default parameters")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "dump only this output (default: every output)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on numerically degenerate rows")
	cmd.Flags().IntVar(&opts.precision, "precision", -1, "round values to n decimal places (default: raw values)")
	return cmd
}

func runModel(w io.Writer, name string, opts *runOptions, g *globalOptions) error {
	var r io.Reader
	if opts.config != "" {
		f, err := os.Open(opts.config)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	m, err := models.Load(name, r)
	if err != nil {
		return err
	}
	m.SetLogger(g.logger)
	m.SetStrict(opts.strict)

	outputs := m.Outputs()
	if opts.output != "" {
		o, err := models.ParseOutput(opts.output)
		if err != nil {
			return err
		}
		outputs = []models.Output{o}
	}

	g.logger.Info().Str("model", name).Str("config", opts.config).Bool("strict", opts.strict).Msg("computing")
	res, err := m.ComputeAll()
	if err != nil {
		return err
	}

	d := runDump{Model: m.Name(), Params: m.Params(), Presentation: m.Presentation()}
	for _, o := range outputs {
		s, err := res.Get(o)
		if err != nil {
			return err
		}
		sd, err := dumpSeries(s, opts.precision)
		if err != nil {
			return err
		}
		d.Series = append(d.Series, sd)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(d)
}

func dumpSeries(s field.Series, prec int) (seriesDump, error) {
	sd := seriesDump{Name: s.Name(), First: s.First()}
	for _, w := range s.Warnings() {
		sd.Warnings = append(sd.Warnings, w.String())
	}
	switch s := s.(type) {
	case *field.Series1D:
		sd.X = s.Grid().Coordinates()
		if m := s.Matrix(); m != nil {
			sd.Layers = matrixRows(m, prec)
		}
	case *field.Series2D:
		sd.X, sd.Y = s.Grid().X.Coordinates(), s.Grid().Y.Coordinates()
		for _, layer := range s.Reported() {
			sd.Layers2D = append(sd.Layers2D, matrixRows(layer, prec))
		}
	default:
		return sd, fmt.Errorf("%s: unsupported series type %T", s.Name(), s)
	}
	return sd, nil
}

func matrixRows(m *mat.Dense, prec int) [][]float64 {
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for r := range out {
		out[r] = rounded(mat.Row(nil, r, m), prec)
	}
	return out
}

// rounded copies v, rounding to prec decimal places when prec >= 0
func rounded(v []float64, prec int) []float64 {
	out := make([]float64, len(v))
	if prec < 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = scalar.Round(x, prec)
	}
	return out
}
