package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/notargets/fdtransport/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type globalOptions struct {
	logLevel string
	noColor  bool
	logger   zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "fdtransport",
		Short:        "Implicit finite-difference transport models",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: opts.noColor}).
				Level(lvl).
				With().Timestamp().Logger()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"log level: trace, debug, info, warn, error or disabled")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored log output")

	root.AddCommand(newListCmd(), newParamsCmd(), newRunCmd(opts))
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered models and their outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tOUTPUTS")
			for _, name := range models.Names() {
				m, err := models.New(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%v\n", name, m.Outputs())
			}
			return w.Flush()
		},
	}
}

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params <model>",
		Short: "Print the default parameters of a model as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.New(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(m.Params())
		},
	}
}
