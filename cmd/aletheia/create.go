package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheia-ml/aletheia/internal/artifact"
	"github.com/aletheia-ml/aletheia/internal/report"
)

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [final|real|all]",
		Short: "Build advisor model artifacts",
		Long: `Builds the checkpoint and metadata sidecar of one profile, or of both
with "all". Without an argument the final model is built.

Profiles:
  - final: AletheiaFinalModel, transformer encoder
  - real:  RealCCodeOptimizer, bidirectional LSTM with attention`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"final", "real", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := []artifact.Profile{artifact.ProfileFinal}
			if len(args) == 1 {
				var err error
				if profiles, err = parseProfiles(args[0]); err != nil {
					return err
				}
			}

			b := artifact.NewBuilder(a.cfg, a.logger, a.stdout)
			failed := 0
			for _, p := range profiles {
				if !b.Run(cmd.Context(), p) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d artifacts failed", failed, len(profiles))
			}
			return nil
		},
	}
}

func parseProfiles(arg string) ([]artifact.Profile, error) {
	if arg == "all" {
		return artifact.Profiles(), nil
	}
	p, err := artifact.ParseProfile(arg)
	if err != nil {
		return nil, err
	}
	return []artifact.Profile{p}, nil
}

func (a *app) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Print the synthetic vs real model comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report.Comparison(a.stdout)
		},
	}
}
