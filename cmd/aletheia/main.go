// Package main provides the ALETHEIA advisor model builder CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aletheia-ml/aletheia/internal/config"
	"github.com/aletheia-ml/aletheia/internal/logging"
)

const version = "v0.3.0"

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	outputDir  string
	seed       uint64
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout}

	root := &cobra.Command{
		Use:   "aletheia",
		Short: "ALETHEIA advisor model builder",
		Long: `aletheia builds the ALETHEIA code-optimization advisor artifacts.

Each artifact is a randomly initialized network saved as a checkpoint
together with a JSON metadata sidecar. Run "aletheia create all" to
produce both the final and the real C code models.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "aletheia.yaml", "config file (defaults apply when missing)")
	flags.StringVar(&a.outputDir, "output-dir", "", "directory receiving the artifacts")
	flags.Uint64Var(&a.seed, "seed", 0, "weight initialization seed (0 picks a random seed)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.createCmd(),
		a.compareCmd(),
		a.inspectCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = a.outputDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = a.seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ALETHEIA %s\n", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
