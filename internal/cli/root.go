// Package cli assembles PreApply's cobra command tree.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/logging"
	"github.com/akileshthuniki/preapply/internal/version"
	"go.uber.org/zap"
)

// app threads shared state (configuration, logger, I/O handles) through
// every subcommand.
type app struct {
	configPath string
	jsonOutput bool
	verbose    bool

	cfg    *config.Config
	cfgErr error
	log    *zap.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand builds the production root command, wired to the real
// process stdio.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewRootCommandWithIO builds a root command with injected I/O, used by
// tests that need to capture output or supply stdin.
func NewRootCommandWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(in, out, errOut)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		stdin:  in,
		stdout: out,
		stderr: errOut,
	}

	cmd := &cobra.Command{
		Use:           "preapply",
		Short:         "Deterministic risk analysis for Terraform plans",
		Long:          "preapply parses a Terraform plan JSON document, scores the blast radius and risk of the proposed change, and evaluates it against policy before apply.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the risk-scoring configuration file (overrides PREAPPLY_CONFIG)")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit machine-readable JSON instead of human-readable text")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose structured logging")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		a.cfg, a.cfgErr = config.Load(a.configPath)
		if a.cfgErr != nil {
			return a.cfgErr
		}
		logger, err := logging.New(logging.Options{JSON: a.jsonOutput, Verbose: a.verbose})
		if err != nil {
			return err
		}
		a.log = logger
		return nil
	}

	cmd.AddCommand(
		newAnalyzeCmd(a),
		newExplainCmd(a),
		newSummaryCmd(a),
		newPolicyCmd(a),
		newAskCmd(a),
		newCompletionCmd(cmd),
		newVersionCmd(),
	)

	cmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core analysis:"},
		&cobra.Group{ID: "policy", Title: "Policy:"},
		&cobra.Group{ID: "ai", Title: "AI:"},
	)
	cmd.SetHelpCommandGroupID("core")

	cmd.SetErrPrefix("preapply: ")
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the preapply version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version.Version + "\n"))
			return err
		},
	}
}
