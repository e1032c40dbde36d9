package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/pipeline"
	"github.com/akileshthuniki/preapply/internal/policy"
)

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "policy",
		Short:   "Evaluate plans against a policy file",
		GroupID: "policy",
	}
	cmd.AddCommand(newPolicyCheckCmd(a))
	return cmd
}

func newPolicyCheckCmd(a *app) *cobra.Command {
	var policyFile string
	var environmentFile string
	var enforcementMode string

	cmd := &cobra.Command{
		Use:   "check PLAN",
		Short: "Evaluate a plan's analysis against a policy file and exit with its verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Run(args[0], a.cfg)
			if err != nil {
				return err
			}

			pol, err := policy.Load(policyFile)
			if err != nil {
				return err
			}

			evalResult := policy.Evaluate(pol, &result.Output)

			env, err := config.LoadEnvironmentConfig(environmentFile)
			if err != nil {
				return err
			}
			mode := config.ResolveEnforcementMode(env, enforcementMode)

			printPolicyResult(cmd, evalResult)

			code := policy.ExitCode(evalResult, mode)
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFile, "policy-file", "", "path to the policy YAML document (required)")
	cmd.Flags().StringVar(&environmentFile, "environment", "", "path to an environment config file (overrides PREAPPLY_ENV)")
	cmd.Flags().StringVar(&enforcementMode, "enforcement-mode", "", "auto or manual; overrides the resolved environment's mode")
	cmd.MarkFlagRequired("policy-file")
	return cmd
}

func printPolicyResult(cmd *cobra.Command, result policy.EvaluationResult) {
	w := cmd.OutOrStdout()
	if result.Passed {
		fmt.Fprintln(w, "policy check passed")
	} else {
		fmt.Fprintln(w, "policy check failed")
	}
	fmt.Fprintf(w, "failures: %d, warnings: %d\n", result.FailureCount, result.WarningCount)
	for _, hit := range result.RuleHits {
		if !hit.Matched {
			continue
		}
		fmt.Fprintf(w, "  [%s] %s matched\n", hit.Action, hit.RuleID)
	}
}
