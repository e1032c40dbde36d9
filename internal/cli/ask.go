package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akileshthuniki/preapply/internal/ai"
	"github.com/akileshthuniki/preapply/internal/pipeline"
)

func newAskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ask",
		Short:   "Ask an external AI collaborator about a plan's analysis",
		GroupID: "ai",
	}
	cmd.AddCommand(newAskAICmd(a))
	return cmd
}

func newAskAICmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ai PLAN QUESTION",
		Short: "Ask the configured AI provider a question about a plan's risk",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := args[0]
			question := strings.Join(args[1:], " ")

			result, err := pipeline.Run(planPath, a.cfg)
			if err != nil {
				return err
			}

			client := ai.NewFromEnv(timeout)
			if !client.Enabled() {
				return fmt.Errorf("ask ai is not configured; set PREAPPLY_AI_PROVIDER (or a provider-specific API key) to enable it")
			}

			planCtx := &ai.PlanContext{
				PlanPath:      planPath,
				ExplanationID: result.Output.ExplanationID,
				RiskLevel:     string(result.Output.RiskLevel),
			}

			answer, err := client.Ask(cmd.Context(), question, planCtx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 8*time.Second, "timeout for the AI provider request")
	return cmd
}
