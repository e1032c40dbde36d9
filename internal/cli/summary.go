package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akileshthuniki/preapply/internal/contracts"
	"github.com/akileshthuniki/preapply/internal/pipeline"
)

type summaryJSONOutput struct {
	Summary          string  `json:"summary"`
	ExplanationID    string  `json:"explanation_id"`
	RiskLevel        string  `json:"risk_level"`
	BlastRadiusScore float64 `json:"blast_radius_score"`
}

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "summary PLAN",
		Short:   "Print a short paragraph summary of a plan's risk",
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Run(args[0], a.cfg)
			if err != nil {
				return err
			}

			summaryText := contracts.GenerateSummary(result.Output)

			if a.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaryJSONOutput{
					Summary:          summaryText,
					ExplanationID:    result.Output.ExplanationID,
					RiskLevel:        string(result.Output.RiskLevel),
					BlastRadiusScore: result.Output.BlastRadiusScore,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), summaryText)
			return nil
		},
	}
	return cmd
}
