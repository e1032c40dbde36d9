package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akileshthuniki/preapply/internal/contracts"
	"github.com/akileshthuniki/preapply/internal/pipeline"
)

type explainJSONOutput struct {
	Explanation      string  `json:"explanation"`
	ExplanationID    string  `json:"explanation_id"`
	ResourceID       *string `json:"resource_id"`
	RiskLevel        string  `json:"risk_level"`
	BlastRadiusScore float64 `json:"blast_radius_score"`
}

func newExplainCmd(a *app) *cobra.Command {
	var listResources bool

	cmd := &cobra.Command{
		Use:     "explain PLAN [RESOURCE_ID]",
		Short:   "Explain why a plan (or one of its resources) carries its risk",
		GroupID: "core",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Run(args[0], a.cfg)
			if err != nil {
				return err
			}

			if listResources {
				for _, id := range contracts.ListResources(result.Output) {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}

			var explanation, explanationID string
			var resourceID *string
			if len(args) == 2 {
				explanation = contracts.ExplainResource(result.Output, args[1])
				explanationID = pipeline.ExplainResource(result, args[1])
				resourceID = &args[1]
			} else {
				explanation = contracts.ExplainOverall(result.Output)
				explanationID = result.Output.ExplanationID
			}

			if a.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(explainJSONOutput{
					Explanation:      explanation,
					ExplanationID:    explanationID,
					ResourceID:       resourceID,
					RiskLevel:        string(result.Output.RiskLevel),
					BlastRadiusScore: result.Output.BlastRadiusScore,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), explanation)
			return nil
		},
	}

	cmd.Flags().BoolVar(&listResources, "list-resources", false, "list resource ids available for a resource-scoped explanation")
	return cmd
}
