package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/akileshthuniki/preapply/internal/contracts"
	"github.com/akileshthuniki/preapply/internal/pipeline"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var outputPath string
	var quiet bool

	cmd := &cobra.Command{
		Use:     "analyze PLAN",
		Short:   "Run the full risk analysis on a Terraform plan",
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Run(args[0], a.cfg)
			if err != nil {
				return err
			}

			var dest *os.File
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("could not open --output %s: %w", outputPath, err)
				}
				defer f.Close()
				dest = f
			}

			if a.jsonOutput {
				return writeJSON(cmd, dest, result.Output)
			}
			if !quiet {
				w := cmd.OutOrStdout()
				if dest != nil {
					w = dest
				}
				printHumanSummary(w, result.Output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress human-readable summary output")
	return cmd
}

func writeJSON(cmd *cobra.Command, dest *os.File, out contracts.CoreOutput) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if dest != nil {
		enc = json.NewEncoder(dest)
	}
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printHumanSummary(w io.Writer, out contracts.CoreOutput) {
	fmt.Fprintf(w, "risk level: %s (%s)\n", out.RiskLevel, out.RiskLevelDetailed)
	fmt.Fprintf(w, "blast radius score: %.1f\n", out.BlastRadiusScore)
	fmt.Fprintf(w, "action: %s\n", out.RiskAction)
	if out.ApprovalRequired != "" && out.ApprovalRequired != "NONE" {
		fmt.Fprintf(w, "approval required: %s\n", out.ApprovalRequired)
	}
	fmt.Fprintf(w, "affected resources: %d across %d components\n", out.AffectedCount, len(out.AffectedComponents))
	for _, rec := range out.Recommendations {
		fmt.Fprintf(w, "recommendation: %s\n", rec)
	}
}
