// Package pipeline composes PreApply's five stages (ingest, normalize,
// graph, analyze, contract) into the single Run entry point every CLI
// command calls.
package pipeline

import (
	"sort"

	"github.com/akileshthuniki/preapply/internal/analysis"
	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/contracts"
	"github.com/akileshthuniki/preapply/internal/graph"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

// Result is everything a CLI command needs after a full pipeline run: the
// stable output contract plus the intermediate plan and graph, which
// `explain` needs for resource-scoped lookups.
type Result struct {
	Plan   *ingest.NormalizedPlan
	Graph  *graph.Graph
	Output contracts.CoreOutput
}

// Run executes the full pipeline over a plan file path.
func Run(planPath string, cfg *config.Config) (*Result, error) {
	raw, err := ingest.LoadPlan(planPath)
	if err != nil {
		return nil, err
	}
	return RunOnRawPlan(raw, cfg)
}

// RunOnRawPlan executes the pipeline starting from an already-loaded raw
// plan document, skipping the file-read stage. Exposed for callers (such as
// tests) that already hold the decoded plan in memory.
func RunOnRawPlan(raw ingest.RawPlan, cfg *config.Config) (*Result, error) {
	plan, err := ingest.Normalize(raw)
	if err != nil {
		return nil, err
	}

	g := graph.BuildFromPlan(plan)

	blast := analysis.BlastRadius(g, plan)
	criticalTypes := analysis.CriticalTypeSet(cfg.SharedResources.CriticalTypes)
	shared := analysis.SharedResources(g, plan, criticalTypes)
	sensitiveTypes := toSet(cfg.SharedResources.SensitiveDeleteTypes)
	sensitivePorts := toIntSet(cfg.RiskScoring.Security.SensitivePorts)

	exposures := analysis.DetectSecurityExposures(plan, sensitivePorts)
	destructive := analysis.DetectStateDestructive(&raw, plan)
	costAlerts := analysis.DetectCostAlerts(plan, cfg.CostAlerts)

	risk := analysis.ScoreRisk(analysis.ScoreRiskInputs{
		Plan:        plan,
		Graph:       g,
		Exposures:   exposures,
		Destructive: destructive,
		CostAlerts:  costAlerts,
		Shared:      shared,
		Cfg:         &cfg.RiskScoring,
	}, blast)

	recs := analysis.Recommendations(analysis.RecommendationInputs{
		Plan:                 plan,
		Graph:                g,
		Exposures:            exposures,
		Shared:               shared,
		SensitiveDeleteTypes: sensitiveTypes,
		Blast:                blast,
	})

	out := buildCoreOutput(plan, g, blast, shared, exposures, destructive, costAlerts, sensitiveTypes, criticalTypes, risk, recs)
	return &Result{Plan: plan, Graph: g, Output: out}, nil
}

func buildCoreOutput(
	plan *ingest.NormalizedPlan,
	g *graph.Graph,
	blast analysis.BlastRadiusResult,
	shared []analysis.SharedResource,
	exposures []analysis.SecurityExposure,
	destructive []analysis.StateDestructiveUpdate,
	costAlerts []analysis.CostAlert,
	sensitiveTypes map[string]struct{},
	criticalTypes map[string]struct{},
	risk analysis.RiskResult,
	recs []string,
) contracts.CoreOutput {
	sharedDeps := make([]contracts.SharedDependency, 0, len(shared))
	for _, s := range shared {
		r, _ := plan.ByAddress(s.Address)
		resourceType := ""
		if r != nil {
			resourceType = r.Type
		}
		dep := contracts.SharedDependency{
			ResourceID:   s.Address,
			ResourceType: resourceType,
			Dependents:   s.InDegree,
			IsCritical:   s.IsCritical,
			RiskReason:   analysis.RiskReason(resourceType, s.InDegree, true, s.IsCritical),
		}
		if s.IsCritical {
			mult := 1.3
			dep.MultiplierApplied = &mult
		}
		sharedDeps = append(sharedDeps, dep)
	}

	sharedAddresses := map[string]struct{}{}
	for _, s := range shared {
		sharedAddresses[s.Address] = struct{}{}
	}
	var criticalInfra []contracts.CriticalInfrastructure
	for _, r := range plan.Resources {
		if _, isShared := sharedAddresses[r.Address]; isShared {
			continue
		}
		if _, critical := criticalTypes[r.Type]; !critical {
			continue
		}
		if !r.Action.IsChanged() {
			continue
		}
		criticalInfra = append(criticalInfra, contracts.CriticalInfrastructure{
			ResourceID:   r.Address,
			ResourceType: r.Type,
			RiskReason:   analysis.CriticalRiskReason(r.Type),
		})
	}
	sort.Slice(criticalInfra, func(i, j int) bool { return criticalInfra[i].ResourceID < criticalInfra[j].ResourceID })

	var sensitiveDeletions []contracts.SensitiveDeletion
	deletionCount := 0
	actionSet := map[string]struct{}{}
	for _, r := range plan.Resources {
		if r.Action == ingest.ActionDelete {
			deletionCount++
			if _, sensitive := sensitiveTypes[r.Type]; sensitive {
				sensitiveDeletions = append(sensitiveDeletions, contracts.SensitiveDeletion{ResourceID: r.Address, ResourceType: r.Type})
			}
		}
		if r.Action.IsChanged() {
			actionSet[string(r.Action)] = struct{}{}
		}
	}
	sort.Slice(sensitiveDeletions, func(i, j int) bool { return sensitiveDeletions[i].ResourceID < sensitiveDeletions[j].ResourceID })
	actionTypes := make([]string, 0, len(actionSet))
	for a := range actionSet {
		actionTypes = append(actionTypes, a)
	}
	sort.Strings(actionTypes)

	exposureOutputs := make([]contracts.SecurityExposureOutput, 0, len(exposures))
	for _, e := range exposures {
		exposureOutputs = append(exposureOutputs, contracts.SecurityExposureOutput{
			ResourceID: e.ResourceAddress,
			Kind:       e.Kind,
			Port:       e.Port,
			CIDR:       e.CIDR,
			Severity:   e.Severity,
		})
	}
	sort.SliceStable(exposureOutputs, func(i, j int) bool { return exposureOutputs[i].ResourceID < exposureOutputs[j].ResourceID })

	costOutputs := make([]contracts.CostAlertOutput, 0, len(costAlerts))
	for _, c := range costAlerts {
		costOutputs = append(costOutputs, contracts.CostAlertOutput{ResourceID: c.ResourceAddress, Kind: c.Kind, Details: c.Details})
	}
	sort.SliceStable(costOutputs, func(i, j int) bool { return costOutputs[i].ResourceID < costOutputs[j].ResourceID })

	explanationID := contracts.SelectExplanationID(sharedDeps, criticalInfra, actionTypes)

	return contracts.CoreOutput{
		Version:           contracts.OutputVersion,
		ExplanationID:     explanationID,
		RiskLevel:         contracts.LegacyRiskLevel(risk.DetailedTier),
		RiskLevelDetailed: risk.DetailedTier,
		BlastRadiusScore:  risk.Score,
		RiskAction:        risk.Action,
		ApprovalRequired:  risk.ApprovalRole,
		AffectedCount:     blast.AffectedCount,
		DeletionCount:     deletionCount,
		AffectedComponents: blast.AffectedComponents,
		RiskAttributes: contracts.RiskAttributes{
			BlastRadius: contracts.BlastRadiusMetrics{
				AffectedResources:  blast.AffectedCount,
				AffectedComponents: len(blast.AffectedComponents),
				ChangedResources:   blast.ChangedCount,
			},
			SharedDependencies:     sharedDeps,
			CriticalInfrastructure: criticalInfra,
			SensitiveDeletions:     sensitiveDeletions,
			SecurityExposures:      exposureOutputs,
			CostAlerts:             costOutputs,
			ActionTypes:            actionTypes,
			RiskBreakdown: contracts.RiskBreakdown{
				PrimaryDimension: risk.Breakdown.PrimaryDimension,
				Dimensions: contracts.DimensionScoresOutput{
					Data:           risk.Breakdown.Dimensions.Data,
					Security:       risk.Breakdown.Dimensions.Security,
					Infrastructure: risk.Breakdown.Dimensions.Infrastructure,
					Cost:           risk.Breakdown.Dimensions.Cost,
				},
				InteractionMultiplier: risk.Breakdown.InteractionMultiplier,
				BlastContribution:     risk.Breakdown.BlastContribution,
			},
		},
		Recommendations: recs,
	}
}

// ExplainResource resolves the explanation id for a single resource within
// an already-computed Result.
func ExplainResource(result *Result, resourceID string) string {
	return contracts.SelectResourceExplanationID(result.Output.RiskAttributes.SharedDependencies, result.Output.RiskAttributes.CriticalInfrastructure, resourceID)
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, i := range items {
		out[i] = struct{}{}
	}
	return out
}

func toIntSet(items []int) map[int]struct{} {
	out := make(map[int]struct{}, len(items))
	for _, i := range items {
		out[i] = struct{}{}
	}
	return out
}
