package analysis

import (
	"math"

	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/graph"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

const (
	TierCriticalCatastrophic = "CRITICAL-CATASTROPHIC"
	TierCritical             = "CRITICAL"
	TierHighSevere           = "HIGH-SEVERE"
	TierHigh                 = "HIGH"
	TierMedium               = "MEDIUM"
	TierLow                  = "LOW"

	ProjectedCritical = "CRITICAL"
	ProjectedHigh     = "HIGH"
	ProjectedMedium   = "MEDIUM"
	ProjectedLow      = "LOW"

	ActionHardBlock         = "HARD_BLOCK"
	ActionSoftBlock         = "SOFT_BLOCK"
	ActionRequireApproval   = "REQUIRE_APPROVAL"
	ActionRequirePeerReview = "REQUIRE_PEER_REVIEW"
	ActionAutoApprove       = "AUTO_APPROVE"

	ApprovalVPIncident    = "VP_ENGINEERING+INCIDENT_REVIEW"
	ApprovalVPOrDirector  = "VP_ENGINEERING_OR_DIRECTOR"
	ApprovalSeniorArchitect = "SENIOR_ENGINEER+ARCHITECT"
	ApprovalSeniorOrLead  = "SENIOR_ENGINEER_OR_TECH_LEAD"
	ApprovalAnyEngineer   = "ANY_ENGINEER"
	ApprovalNone          = "NONE"
)

// ScoreRiskInputs bundles every input the scoring formula needs.
type ScoreRiskInputs struct {
	Plan        *ingest.NormalizedPlan
	Graph       *graph.Graph
	Exposures   []SecurityExposure
	Destructive []StateDestructiveUpdate
	CostAlerts  []CostAlert
	Shared      []SharedResource
	Cfg         *config.RiskScoring
}

// ScoreRisk runs the scoring formula end to end: the four dimensions, the
// interaction multiplier, the blast term, the final score, and both the
// 6-tier and 4-tier projections.
func ScoreRisk(in ScoreRiskInputs, blast BlastRadiusResult) RiskResult {
	dims := DimensionScores{
		Data:           dataDimension(in.Plan, in.Destructive, in.Cfg.DataLoss),
		Security:       securityDimension(in.Exposures, in.Cfg.Security),
		Infrastructure: infrastructureDimension(in.Plan, in.Graph, in.Shared, in.Cfg.Infrastructure),
		Cost:           costDimension(in.CostAlerts, in.Cfg.Cost),
	}

	mu := interactionMultiplier(dims, in.Cfg.Interactions)
	primary := PrimaryDimension(dims)
	omega := blastWeight(primary, in.Cfg.BlastRadius.Weights)
	blastContribution := 10 * math.Log2(float64(blast.AffectedCount)+1) * omega

	maxDim := dims.Get(primary)
	score := maxDim*(1+mu) + blastContribution

	detailed := detailedTier(score, in.Cfg.Thresholds)
	projected := projectTier(detailed)
	action, approval := tierActionApproval(detailed)

	return RiskResult{
		Score: score,
		Breakdown: RiskBreakdown{
			PrimaryDimension:      primary,
			Dimensions:            dims,
			InteractionMultiplier: mu,
			BlastContribution:     blastContribution,
		},
		DetailedTier:  detailed,
		ProjectedTier: projected,
		Action:        action,
		ApprovalRole:  approval,
	}
}

func dataDimension(plan *ingest.NormalizedPlan, destructive []StateDestructiveUpdate, cfg config.DataLossConfig) float64 {
	var items []weightedItem
	for _, r := range plan.Resources {
		if r.Action == ingest.ActionDelete {
			items = append(items, weightedItem{address: r.Address, weight: cfg.BaseWeight * 1.0})
		}
	}
	for _, d := range destructive {
		items = append(items, weightedItem{address: d.ResourceAddress, weight: cfg.BaseWeight * cfg.StateDestructiveMultiplier})
	}
	return stackingDecay(items, cfg.DecayFactor)
}

func securityDimension(exposures []SecurityExposure, cfg config.SecurityConfig) float64 {
	sensitive := map[int]struct{}{}
	for _, p := range cfg.SensitivePorts {
		sensitive[p] = struct{}{}
	}
	var items []weightedItem
	for _, e := range exposures {
		weight := cfg.BaseWeight
		if e.Port != nil {
			if _, ok := sensitive[*e.Port]; ok {
				weight += cfg.SensitivePortPenalty
			}
		}
		items = append(items, weightedItem{address: e.ResourceAddress, weight: weight})
	}
	return stackingDecay(items, cfg.DecayFactor)
}

// infrastructureDimension scores the infrastructure dimension: no decay is
// applied; weights are summed directly. A shared resource that is itself
// changed uses its own
// action's multiplier; a shared resource included only because a direct
// dependent changed (but the shared resource itself did not) uses the
// CREATE multiplier (1.0) since it has no action of its own to weight by.
func infrastructureDimension(plan *ingest.NormalizedPlan, g *graph.Graph, shared []SharedResource, cfg config.InfrastructureConfig) float64 {
	total := 0.0
	for _, s := range shared {
		r, ok := plan.ByAddress(s.Address)
		if !ok {
			continue
		}
		selfChanged := r.Action.IsChanged()
		dependentChanged := false
		if !selfChanged {
			for dep := range g.DirectDependents(s.Address) {
				if dr, ok := plan.ByAddress(dep); ok && dr.Action.IsChanged() {
					dependentChanged = true
					break
				}
			}
		}
		if !selfChanged && !dependentChanged {
			continue
		}

		criticalityMult := 1.0
		if s.IsCritical {
			criticalityMult = cfg.CriticalMultiplier
		}
		actionMult := 1.0
		if selfChanged {
			switch r.Action {
			case ingest.ActionDelete:
				actionMult = 2.0
			case ingest.ActionUpdate:
				actionMult = 1.5
			case ingest.ActionCreate:
				actionMult = 1.0
			}
		}
		total += cfg.SharedResourceBase * criticalityMult * actionMult
	}
	return total
}

func costDimension(alerts []CostAlert, cfg config.CostDimensionConfig) float64 {
	var items []weightedItem
	for _, a := range alerts {
		weight := cfg.ScalingWeight
		if a.Kind == CostHighCostCreate || a.Kind == CostHighCostInstanceCreate {
			weight = cfg.CreationWeight
		}
		items = append(items, weightedItem{address: a.ResourceAddress, weight: weight})
	}
	return stackingDecay(items, cfg.DecayFactor)
}

// interactionMultiplier applies the additive interaction-bonus rules.
func interactionMultiplier(d DimensionScores, cfg config.InteractionsConfig) float64 {
	mu := 0.0
	if d.Data >= cfg.DataSecurityData && d.Security >= cfg.DataSecuritySecurity {
		mu += cfg.DataSecurityBonus
	}
	if d.Infrastructure >= cfg.InfraSecurityInfra && d.Security >= cfg.InfraSecuritySecurity {
		mu += cfg.InfraSecurityBonus
	}
	if d.Data >= cfg.DataInfraData && d.Infrastructure >= cfg.DataInfraInfra {
		mu += cfg.DataInfraBonus
	}
	if d.Cost >= cfg.CostInfraCost && d.Infrastructure >= cfg.CostInfraInfra {
		mu += cfg.CostInfraBonus
	}

	elevated := 0
	for _, v := range []float64{d.Data, d.Security, d.Infrastructure, d.Cost} {
		if v >= cfg.PerfectStormThreshold {
			elevated++
		}
	}
	switch {
	case elevated >= 3:
		mu += cfg.PerfectStormBonus
	case elevated == 2:
		mu += cfg.TwoDimBonus
	}
	return mu
}

func blastWeight(primary string, weights config.BlastRadiusWeights) float64 {
	switch primary {
	case DimensionData:
		return weights.Data
	case DimensionSecurity:
		return weights.Security
	case DimensionInfrastructure:
		return weights.Infrastructure
	case DimensionCost:
		return weights.Cost
	default:
		return 0
	}
}

func detailedTier(score float64, t config.ThresholdsConfig) string {
	switch {
	case score >= t.CriticalCatastrophic:
		return TierCriticalCatastrophic
	case score >= t.Critical:
		return TierCritical
	case score >= t.HighSevere:
		return TierHighSevere
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// projectTier maps the 6-tier detailed classification down to the
// policy-compatible 4-tier level.
func projectTier(detailed string) string {
	switch detailed {
	case TierCriticalCatastrophic, TierCritical:
		return ProjectedCritical
	case TierHighSevere, TierHigh:
		return ProjectedHigh
	case TierMedium:
		return ProjectedMedium
	default:
		return ProjectedLow
	}
}

func tierActionApproval(detailed string) (string, string) {
	switch detailed {
	case TierCriticalCatastrophic:
		return ActionHardBlock, ApprovalVPIncident
	case TierCritical:
		return ActionSoftBlock, ApprovalVPOrDirector
	case TierHighSevere:
		return ActionRequireApproval, ApprovalSeniorArchitect
	case TierHigh:
		return ActionRequireApproval, ApprovalSeniorOrLead
	case TierMedium:
		return ActionRequirePeerReview, ApprovalAnyEngineer
	default:
		return ActionAutoApprove, ApprovalNone
	}
}
