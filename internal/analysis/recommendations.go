package analysis

import (
	"github.com/akileshthuniki/preapply/internal/graph"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

const (
	RecommendVerifyBackup      = "verify backup before proceeding"
	RecommendRestrictIngress   = "restrict ingress to known CIDR ranges"
	RecommendStagedApply       = "apply in stages to reduce blast radius"
	RecommendPhasedRollout     = "large blast radius, consider phased rollout"
	RecommendCoordinateModules = "cross-module change, coordinate with module owners"
)

const largeBlastRadiusThreshold = 10

// RecommendationInputs bundles everything the recommendation engine reads.
// It never re-derives analysis results; it only pattern-matches over what
// the earlier stages already found.
type RecommendationInputs struct {
	Plan               *ingest.NormalizedPlan
	Graph              *graph.Graph
	Exposures          []SecurityExposure
	Shared             []SharedResource
	SensitiveDeleteTypes map[string]struct{}
	Blast              BlastRadiusResult
}

// Recommendations runs a fixed, declaration-ordered set of
// predicate -> fixed-text rules, deduplicated by text while preserving the
// order rules fired in.
func Recommendations(in RecommendationInputs) []string {
	var out []string
	seen := map[string]struct{}{}
	emit := func(text string) {
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}

	if anySensitiveDeletion(in.Plan, in.SensitiveDeleteTypes) {
		emit(RecommendVerifyBackup)
	}
	if len(in.Exposures) > 0 {
		emit(RecommendRestrictIngress)
	}
	if anySharedCriticalModification(in.Plan, in.Graph, in.Shared) {
		emit(RecommendStagedApply)
	}
	if in.Blast.AffectedCount > largeBlastRadiusThreshold {
		emit(RecommendPhasedRollout)
	}
	if spansMultipleModules(in.Plan) {
		emit(RecommendCoordinateModules)
	}
	return out
}

func anySensitiveDeletion(plan *ingest.NormalizedPlan, sensitiveTypes map[string]struct{}) bool {
	for _, r := range plan.Resources {
		if r.Action != ingest.ActionDelete {
			continue
		}
		if _, ok := sensitiveTypes[r.Type]; ok {
			return true
		}
	}
	return false
}

// anySharedCriticalModification reports whether any critical shared
// resource is itself changed, or has a changed direct dependent — the same
// relevance test D_infrastructure applies.
func anySharedCriticalModification(plan *ingest.NormalizedPlan, g *graph.Graph, shared []SharedResource) bool {
	for _, s := range shared {
		if !s.IsCritical {
			continue
		}
		r, ok := plan.ByAddress(s.Address)
		if !ok {
			continue
		}
		if r.Action.IsChanged() {
			return true
		}
		for dep := range g.DirectDependents(s.Address) {
			if dr, ok := plan.ByAddress(dep); ok && dr.Action.IsChanged() {
				return true
			}
		}
	}
	return false
}

func spansMultipleModules(plan *ingest.NormalizedPlan) bool {
	modules := map[string]struct{}{}
	for _, r := range plan.Changed() {
		modules[r.Module] = struct{}{}
		if len(modules) >= 2 {
			return true
		}
	}
	return false
}
