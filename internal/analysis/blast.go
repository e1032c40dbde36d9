package analysis

import (
	"sort"

	"github.com/akileshthuniki/preapply/internal/graph"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

// BlastRadius computes : the set of CHANGED resources plus every
// node downstream of any of them, and the sorted, deduplicated list of
// their component labels.
func BlastRadius(g *graph.Graph, plan *ingest.NormalizedPlan) BlastRadiusResult {
	changed := plan.Changed()
	affected := map[string]struct{}{}
	for _, c := range changed {
		affected[c.Address] = struct{}{}
		for d := range g.Downstream(c.Address) {
			affected[d] = struct{}{}
		}
	}

	components := map[string]struct{}{}
	for addr := range affected {
		if r, ok := plan.ByAddress(addr); ok {
			components[r.Component()] = struct{}{}
		}
	}

	sortedComponents := make([]string, 0, len(components))
	for c := range components {
		sortedComponents = append(sortedComponents, c)
	}
	sort.Strings(sortedComponents)

	return BlastRadiusResult{
		AffectedCount:      len(affected),
		ChangedCount:       len(changed),
		AffectedComponents: sortedComponents,
	}
}
