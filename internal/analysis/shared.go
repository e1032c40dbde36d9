package analysis

import (
	"sort"

	"github.com/akileshthuniki/preapply/internal/graph"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

// SharedResources reports every resource whose direct in-degree in the
// dependency graph is >= 2. Results are sorted by address ascending.
func SharedResources(g *graph.Graph, plan *ingest.NormalizedPlan, criticalTypes map[string]struct{}) []SharedResource {
	var out []SharedResource
	for _, r := range plan.Resources {
		degree := g.InDegree(r.Address)
		if degree < 2 {
			continue
		}
		dependents := make([]string, 0, degree)
		for d := range g.DirectDependents(r.Address) {
			dependents = append(dependents, d)
		}
		sort.Strings(dependents)

		_, critical := criticalTypes[r.Type]
		out = append(out, SharedResource{
			Address:    r.Address,
			InDegree:   degree,
			IsCritical: critical,
			Dependents: dependents,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// CriticalTypeSet builds a lookup set from a critical_types config list.
func CriticalTypeSet(types []string) map[string]struct{} {
	out := make(map[string]struct{}, len(types))
	for _, t := range types {
		out[t] = struct{}{}
	}
	return out
}
