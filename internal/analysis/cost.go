package analysis

import (
	"fmt"
	"strings"

	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

var computeInstanceTypes = map[string]struct{}{
	"aws_instance":            {},
	"aws_db_instance":         {},
	"aws_launch_template":     {},
	"aws_launch_configuration": {},
}

// DetectCostAlerts scans the normalized plan for high-cost creations,
// high-cost instance creations, and instance cost-tier scale-ups.
func DetectCostAlerts(plan *ingest.NormalizedPlan, cfg config.CostAlerts) []CostAlert {
	highCostTypes := toSet(cfg.HighCostTypes)
	highCostInstanceTypes := toSet(cfg.HighCostInstanceTypes)

	var out []CostAlert
	for _, r := range plan.Resources {
		if r.Action == ingest.ActionCreate {
			if _, ok := highCostTypes[r.Type]; ok {
				out = append(out, CostAlert{
					ResourceAddress: r.Address,
					Kind:            CostHighCostCreate,
					Details:         fmt.Sprintf("creation of high-cost resource type %s", r.Type),
				})
			}

			if _, isCompute := computeInstanceTypes[r.Type]; isCompute {
				instanceType, _ := r.After["instance_type"].(string)
				if _, ok := highCostInstanceTypes[instanceType]; ok && instanceType != "" {
					out = append(out, CostAlert{
						ResourceAddress: r.Address,
						Kind:            CostHighCostInstanceCreate,
						Details:         fmt.Sprintf("creation of high-cost instance type %s", instanceType),
					})
				}
			}
		}

		if r.Action == ingest.ActionUpdate {
			if _, isCompute := computeInstanceTypes[r.Type]; isCompute {
				beforeType, _ := r.Before["instance_type"].(string)
				afterType, _ := r.After["instance_type"].(string)
				if beforeType != "" && afterType != "" && beforeType != afterType {
					beforeTier, beforeOK := lookupTier(cfg.InstanceCostTiers, beforeType)
					afterTier, afterOK := lookupTier(cfg.InstanceCostTiers, afterType)
					if beforeOK && afterOK && afterTier > beforeTier {
						out = append(out, CostAlert{
							ResourceAddress: r.Address,
							Kind:            CostInstanceScaleUp,
							Details:         fmt.Sprintf("instance scaled up from %s (tier %d) to %s (tier %d)", beforeType, beforeTier, afterType, afterTier),
						})
					}
				}
			}
		}
	}
	return out
}

// lookupTier returns the tier index of the longest configured prefix that
// matches instanceType.
func lookupTier(tiers []config.InstanceTier, instanceType string) (int, bool) {
	bestLen := -1
	bestTier := 0
	found := false
	for _, t := range tiers {
		if strings.HasPrefix(instanceType, t.Prefix) && len(t.Prefix) > bestLen {
			bestLen = len(t.Prefix)
			bestTier = t.Tier
			found = true
		}
	}
	return bestTier, found
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, i := range items {
		out[i] = struct{}{}
	}
	return out
}
