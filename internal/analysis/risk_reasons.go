package analysis

import (
	"fmt"
	"strings"
)

// RiskReason produces a deterministic, human-readable reason string for a
// shared-dependency finding, used to enrich SharedDependency output
//.
func RiskReason(resourceType string, dependents int, isShared, isCritical bool) string {
	t := strings.ToLower(resourceType)

	switch {
	case strings.Contains(t, "vpc"):
		if dependents >= 5 {
			return "Broad blast radius across networking layer"
		}
		return "Core networking infrastructure"
	case strings.Contains(t, "nat_gateway"), strings.Contains(t, "nat"):
		return "Internet egress for private workloads"
	case strings.Contains(t, "subnet"):
		return "Network segmentation boundary"
	case containsAny(t, "lb", "alb", "nlb", "elb"):
		if isShared {
			return "Impacts multiple load-balanced services"
		}
		return "Traffic routing point"
	case strings.Contains(t, "security_group"), strings.Contains(t, "firewall"):
		if isShared {
			return "Shared security boundary"
		}
		return "Access control enforcement"
	case strings.Contains(t, "db_instance"), strings.Contains(t, "database"):
		return "Data persistence - deletion causes data loss"
	case strings.Contains(t, "s3_bucket"):
		return "Object storage - deletion causes data loss"
	}

	switch {
	case isShared && dependents >= 3:
		return fmt.Sprintf("Shared resource with %d dependents", dependents)
	case isCritical:
		return "Critical infrastructure component"
	case isShared:
		return fmt.Sprintf("Shared resource affecting %d dependents", dependents)
	default:
		return "Infrastructure component change"
	}
}

// CriticalRiskReason produces a reason string for critical infrastructure
// that is not itself a shared resource.
func CriticalRiskReason(resourceType string) string {
	t := strings.ToLower(resourceType)
	switch {
	case strings.Contains(t, "vpc"):
		return "Core networking infrastructure"
	case strings.Contains(t, "nat"), strings.Contains(t, "gateway"):
		return "Internet egress for private workloads"
	case containsAny(t, "lb", "alb", "nlb", "elb"):
		return "Traffic routing point"
	case strings.Contains(t, "security_group"), strings.Contains(t, "firewall"):
		return "Access control enforcement"
	case strings.Contains(t, "db_instance"), strings.Contains(t, "database"):
		return "Data persistence - deletion causes data loss"
	case strings.Contains(t, "s3_bucket"):
		return "Object storage - deletion causes data loss"
	default:
		return "Critical infrastructure component"
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
