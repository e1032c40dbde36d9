package contracts

// ExplanationID values are stable identifiers for explanation types, not
// instances: one ID applies to every plan that matches its condition,
// keeping the explanation surface finite.
const (
	ExplanationSharedInfrastructureChange           = "SHARED_INFRASTRUCTURE_CHANGE"
	ExplanationCriticalSharedDependencyModification = "CRITICAL_SHARED_DEPENDENCY_MODIFICATION"
	ExplanationSharedDependencyModification         = "SHARED_DEPENDENCY_MODIFICATION"
	ExplanationCriticalInfrastructureModification   = "CRITICAL_INFRASTRUCTURE_MODIFICATION"
	ExplanationDeleteOperationDetected              = "DELETE_OPERATION_DETECTED"
	ExplanationSingleResourceLowRisk                = "SINGLE_RESOURCE_LOW_RISK"

	ExplanationResourceCriticalSharedDependency = "RESOURCE_CRITICAL_SHARED_DEPENDENCY"
	ExplanationResourceSharedCritical           = "RESOURCE_SHARED_CRITICAL"
	ExplanationResourceSharedNonCritical        = "RESOURCE_SHARED_NON_CRITICAL"
	ExplanationResourceCriticalNoDependents     = "RESOURCE_CRITICAL_NO_DEPENDENTS"
	ExplanationResourceNotFound                 = "RESOURCE_NOT_FOUND"
)

var explanationDescriptions = map[string]string{
	ExplanationSharedInfrastructureChange:           "Multiple shared infrastructure components are being modified",
	ExplanationCriticalSharedDependencyModification: "A critical shared dependency with multiple dependents is being modified",
	ExplanationSharedDependencyModification:         "A shared dependency is being modified",
	ExplanationCriticalInfrastructureModification:   "Critical infrastructure is being modified",
	ExplanationDeleteOperationDetected:               "Delete operations detected in plan",
	ExplanationSingleResourceLowRisk:                 "Single resource change with low risk",
	ExplanationResourceCriticalSharedDependency:      "Resource is both critical and shared with many dependents",
	ExplanationResourceSharedCritical:                "Resource is shared and critical",
	ExplanationResourceSharedNonCritical:             "Resource is shared but not critical",
	ExplanationResourceCriticalNoDependents:          "Resource is critical but has no dependents",
	ExplanationResourceNotFound:                      "Requested resource not found in analysis",
}

// ExplanationDescription returns the one-line description for an
// explanation ID, or a fixed fallback for an unrecognized value.
func ExplanationDescription(id string) string {
	if d, ok := explanationDescriptions[id]; ok {
		return d
	}
	return "Unknown explanation type"
}

// manyDependentsThreshold mirrors the cutoff above which a critical shared
// dependency escalates from RESOURCE_SHARED_CRITICAL to
// RESOURCE_CRITICAL_SHARED_DEPENDENCY.
const manyDependentsThreshold = 5

func containsAction(actionTypes []string, action string) bool {
	for _, a := range actionTypes {
		if a == action {
			return true
		}
	}
	return false
}

// SelectExplanationID implements the plan-level explanation-ID selection
// rules: the first matching condition wins, in priority order below.
func SelectExplanationID(shared []SharedDependency, critical []CriticalInfrastructure, actionTypes []string) string {
	switch {
	case len(shared) > 1:
		return ExplanationSharedInfrastructureChange
	case len(shared) == 1:
		if shared[0].IsCritical {
			return ExplanationCriticalSharedDependencyModification
		}
		return ExplanationSharedDependencyModification
	case len(critical) > 0:
		return ExplanationCriticalInfrastructureModification
	case containsAction(actionTypes, "DELETE"):
		return ExplanationDeleteOperationDetected
	default:
		return ExplanationSingleResourceLowRisk
	}
}

// SelectResourceExplanationID implements resource-scoped explanation-ID
// selection for `explain RESOURCE_ID`: a resource is looked up first
// among shared dependencies, then among critical infrastructure, in that
// order.
func SelectResourceExplanationID(shared []SharedDependency, critical []CriticalInfrastructure, resourceID string) string {
	for _, dep := range shared {
		if dep.ResourceID != resourceID {
			continue
		}
		if dep.IsCritical {
			if dep.Dependents > manyDependentsThreshold {
				return ExplanationResourceCriticalSharedDependency
			}
			return ExplanationResourceSharedCritical
		}
		return ExplanationResourceSharedNonCritical
	}
	for _, crit := range critical {
		if crit.ResourceID == resourceID {
			return ExplanationResourceCriticalNoDependents
		}
	}
	return ExplanationResourceNotFound
}
