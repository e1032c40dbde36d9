package contracts

import (
	"sort"
	"strconv"
	"strings"
)

// ExplainOverall renders the plan-level human-readable explanation: a
// deterministic, template-based sentence built from the same fields that
// drove explanation-ID selection.
func ExplainOverall(out CoreOutput) string {
	attrs := out.RiskAttributes

	var factors []string
	if len(attrs.SharedDependencies) == 1 {
		dep := attrs.SharedDependencies[0]
		factors = append(factors, "modification of shared "+dep.ResourceType+" ("+strconv.Itoa(dep.Dependents)+" dependents)")
	} else if len(attrs.SharedDependencies) > 1 {
		factors = append(factors, strconv.Itoa(len(attrs.SharedDependencies))+" shared dependencies")
	}

	if len(attrs.CriticalInfrastructure) == 1 {
		factors = append(factors, "modification of critical "+attrs.CriticalInfrastructure[0].ResourceType)
	} else if len(attrs.CriticalInfrastructure) > 1 {
		factors = append(factors, strconv.Itoa(len(attrs.CriticalInfrastructure))+" critical infrastructure components")
	}

	if containsAction(attrs.ActionTypes, "DELETE") {
		factors = append(factors, "delete operations detected")
	} else if containsAction(attrs.ActionTypes, "CREATE") {
		factors = append(factors, "new resource creation")
	}

	if len(factors) == 0 {
		factors = append(factors, "infrastructure changes")
	}

	blastContext := "affecting " + strconv.Itoa(attrs.BlastRadius.AffectedResources) + " downstream resources"
	if attrs.BlastRadius.AffectedComponents > 1 {
		blastContext += " across " + strconv.Itoa(attrs.BlastRadius.AffectedComponents) + " component types"
	}

	var b strings.Builder
	b.WriteString("This change has ")
	b.WriteString(string(out.RiskLevel))
	b.WriteString(" risk")
	b.WriteString(" due to ")
	b.WriteString(strings.Join(factors, ", "))
	b.WriteString(". The blast radius ")
	b.WriteString(blastContext)
	b.WriteString(".")
	if len(out.Recommendations) > 0 {
		b.WriteString(" ")
		b.WriteString(out.Recommendations[0])
	}
	return b.String()
}

// ExplainResource renders the human-readable explanation for a single
// resource, matching it first among shared dependencies (exact or
// substring match on resource id, mirroring the original's lookup), then
// among critical infrastructure, and otherwise reporting it as not found.
func ExplainResource(out CoreOutput, resourceID string) string {
	attrs := out.RiskAttributes

	for _, dep := range attrs.SharedDependencies {
		if dep.ResourceID == resourceID || strings.Contains(dep.ResourceID, resourceID) {
			return explainSharedDependency(dep, attrs)
		}
	}
	for _, crit := range attrs.CriticalInfrastructure {
		if crit.ResourceID == resourceID || strings.Contains(crit.ResourceID, resourceID) {
			return explainCriticalInfrastructure(crit, attrs)
		}
	}
	return "Resource '" + resourceID + "' not found in analysis results."
}

func explainSharedDependency(dep SharedDependency, attrs RiskAttributes) string {
	var classification []string
	if dep.IsCritical {
		classification = append(classification, "critical")
	}
	classification = append(classification, "shared")

	var b strings.Builder
	b.WriteString(dep.ResourceID)
	b.WriteString(" is a ")
	b.WriteString(strings.Join(classification, " and "))
	b.WriteString(" resource because ")
	b.WriteString(strings.ToLower(dep.RiskReason))

	if dep.Dependents > 0 {
		b.WriteString(". It affects ")
		b.WriteString(strconv.Itoa(dep.Dependents))
		b.WriteString(" downstream resource")
		if dep.Dependents > 1 {
			b.WriteString("s")
		}
	}
	if len(attrs.ActionTypes) > 0 {
		b.WriteString(". Action type: ")
		b.WriteString(strings.Join(attrs.ActionTypes, ", "))
	}
	return b.String()
}

func explainCriticalInfrastructure(crit CriticalInfrastructure, attrs RiskAttributes) string {
	var b strings.Builder
	b.WriteString(crit.ResourceID)
	b.WriteString(" is critical infrastructure because ")
	b.WriteString(strings.ToLower(crit.RiskReason))
	if len(attrs.ActionTypes) > 0 {
		b.WriteString(". Action type: ")
		b.WriteString(strings.Join(attrs.ActionTypes, ", "))
	}
	return b.String()
}

// GenerateSummary renders the 2-3 sentence plan summary.
func GenerateSummary(out CoreOutput) string {
	attrs := out.RiskAttributes

	sentences := []string{
		"This change has " + string(out.RiskLevel) + " risk due to " + primaryDriver(attrs),
	}

	sentence2 := "The blast radius affects " + strconv.Itoa(attrs.BlastRadius.AffectedResources) + " resources"
	if attrs.BlastRadius.AffectedComponents > 1 {
		sentence2 += " across " + strconv.Itoa(attrs.BlastRadius.AffectedComponents) + " component types"
	}
	sentence2 += "."
	sentences = append(sentences, sentence2)

	if len(out.Recommendations) > 0 {
		sentences = append(sentences, out.Recommendations[0])
	}
	return strings.Join(sentences, ". ")
}

func primaryDriver(attrs RiskAttributes) string {
	if len(attrs.SharedDependencies) > 0 {
		return "modification of shared " + attrs.SharedDependencies[0].ResourceType + " infrastructure"
	}
	if len(attrs.CriticalInfrastructure) > 0 {
		return "modification of critical " + attrs.CriticalInfrastructure[0].ResourceType + " infrastructure"
	}
	if containsAction(attrs.ActionTypes, "DELETE") {
		return "delete operations"
	}
	if containsAction(attrs.ActionTypes, "CREATE") {
		return "new resource creation"
	}
	return "infrastructure changes"
}

// ListResources returns every resource id available for `explain
// RESOURCE_ID`, sorted for deterministic output.
func ListResources(out CoreOutput) []string {
	attrs := out.RiskAttributes
	resources := make([]string, 0, len(attrs.SharedDependencies)+len(attrs.CriticalInfrastructure))
	for _, dep := range attrs.SharedDependencies {
		resources = append(resources, dep.ResourceID)
	}
	for _, crit := range attrs.CriticalInfrastructure {
		resources = append(resources, crit.ResourceID)
	}
	sort.Strings(resources)
	return resources
}
