package contracts

import "testing"

func TestSelectExplanationIDMultipleShared(t *testing.T) {
	shared := []SharedDependency{{ResourceID: "a"}, {ResourceID: "b"}}
	if got := SelectExplanationID(shared, nil, nil); got != ExplanationSharedInfrastructureChange {
		t.Fatalf("got %s", got)
	}
}

func TestSelectExplanationIDSingleCriticalShared(t *testing.T) {
	shared := []SharedDependency{{ResourceID: "a", IsCritical: true}}
	if got := SelectExplanationID(shared, nil, nil); got != ExplanationCriticalSharedDependencyModification {
		t.Fatalf("got %s", got)
	}
}

func TestSelectExplanationIDSingleNonCriticalShared(t *testing.T) {
	shared := []SharedDependency{{ResourceID: "a", IsCritical: false}}
	if got := SelectExplanationID(shared, nil, nil); got != ExplanationSharedDependencyModification {
		t.Fatalf("got %s", got)
	}
}

func TestSelectExplanationIDCriticalInfrastructure(t *testing.T) {
	critical := []CriticalInfrastructure{{ResourceID: "a"}}
	if got := SelectExplanationID(nil, critical, nil); got != ExplanationCriticalInfrastructureModification {
		t.Fatalf("got %s", got)
	}
}

func TestSelectExplanationIDDeleteDetected(t *testing.T) {
	if got := SelectExplanationID(nil, nil, []string{"DELETE"}); got != ExplanationDeleteOperationDetected {
		t.Fatalf("got %s", got)
	}
}

func TestSelectExplanationIDDefaultLowRisk(t *testing.T) {
	if got := SelectExplanationID(nil, nil, []string{"CREATE"}); got != ExplanationSingleResourceLowRisk {
		t.Fatalf("got %s", got)
	}
}

func TestSelectResourceExplanationIDManyDependents(t *testing.T) {
	shared := []SharedDependency{{ResourceID: "aws_vpc.main", IsCritical: true, Dependents: 6}}
	if got := SelectResourceExplanationID(shared, nil, "aws_vpc.main"); got != ExplanationResourceCriticalSharedDependency {
		t.Fatalf("got %s", got)
	}
}

func TestSelectResourceExplanationIDFewDependents(t *testing.T) {
	shared := []SharedDependency{{ResourceID: "aws_vpc.main", IsCritical: true, Dependents: 2}}
	if got := SelectResourceExplanationID(shared, nil, "aws_vpc.main"); got != ExplanationResourceSharedCritical {
		t.Fatalf("got %s", got)
	}
}

func TestSelectResourceExplanationIDNotFound(t *testing.T) {
	if got := SelectResourceExplanationID(nil, nil, "aws_vpc.main"); got != ExplanationResourceNotFound {
		t.Fatalf("got %s", got)
	}
}

func TestExplanationDescriptionFallback(t *testing.T) {
	if got := ExplanationDescription("NOT_A_REAL_ID"); got != "Unknown explanation type" {
		t.Fatalf("got %q", got)
	}
}
