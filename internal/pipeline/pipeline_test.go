package pipeline

import (
	"testing"

	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

func samplePlan() ingest.RawPlan {
	return ingest.RawPlan{
		"format_version": "1.2",
		"resource_changes": []interface{}{
			map[string]interface{}{
				"address": "aws_db_instance.primary",
				"type":    "aws_db_instance",
				"change": map[string]interface{}{
					"actions": []interface{}{"delete"},
					"before":  map[string]interface{}{"deletion_protection": true},
					"after":   nil,
				},
			},
			map[string]interface{}{
				"address": "aws_security_group.web",
				"type":    "aws_security_group",
				"change": map[string]interface{}{
					"actions": []interface{}{"create"},
					"before":  nil,
					"after": map[string]interface{}{
						"ingress": []interface{}{
							map[string]interface{}{
								"from_port":   float64(22),
								"to_port":     float64(22),
								"cidr_blocks": []interface{}{"0.0.0.0/0"},
							},
						},
					},
				},
			},
		},
	}
}

func TestRunOnRawPlanProducesCoreOutput(t *testing.T) {
	result, err := RunOnRawPlan(samplePlan(), config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output.Version != "1.0.0" {
		t.Fatalf("expected versioned output, got %q", result.Output.Version)
	}
	if result.Output.DeletionCount != 1 {
		t.Fatalf("expected 1 deletion, got %d", result.Output.DeletionCount)
	}
	if len(result.Output.RiskAttributes.SensitiveDeletions) != 1 {
		t.Fatalf("expected aws_db_instance deletion flagged sensitive, got %v", result.Output.RiskAttributes.SensitiveDeletions)
	}
	if len(result.Output.RiskAttributes.SecurityExposures) != 1 {
		t.Fatalf("expected 1 security exposure, got %v", result.Output.RiskAttributes.SecurityExposures)
	}
	if result.Output.ExplanationID == "" {
		t.Fatalf("expected a non-empty explanation id")
	}
	if len(result.Output.Recommendations) == 0 {
		t.Fatalf("expected at least one recommendation for a sensitive deletion")
	}
}

func TestRunOnRawPlanIsDeterministic(t *testing.T) {
	cfg := config.Default()
	a, err := RunOnRawPlan(samplePlan(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunOnRawPlan(samplePlan(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if a.Output.BlastRadiusScore != b.Output.BlastRadiusScore {
		t.Fatalf("expected deterministic score, got %v vs %v", a.Output.BlastRadiusScore, b.Output.BlastRadiusScore)
	}
}

func TestExplainResourceNotFound(t *testing.T) {
	result, err := RunOnRawPlan(samplePlan(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if got := ExplainResource(result, "aws_instance.nonexistent"); got != "RESOURCE_NOT_FOUND" {
		t.Fatalf("expected RESOURCE_NOT_FOUND, got %s", got)
	}
}
