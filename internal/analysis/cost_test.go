package analysis

import (
	"testing"

	"github.com/akileshthuniki/preapply/internal/config"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

func TestDetectCostAlertsHighCostTypeCreate(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_nat_gateway.main",
		Type:    "aws_nat_gateway",
		Action:  ingest.ActionCreate,
	})
	out := DetectCostAlerts(plan, config.Default().CostAlerts)
	if len(out) != 1 || out[0].Kind != CostHighCostCreate {
		t.Fatalf("expected high_cost_create alert, got %v", out)
	}
}

func TestDetectCostAlertsHighCostInstanceCreate(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_instance.big",
		Type:    "aws_instance",
		Action:  ingest.ActionCreate,
		After:   map[string]interface{}{"instance_type": "m5.8xlarge"},
	})
	out := DetectCostAlerts(plan, config.Default().CostAlerts)
	if len(out) != 1 || out[0].Kind != CostHighCostInstanceCreate {
		t.Fatalf("expected high_cost_instance_create alert, got %v", out)
	}
}

func TestDetectCostAlertsInstanceScaleUp(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_instance.app",
		Type:    "aws_instance",
		Action:  ingest.ActionUpdate,
		Before:  map[string]interface{}{"instance_type": "t3.micro"},
		After:   map[string]interface{}{"instance_type": "m5.4xlarge"},
	})
	out := DetectCostAlerts(plan, config.Default().CostAlerts)
	if len(out) != 1 || out[0].Kind != CostInstanceScaleUp {
		t.Fatalf("expected instance_scale_up alert, got %v", out)
	}
}

func TestDetectCostAlertsIgnoresScaleDown(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_instance.app",
		Type:    "aws_instance",
		Action:  ingest.ActionUpdate,
		Before:  map[string]interface{}{"instance_type": "m5.4xlarge"},
		After:   map[string]interface{}{"instance_type": "t3.micro"},
	})
	out := DetectCostAlerts(plan, config.Default().CostAlerts)
	if len(out) != 0 {
		t.Fatalf("expected no alert for scale-down, got %v", out)
	}
}

func TestLookupTierLongestPrefixWins(t *testing.T) {
	tiers := config.Default().CostAlerts.InstanceCostTiers
	tier, ok := lookupTier(tiers, "m5.4xlarge")
	if !ok || tier != 3 {
		t.Fatalf("expected tier 3 for m5.4xlarge, got %d ok=%v", tier, ok)
	}
}
