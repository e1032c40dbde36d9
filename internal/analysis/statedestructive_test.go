package analysis

import (
	"testing"

	"github.com/akileshthuniki/preapply/internal/ingest"
)

func TestDetectStateDestructiveForceDestroyWeakened(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_s3_bucket.data",
		Type:    "aws_s3_bucket",
		Action:  ingest.ActionUpdate,
		Before:  map[string]interface{}{"force_destroy": false},
		After:   map[string]interface{}{"force_destroy": true},
	})
	raw := ingest.RawPlan{}
	out := DetectStateDestructive(&raw, plan)
	if len(out) != 1 || out[0].Attribute != AttrForceDestroy {
		t.Fatalf("expected force_destroy weakening, got %v", out)
	}
}

func TestDetectStateDestructiveDeletionProtectionDisabled(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_db_instance.primary",
		Type:    "aws_db_instance",
		Action:  ingest.ActionUpdate,
		Before:  map[string]interface{}{"deletion_protection": true},
		After:   map[string]interface{}{"deletion_protection": false},
	})
	raw := ingest.RawPlan{}
	out := DetectStateDestructive(&raw, plan)
	if len(out) != 1 || out[0].Attribute != AttrDeletionProtection {
		t.Fatalf("expected deletion_protection weakening, got %v", out)
	}
}

func TestDetectStateDestructiveBackupRetentionDroppedToZero(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_db_instance.primary",
		Type:    "aws_db_instance",
		Action:  ingest.ActionUpdate,
		Before:  map[string]interface{}{"backup_retention_period": float64(7)},
		After:   map[string]interface{}{"backup_retention_period": float64(0)},
	})
	raw := ingest.RawPlan{}
	out := DetectStateDestructive(&raw, plan)
	if len(out) != 1 {
		t.Fatalf("expected backup retention weakening, got %v", out)
	}
}

func TestDetectStateDestructiveIgnoresNonWeakeningChange(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_s3_bucket.data",
		Type:    "aws_s3_bucket",
		Action:  ingest.ActionUpdate,
		Before:  map[string]interface{}{"force_destroy": true},
		After:   map[string]interface{}{"force_destroy": false},
	})
	raw := ingest.RawPlan{}
	out := DetectStateDestructive(&raw, plan)
	if len(out) != 0 {
		t.Fatalf("expected no findings for a strengthening change, got %v", out)
	}
}

func TestDetectStateDestructiveLifecyclePreventDestroyFalse(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_db_instance.primary",
		Type:    "aws_db_instance",
		Action:  ingest.ActionUpdate,
	})
	raw := ingest.RawPlan{
		"configuration": map[string]interface{}{
			"root_module": map[string]interface{}{
				"resources": []interface{}{
					map[string]interface{}{
						"address": "aws_db_instance.primary",
						"lifecycle": map[string]interface{}{
							"prevent_destroy": false,
						},
					},
				},
			},
		},
	}
	out := DetectStateDestructive(&raw, plan)
	found := false
	for _, u := range out {
		if u.Attribute == AttrPreventDestroy {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected prevent_destroy=false finding, got %v", out)
	}
}
