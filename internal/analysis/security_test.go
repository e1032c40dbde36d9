package analysis

import (
	"testing"

	"github.com/akileshthuniki/preapply/internal/ingest"
)

func sensitivePortSet() map[int]struct{} {
	return map[int]struct{}{22: {}, 3389: {}, 3306: {}}
}

func TestDetectSecurityExposuresIngressOpenToWorld(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_security_group.web",
		Type:    "aws_security_group",
		Action:  ingest.ActionCreate,
		After: map[string]interface{}{
			"ingress": []interface{}{
				map[string]interface{}{
					"from_port":   float64(22),
					"to_port":     float64(22),
					"cidr_blocks": []interface{}{"0.0.0.0/0"},
				},
			},
		},
	})

	out := DetectSecurityExposures(plan, sensitivePortSet())
	if len(out) != 1 {
		t.Fatalf("expected 1 exposure, got %d", len(out))
	}
	if out[0].Kind != ExposureIngressCIDR || out[0].Severity != SeverityHigh {
		t.Fatalf("expected high-severity ingress exposure on sensitive port, got %+v", out[0])
	}
}

func TestDetectSecurityExposuresIgnoresScopedCIDR(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_security_group.web",
		Type:    "aws_security_group",
		Action:  ingest.ActionCreate,
		After: map[string]interface{}{
			"ingress": []interface{}{
				map[string]interface{}{
					"from_port":   float64(443),
					"to_port":     float64(443),
					"cidr_blocks": []interface{}{"10.0.0.0/8"},
				},
			},
		},
	})
	out := DetectSecurityExposures(plan, sensitivePortSet())
	if len(out) != 0 {
		t.Fatalf("expected no exposures for scoped CIDR, got %v", out)
	}
}

func TestDetectSecurityExposuresS3PublicBlockDisabled(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_s3_bucket_public_access_block.data",
		Type:    "aws_s3_bucket_public_access_block",
		Action:  ingest.ActionUpdate,
		After: map[string]interface{}{
			"block_public_acls":       false,
			"block_public_policy":     true,
			"ignore_public_acls":      true,
			"restrict_public_buckets": true,
		},
	})
	out := DetectSecurityExposures(plan, sensitivePortSet())
	if len(out) != 1 || out[0].Kind != ExposureS3PublicBlockOff {
		t.Fatalf("expected s3 public block exposure, got %v", out)
	}
}

func TestDetectSecurityExposuresS3PublicReadWriteACL(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_s3_bucket.data",
		Type:    "aws_s3_bucket",
		Action:  ingest.ActionCreate,
		After:   map[string]interface{}{"acl": "public-read-write"},
	})
	out := DetectSecurityExposures(plan, sensitivePortSet())
	if len(out) != 1 || out[0].Severity != SeverityHigh {
		t.Fatalf("expected high-severity public-read-write exposure, got %v", out)
	}
}

func TestDetectSecurityExposuresFallsBackToBeforeOnDelete(t *testing.T) {
	plan := planWith(ingest.NormalizedResource{
		Address: "aws_security_group.old",
		Type:    "aws_security_group",
		Action:  ingest.ActionDelete,
		Before: map[string]interface{}{
			"ingress": []interface{}{
				map[string]interface{}{
					"from_port":   float64(3389),
					"to_port":     float64(3389),
					"cidr_blocks": []interface{}{"0.0.0.0/0"},
				},
			},
		},
	})
	out := DetectSecurityExposures(plan, sensitivePortSet())
	if len(out) != 1 {
		t.Fatalf("expected exposure derived from Before on delete, got %v", out)
	}
}
