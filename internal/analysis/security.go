package analysis

import (
	"github.com/akileshthuniki/preapply/internal/ingest"
)

var globalCIDRs = map[string]struct{}{
	"0.0.0.0/0": {},
}
var globalIPv6CIDRs = map[string]struct{}{
	"::/0": {},
}

// DetectSecurityExposures runs three rule families over every resource
// in the normalized plan.
func DetectSecurityExposures(plan *ingest.NormalizedPlan, sensitivePorts map[int]struct{}) []SecurityExposure {
	var out []SecurityExposure
	for _, r := range plan.Resources {
		attrs := r.After
		if attrs == nil {
			attrs = r.Before
		}
		if attrs == nil {
			continue
		}
		switch r.Type {
		case "aws_security_group":
			out = append(out, securityGroupExposures(r.Address, attrs, sensitivePorts)...)
		case "aws_security_group_rule":
			out = append(out, securityGroupRuleExposures(r.Address, attrs, sensitivePorts)...)
		case "aws_s3_bucket_public_access_block":
			out = append(out, s3PublicAccessBlockExposures(r.Address, attrs)...)
		case "aws_s3_bucket", "aws_s3_bucket_acl":
			out = append(out, s3ACLExposures(r.Address, attrs)...)
		}
	}
	return out
}

func securityGroupExposures(addr string, attrs map[string]interface{}, sensitivePorts map[int]struct{}) []SecurityExposure {
	var out []SecurityExposure
	if ingress, ok := attrs["ingress"].([]interface{}); ok {
		out = append(out, rulesExposures(addr, ExposureIngressCIDR, ingress, sensitivePorts)...)
	}
	if egress, ok := attrs["egress"].([]interface{}); ok {
		out = append(out, rulesExposures(addr, ExposureEgressCIDR, egress, sensitivePorts)...)
	}
	return out
}

func rulesExposures(addr, kind string, rules []interface{}, sensitivePorts map[int]struct{}) []SecurityExposure {
	var out []SecurityExposure
	for _, raw := range rules {
		rule, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if exp, ok := ruleExposure(addr, kind, rule, sensitivePorts); ok {
			out = append(out, exp)
		}
	}
	return out
}

func securityGroupRuleExposures(addr string, attrs map[string]interface{}, sensitivePorts map[int]struct{}) []SecurityExposure {
	kind := ExposureIngressCIDR
	if t, _ := attrs["type"].(string); t == "egress" {
		kind = ExposureEgressCIDR
	}
	if exp, ok := ruleExposure(addr, kind, attrs, sensitivePorts); ok {
		return []SecurityExposure{exp}
	}
	return nil
}

func ruleExposure(addr, kind string, rule map[string]interface{}, sensitivePorts map[int]struct{}) (SecurityExposure, bool) {
	hasGlobal, cidr := hasGlobalCIDR(rule)
	if !hasGlobal {
		return SecurityExposure{}, false
	}
	fromPort := intField(rule, "from_port")
	toPort := intField(rule, "to_port")
	severity := SeverityMedium
	if portRangeIntersectsSensitive(fromPort, toPort, sensitivePorts) {
		severity = SeverityHigh
	}
	var portPtr *int
	if fromPort != nil {
		portPtr = fromPort
	}
	return SecurityExposure{
		ResourceAddress: addr,
		Kind:            kind,
		Port:            portPtr,
		CIDR:            cidr,
		Severity:        severity,
	}, true
}

func hasGlobalCIDR(rule map[string]interface{}) (bool, string) {
	if cidrs, ok := rule["cidr_blocks"].([]interface{}); ok {
		for _, c := range cidrs {
			if s, ok := c.(string); ok {
				if _, global := globalCIDRs[s]; global {
					return true, s
				}
			}
		}
	}
	if s, ok := rule["cidr_ipv4"].(string); ok {
		if _, global := globalCIDRs[s]; global {
			return true, s
		}
	}
	if cidrs, ok := rule["ipv6_cidr_blocks"].([]interface{}); ok {
		for _, c := range cidrs {
			if s, ok := c.(string); ok {
				if _, global := globalIPv6CIDRs[s]; global {
					return true, s
				}
			}
		}
	}
	if s, ok := rule["cidr_ipv6"].(string); ok {
		if _, global := globalIPv6CIDRs[s]; global {
			return true, s
		}
	}
	return false, ""
}

func portRangeIntersectsSensitive(from, to *int, sensitivePorts map[int]struct{}) bool {
	if from == nil || to == nil {
		return false
	}
	lo, hi := *from, *to
	if lo > hi {
		lo, hi = hi, lo
	}
	for p := range sensitivePorts {
		if p >= lo && p <= hi {
			return true
		}
	}
	return false
}

func s3PublicAccessBlockExposures(addr string, attrs map[string]interface{}) []SecurityExposure {
	flags := []string{"block_public_acls", "block_public_policy", "ignore_public_acls", "restrict_public_buckets"}
	for _, f := range flags {
		if boolField(attrs, f) == false && hasField(attrs, f) {
			return []SecurityExposure{{
				ResourceAddress: addr,
				Kind:            ExposureS3PublicBlockOff,
				Severity:        SeverityHigh,
			}}
		}
	}
	return nil
}

func s3ACLExposures(addr string, attrs map[string]interface{}) []SecurityExposure {
	acl, _ := attrs["acl"].(string)
	switch acl {
	case "public-read-write":
		return []SecurityExposure{{ResourceAddress: addr, Kind: ExposureS3PublicACL, Severity: SeverityHigh}}
	case "public-read":
		return []SecurityExposure{{ResourceAddress: addr, Kind: ExposureS3PublicACL, Severity: SeverityMedium}}
	default:
		return nil
	}
}

func intField(m map[string]interface{}, key string) *int {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	}
	return nil
}

func boolField(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func hasField(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}
