package analysis

import (
	"strconv"
	"strings"

	"github.com/akileshthuniki/preapply/internal/ingest"
)

var databaseTypesWithProtection = map[string]struct{}{
	"aws_db_instance":  {},
	"aws_rds_cluster":  {},
	"aws_rds_instance": {},
}

// DetectStateDestructive scans every UPDATE and
// DELETE for a weakening transition on force_destroy, prevent_destroy, or
// deletion_protection/backup_retention_period.
func DetectStateDestructive(plan *ingest.RawPlan, normalized *ingest.NormalizedPlan) []StateDestructiveUpdate {
	var out []StateDestructiveUpdate
	configLifecycles := collectLifecyclePreventDestroy(*plan)

	for _, r := range normalized.Resources {
		if r.Action != ingest.ActionUpdate && r.Action != ingest.ActionDelete {
			continue
		}

		if weakened, before, after := forceDestroyWeakened(r.Before, r.After); weakened {
			out = append(out, StateDestructiveUpdate{ResourceAddress: r.Address, Attribute: AttrForceDestroy, Before: before, After: after})
		}

		if disabled, before, after := deletionProtectionWeakened(r.Before, r.After); disabled {
			out = append(out, StateDestructiveUpdate{ResourceAddress: r.Address, Attribute: AttrDeletionProtection, Before: before, After: after})
		}

		if _, isDB := databaseTypesWithProtection[r.Type]; isDB {
			if disabled, before, after := backupRetentionWeakened(r.Before, r.After); disabled {
				out = append(out, StateDestructiveUpdate{ResourceAddress: r.Address, Attribute: AttrDeletionProtection, Before: before, After: after})
			}
		}

		if disabled := configLifecycles[r.Address]; disabled {
			out = append(out, StateDestructiveUpdate{ResourceAddress: r.Address, Attribute: AttrPreventDestroy, Before: true, After: false})
		}
	}
	return out
}

func forceDestroyWeakened(before, after map[string]interface{}) (bool, interface{}, interface{}) {
	b := asBool(before, "force_destroy", false)
	a := asBool(after, "force_destroy", false)
	if !b && a {
		return true, b, a
	}
	return false, nil, nil
}

func deletionProtectionWeakened(before, after map[string]interface{}) (bool, interface{}, interface{}) {
	if before == nil || after == nil {
		return false, nil, nil
	}
	if !hasField(before, "deletion_protection") && !hasField(after, "deletion_protection") {
		return false, nil, nil
	}
	b := asBool(before, "deletion_protection", false)
	a := asBool(after, "deletion_protection", false)
	if b && !a {
		return true, b, a
	}
	return false, nil, nil
}

func backupRetentionWeakened(before, after map[string]interface{}) (bool, interface{}, interface{}) {
	if before == nil || after == nil {
		return false, nil, nil
	}
	if !hasField(before, "backup_retention_period") && !hasField(after, "backup_retention_period") {
		return false, nil, nil
	}
	b := asNumber(before, "backup_retention_period")
	a := asNumber(after, "backup_retention_period")
	if b > 0 && a == 0 {
		return true, b, a
	}
	return false, nil, nil
}

// collectLifecyclePreventDestroy scans configuration.root_module (and
// nested modules) for resources whose lifecycle block explicitly sets
// prevent_destroy = false, returning a set of resource addresses.
func collectLifecyclePreventDestroy(plan ingest.RawPlan) map[string]bool {
	out := map[string]bool{}
	cfg, ok := plan["configuration"].(map[string]interface{})
	if !ok {
		return out
	}
	root, ok := cfg["root_module"].(map[string]interface{})
	if !ok {
		return out
	}
	walkLifecycle(root, "", out)
	return out
}

func walkLifecycle(module map[string]interface{}, prefix string, out map[string]bool) {
	if resources, ok := module["resources"].([]interface{}); ok {
		for _, raw := range resources {
			rm, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			relAddr, _ := rm["address"].(string)
			full := relAddr
			if prefix != "" && relAddr != "" {
				full = prefix + "." + relAddr
			}
			lifecycle, ok := rm["lifecycle"].(map[string]interface{})
			if !ok {
				continue
			}
			if v, ok := lifecycle["prevent_destroy"]; ok {
				if asBoolValue(v) == false {
					out[full] = true
				}
			}
		}
	}
	if calls, ok := module["module_calls"].(map[string]interface{}); ok {
		for name, callRaw := range calls {
			call, ok := callRaw.(map[string]interface{})
			if !ok {
				continue
			}
			child, ok := call["module"].(map[string]interface{})
			if !ok {
				continue
			}
			childPrefix := "module." + name
			if prefix != "" {
				childPrefix = prefix + ".module." + name
			}
			walkLifecycle(child, childPrefix, out)
		}
	}
}

func asBool(m map[string]interface{}, key string, def bool) bool {
	if m == nil {
		return def
	}
	v, ok := m[key]
	if !ok {
		return def
	}
	return asBoolValue(v)
}

func asBoolValue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		lower := strings.ToLower(strings.TrimSpace(t))
		if b, err := strconv.ParseBool(lower); err == nil {
			return b
		}
		return lower == "enabled"
	default:
		return false
	}
}

func asNumber(m map[string]interface{}, key string) float64 {
	if m == nil {
		return 0
	}
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
