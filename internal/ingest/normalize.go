package ingest

import (
	"strings"
)

// Normalize turns a validated RawPlan into a NormalizedPlan.
// Entries are emitted in resource_changes order; dependency extraction
// merges three sources (depends_on, configuration references, and a
// fallback string scan) and discards any reference that does not resolve
// to a known address in the plan.
func Normalize(plan RawPlan) (*NormalizedPlan, error) {
	entries := plan.ResourceChanges()
	resources := make([]NormalizedResource, 0, len(entries))
	rawDeps := make([][]string, 0, len(entries))

	configRefs := collectConfigurationReferences(plan)

	for _, raw := range entries {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		address, _ := m["address"].(string)
		rtype, _ := m["type"].(string)
		module := moduleFromAddress(address)
		id := idFromAddress(address)
		if rtype == "" {
			rtype = typeFromAddress(address)
		}

		change, _ := m["change"].(map[string]interface{})
		action := NormalizeAction(actionsOf(change))
		before, _ := asMap(change["before"])
		after, _ := asMap(change["after"])

		candidates := make([]string, 0, 8)
		if change != nil {
			if dep, ok := change["depends_on"].([]interface{}); ok {
				for _, d := range dep {
					if s, ok := d.(string); ok {
						candidates = append(candidates, s)
					}
				}
			}
		}
		for _, ref := range configRefs[address] {
			if resolved, ok := resolveReference(ref, module); ok {
				candidates = append(candidates, resolved)
			}
		}
		candidates = append(candidates, scanForAddressLikeStrings(before)...)
		candidates = append(candidates, scanForAddressLikeStrings(after)...)

		resources = append(resources, NormalizedResource{
			ID:      id,
			Module:  module,
			Type:    rtype,
			Address: address,
			Action:  action,
			Before:  before,
			After:   after,
		})
		rawDeps = append(rawDeps, candidates)
	}

	plan2, err := NewNormalizedPlan(resources)
	if err != nil {
		return nil, err
	}

	known := plan2.Addresses()
	for i := range plan2.Resources {
		deps := map[string]struct{}{}
		self := plan2.Resources[i].Address
		for _, cand := range rawDeps[i] {
			if cand == self {
				continue
			}
			if _, ok := known[cand]; ok {
				deps[cand] = struct{}{}
			}
		}
		plan2.Resources[i].DependsOn = deps
	}
	return plan2, nil
}

func actionsOf(change map[string]interface{}) []string {
	if change == nil {
		return nil
	}
	raw, _ := change["actions"].([]interface{})
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

// splitAddressDots splits a Terraform address on "." while treating
// bracketed index/key suffixes ("[0]", `["a.b"]`) as opaque, since they may
// contain literal dots.
func splitAddressDots(addr string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(addr); i++ {
		switch addr[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				parts = append(parts, addr[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, addr[start:])
	return parts
}

// moduleFromAddress returns the leading "module.<name>[.module.<name>]..."
// prefix of addr, or "" for a root-module resource.
func moduleFromAddress(addr string) string {
	parts := splitAddressDots(addr)
	i := modulePrefixEnd(parts)
	if i == 0 {
		return ""
	}
	return strings.Join(parts[:i], ".")
}

// typeFromAddress returns the provider-type token following the module
// prefix, e.g. "aws_instance" from "module.vpc.aws_instance.web".
func typeFromAddress(addr string) string {
	parts := splitAddressDots(addr)
	i := modulePrefixEnd(parts)
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// idFromAddress returns the resource id (everything after the type token,
// including any "[index]"/`["key"]` suffix) for addr.
func idFromAddress(addr string) string {
	parts := splitAddressDots(addr)
	i := modulePrefixEnd(parts)
	if i+1 < len(parts) {
		return strings.Join(parts[i+1:], ".")
	}
	if i < len(parts) {
		return parts[i]
	}
	return addr
}

// modulePrefixEnd returns the index just past the trailing run of
// "module.<name>" pairs at the start of parts, stopping before consuming
// the final type/id pair.
func modulePrefixEnd(parts []string) int {
	i := 0
	for i < len(parts) && parts[i] == "module" && len(parts)-i >= 4 {
		i += 2
	}
	return i
}

// collectConfigurationReferences walks configuration.root_module (and
// nested module_calls) and returns, per fully-qualified resource address,
// the raw reference strings found anywhere in that resource's expressions.
func collectConfigurationReferences(plan RawPlan) map[string][]string {
	out := map[string][]string{}
	cfg, ok := asMap(plan["configuration"])
	if !ok {
		return out
	}
	root, ok := asMap(cfg["root_module"])
	if !ok {
		return out
	}
	walkConfigModule(root, "", out)
	return out
}

func walkConfigModule(module map[string]interface{}, prefix string, out map[string][]string) {
	if resources, ok := module["resources"].([]interface{}); ok {
		for _, r := range resources {
			rm, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			relAddr, _ := rm["address"].(string)
			if relAddr == "" {
				continue
			}
			full := relAddr
			if prefix != "" {
				full = prefix + "." + relAddr
			}
			expressions := rm["expressions"]
			out[full] = append(out[full], collectReferences(expressions)...)
		}
	}
	if calls, ok := module["module_calls"].(map[string]interface{}); ok {
		for name, callRaw := range calls {
			call, ok := callRaw.(map[string]interface{})
			if !ok {
				continue
			}
			child, ok := asMap(call["module"])
			if !ok {
				continue
			}
			childPrefix := "module." + name
			if prefix != "" {
				childPrefix = prefix + ".module." + name
			}
			walkConfigModule(child, childPrefix, out)
		}
	}
}

// collectReferences recursively finds every "references" array anywhere
// within an expressions tree and flattens the string entries.
func collectReferences(node interface{}) []string {
	var out []string
	switch v := node.(type) {
	case map[string]interface{}:
		if refs, ok := v["references"].([]interface{}); ok {
			for _, r := range refs {
				if s, ok := r.(string); ok {
					out = append(out, s)
				}
			}
		}
		for k, child := range v {
			if k == "references" {
				continue
			}
			out = append(out, collectReferences(child)...)
		}
	case []interface{}:
		for _, child := range v {
			out = append(out, collectReferences(child)...)
		}
	}
	return out
}

var droppedReferencePrefixes = []string{"var.", "local.", "each.", "count.", "path.", "terraform.", "data."}

// resolveReference strips ignorable prefixes and resolves a configuration
// reference string (e.g. "aws_vpc.main") to a full plan address by
// prefixing it with the referencing resource's own module path. Returns
// ok=false for references that can never denote a
// resource address (variables, locals, data sources, etc).
func resolveReference(ref, module string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	for _, p := range droppedReferencePrefixes {
		if strings.HasPrefix(ref, p) {
			return "", false
		}
	}
	if ref == "aws_region" || ref == "aws_account" || strings.HasPrefix(ref, "aws_region.") || strings.HasPrefix(ref, "aws_account.") {
		return "", false
	}
	if strings.HasPrefix(ref, "module.") {
		return ref, true
	}
	if module == "" {
		return ref, true
	}
	return module + "." + ref, true
}

// scanForAddressLikeStrings is the fallback reference source: for every
// string value reachable inside a before/after resource-attribute map it
// returns each literal ${address} interpolation, plus the whole trimmed
// value as a bare <type>.<id> candidate. The caller keeps only candidates
// that are known addresses in the plan, so ordinary attribute values are
// discarded there.
func scanForAddressLikeStrings(node map[string]interface{}) []string {
	var out []string
	var walk func(interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case string:
			out = append(out, extractInterpolations(t)...)
			out = append(out, strings.TrimSpace(t))
		case map[string]interface{}:
			for _, child := range t {
				walk(child)
			}
		case []interface{}:
			for _, child := range t {
				walk(child)
			}
		}
	}
	walk(node)
	return out
}

func extractInterpolations(s string) []string {
	var out []string
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			break
		}
		out = append(out, s[start+2:start+end])
		s = s[start+end+1:]
	}
	return out
}
