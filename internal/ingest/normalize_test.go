package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeActionPrecedence(t *testing.T) {
	cases := []struct {
		verbs []string
		want  ResourceAction
	}{
		{[]string{"create"}, ActionCreate},
		{[]string{"update"}, ActionUpdate},
		{[]string{"delete"}, ActionDelete},
		{[]string{"read"}, ActionRead},
		{[]string{"no-op"}, ActionNoOp},
		{nil, ActionNoOp},
		{[]string{"create", "delete"}, ActionDelete},
		{[]string{"delete", "create"}, ActionDelete},
		{[]string{"update", "delete"}, ActionDelete},
	}
	for _, c := range cases {
		if got := NormalizeAction(c.verbs); got != c.want {
			t.Errorf("NormalizeAction(%v) = %v, want %v", c.verbs, got, c.want)
		}
	}
}

func TestAddressParsing(t *testing.T) {
	cases := []struct {
		addr       string
		wantModule string
		wantType   string
		wantID     string
	}{
		{"aws_instance.web", "", "aws_instance", "web"},
		{"module.vpc.aws_subnet.a", "module.vpc", "aws_subnet", "a"},
		{"module.vpc.module.subnet.aws_subnet.a", "module.vpc.module.subnet", "aws_subnet", "a"},
		{`aws_security_group.sg["a.b"]`, "", "aws_security_group", `sg["a.b"]`},
	}
	for _, c := range cases {
		if got := moduleFromAddress(c.addr); got != c.wantModule {
			t.Errorf("moduleFromAddress(%q) = %q, want %q", c.addr, got, c.wantModule)
		}
		if got := typeFromAddress(c.addr); got != c.wantType {
			t.Errorf("typeFromAddress(%q) = %q, want %q", c.addr, got, c.wantType)
		}
		if got := idFromAddress(c.addr); got != c.wantID {
			t.Errorf("idFromAddress(%q) = %q, want %q", c.addr, got, c.wantID)
		}
	}
}

func writeTempPlan(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp plan: %v", err)
	}
	return path
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan("/does/not/exist.json")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadPlanInvalidJSON(t *testing.T) {
	path := writeTempPlan(t, "{not json")
	if _, err := LoadPlan(path); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestLoadPlanMissingFormatVersion(t *testing.T) {
	path := writeTempPlan(t, `{"resource_changes": []}`)
	if _, err := LoadPlan(path); err == nil {
		t.Fatalf("expected PlanStructureError for missing format_version")
	}
}

func TestLoadPlanMissingResourceChanges(t *testing.T) {
	path := writeTempPlan(t, `{"format_version": "1.2"}`)
	if _, err := LoadPlan(path); err == nil {
		t.Fatalf("expected PlanStructureError for missing resource_changes")
	}
}

func TestNormalizeSimplePlan(t *testing.T) {
	plan := RawPlan{
		"format_version": "1.2",
		"resource_changes": []interface{}{
			map[string]interface{}{
				"address": "aws_vpc.main",
				"type":    "aws_vpc",
				"change": map[string]interface{}{
					"actions": []interface{}{"update"},
					"before":  map[string]interface{}{},
					"after":   map[string]interface{}{},
				},
			},
			map[string]interface{}{
				"address": "aws_subnet.a",
				"type":    "aws_subnet",
				"change": map[string]interface{}{
					"actions":     []interface{}{"update"},
					"depends_on":  []interface{}{"aws_vpc.main"},
					"before":      map[string]interface{}{},
					"after":       map[string]interface{}{},
				},
			},
		},
	}
	np, err := Normalize(plan)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(np.Resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(np.Resources))
	}
	subnet, ok := np.ByAddress("aws_subnet.a")
	if !ok {
		t.Fatalf("expected to find aws_subnet.a")
	}
	if _, ok := subnet.DependsOn["aws_vpc.main"]; !ok {
		t.Fatalf("expected aws_subnet.a to depend on aws_vpc.main, got %v", subnet.DependsOn)
	}
}

func TestNormalizeDiscardsDanglingDependsOn(t *testing.T) {
	plan := RawPlan{
		"format_version": "1.2",
		"resource_changes": []interface{}{
			map[string]interface{}{
				"address": "aws_subnet.a",
				"type":    "aws_subnet",
				"change": map[string]interface{}{
					"actions":    []interface{}{"create"},
					"depends_on": []interface{}{"aws_vpc.nonexistent"},
				},
			},
		},
	}
	np, err := Normalize(plan)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	r, _ := np.ByAddress("aws_subnet.a")
	if len(r.DependsOn) != 0 {
		t.Fatalf("expected dangling reference to be discarded, got %v", r.DependsOn)
	}
}

func TestNormalizeMergesConfigurationReferences(t *testing.T) {
	plan := RawPlan{
		"format_version": "1.2",
		"resource_changes": []interface{}{
			map[string]interface{}{
				"address": "aws_vpc.main",
				"type":    "aws_vpc",
				"change": map[string]interface{}{
					"actions": []interface{}{"update"},
					"before":  map[string]interface{}{},
					"after":   map[string]interface{}{},
				},
			},
			map[string]interface{}{
				"address": "aws_subnet.a",
				"type":    "aws_subnet",
				"change": map[string]interface{}{
					"actions": []interface{}{"update"},
					"before":  map[string]interface{}{},
					"after":   map[string]interface{}{},
				},
			},
		},
		"configuration": map[string]interface{}{
			"root_module": map[string]interface{}{
				"resources": []interface{}{
					map[string]interface{}{
						"address": "aws_subnet.a",
						"expressions": map[string]interface{}{
							"vpc_id": map[string]interface{}{
								"references": []interface{}{"aws_vpc.main"},
							},
						},
					},
				},
			},
		},
	}
	np, err := Normalize(plan)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	subnet, ok := np.ByAddress("aws_subnet.a")
	if !ok {
		t.Fatalf("expected to find aws_subnet.a")
	}
	if _, ok := subnet.DependsOn["aws_vpc.main"]; !ok {
		t.Fatalf("expected aws_subnet.a to depend on aws_vpc.main via configuration references, got %v", subnet.DependsOn)
	}
}

func TestNormalizeMergesNestedModuleConfigurationReferences(t *testing.T) {
	plan := RawPlan{
		"format_version": "1.2",
		"resource_changes": []interface{}{
			map[string]interface{}{
				"address": "module.network.aws_vpc.main",
				"type":    "aws_vpc",
				"change": map[string]interface{}{
					"actions": []interface{}{"update"},
					"before":  map[string]interface{}{},
					"after":   map[string]interface{}{},
				},
			},
			map[string]interface{}{
				"address": "module.network.aws_subnet.a",
				"type":    "aws_subnet",
				"change": map[string]interface{}{
					"actions": []interface{}{"update"},
					"before":  map[string]interface{}{},
					"after":   map[string]interface{}{},
				},
			},
		},
		"configuration": map[string]interface{}{
			"root_module": map[string]interface{}{
				"module_calls": map[string]interface{}{
					"network": map[string]interface{}{
						"module": map[string]interface{}{
							"resources": []interface{}{
								map[string]interface{}{
									"address": "aws_subnet.a",
									"expressions": map[string]interface{}{
										"vpc_id": map[string]interface{}{
											"references": []interface{}{"aws_vpc.main"},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	np, err := Normalize(plan)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	subnet, ok := np.ByAddress("module.network.aws_subnet.a")
	if !ok {
		t.Fatalf("expected to find module.network.aws_subnet.a")
	}
	want := "module.network.aws_vpc.main"
	if _, ok := subnet.DependsOn[want]; !ok {
		t.Fatalf("expected %s to depend on %s via nested module configuration references, got %v", subnet.Address, want, subnet.DependsOn)
	}
}

func TestComponentPrefersModule(t *testing.T) {
	r := NormalizedResource{Module: "module.vpc", Type: "aws_subnet"}
	if got := r.Component(); got != "module.vpc" {
		t.Fatalf("expected component module.vpc, got %q", got)
	}
	r2 := NormalizedResource{Type: "aws_subnet"}
	if got := r2.Component(); got != "aws_subnet" {
		t.Fatalf("expected component aws_subnet, got %q", got)
	}
}
