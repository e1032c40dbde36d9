package ingest

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/akileshthuniki/preapply/internal/apperr"
)

// RawPlan is the validated input mapping: the decoded JSON
// document with its two required top-level shapes checked, everything else
// passed through unchanged.
type RawPlan map[string]interface{}

var planJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadPlan reads, parses, and structurally validates the plan at path
//. It fails with PlanLoadError for filesystem/JSON-shape
// problems and PlanStructureError for missing required keys.
func LoadPlan(path string) (RawPlan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.PlanLoad(fmt.Sprintf("plan file not found: %s", path), err)
	}
	if info.IsDir() {
		return nil, apperr.PlanLoad(fmt.Sprintf("plan path is a directory: %s", path), nil)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.PlanLoad(fmt.Sprintf("could not read plan file: %s", path), err)
	}

	var decoded interface{}
	if err := planJSON.Unmarshal(raw, &decoded); err != nil {
		return nil, apperr.PlanLoad(fmt.Sprintf("plan file is not valid JSON: %s", path), err)
	}

	mapping, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, apperr.PlanLoad(fmt.Sprintf("plan document is not a JSON object: %s", path), nil)
	}

	plan := RawPlan(mapping)
	if err := ValidatePlanStructure(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ValidatePlanStructure enforces the required-key checks: format_version
// must be present, and resource_changes, if present, must be a sequence;
// a wholly missing resource_changes is fatal.
func ValidatePlanStructure(plan RawPlan) error {
	if _, ok := plan["format_version"]; !ok {
		return apperr.PlanStructure("plan is missing required key \"format_version\"")
	}

	changes, present := plan["resource_changes"]
	if !present {
		return apperr.PlanStructure("plan is missing required key \"resource_changes\"")
	}
	if _, ok := changes.([]interface{}); !ok {
		return apperr.PlanStructure("plan's \"resource_changes\" is not a sequence")
	}
	return nil
}

// ResourceChanges returns the plan's resource_changes entries as a typed
// slice, already validated to be present and sequence-shaped.
func (p RawPlan) ResourceChanges() []interface{} {
	v, _ := p["resource_changes"].([]interface{})
	return v
}
