package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akileshthuniki/preapply/internal/apperr"
)

// Load reads and parses a policy YAML document at path. A
// missing file, malformed YAML, or a rule whose action is not fail/warn all
// become an apperr.PolicyLoad error — policy files are required inputs,
// unlike configuration files which fall back to defaults. A document with
// no rules loads successfully and matches nothing.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.PolicyLoad(fmt.Sprintf("could not read policy file at %s", path), err)
	}

	var pol Policy
	if err := yaml.Unmarshal(raw, &pol); err != nil {
		return nil, apperr.PolicyLoad(fmt.Sprintf("could not parse policy YAML at %s", path), err)
	}
	for i, r := range pol.Rules {
		if r.Action != ActionFail && r.Action != ActionWarn {
			return nil, apperr.PolicyLoad(fmt.Sprintf("policy rule %d (%q) has invalid action %q: must be fail or warn", i, r.ID, r.Action), nil)
		}
	}
	return &pol, nil
}
