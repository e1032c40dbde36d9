// Package policy implements PreApply's policy evaluator: a
// declarative YAML rule set matched against a CoreOutput to decide whether
// a plan is blocked, warned about, or allowed to proceed.
package policy

// Action is what a matching rule does to the evaluation outcome.
type Action string

const (
	ActionFail Action = "fail"
	ActionWarn Action = "warn"
)

// Match is a rule's AND-combined condition set. A nil/zero
// field is not evaluated — only fields explicitly set in the YAML are
// matched.
type Match struct {
	ExplanationID         *string  `yaml:"explanation_id,omitempty"`
	RiskLevel             []string `yaml:"risk_level,omitempty"`
	ActionType            []string `yaml:"action_type,omitempty"`
	HasSensitiveDeletions *bool    `yaml:"has_sensitive_deletions,omitempty"`
	HasSecurityExposures  *bool    `yaml:"has_security_exposures,omitempty"`
}

// Rule is one policy rule: a match block and the action to take when it
// matches.
type Rule struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Match       Match  `yaml:"match"`
	Action      Action `yaml:"action"`
}

// Policy is the top-level policy document.
type Policy struct {
	Rules []Rule `yaml:"rules"`
}

// RuleHit records whether a single rule matched during evaluation.
type RuleHit struct {
	RuleID  string `json:"rule_id" yaml:"rule_id"`
	Matched bool   `json:"matched" yaml:"matched"`
	Action  Action `json:"action" yaml:"action"`
}

// EvaluationResult is the policy evaluator's output: passed is
// true iff no fail rule matched; every rule still runs to populate the
// failure/warning counts and the per-rule-hit list.
type EvaluationResult struct {
	Passed        bool      `json:"passed" yaml:"passed"`
	FailureCount  int       `json:"failure_count" yaml:"failure_count"`
	WarningCount  int       `json:"warning_count" yaml:"warning_count"`
	RuleHits      []RuleHit `json:"rule_hits" yaml:"rule_hits"`
}
