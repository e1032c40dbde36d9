package policy

import "github.com/akileshthuniki/preapply/internal/contracts"

const (
	EnforcementAuto   = "auto"
	EnforcementManual = "manual"
)

// Evaluate runs every rule, in declared order, to
// populate failure/warning counts and the per-rule-hit list; passed is
// true iff no `fail` rule matched. Evaluation never short-circuits rule
// execution — only the CLI's exit-code decision short-circuits on the
// first fail.
func Evaluate(pol *Policy, out *contracts.CoreOutput) EvaluationResult {
	result := EvaluationResult{Passed: true}
	for _, r := range pol.Rules {
		matched := matches(r.Match, out)
		result.RuleHits = append(result.RuleHits, RuleHit{RuleID: r.ID, Matched: matched, Action: r.Action})
		if !matched {
			continue
		}
		switch r.Action {
		case ActionFail:
			result.FailureCount++
			result.Passed = false
		case ActionWarn:
			result.WarningCount++
		}
	}
	return result
}

func matches(m Match, out *contracts.CoreOutput) bool {
	if m.ExplanationID != nil && out.ExplanationID != *m.ExplanationID {
		return false
	}
	if len(m.RiskLevel) > 0 && !containsString(m.RiskLevel, string(out.RiskLevel)) {
		return false
	}
	if len(m.ActionType) > 0 && !intersects(m.ActionType, out.RiskAttributes.ActionTypes) {
		return false
	}
	if m.HasSensitiveDeletions != nil {
		has := len(out.RiskAttributes.SensitiveDeletions) > 0
		if has != *m.HasSensitiveDeletions {
			return false
		}
	}
	if m.HasSecurityExposures != nil {
		has := len(out.RiskAttributes.SecurityExposures) > 0
		if has != *m.HasSecurityExposures {
			return false
		}
	}
	return true
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// ExitCode translates an evaluation result to the process exit code
// governed by enforcement mode: a fail maps to 2 under auto
// enforcement, 3 under manual. A passing evaluation always exits 0.
func ExitCode(result EvaluationResult, enforcementMode string) int {
	if result.Passed {
		return 0
	}
	if enforcementMode == EnforcementManual {
		return 3
	}
	return 2
}
