package ai

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const SystemPrompt = "You are a principal infrastructure risk reviewer. Give precise, production-safe guidance about Terraform plan risk. Prioritize blast radius, shared dependencies, and verification steps before apply. Never expose secrets."

// PromptRequest describes a single "ask ai" question.
type PromptRequest struct {
	Question string
	Plan     *PlanContext
}

// PromptResult is the assembled prompt plus its token estimate.
type PromptResult struct {
	System          string
	User            string
	EstimatedTokens int
}

// BuildPrompt assembles the system/user prompt pair for a question about a
// plan's analysis, redacting anything that looks like a credential or a
// prompt-injection attempt first.
func BuildPrompt(req PromptRequest) PromptResult {
	question := sanitizeSensitive(req.Question)
	ctx := sanitizeSensitive(buildContext(req.Plan))

	if strings.TrimSpace(question) == "" {
		question = "What should I check before applying this plan?"
	}
	user := fmt.Sprintf("Question: %s\nContext:\n%s", question, ctx)

	estimate := estimateTokens(SystemPrompt + "\n" + user)
	return PromptResult{System: SystemPrompt, User: user, EstimatedTokens: estimate}
}

func buildContext(plan *PlanContext) string {
	if plan == nil {
		return "none"
	}
	var parts []string
	if strings.TrimSpace(plan.PlanPath) != "" {
		parts = append(parts, "plan="+strings.TrimSpace(plan.PlanPath))
	}
	if strings.TrimSpace(plan.ExplanationID) != "" {
		parts = append(parts, "explanation_id="+strings.TrimSpace(plan.ExplanationID))
	}
	if strings.TrimSpace(plan.RiskLevel) != "" {
		parts = append(parts, "risk_level="+strings.TrimSpace(plan.RiskLevel))
	}
	if strings.TrimSpace(plan.Snapshot) != "" {
		parts = append(parts, "snapshot="+strings.TrimSpace(plan.Snapshot))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "\n")
}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(token|password|secret|api[_-]?key|authorization)\s*[:=]\s*[^\s,;]+`),
	regexp.MustCompile(`(?s)-----BEGIN [^-]+-----.*?-----END [^-]+-----`),
	regexp.MustCompile(`(?i)ignore (all )?previous instructions`),
}

func sanitizeSensitive(v string) string {
	out := strings.TrimSpace(v)
	for _, re := range sensitivePatterns {
		out = re.ReplaceAllStringFunc(out, func(_ string) string { return "[REDACTED]" })
	}
	return out
}

var (
	tiktokenOnce sync.Once
	tiktokenEnc  *tiktoken.Tiktoken
)

func loadTiktoken() {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return
	}
	tiktokenEnc = enc
}

// estimateTokens counts tokens with the real cl100k_base tokenizer when its
// vocab file is available (cached under the OS temp dir by tiktoken-go),
// falling back to a word/char heuristic in air-gapped environments.
func estimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	tiktokenOnce.Do(loadTiktoken)
	if tiktokenEnc != nil {
		return len(tiktokenEnc.EncodeOrdinary(text))
	}
	wordBased := (len(strings.Fields(text))*4 + 2) / 3
	charBased := len(text) / 4
	if wordBased > charBased {
		return wordBased
	}
	return charBased
}
