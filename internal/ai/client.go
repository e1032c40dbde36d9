package ai

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client wraps a Provider with caching, rate limiting, and monthly budget
// enforcement, so `ask ai` never silently runs away with cost.
type Client struct {
	provider Provider
	cfg      Config
	initErr  error
	cacheTTL time.Duration
	cacheMu  sync.Mutex
	cache    map[string]cacheEntry
	usageMu  sync.Mutex
	usage    Usage

	rateLimit time.Duration
	lastCall  time.Time
	rateMu    sync.Mutex
}

type Usage struct {
	TotalCalls       int
	CacheHits        int
	PromptTokens     int
	CompletionTokens int
	EstimatedCostUSD float64
}

type cacheEntry struct {
	value   string
	expires time.Time
}

func NewFromEnv(timeout time.Duration) *Client {
	return New(ConfigFromEnv(timeout))
}

func New(cfg Config) *Client {
	cfg = cfg.normalized()
	if !cfg.Enabled {
		return &Client{cfg: cfg, cacheTTL: 5 * time.Minute, cache: map[string]cacheEntry{}}
	}
	provider, err := NewProvider(cfg)
	return &Client{
		provider:  provider,
		cfg:       cfg,
		initErr:   err,
		cacheTTL:  5 * time.Minute,
		cache:     map[string]cacheEntry{},
		rateLimit: 1 * time.Second,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled && (c.provider != nil || strings.TrimSpace(c.cfg.Provider) != "")
}

func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return "disabled"
	}
	return c.provider.Name()
}

// Ask answers a question about a plan's analysis, enforcing the monthly
// budget, a 1-call-per-second rate limit, and a 5-minute response cache
// keyed on provider+question+plan path.
func (c *Client) Ask(ctx context.Context, question string, plan *PlanContext) (string, error) {
	if c == nil || !c.cfg.Enabled {
		return "", fmt.Errorf("ai integration disabled (set PREAPPLY_AI_PROVIDER or a provider-specific env var)")
	}
	if c.initErr != nil {
		return "", c.initErr
	}
	if c.provider == nil {
		return "", fmt.Errorf("ai integration disabled (set PREAPPLY_AI_PROVIDER or a provider-specific env var)")
	}

	prompt := BuildPrompt(PromptRequest{Question: question, Plan: plan})

	c.rateMu.Lock()
	if elapsed := time.Since(c.lastCall); elapsed < c.rateLimit {
		wait := c.rateLimit - elapsed
		c.rateMu.Unlock()
		time.Sleep(wait)
		c.rateMu.Lock()
	}
	c.lastCall = time.Now()
	c.rateMu.Unlock()

	if monthly, err := LoadMonthlyUsage(time.Now()); err == nil && c.cfg.BudgetMonthlyUSD > 0 && monthly.EstimatedCostUSD >= c.cfg.BudgetMonthlyUSD {
		return "", fmt.Errorf("ai monthly budget exceeded: $%.2f/$%.2f", monthly.EstimatedCostUSD, c.cfg.BudgetMonthlyUSD)
	}

	fullPrompt := "System:\n" + prompt.System + "\n\nUser:\n" + prompt.User
	planPath := ""
	if plan != nil {
		planPath = plan.PlanPath
	}
	cacheKey := c.ProviderName() + "|" + planPath + "|" + question
	if v, ok := c.getCached(cacheKey); ok {
		c.addUsage(prompt.EstimatedTokens, estimateTokens(v), 0, true)
		return v, nil
	}

	res, err := c.provider.Query(ctx, fullPrompt, plan)
	if err != nil {
		return "", err
	}
	res = strings.TrimSpace(res)
	completionTokens := estimateTokens(res)
	cost := estimateCostUSD(c.ProviderName(), prompt.EstimatedTokens, completionTokens)
	c.addUsage(prompt.EstimatedTokens, completionTokens, cost, false)
	c.setCached(cacheKey, res)

	if monthly, err := LoadMonthlyUsage(time.Now()); err == nil && c.cfg.BudgetMonthlyUSD > 0 {
		soft := c.cfg.BudgetMonthlyUSD * (c.cfg.SoftLimitPercent / 100.0)
		if monthly.EstimatedCostUSD >= soft {
			res += fmt.Sprintf("\n\n[ai-budget] usage $%.2f/$%.2f (soft limit %.0f%% reached)", monthly.EstimatedCostUSD, c.cfg.BudgetMonthlyUSD, c.cfg.SoftLimitPercent)
		}
	}
	return res, nil
}

func (c *Client) Usage() Usage {
	c.usageMu.Lock()
	defer c.usageMu.Unlock()
	return c.usage
}

func (c *Client) getCached(key string) (string, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	v, ok := c.cache[key]
	if !ok {
		return "", false
	}
	if time.Now().After(v.expires) {
		delete(c.cache, key)
		return "", false
	}
	return v.value, true
}

func (c *Client) setCached(key, value string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{value: value, expires: time.Now().Add(c.cacheTTL)}
}

func (c *Client) addUsage(promptTokens, completionTokens int, cost float64, cacheHit bool) {
	c.usageMu.Lock()
	defer c.usageMu.Unlock()
	c.usage.TotalCalls++
	if cacheHit {
		c.usage.CacheHits++
	}
	c.usage.PromptTokens += maxInt(0, promptTokens)
	c.usage.CompletionTokens += maxInt(0, completionTokens)
	c.usage.EstimatedCostUSD += cost
	_ = RecordUsageDelta(Usage{
		TotalCalls:       1,
		CacheHits:        boolToInt(cacheHit),
		PromptTokens:     maxInt(0, promptTokens),
		CompletionTokens: maxInt(0, completionTokens),
		EstimatedCostUSD: cost,
	}, time.Now())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ConfigFromEnv resolves provider configuration from PREAPPLY_AI_* and
// provider-specific environment variables.
func ConfigFromEnv(timeout time.Duration) Config {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("PREAPPLY_AI_PROVIDER")))
	if provider == "" {
		switch {
		case strings.TrimSpace(os.Getenv("PREAPPLY_AI_ENDPOINT")) != "":
			provider = ProviderCustom
		case strings.TrimSpace(os.Getenv("PREAPPLY_OPENAI_API_KEY")) != "":
			provider = ProviderOpenAI
		case strings.TrimSpace(os.Getenv("PREAPPLY_ANTHROPIC_API_KEY")) != "":
			provider = ProviderAnthropic
		case strings.TrimSpace(os.Getenv("PREAPPLY_AZURE_OPENAI_API_KEY")) != "":
			provider = ProviderAzureOpenAI
		case strings.TrimSpace(os.Getenv("PREAPPLY_OLLAMA_ENDPOINT")) != "":
			provider = ProviderOllama
		}
	}

	apiKey := strings.TrimSpace(os.Getenv("PREAPPLY_AI_API_KEY"))
	if apiKey == "" {
		switch provider {
		case ProviderOpenAI:
			apiKey = strings.TrimSpace(os.Getenv("PREAPPLY_OPENAI_API_KEY"))
		case ProviderAnthropic:
			apiKey = strings.TrimSpace(os.Getenv("PREAPPLY_ANTHROPIC_API_KEY"))
		case ProviderAzureOpenAI:
			apiKey = strings.TrimSpace(os.Getenv("PREAPPLY_AZURE_OPENAI_API_KEY"))
		}
	}

	endpoint := strings.TrimSpace(os.Getenv("PREAPPLY_AI_ENDPOINT"))
	if endpoint == "" {
		switch provider {
		case ProviderAzureOpenAI:
			endpoint = strings.TrimSpace(os.Getenv("PREAPPLY_AZURE_OPENAI_ENDPOINT"))
		case ProviderOllama:
			endpoint = strings.TrimSpace(os.Getenv("PREAPPLY_OLLAMA_ENDPOINT"))
		}
	}

	cfg := Config{
		Enabled:          provider != "",
		Provider:         provider,
		Endpoint:         endpoint,
		APIKey:           apiKey,
		Model:            strings.TrimSpace(os.Getenv("PREAPPLY_AI_MODEL")),
		Timeout:          timeout,
		AzureDeployment:  strings.TrimSpace(os.Getenv("PREAPPLY_AZURE_OPENAI_DEPLOYMENT")),
		AzureAPIVersion:  strings.TrimSpace(os.Getenv("PREAPPLY_AZURE_OPENAI_API_VERSION")),
		BudgetMonthlyUSD: parseEnvFloat("PREAPPLY_AI_BUDGET_MONTHLY_USD", 50),
		SoftLimitPercent: parseEnvFloat("PREAPPLY_AI_SOFT_LIMIT_PERCENT", 80),
	}
	return cfg.normalized()
}

func parseEnvFloat(name string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
