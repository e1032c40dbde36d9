package ai

import (
	"context"
	"testing"
	"time"
)

func TestClientDisabledByDefault(t *testing.T) {
	c := New(Config{})
	if c.Enabled() {
		t.Fatal("expected a zero-value config to be disabled")
	}
	if _, err := c.Ask(context.Background(), "why", nil); err == nil {
		t.Fatal("expected an error asking a disabled client")
	}
}

func TestConfigFromEnvPicksProviderFromAPIKey(t *testing.T) {
	t.Setenv("PREAPPLY_AI_PROVIDER", "")
	t.Setenv("PREAPPLY_AI_ENDPOINT", "")
	t.Setenv("PREAPPLY_OPENAI_API_KEY", "sk-test")
	t.Setenv("PREAPPLY_ANTHROPIC_API_KEY", "")
	t.Setenv("PREAPPLY_AZURE_OPENAI_API_KEY", "")
	t.Setenv("PREAPPLY_OLLAMA_ENDPOINT", "")

	cfg := ConfigFromEnv(5 * time.Second)
	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("expected openai provider inferred from api key, got %q", cfg.Provider)
	}
	if !cfg.Enabled {
		t.Fatal("expected config to be enabled")
	}
}

func TestPricingRatesUnknownProviderIsFree(t *testing.T) {
	in, out := PricingRates("does-not-exist")
	if in != 0 || out != 0 {
		t.Fatalf("expected zero rates for unknown provider, got %v/%v", in, out)
	}
}

func TestEstimateCostUSDScalesWithTokens(t *testing.T) {
	cost := estimateCostUSD(ProviderAnthropic, 1000, 1000)
	if cost <= 0 {
		t.Fatalf("expected positive cost for anthropic usage, got %v", cost)
	}
}
