package ai

// PreApply has no hosted pricing feed to poll, so this bundled table is
// the sole source of per-provider rates rather than a cached fallback
// behind a network fetch.

// ProviderRates holds per-1000-token cost rates for a single provider.
type ProviderRates struct {
	InputPer1kUSD  float64
	OutputPer1kUSD float64
}

// PricingTable maps provider name to cost rates.
type PricingTable map[string]ProviderRates

var bundledPricing = PricingTable{
	ProviderOpenAI:      {InputPer1kUSD: 0.00015, OutputPer1kUSD: 0.00060},
	ProviderAnthropic:   {InputPer1kUSD: 0.00300, OutputPer1kUSD: 0.01500},
	ProviderAzureOpenAI: {InputPer1kUSD: 0.00020, OutputPer1kUSD: 0.00080},
	ProviderOllama:      {InputPer1kUSD: 0.0, OutputPer1kUSD: 0.0},
	ProviderCustom:      {InputPer1kUSD: 0.0, OutputPer1kUSD: 0.0},
}

// PricingRates returns the input/output rates for a provider, zero-cost for
// an unknown one so budget accounting stays safe.
func PricingRates(provider string) (inputPer1kUSD, outputPer1kUSD float64) {
	if r, ok := bundledPricing[provider]; ok {
		return r.InputPer1kUSD, r.OutputPer1kUSD
	}
	return 0, 0
}

func estimateCostUSD(provider string, promptTokens, completionTokens int) float64 {
	in, out := PricingRates(provider)
	return (float64(maxInt(0, promptTokens))/1000.0)*in + (float64(maxInt(0, completionTokens))/1000.0)*out
}
