package llm

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing. Gateway identifiers
// carry a vendor prefix.
var priceTable = map[string]modelPricing{
	"google/gemini-3-flash-preview": {InputPerMillion: 0.50, OutputPerMillion: 3.00},
	"google/gemini-2.5-flash":       {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"google/gemini-2.5-flash-lite":  {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"google/gemini-2.5-pro":         {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"openai/gpt-5-mini":             {InputPerMillion: 0.25, OutputPerMillion: 2.00},

	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateTokens provides a rough token count estimation for the given text.
// Uses the approximation of 1 token per 4 characters.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
