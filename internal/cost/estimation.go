// Package cost estimates token usage and spend for Gemini generation requests.
package cost

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// GeminiPricing represents the list price of a Gemini model
type GeminiPricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
	EstimatedOutputTokens int     // Typical story length
}

// DefaultModel is used when a model has no entry in PricingTable.
const DefaultModel = "gemini-2.5-flash"

// ImageTokens is what Gemini bills for one attached image.
const ImageTokens = 258

// PricingTable contains Gemini pricing as of 2025
var PricingTable = map[string]GeminiPricing{
	"gemini-2.5-flash": {
		Model:                 "gemini-2.5-flash",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
		EstimatedOutputTokens: 1500,
	},
	"gemini-2.5-flash-lite": {
		Model:                 "gemini-2.5-flash-lite",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
		EstimatedOutputTokens: 1500,
	},
	"gemini-2.5-pro": {
		Model:                 "gemini-2.5-pro",
		InputCostPer1MTokens:  1.25,
		OutputCostPer1MTokens: 10.00,
		EstimatedOutputTokens: 1800,
	},
}

// PricingFor returns the pricing of model, defaulting to Flash pricing for unknown models.
func PricingFor(model string) GeminiPricing {
	if p, ok := PricingTable[strings.ToLower(strings.TrimSpace(model))]; ok {
		return p
	}
	p := PricingTable[DefaultModel]
	p.Model = model
	return p
}

// EstimateTokenCount provides a rough estimation of token count for text
// This is a simplified approximation: typically 1 token ≈ 3.5 characters for mixed content
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")

	charCount := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(charCount) / 3.5))
}

// Estimate is the projected or measured cost of one generation request.
type Estimate struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	InputCost    float64 `json:"input_cost_usd"`
	OutputCost   float64 `json:"output_cost_usd"`
	TotalCost    float64 `json:"total_cost_usd"`
}

// EstimateRequest projects the cost of sending prompt with images attachments before the model
// has answered, assuming a typical story length for the output.
func EstimateRequest(model, prompt string, images int) Estimate {
	pricing := PricingFor(model)
	return build(pricing, EstimateTokenCount(prompt)+images*ImageTokens, pricing.EstimatedOutputTokens)
}

// EstimateUsage approximates the cost of a completed request from its prompt and completion.
func EstimateUsage(model, prompt, completion string, images int) Estimate {
	return build(PricingFor(model), EstimateTokenCount(prompt)+images*ImageTokens, EstimateTokenCount(completion))
}

func build(pricing GeminiPricing, input, output int) Estimate {
	e := Estimate{
		Model:        pricing.Model,
		InputTokens:  input,
		OutputTokens: output,
		InputCost:    float64(input) * pricing.InputCostPer1MTokens / 1000000,
		OutputCost:   float64(output) * pricing.OutputCostPer1MTokens / 1000000,
	}
	e.TotalCost = e.InputCost + e.OutputCost
	return e
}

// String formats the estimate for terminal output.
func (e Estimate) String() string {
	return fmt.Sprintf("%s: ~%d input + ~%d output tokens ≈ $%.4f", e.Model, e.InputTokens, e.OutputTokens, e.TotalCost)
}
