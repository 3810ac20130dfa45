package cost

import (
	"math"
	"strings"
	"testing"
)

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "empty string",
			input:    "",
			expected: 0,
		},
		{
			name:     "simple text",
			input:    "Hello world",
			expected: 4, // 11 chars / 3.5 ≈ 3.14, ceil = 4
		},
		{
			name:     "text with newlines",
			input:    "Line 1\nLine 2\nLine 3",
			expected: 6, // 20 chars / 3.5 ≈ 5.71, ceil = 6
		},
		{
			name:     "accented text counts runes",
			input:    "Critérios de aceitação",
			expected: 7, // 22 runes / 3.5 ≈ 6.29, ceil = 7
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateTokenCount(tt.input)
			if result != tt.expected {
				t.Errorf("EstimateTokenCount(%q) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPricingFor(t *testing.T) {
	if p := PricingFor("gemini-2.5-pro"); p.InputCostPer1MTokens != 1.25 {
		t.Errorf("Expected pro pricing, got %+v", p)
	}

	p := PricingFor("gemini-experimental")
	if p.Model != "gemini-experimental" {
		t.Errorf("Expected model name to be kept, got %s", p.Model)
	}
	if p.InputCostPer1MTokens != PricingTable[DefaultModel].InputCostPer1MTokens {
		t.Errorf("Unknown models should use default pricing, got %+v", p)
	}
}

func TestEstimateRequest(t *testing.T) {
	prompt := strings.Repeat("a", 3500) // 1000 tokens

	e := EstimateRequest("gemini-2.5-flash", prompt, 2)
	if e.InputTokens != 1000+2*ImageTokens {
		t.Errorf("Expected %d input tokens, got %d", 1000+2*ImageTokens, e.InputTokens)
	}
	if e.OutputTokens != 1500 {
		t.Errorf("Expected typical output tokens, got %d", e.OutputTokens)
	}
	want := float64(1516)*0.30/1e6 + 1500*2.50/1e6
	if math.Abs(e.TotalCost-want) > 1e-12 {
		t.Errorf("Expected total %.8f, got %.8f", want, e.TotalCost)
	}
	if !strings.Contains(e.String(), "gemini-2.5-flash") {
		t.Errorf("String() missing model: %s", e.String())
	}
}

func TestEstimateUsage(t *testing.T) {
	e := EstimateUsage("gemini-2.5-flash", "Hello world", "Hello world", 0)
	if e.InputTokens != 4 || e.OutputTokens != 4 {
		t.Errorf("Unexpected token counts: %+v", e)
	}
	if e.TotalCost != e.InputCost+e.OutputCost {
		t.Errorf("Total should be the sum of input and output cost: %+v", e)
	}
}
