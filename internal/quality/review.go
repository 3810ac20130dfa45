package quality

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedReview is returned when a model review cannot be decoded.
var ErrMalformedReview = errors.New("malformed review response")

type reviewDimension struct {
	Score         *int   `json:"score"`
	Justification string `json:"justification"`
}

type reviewPayload struct {
	Independent reviewDimension `json:"independent"`
	Negotiable  reviewDimension `json:"negotiable"`
	Valuable    reviewDimension `json:"valuable"`
	Estimable   reviewDimension `json:"estimable"`
	Small       reviewDimension `json:"small"`
	Testable    reviewDimension `json:"testable"`
	Strengths   []string        `json:"strengths"`
	Weaknesses  []string        `json:"weaknesses"`
	Suggestions []string        `json:"suggestions"`
}

// ParseReview decodes a model-produced INVEST review. The reply may be wrapped in a Markdown code
// fence or surrounded by prose. Every dimension must carry a score; scores are clamped to [0,100].
func (e *Evaluator) ParseReview(reply string) (*InvestScore, error) {
	raw, ok := extractJSON(reply, '{', '}')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedReview)
	}

	var p reviewPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}

	dims := map[Dimension]reviewDimension{
		Independence:  p.Independent,
		Negotiability: p.Negotiable,
		Value:         p.Valuable,
		Estimability:  p.Estimable,
		SizeFit:       p.Small,
		Testability:   p.Testable,
	}

	score := &InvestScore{
		Justifications: make(map[Dimension]string, len(dims)),
		Source:         SourceAI,
	}
	for _, d := range Dimensions() {
		rd := dims[d]
		if rd.Score == nil {
			return nil, fmt.Errorf("%w: missing score for %s", ErrMalformedReview, d)
		}
		score.set(d, clamp(*rd.Score))
		if rd.Justification != "" {
			score.Justifications[d] = rd.Justification
		}
	}

	e.finish(score)
	if p.Strengths != nil {
		score.Strengths = p.Strengths
	}
	if p.Weaknesses != nil {
		score.Weaknesses = p.Weaknesses
	}
	score.Suggestions = capList(p.Suggestions, e.thresholds.MaxSuggestions)
	return score, nil
}

// Improvement is one model-suggested change to a story.
type Improvement struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Problem    string `json:"problem"`
	Suggestion string `json:"suggestion"`
	Applicable bool   `json:"applicable"`
}

// ParseImprovements decodes a model-produced JSON array of improvements, capped like suggestions.
func (e *Evaluator) ParseImprovements(reply string) ([]Improvement, error) {
	raw, ok := extractJSON(reply, '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array found", ErrMalformedReview)
	}
	var items []Improvement
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}
	if max := e.thresholds.MaxSuggestions; max > 0 && len(items) > max {
		items = items[:max]
	}
	return items, nil
}

// extractJSON returns the text between the first open and the last close delimiter.
func extractJSON(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
