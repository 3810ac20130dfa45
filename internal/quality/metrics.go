package quality

// Dimension identifies one INVEST criterion.
type Dimension string

const (
	Independence  Dimension = "independent"
	Negotiability Dimension = "negotiable"
	Value         Dimension = "valuable"
	Estimability  Dimension = "estimable"
	SizeFit       Dimension = "small"
	Testability   Dimension = "testable"
)

// Dimensions lists the six criteria in INVEST order.
func Dimensions() []Dimension {
	return []Dimension{Independence, Negotiability, Value, Estimability, SizeFit, Testability}
}

// Label returns the display label used in strengths and weaknesses.
func (d Dimension) Label() string {
	switch d {
	case Independence:
		return "Independência"
	case Negotiability:
		return "Negociabilidade"
	case Value:
		return "Valor"
	case Estimability:
		return "Estimabilidade"
	case SizeFit:
		return "Tamanho"
	case Testability:
		return "Testabilidade"
	}
	return string(d)
}

// Score sources.
const (
	SourceHeuristic = "heuristic"
	SourceAI        = "ai"
)

// InvestScore is the derived quality assessment of a story. It is recomputed on demand and never
// stored as authoritative.
type InvestScore struct {
	Independence  int `json:"independence"`
	Negotiability int `json:"negotiability"`
	Value         int `json:"value"`
	Estimability  int `json:"estimability"`
	SizeFit       int `json:"size_fit"`
	Testability   int `json:"testability"`

	Overall int    `json:"overall"`
	Grade   string `json:"grade"` // A/B/C/D

	Justifications map[Dimension]string `json:"justifications"`
	Strengths      []string             `json:"strengths"`
	Weaknesses     []string             `json:"weaknesses"`
	Suggestions    []string             `json:"suggestions"`

	Source string `json:"source"`
}

// Get returns the sub-score for a dimension.
func (s *InvestScore) Get(d Dimension) int {
	switch d {
	case Independence:
		return s.Independence
	case Negotiability:
		return s.Negotiability
	case Value:
		return s.Value
	case Estimability:
		return s.Estimability
	case SizeFit:
		return s.SizeFit
	case Testability:
		return s.Testability
	}
	return 0
}

func (s *InvestScore) set(d Dimension, v int) {
	switch d {
	case Independence:
		s.Independence = v
	case Negotiability:
		s.Negotiability = v
	case Value:
		s.Value = v
	case Estimability:
		s.Estimability = v
	case SizeFit:
		s.SizeFit = v
	case Testability:
		s.Testability = v
	}
}

// Thresholds configures the scorer. The sub-score tables themselves are fixed.
type Thresholds struct {
	StrengthMin    int // sub-scores at or above are strengths. Default: 80
	WeaknessBelow  int // sub-scores below are weaknesses. Default: 50
	MaxSuggestions int // Default: 5

	// NegotiabilityScore is the constant used for negotiability, which cannot be judged locally.
	NegotiabilityScore int // Default: 70
	// ExcludeNegotiability drops the negotiability constant from the overall mean.
	ExcludeNegotiability bool

	// Grade cutoffs on the overall score.
	GradeA int // Default: 85
	GradeB int // Default: 70
	GradeC int // Default: 50
}

// DefaultThresholds returns the standard scorer configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StrengthMin:        80,
		WeaknessBelow:      50,
		MaxSuggestions:     5,
		NegotiabilityScore: 70,
		GradeA:             85,
		GradeB:             70,
		GradeC:             50,
	}
}

// overall is the arithmetic mean of the included sub-scores, rounded half-up.
func (t Thresholds) overall(s *InvestScore) int {
	sum, n := 0, 0
	for _, d := range Dimensions() {
		if d == Negotiability && t.ExcludeNegotiability {
			continue
		}
		sum += clamp(s.Get(d))
		n++
	}
	return (2*sum + n) / (2 * n)
}

// grade maps an overall score to a letter.
func (t Thresholds) grade(overall int) string {
	switch {
	case overall >= t.GradeA:
		return "A"
	case overall >= t.GradeB:
		return "B"
	case overall >= t.GradeC:
		return "C"
	default:
		return "D"
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
