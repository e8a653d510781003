package scoring

import (
	"fmt"
	"strings"
)

// Consistency grades how close the two strongest interest types sit on the
// hexagon.
const (
	ConsistencyLow    = 1
	ConsistencyMedium = 2
	ConsistencyHigh   = 3
)

const (
	codeLength         = 3
	interestDimensions = 6
)

// InterestResult is the scored RIASEC profile.
type InterestResult struct {
	Scores           DimensionScores   `json:"scores"`
	Sorted           []string          `json:"sorted"`
	Code             string            `json:"code"`
	Consistency      int               `json:"consistency"`
	ConsistencyLabel Level             `json:"consistency_label"`
	Differentiation  int               `json:"differentiation"`
	Interpretation   map[string]string `json:"interpretation"`
}

// InterestBank is the six-dimension interest questionnaire. The dimension
// order in the bank is the hexagon order used for consistency.
type InterestBank struct {
	*bank
}

var defaultInterest = &InterestBank{mustEmbedded("riasec.yaml")}

// DefaultInterestBank returns the built-in RIASEC bank.
func DefaultInterestBank() *InterestBank { return defaultInterest }

// LoadInterestBank reads a replacement RIASEC bank from a yaml file.
func LoadInterestBank(path string) (*InterestBank, error) {
	b, err := readBank(path)
	if err != nil {
		return nil, err
	}
	if len(b.dimensions) != interestDimensions {
		return nil, fmt.Errorf("interest bank %s: want %d dimensions, got %d", path, interestDimensions, len(b.dimensions))
	}
	return &InterestBank{b}, nil
}

// CalculateResults scores responses against the default interest bank.
func CalculateResults(responses ResponseSet) InterestResult {
	return defaultInterest.Calculate(responses)
}

// Calculate scores responses. It never fails: unknown ids are ignored and
// out-of-range values are clamped.
func (b *InterestBank) Calculate(responses ResponseSet) InterestResult {
	sums, counts := b.tally(responses, false)

	scores := make(DimensionScores, len(b.dimensions))
	for i, d := range b.dimensions {
		scores[d.Label] = percent(float64(sums[i]), float64(counts[i]*LikertMax))
	}

	sorted := b.rank(scores)
	top := codeLength
	if top > len(sorted) {
		top = len(sorted)
	}

	consistency := ConsistencyHigh
	if len(sorted) >= 2 {
		consistency = b.consistency(sorted[0], sorted[1])
	}

	return InterestResult{
		Scores:           scores,
		Sorted:           sorted,
		Code:             strings.Join(sorted[:top], ""),
		Consistency:      consistency,
		ConsistencyLabel: consistencyLabel(consistency),
		Differentiation:  differentiation(scores),
		Interpretation:   b.interpret(scores),
	}
}

// HexDistance is the circular distance between two labels on the hexagon.
func (b *InterestBank) HexDistance(a, c string) int {
	n := len(b.dimensions)
	d := b.dimIndex[a] - b.dimIndex[c]
	if d < 0 {
		d = -d
	}
	if n-d < d {
		d = n - d
	}
	return d
}

func (b *InterestBank) consistency(first, second string) int {
	switch b.HexDistance(first, second) {
	case 0, 1:
		return ConsistencyHigh
	case 2:
		return ConsistencyMedium
	default:
		return ConsistencyLow
	}
}

func consistencyLabel(c int) Level {
	switch c {
	case ConsistencyHigh:
		return LevelHigh
	case ConsistencyMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}

func differentiation(scores DimensionScores) int {
	if len(scores) == 0 {
		return 0
	}
	first := true
	var lo, hi int
	for _, s := range scores {
		if first {
			lo, hi = s, s
			first = false
			continue
		}
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return hi - lo
}
