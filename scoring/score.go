package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidResponseValue is returned when a Likert response is outside 1..7.
var ErrInvalidResponseValue = errors.New("invalid response value")

// ResponseError identifies the offending response.
type ResponseError struct {
	QuestionID string
	Value      int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: question %s has value %d (expected %d-%d)", ErrInvalidResponseValue, e.QuestionID, e.Value, LikertMin, LikertMax)
}

func (e *ResponseError) Unwrap() error { return ErrInvalidResponseValue }

// ClassifyLevel bands a 0-100 score: >=70 high, >=30 medium, otherwise low.
func ClassifyLevel(score int) Level {
	switch {
	case score >= 70:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ReverseScore inverts a 7-point Likert value (1<->7, 2<->6, ...).
// Out-of-range input is clamped first.
func ReverseScore(v int) int {
	return (LikertMax + 1) - clampLikert(v)
}

func clampLikert(v int) int {
	if v < LikertMin {
		return LikertMin
	}
	if v > LikertMax {
		return LikertMax
	}
	return v
}

// percent rounds num/den*100 half away from zero, 0 when den is 0.
func percent(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den * 100))
}

func sortByScore(labels []string, scores DimensionScores) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i]] > scores[out[j]]
	})
	return out
}
