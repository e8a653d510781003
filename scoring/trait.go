package scoring

// CareerSuggestion lists example career areas for the two strongest traits.
type CareerSuggestion struct {
	PrimaryTrait     string   `json:"primary_trait"`
	SecondaryTrait   string   `json:"secondary_trait"`
	Primary          []string `json:"primary"`
	Secondary        []string `json:"secondary"`
	Pairing          string   `json:"pairing"`
	Combined         []string `json:"combined"`
	CombinedFallback bool     `json:"combined_fallback,omitempty"`
}

// TraitResult is the scored OCEAN profile.
type TraitResult struct {
	Scores         DimensionScores   `json:"scores"`
	Ranked         []string          `json:"ranked"`
	Levels         map[string]Level  `json:"levels"`
	Interpretation map[string]string `json:"interpretation"`
	Careers        CareerSuggestion  `json:"careers"`
}

// TraitBank is the five-trait questionnaire with reverse-keyed items.
type TraitBank struct {
	*bank
}

var defaultTrait = &TraitBank{mustEmbedded("ocean.yaml")}

// DefaultTraitBank returns the built-in OCEAN bank.
func DefaultTraitBank() *TraitBank { return defaultTrait }

// LoadTraitBank reads a replacement OCEAN bank from a yaml file.
func LoadTraitBank(path string) (*TraitBank, error) {
	b, err := readBank(path)
	if err != nil {
		return nil, err
	}
	return &TraitBank{b}, nil
}

// CalculateScores scores responses against the default trait bank.
func CalculateScores(responses ResponseSet) DimensionScores {
	return defaultTrait.CalculateScores(responses)
}

// CalculateScores maps each trait's mean response from the 1-7 scale onto
// 0-100. Reverse items contribute 8-v.
func (b *TraitBank) CalculateScores(responses ResponseSet) DimensionScores {
	sums, counts := b.tally(responses, true)
	scores := make(DimensionScores, len(b.dimensions))
	for i, d := range b.dimensions {
		if counts[i] == 0 {
			scores[d.Label] = 0
			continue
		}
		mean := float64(sums[i]) / float64(counts[i])
		scores[d.Label] = percent(mean-LikertMin, LikertMax-LikertMin)
	}
	return scores
}

// Levels classifies every trait score.
func (b *TraitBank) Levels(scores DimensionScores) map[string]Level {
	out := make(map[string]Level, len(b.dimensions))
	for _, d := range b.dimensions {
		out[d.Label] = ClassifyLevel(scores[d.Label])
	}
	return out
}

// Interpret picks the canned description for each trait's level.
func (b *TraitBank) Interpret(scores DimensionScores) map[string]string {
	return b.interpret(scores)
}

// RankTraits orders traits by descending score; ties keep O C E A N order.
func (b *TraitBank) RankTraits(scores DimensionScores) []string {
	return b.rank(scores)
}

// RankTraits ranks against the default trait bank.
func RankTraits(scores DimensionScores) []string {
	return defaultTrait.RankTraits(scores)
}

// SuggestCareerAreas looks up career areas for the top two traits. The
// combined list is keyed by both letters sorted alphabetically; a bank without
// that pairing gets the two single-trait lists merged instead.
func (b *TraitBank) SuggestCareerAreas(scores DimensionScores) CareerSuggestion {
	ranked := b.RankTraits(scores)
	if len(ranked) < 2 {
		return CareerSuggestion{}
	}
	first, second := ranked[0], ranked[1]
	s := CareerSuggestion{
		PrimaryTrait:   first,
		SecondaryTrait: second,
		Primary:        b.careers(first),
		Secondary:      b.careers(second),
		Pairing:        pairKey(first, second),
	}
	if combined, ok := b.combinations[s.Pairing]; ok && len(combined) > 0 {
		s.Combined = append([]string(nil), combined...)
		return s
	}
	s.Combined = mergeUnique(s.Primary, s.Secondary)
	s.CombinedFallback = true
	return s
}

// Evaluate runs the full trait pipeline.
func (b *TraitBank) Evaluate(responses ResponseSet) TraitResult {
	scores := b.CalculateScores(responses)
	return TraitResult{
		Scores:         scores,
		Ranked:         b.RankTraits(scores),
		Levels:         b.Levels(scores),
		Interpretation: b.Interpret(scores),
		Careers:        b.SuggestCareerAreas(scores),
	}
}

// EvaluateTraits evaluates against the default trait bank.
func EvaluateTraits(responses ResponseSet) TraitResult {
	return defaultTrait.Evaluate(responses)
}

func (b *TraitBank) careers(label string) []string {
	i, ok := b.dimIndex[label]
	if !ok {
		return []string{}
	}
	return append([]string{}, b.dimensions[i].Careers...)
}

func pairKey(a, c string) string {
	if c < a {
		a, c = c, a
	}
	return a + c
}

func mergeUnique(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, l := range lists {
		for _, v := range l {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
