// Package scoring implements the RIASEC interest and OCEAN trait scoring
// engine. Every function here is pure: question banks are parsed once into
// read-only values and each call allocates its own result.
package scoring

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed banks/*.yaml
var bankFiles embed.FS

const (
	LikertMin = 1
	LikertMax = 7
)

// Level is the qualitative band of a 0-100 score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Question is a single survey item.
type Question struct {
	ID        string `yaml:"id" json:"id"`
	Dimension string `yaml:"dimension" json:"dimension"`
	Reverse   bool   `yaml:"reverse,omitempty" json:"reverse,omitempty"`
	Text      string `yaml:"text" json:"text"`
}

// Dimension describes one scored axis and its canned texts.
type Dimension struct {
	Label          string           `yaml:"label" json:"label"`
	Name           string           `yaml:"name" json:"name"`
	Interpretation map[Level]string `yaml:"interpretation" json:"interpretation,omitempty"`
	Careers        []string         `yaml:"careers,omitempty" json:"careers,omitempty"`
}

// ResponseSet maps question ids to Likert values. Missing ids are allowed.
type ResponseSet map[string]int

// DimensionScores maps a dimension label to a score in [0,100].
type DimensionScores map[string]int

// bankFile is the on-disk yaml shape shared by both banks.
type bankFile struct {
	Version      int                 `yaml:"version"`
	Dimensions   []Dimension         `yaml:"dimensions"`
	Questions    []Question          `yaml:"questions"`
	Combinations map[string][]string `yaml:"combinations,omitempty"`
}

type bank struct {
	version      int
	dimensions   []Dimension
	questions    []Question
	combinations map[string][]string
	dimIndex     map[string]int
	byID         map[string]int
}

func parseBank(data []byte, source string) (*bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question bank %s: %w", source, err)
	}
	if len(f.Dimensions) == 0 {
		return nil, fmt.Errorf("question bank %s defines no dimensions", source)
	}

	b := &bank{
		version:      f.Version,
		dimensions:   f.Dimensions,
		questions:    f.Questions,
		combinations: f.Combinations,
		dimIndex:     make(map[string]int, len(f.Dimensions)),
		byID:         make(map[string]int, len(f.Questions)),
	}
	for i, d := range f.Dimensions {
		if _, dup := b.dimIndex[d.Label]; dup {
			return nil, fmt.Errorf("question bank %s: duplicate dimension %q", source, d.Label)
		}
		b.dimIndex[d.Label] = i
	}
	for i, q := range f.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question bank %s: question at position %d has no id", source, i)
		}
		if _, ok := b.dimIndex[q.Dimension]; !ok {
			return nil, fmt.Errorf("question bank %s: question %s has unknown dimension %q", source, q.ID, q.Dimension)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("question bank %s: duplicate question id %q", source, q.ID)
		}
		b.byID[q.ID] = i
	}
	return b, nil
}

func readBank(path string) (*bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank file: %w", err)
	}
	return parseBank(data, path)
}

func mustEmbedded(name string) *bank {
	data, err := bankFiles.ReadFile("banks/" + name)
	if err != nil {
		panic(fmt.Sprintf("scoring: embedded bank %s missing: %v", name, err))
	}
	b, err := parseBank(data, name)
	if err != nil {
		panic(fmt.Sprintf("scoring: embedded bank %s invalid: %v", name, err))
	}
	return b
}

// Labels returns the dimension labels in canonical order.
func (b *bank) Labels() []string {
	labels := make([]string, len(b.dimensions))
	for i, d := range b.dimensions {
		labels[i] = d.Label
	}
	return labels
}

// Dimensions returns a copy of the dimension definitions.
func (b *bank) Dimensions() []Dimension {
	out := make([]Dimension, len(b.dimensions))
	copy(out, b.dimensions)
	return out
}

// Questions returns a copy of the question list in bank order.
func (b *bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Question looks up a question by id.
func (b *bank) Question(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Version is the bank's declared version.
func (b *bank) Version() int { return b.version }

// Completion is the fraction of bank questions answered in responses.
// Unknown ids do not count.
func (b *bank) Completion(responses ResponseSet) float64 {
	if len(b.questions) == 0 {
		return 0
	}
	answered := 0
	for _, q := range b.questions {
		if _, ok := responses[q.ID]; ok {
			answered++
		}
	}
	return float64(answered) / float64(len(b.questions))
}

// Validate reports the first response outside the Likert range, visiting
// questions in bank order. Unknown ids are ignored.
func (b *bank) Validate(responses ResponseSet) error {
	for _, q := range b.questions {
		v, ok := responses[q.ID]
		if !ok {
			continue
		}
		if v < LikertMin || v > LikertMax {
			return &ResponseError{QuestionID: q.ID, Value: v}
		}
	}
	return nil
}

// tally accumulates per-dimension sums and answered counts. reverse controls
// whether reverse-keyed items are inverted.
func (b *bank) tally(responses ResponseSet, reverse bool) (sums, counts []int) {
	sums = make([]int, len(b.dimensions))
	counts = make([]int, len(b.dimensions))
	for _, q := range b.questions {
		v, ok := responses[q.ID]
		if !ok {
			continue
		}
		v = clampLikert(v)
		if reverse && q.Reverse {
			v = ReverseScore(v)
		}
		d := b.dimIndex[q.Dimension]
		sums[d] += v
		counts[d]++
	}
	return sums, counts
}

// rank orders labels by descending score; ties keep canonical order.
func (b *bank) rank(scores DimensionScores) []string {
	return sortByScore(b.Labels(), scores)
}

func (b *bank) interpret(scores DimensionScores) map[string]string {
	out := make(map[string]string, len(b.dimensions))
	for _, d := range b.dimensions {
		level := ClassifyLevel(scores[d.Label])
		text, ok := d.Interpretation[level]
		if !ok {
			text = d.Interpretation[LevelMedium]
		}
		out[d.Label] = text
	}
	return out
}
