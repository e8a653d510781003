package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"limitfree/models"
	"limitfree/scoring"
)

// QuestionBanks holds the question bank used for each assessment model.
type QuestionBanks struct {
	Interest *scoring.InterestBank
	Trait    *scoring.TraitBank
}

// DefaultQuestionBanks returns the embedded banks.
func DefaultQuestionBanks() QuestionBanks {
	return QuestionBanks{
		Interest: scoring.DefaultInterestBank(),
		Trait:    scoring.DefaultTraitBank(),
	}
}

// LoadQuestionBanks reads riasec.yaml and ocean.yaml from dir. A file missing
// from dir, or an empty dir, keeps the embedded bank for that model.
func LoadQuestionBanks(dir string) (QuestionBanks, error) {
	banks := DefaultQuestionBanks()
	if dir == "" {
		return banks, nil
	}

	path := filepath.Join(dir, "riasec.yaml")
	if exists(path) {
		b, err := scoring.LoadInterestBank(path)
		if err != nil {
			return banks, fmt.Errorf("failed to load interest bank: %w", err)
		}
		banks.Interest = b
	}

	path = filepath.Join(dir, "ocean.yaml")
	if exists(path) {
		b, err := scoring.LoadTraitBank(path)
		if err != nil {
			return banks, fmt.Errorf("failed to load trait bank: %w", err)
		}
		banks.Trait = b
	}
	return banks, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Questions returns the bank for model in presentation order.
func (b QuestionBanks) Questions(model models.AssessmentModel) ([]scoring.Question, error) {
	switch model {
	case models.ModelInterest:
		return b.Interest.Questions(), nil
	case models.ModelTrait:
		return b.Trait.Questions(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidModel, model)
}

func (b QuestionBanks) question(model models.AssessmentModel, id string) (scoring.Question, bool) {
	if model == models.ModelTrait {
		return b.Trait.Question(id)
	}
	return b.Interest.Question(id)
}

func (b QuestionBanks) validate(model models.AssessmentModel, responses scoring.ResponseSet) error {
	if model == models.ModelTrait {
		return b.Trait.Validate(responses)
	}
	return b.Interest.Validate(responses)
}

func (b QuestionBanks) completion(model models.AssessmentModel, responses scoring.ResponseSet) float64 {
	if model == models.ModelTrait {
		return b.Trait.Completion(responses)
	}
	return b.Interest.Completion(responses)
}
