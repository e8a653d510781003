package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"limitfree/models"
	"limitfree/repository"
	"limitfree/scoring"
)

// DefaultTraitMinCompletion is the answered fraction required before a trait
// submission is scored.
const DefaultTraitMinCompletion = 0.5

// AssessmentService runs questionnaire sessions and scores submissions.
type AssessmentService interface {
	Questions(model models.AssessmentModel) ([]scoring.Question, error)
	StartOrContinue(ctx context.Context, userID string, model models.AssessmentModel) (*scoring.Question, *models.AssessmentSession, error)
	// SubmitAnswer records one answer. The returned result is non-nil once the
	// answer completed the session.
	SubmitAnswer(ctx context.Context, userID string, model models.AssessmentModel, questionID string, value int) (*scoring.Question, *models.AssessmentSession, *models.AssessmentResult, error)
	ScoreResponses(ctx context.Context, userID string, model models.AssessmentModel, responses scoring.ResponseSet) (*models.AssessmentResult, error)
	GetLatestResult(ctx context.Context, userID string, model models.AssessmentModel) (*models.AssessmentResult, error)
}

type assessmentService struct {
	repo          repository.AssessmentRepository
	banks         QuestionBanks
	minCompletion float64
	log           *zap.Logger
}

// NewAssessmentService creates a new instance of AssessmentService.
// A minCompletion outside (0,1] falls back to DefaultTraitMinCompletion.
func NewAssessmentService(repo repository.AssessmentRepository, banks QuestionBanks, minCompletion float64, log *zap.Logger) AssessmentService {
	if minCompletion <= 0 || minCompletion > 1 {
		minCompletion = DefaultTraitMinCompletion
	}
	return &assessmentService{
		repo:          repo,
		banks:         banks,
		minCompletion: minCompletion,
		log:           log.Named("AssessmentService"),
	}
}

func (s *assessmentService) Questions(model models.AssessmentModel) ([]scoring.Question, error) {
	return s.banks.Questions(model)
}

// nextUnanswered returns the first question in bank order without a response.
func nextUnanswered(questions []scoring.Question, responses scoring.ResponseSet) *scoring.Question {
	for i := range questions {
		if _, ok := responses[questions[i].ID]; !ok {
			q := questions[i]
			return &q
		}
	}
	return nil
}

// StartOrContinue resumes the user's in-progress session for model, or starts
// a new one, and returns the next unanswered question.
func (s *assessmentService) StartOrContinue(ctx context.Context, userID string, model models.AssessmentModel) (*scoring.Question, *models.AssessmentSession, error) {
	questions, err := s.banks.Questions(model)
	if err != nil {
		return nil, nil, err
	}
	log := s.log.With(zap.String("user_id", userID), zap.String("model", string(model)))

	session, err := s.repo.GetLatestSession(ctx, userID, model, models.AssessmentStatusInProgress)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get in-progress %s session for userID %s", model, userID)
		log.Error(errMsg, zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	if session == nil {
		session = &models.AssessmentSession{
			UserID:    userID,
			Model:     model,
			Status:    models.AssessmentStatusInProgress,
			Responses: scoring.ResponseSet{},
			StartedAt: time.Now(),
		}
		if err := s.repo.CreateSession(ctx, session); err != nil {
			errMsg := fmt.Sprintf("failed to create %s session for userID %s", model, userID)
			log.Error(errMsg, zap.Error(err))
			return nil, nil, fmt.Errorf("%s: %w", errMsg, err)
		}
		log.Info("Started new assessment session", zap.Uint("session_id", session.ID))
	} else {
		log.Info("Continuing assessment session",
			zap.Uint("session_id", session.ID),
			zap.String("current_question_id", session.CurrentQuestionID))
	}
	if session.Responses == nil {
		session.Responses = scoring.ResponseSet{}
	}

	next := nextUnanswered(questions, session.Responses)
	if next == nil {
		// Every question already answered, e.g. the bank shrank since the
		// session started.
		if _, err := s.finish(ctx, session); err != nil {
			return nil, session, err
		}
		return nil, session, nil
	}

	if session.CurrentQuestionID != next.ID {
		session.CurrentQuestionID = next.ID
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			errMsg := fmt.Sprintf("failed to update session %d for userID %s", session.ID, userID)
			log.Error(errMsg, zap.Error(err))
			return next, session, fmt.Errorf("%s: %w", errMsg, err)
		}
	}
	return next, session, nil
}

// SubmitAnswer stores value for questionID, which must be the session's current question.
func (s *assessmentService) SubmitAnswer(ctx context.Context, userID string, model models.AssessmentModel, questionID string, value int) (*scoring.Question, *models.AssessmentSession, *models.AssessmentResult, error) {
	questions, err := s.banks.Questions(model)
	if err != nil {
		return nil, nil, nil, err
	}
	log := s.log.With(zap.String("user_id", userID), zap.String("model", string(model)))

	if _, ok := s.banks.question(model, questionID); !ok {
		return nil, nil, nil, fmt.Errorf("question %q: %w", questionID, ErrNotFound)
	}
	if err := s.banks.validate(model, scoring.ResponseSet{questionID: value}); err != nil {
		return nil, nil, nil, err
	}

	session, err := s.repo.GetLatestSession(ctx, userID, model, models.AssessmentStatusInProgress)
	if err != nil {
		errMsg := fmt.Sprintf("failed to retrieve in-progress %s session for userID %s", model, userID)
		log.Error(errMsg, zap.Error(err))
		return nil, nil, nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if session == nil {
		log.Warn("Answer submitted without a session", zap.String("question_id", questionID))
		return nil, nil, nil, ErrNoAssessment
	}
	if session.Responses == nil {
		session.Responses = scoring.ResponseSet{}
	}

	// An empty or stale pointer (the bank was replaced) resumes at the first unanswered question.
	if _, ok := s.banks.question(model, session.CurrentQuestionID); !ok {
		session.CurrentQuestionID = ""
		if next := nextUnanswered(questions, session.Responses); next != nil {
			session.CurrentQuestionID = next.ID
		}
	}
	if session.CurrentQuestionID != questionID {
		log.Warn("Answer submitted for a question that is not current",
			zap.String("question_id", questionID),
			zap.String("current_question_id", session.CurrentQuestionID))
		var current *scoring.Question
		if q, ok := s.banks.question(model, session.CurrentQuestionID); ok {
			current = &q
		}
		return current, session, nil, fmt.Errorf("%w: expected %q", ErrQuestionMismatch, session.CurrentQuestionID)
	}

	session.Responses[questionID] = value
	next := nextUnanswered(questions, session.Responses)
	if next == nil {
		result, err := s.finish(ctx, session)
		if err != nil {
			return nil, session, nil, err
		}
		return nil, session, result, nil
	}

	session.CurrentQuestionID = next.ID
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		errMsg := fmt.Sprintf("failed to update session %d after answering %s", session.ID, questionID)
		log.Error(errMsg, zap.Error(err))
		return nil, session, nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return next, session, nil, nil
}

// finish marks the session completed and stores its scored result.
func (s *assessmentService) finish(ctx context.Context, session *models.AssessmentSession) (*models.AssessmentResult, error) {
	session.Status = models.AssessmentStatusCompleted
	session.CurrentQuestionID = ""
	session.CompletedAt.Time = time.Now()
	session.CompletedAt.Valid = true
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to complete session %d: %w", session.ID, err)
	}
	s.log.Info("Assessment session completed",
		zap.Uint("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.String("model", string(session.Model)))

	return s.store(ctx, session.UserID, session.Model, session.Responses)
}

// ScoreResponses scores a whole submission at once.
func (s *assessmentService) ScoreResponses(ctx context.Context, userID string, model models.AssessmentModel, responses scoring.ResponseSet) (*models.AssessmentResult, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModel, model)
	}
	if err := s.banks.validate(model, responses); err != nil {
		return nil, err
	}
	if model == models.ModelTrait {
		if c := s.banks.completion(model, responses); c < s.minCompletion {
			return nil, fmt.Errorf("%w: %.0f%% answered, %.0f%% required", ErrIncomplete, c*100, s.minCompletion*100)
		}
	}
	return s.store(ctx, userID, model, responses)
}

func (s *assessmentService) store(ctx context.Context, userID string, model models.AssessmentModel, responses scoring.ResponseSet) (*models.AssessmentResult, error) {
	result := &models.AssessmentResult{
		PublicID:   uuid.NewString(),
		UserID:     userID,
		Model:      model,
		Responses:  responses,
		Completion: s.banks.completion(model, responses),
	}
	switch model {
	case models.ModelInterest:
		r := s.banks.Interest.Calculate(responses)
		result.Interest = &r
	case models.ModelTrait:
		r := s.banks.Trait.Evaluate(responses)
		result.Trait = &r
	}

	if err := s.repo.CreateResult(ctx, result); err != nil {
		errMsg := fmt.Sprintf("failed to store %s result for userID %s", model, userID)
		s.log.Error(errMsg, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return result, nil
}

// GetLatestResult returns nil, nil when the user has not completed model.
func (s *assessmentService) GetLatestResult(ctx context.Context, userID string, model models.AssessmentModel) (*models.AssessmentResult, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModel, model)
	}
	result, err := s.repo.GetLatestResult(ctx, userID, model)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s result for userID %s: %w", model, userID, err)
	}
	return result, nil
}
