package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"limitfree/models"
	"limitfree/scoring"
)

type MockQuotaRepository struct {
	mock.Mock
}

func (m *MockQuotaRepository) GetQuota(ctx context.Context, guestUserID string) (*models.GuestQuota, error) {
	args := m.Called(guestUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestQuota), args.Error(1)
}

func (m *MockQuotaRepository) ReserveQuota(ctx context.Context, guestUserID string, limit int) (bool, error) {
	args := m.Called(guestUserID, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaRepository) ReleaseQuota(ctx context.Context, guestUserID string) error {
	args := m.Called(guestUserID)
	return args.Error(0)
}

type MockAssessmentService struct {
	mock.Mock
}

func (m *MockAssessmentService) Questions(model models.AssessmentModel) ([]scoring.Question, error) {
	args := m.Called(model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.Question), args.Error(1)
}

func (m *MockAssessmentService) StartOrContinue(ctx context.Context, userID string, model models.AssessmentModel) (*scoring.Question, *models.AssessmentSession, error) {
	args := m.Called(userID, model)
	q, _ := args.Get(0).(*scoring.Question)
	s, _ := args.Get(1).(*models.AssessmentSession)
	return q, s, args.Error(2)
}

func (m *MockAssessmentService) SubmitAnswer(ctx context.Context, userID string, model models.AssessmentModel, questionID string, value int) (*scoring.Question, *models.AssessmentSession, *models.AssessmentResult, error) {
	args := m.Called(userID, model, questionID, value)
	q, _ := args.Get(0).(*scoring.Question)
	s, _ := args.Get(1).(*models.AssessmentSession)
	r, _ := args.Get(2).(*models.AssessmentResult)
	return q, s, r, args.Error(3)
}

func (m *MockAssessmentService) ScoreResponses(ctx context.Context, userID string, model models.AssessmentModel, responses scoring.ResponseSet) (*models.AssessmentResult, error) {
	args := m.Called(userID, model, responses)
	r, _ := args.Get(0).(*models.AssessmentResult)
	return r, args.Error(1)
}

func (m *MockAssessmentService) GetLatestResult(ctx context.Context, userID string, model models.AssessmentModel) (*models.AssessmentResult, error) {
	args := m.Called(userID, model)
	r, _ := args.Get(0).(*models.AssessmentResult)
	return r, args.Error(1)
}

type MockShuttleService struct {
	mock.Mock
}

func (m *MockShuttleService) Generate(ctx context.Context, userID string) ([]*models.PassionShuttle, error) {
	args := m.Called(userID)
	s, _ := args.Get(0).([]*models.PassionShuttle)
	return s, args.Error(1)
}

func (m *MockShuttleService) ListForUser(ctx context.Context, userID string) ([]*models.PassionShuttle, error) {
	args := m.Called(userID)
	s, _ := args.Get(0).([]*models.PassionShuttle)
	return s, args.Error(1)
}

type MockQuestService struct {
	mock.Mock
}

func (m *MockQuestService) GenerateTree(ctx context.Context, userID string, shuttleID uint) (*models.QuestTree, error) {
	args := m.Called(userID, shuttleID)
	t, _ := args.Get(0).(*models.QuestTree)
	return t, args.Error(1)
}

func (m *MockQuestService) GenerateAll(ctx context.Context, userID string) ([]*models.QuestTree, error) {
	args := m.Called(userID)
	t, _ := args.Get(0).([]*models.QuestTree)
	return t, args.Error(1)
}

func (m *MockQuestService) GetTree(ctx context.Context, treeID uint) (*models.QuestTree, error) {
	args := m.Called(treeID)
	t, _ := args.Get(0).(*models.QuestTree)
	return t, args.Error(1)
}

func (m *MockQuestService) ListTrees(ctx context.Context, userID string) ([]*models.QuestTree, error) {
	args := m.Called(userID)
	t, _ := args.Get(0).([]*models.QuestTree)
	return t, args.Error(1)
}

func (m *MockQuestService) CompleteQuest(ctx context.Context, questID uint, userID string) (*models.Quest, error) {
	args := m.Called(questID, userID)
	q, _ := args.Get(0).(*models.Quest)
	return q, args.Error(1)
}

func (m *MockQuestService) SkipQuest(ctx context.Context, questID uint, userID string) (*models.Quest, error) {
	args := m.Called(questID, userID)
	q, _ := args.Get(0).(*models.Quest)
	return q, args.Error(1)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) GetProgress(ctx context.Context, userID string) (*models.ProgressResponse, error) {
	args := m.Called(userID)
	p, _ := args.Get(0).(*models.ProgressResponse)
	return p, args.Error(1)
}
