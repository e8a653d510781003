package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"limitfree/models"
)

// MockAssessmentRepository is a mock type for the AssessmentRepository interface.
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) CreateSession(ctx context.Context, session *models.AssessmentSession) error {
	args := m.Called(session)
	return args.Error(0)
}

// GetLatestSession is matched on (userID, model, status); status is "" when no filter is passed.
func (m *MockAssessmentRepository) GetLatestSession(ctx context.Context, userID string, model models.AssessmentModel, statusFilter ...models.AssessmentStatus) (*models.AssessmentSession, error) {
	var status models.AssessmentStatus
	if len(statusFilter) > 0 {
		status = statusFilter[0]
	}
	args := m.Called(userID, model, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentSession), args.Error(1)
}

func (m *MockAssessmentRepository) UpdateSession(ctx context.Context, session *models.AssessmentSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockAssessmentRepository) CreateResult(ctx context.Context, result *models.AssessmentResult) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetLatestResult(ctx context.Context, userID string, model models.AssessmentModel) (*models.AssessmentResult, error) {
	args := m.Called(userID, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentResult), args.Error(1)
}

// MockQuotaRepository is a mock type for the QuotaRepository interface.
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

// MockShuttleRepository is a mock type for the ShuttleRepository interface.
type MockShuttleRepository struct {
	mock.Mock
}

func (m *MockShuttleRepository) ReplaceForUser(ctx context.Context, userID string, shuttles []*models.PassionShuttle) error {
	args := m.Called(userID, shuttles)
	return args.Error(0)
}

func (m *MockShuttleRepository) GetByID(ctx context.Context, id uint) (*models.PassionShuttle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PassionShuttle), args.Error(1)
}

func (m *MockShuttleRepository) ListByUserID(ctx context.Context, userID string) ([]*models.PassionShuttle, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PassionShuttle), args.Error(1)
}

// MockQuestRepository is a mock type for the QuestRepository interface.
type MockQuestRepository struct {
	mock.Mock
}

func (m *MockQuestRepository) CreateTree(ctx context.Context, tree *models.QuestTree) error {
	args := m.Called(tree)
	return args.Error(0)
}

func (m *MockQuestRepository) GetTreeByID(ctx context.Context, treeID uint) (*models.QuestTree, error) {
	args := m.Called(treeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestTree), args.Error(1)
}

func (m *MockQuestRepository) GetTreesByUserID(ctx context.Context, userID string) ([]*models.QuestTree, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuestTree), args.Error(1)
}

func (m *MockQuestRepository) GetTreeByShuttleID(ctx context.Context, shuttleID uint) (*models.QuestTree, error) {
	args := m.Called(shuttleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestTree), args.Error(1)
}

func (m *MockQuestRepository) UpdateTree(ctx context.Context, tree *models.QuestTree) error {
	args := m.Called(tree)
	return args.Error(0)
}

func (m *MockQuestRepository) DeleteTree(ctx context.Context, treeID uint, hardDelete bool) error {
	args := m.Called(treeID, hardDelete)
	return args.Error(0)
}

func (m *MockQuestRepository) CreateQuest(ctx context.Context, quest *models.Quest) error {
	args := m.Called(quest)
	return args.Error(0)
}

func (m *MockQuestRepository) GetQuestByID(ctx context.Context, questID uint) (*models.Quest, error) {
	args := m.Called(questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quest), args.Error(1)
}

func (m *MockQuestRepository) UpdateQuest(ctx context.Context, quest *models.Quest) error {
	args := m.Called(quest)
	return args.Error(0)
}

// MockLLMClient is a mock type for the LLMClient interface.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(system, user)
	return args.String(0), args.Error(1)
}
