package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"limitfree/models"
	"limitfree/scoring"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AssessmentSession{},
		&models.AssessmentResult{},
		&models.GuestQuota{},
		&models.PassionShuttle{},
		&models.QuestTree{},
		&models.Quest{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestAssessmentRepository_Sessions(t *testing.T) {
	ctx := context.Background()
	repo := NewAssessmentRepository(newTestDB(t), zap.NewNop())

	got, err := repo.GetLatestSession(ctx, "u1", models.ModelInterest)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.CreateSession(ctx, &models.AssessmentSession{Model: models.ModelInterest}))

	s := &models.AssessmentSession{
		UserID:    "u1",
		Model:     models.ModelInterest,
		Responses: scoring.ResponseSet{"1": 5},
		StartedAt: time.Now(),
	}
	require.NoError(t, repo.CreateSession(ctx, s))
	assert.NotZero(t, s.ID)
	assert.Equal(t, models.AssessmentStatusInProgress, s.Status)

	s.Responses["2"] = 3
	s.CurrentQuestionID = "3"
	require.NoError(t, repo.UpdateSession(ctx, s))

	inProgress, err := repo.GetLatestSession(ctx, "u1", models.ModelInterest, models.AssessmentStatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, inProgress)
	assert.Equal(t, s.ID, inProgress.ID)
	assert.Equal(t, scoring.ResponseSet{"1": 5, "2": 3}, inProgress.Responses)
	assert.Equal(t, "3", inProgress.CurrentQuestionID)
	assert.False(t, inProgress.CompletedAt.Valid)

	done, err := repo.GetLatestSession(ctx, "u1", models.ModelInterest, models.AssessmentStatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, done)

	other, err := repo.GetLatestSession(ctx, "u1", models.ModelTrait)
	require.NoError(t, err)
	assert.Nil(t, other)

	finishedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Status = models.AssessmentStatusCompleted
	s.CompletedAt = sql.NullTime{Time: finishedAt, Valid: true}
	require.NoError(t, repo.UpdateSession(ctx, s))

	done, err = repo.GetLatestSession(ctx, "u1", models.ModelInterest, models.AssessmentStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, done)
	require.True(t, done.CompletedAt.Valid)
	assert.True(t, finishedAt.Equal(done.CompletedAt.Time))
}

func TestAssessmentRepository_Results(t *testing.T) {
	ctx := context.Background()
	repo := NewAssessmentRepository(newTestDB(t), zap.NewNop())

	res := scoring.CalculateResults(scoring.ResponseSet{"1": 7})
	first := &models.AssessmentResult{PublicID: "a", UserID: "u1", Model: models.ModelInterest, Interest: &res}
	require.NoError(t, repo.CreateResult(ctx, first))

	trait := scoring.EvaluateTraits(scoring.ResponseSet{"O1": 7})
	second := &models.AssessmentResult{PublicID: "b", UserID: "u1", Model: models.ModelTrait, Trait: &trait}
	require.NoError(t, repo.CreateResult(ctx, second))

	got, err := repo.GetLatestResult(ctx, "u1", models.ModelInterest)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.PublicID)
	require.NotNil(t, got.Interest)
	assert.Equal(t, res.Code, got.Interest.Code)
	assert.Nil(t, got.Trait)

	got, err = repo.GetLatestResult(ctx, "u1", models.ModelTrait)
	require.NoError(t, err)
	require.NotNil(t, got.Trait)
	assert.Equal(t, trait.Ranked, got.Trait.Ranked)

	got, err = repo.GetLatestResult(ctx, "nobody", models.ModelTrait)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQuotaRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewQuotaRepository(newTestDB(t), zap.NewNop())

	q, err := repo.GetQuota(ctx, "guest_1")
	require.NoError(t, err)
	assert.Equal(t, 0, q.GenerationsUsed)

	for i := 0; i < 2; i++ {
		ok, err := repo.ReserveQuota(ctx, "guest_1", 2)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := repo.ReserveQuota(ctx, "guest_1", 2)
	require.NoError(t, err)
	assert.False(t, ok, "third generation is over the limit")

	q, err = repo.GetQuota(ctx, "guest_1")
	require.NoError(t, err)
	assert.Equal(t, 2, q.GenerationsUsed)

	require.NoError(t, repo.ReleaseQuota(ctx, "guest_1"))
	ok, err = repo.ReserveQuota(ctx, "guest_1", 2)
	require.NoError(t, err)
	assert.True(t, ok, "a released generation can be taken again")

	// Releasing an unknown guest is a no-op, never a negative count.
	require.NoError(t, repo.ReleaseQuota(ctx, "guest_2"))
	q, err = repo.GetQuota(ctx, "guest_2")
	require.NoError(t, err)
	assert.Equal(t, 0, q.GenerationsUsed)

	ok, err = repo.ReserveQuota(ctx, "guest_3", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetQuota(ctx, "")
	assert.Error(t, err)
	_, err = repo.ReserveQuota(ctx, "", 1)
	assert.Error(t, err)
	assert.Error(t, repo.ReleaseQuota(ctx, ""))
}

func TestQuotaRepository_ConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	repo := NewQuotaRepository(newTestDB(t), zap.NewNop())

	const callers, limit = 8, 3
	var (
		wg      sync.WaitGroup
		granted atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ReserveQuota(ctx, "guest_race", limit)
			assert.NoError(t, err)
			if ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), granted.Load())
	q, err := repo.GetQuota(ctx, "guest_race")
	require.NoError(t, err)
	assert.Equal(t, limit, q.GenerationsUsed)
}

func TestShuttleRepository_ReplaceForUser(t *testing.T) {
	ctx := context.Background()
	repo := NewShuttleRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.ReplaceForUser(ctx, "u1", []*models.PassionShuttle{
		{Title: "old"},
	}))
	require.NoError(t, repo.ReplaceForUser(ctx, "u1", []*models.PassionShuttle{
		{Title: "first", CareerAreas: []string{"Designer"}},
		{Title: "second"},
	}))

	list, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Title)
	assert.Equal(t, []string{"Designer"}, list[0].CareerAreas)
	assert.Equal(t, 1, list[1].Order)

	got, err := repo.GetByID(ctx, list[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Title)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.ReplaceForUser(ctx, "", nil))
}

func TestQuestRepository_TreeLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestRepository(newTestDB(t), zap.NewNop())

	tree := &models.QuestTree{UserID: "u1", ShuttleID: 7, Title: "Launch"}
	require.NoError(t, repo.CreateTree(ctx, tree))
	require.NotZero(t, tree.ID)

	root := &models.Quest{TreeID: tree.ID, Title: "Root", Difficulty: models.DifficultyEasy}
	require.NoError(t, repo.CreateQuest(ctx, root))
	child := &models.Quest{TreeID: tree.ID, ParentID: &root.ID, Title: "Child", Difficulty: models.DifficultyHard, Order: 1}
	require.NoError(t, repo.CreateQuest(ctx, child))
	assert.Error(t, repo.CreateQuest(ctx, &models.Quest{Title: "orphan"}))

	loaded, err := repo.GetTreeByID(ctx, tree.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Quests, 2)
	assert.Equal(t, "Root", loaded.Quests[0].Title)
	require.NotNil(t, loaded.Quests[1].ParentID)
	assert.Equal(t, root.ID, *loaded.Quests[1].ParentID)
	assert.Equal(t, models.QuestTreeStatusActive, loaded.Status)

	byShuttle, err := repo.GetTreeByShuttleID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, byShuttle)
	assert.Equal(t, tree.ID, byShuttle.ID)

	assert.False(t, loaded.Quests[1].CompletedAt.Valid)
	doneAt := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	child.Status = models.QuestStatusCompleted
	child.CompletedAt = sql.NullTime{Time: doneAt, Valid: true}
	require.NoError(t, repo.UpdateQuest(ctx, child))
	q, err := repo.GetQuestByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuestStatusCompleted, q.Status)
	require.True(t, q.CompletedAt.Valid)
	assert.True(t, doneAt.Equal(q.CompletedAt.Time))

	loaded.Status = models.QuestTreeStatusCompleted
	require.NoError(t, repo.UpdateTree(ctx, loaded))

	trees, err := repo.GetTreesByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, models.QuestTreeStatusCompleted, trees[0].Status)
	assert.Len(t, trees[0].Quests, 2)

	require.NoError(t, repo.DeleteTree(ctx, tree.ID, false))
	gone, err := repo.GetTreeByID(ctx, tree.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	goneQuest, err := repo.GetQuestByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, goneQuest, "quests go with their tree")
	trees, err = repo.GetTreesByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, trees)
}
