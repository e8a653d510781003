package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"limitfree/models"
	"limitfree/repository"
)

// Energy thresholds for each pilot level; index+1 is the level.
var levelThresholds = []int{0, 100, 250, 500, 900, 1400, 2000}

var levelRanks = []string{"Cadet", "Pilot", "Navigator", "Commander", "Captain", "Commodore", "Admiral"}

// Badge IDs.
const (
	BadgeFirstLaunch     = "first_launch"
	BadgeFiveQuests      = "five_quests"
	BadgeTenQuests       = "ten_quests"
	BadgeMissionComplete = "mission_complete"
	BadgeSelfDiscovery   = "self_discovery"
)

var badgeCatalog = map[string]models.Badge{
	BadgeFirstLaunch:     {ID: BadgeFirstLaunch, Name: "First Launch", Description: "Completed your first quest."},
	BadgeFiveQuests:      {ID: BadgeFiveQuests, Name: "Frequent Flyer", Description: "Completed five quests."},
	BadgeTenQuests:       {ID: BadgeTenQuests, Name: "Deep Space", Description: "Completed ten quests."},
	BadgeMissionComplete: {ID: BadgeMissionComplete, Name: "Mission Complete", Description: "Finished a whole quest tree."},
	BadgeSelfDiscovery:   {ID: BadgeSelfDiscovery, Name: "Self Discovery", Description: "Completed both assessments."},
}

// EnergyForDifficulty is the energy a quest of difficulty d awards.
func EnergyForDifficulty(d models.Difficulty) int {
	switch d {
	case models.DifficultyEasy:
		return 10
	case models.DifficultyMedium:
		return 25
	case models.DifficultyHard:
		return 50
	}
	return 0
}

// LevelForEnergy returns the 1-based level and rank for an energy total.
func LevelForEnergy(energy int) (int, string) {
	level := 1
	for i, th := range levelThresholds {
		if energy >= th {
			level = i + 1
		}
	}
	return level, levelRanks[level-1]
}

// EnergyToNextLevel is the energy still needed for the next level, 0 at max level.
func EnergyToNextLevel(energy int) int {
	level, _ := LevelForEnergy(energy)
	if level >= len(levelThresholds) {
		return 0
	}
	return levelThresholds[level] - energy
}

// BadgeStats are the counters badges are awarded from.
type BadgeStats struct {
	QuestsCompleted      int
	TreesCompleted       int
	AssessmentsCompleted int
}

// AwardBadges lists every badge the stats qualify for, in a fixed order.
func AwardBadges(stats BadgeStats) []models.Badge {
	badges := []models.Badge{}
	add := func(id string, ok bool) {
		if ok {
			badges = append(badges, badgeCatalog[id])
		}
	}
	add(BadgeFirstLaunch, stats.QuestsCompleted >= 1)
	add(BadgeFiveQuests, stats.QuestsCompleted >= 5)
	add(BadgeTenQuests, stats.QuestsCompleted >= 10)
	add(BadgeMissionComplete, stats.TreesCompleted >= 1)
	add(BadgeSelfDiscovery, stats.AssessmentsCompleted >= len(models.AssessmentModels))
	return badges
}

// ProgressService computes the space-RPG progress view.
type ProgressService interface {
	GetProgress(ctx context.Context, userID string) (*models.ProgressResponse, error)
}

type progressService struct {
	quests      repository.QuestRepository
	assessments repository.AssessmentRepository
	log         *zap.Logger
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(quests repository.QuestRepository, assessments repository.AssessmentRepository, log *zap.Logger) ProgressService {
	return &progressService{
		quests:      quests,
		assessments: assessments,
		log:         log.Named("ProgressService"),
	}
}

// GetProgress accumulates the stored energy reward of completed quests and checks both assessments.
func (s *progressService) GetProgress(ctx context.Context, userID string) (*models.ProgressResponse, error) {
	trees, err := s.quests.GetTreesByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load quest trees", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve quest trees: %w", err)
	}

	resp := &models.ProgressResponse{
		UserID:               userID,
		AssessmentsCompleted: []models.AssessmentModel{},
		GeneratedAt:          time.Now().UTC(),
	}
	total := 0
	for _, tree := range trees {
		if tree.Status == models.QuestTreeStatusCompleted {
			resp.TreesCompleted++
		}
		for _, q := range tree.Quests {
			total++
			switch q.Status {
			case models.QuestStatusCompleted:
				resp.QuestsCompleted++
				resp.Energy += q.EnergyReward
			case models.QuestStatusSkipped:
				resp.QuestsSkipped++
			}
		}
	}
	if denom := total - resp.QuestsSkipped; denom > 0 {
		resp.CompletionRate = float64(resp.QuestsCompleted) / float64(denom)
	}

	for _, m := range models.AssessmentModels {
		r, err := s.assessments.GetLatestResult(ctx, userID, m)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve %s result: %w", m, err)
		}
		if r != nil {
			resp.AssessmentsCompleted = append(resp.AssessmentsCompleted, m)
		}
	}

	resp.Level, resp.Rank = LevelForEnergy(resp.Energy)
	resp.EnergyToNextLevel = EnergyToNextLevel(resp.Energy)
	resp.Badges = AwardBadges(BadgeStats{
		QuestsCompleted:      resp.QuestsCompleted,
		TreesCompleted:       resp.TreesCompleted,
		AssessmentsCompleted: len(resp.AssessmentsCompleted),
	})
	return resp, nil
}
