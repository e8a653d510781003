package models

import "time"

// Badge is an achievement unlocked through quests or assessments.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProgressResponse is the space-RPG view of a user's journey.
type ProgressResponse struct {
	UserID               string            `json:"user_id"`
	Energy               int               `json:"energy"`
	Level                int               `json:"level"`
	Rank                 string            `json:"rank"`
	EnergyToNextLevel    int               `json:"energy_to_next_level"`
	QuestsCompleted      int               `json:"quests_completed"`
	QuestsSkipped        int               `json:"quests_skipped"`
	TreesCompleted       int               `json:"trees_completed"`
	CompletionRate       float64           `json:"completion_rate"` // completed / (total - skipped)
	AssessmentsCompleted []AssessmentModel `json:"assessments_completed"`
	Badges               []Badge           `json:"badges"`
	GeneratedAt          time.Time         `json:"generated_at"`
}
