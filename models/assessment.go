package models

import (
	"database/sql"
	"time"

	"limitfree/scoring"
)

// AssessmentModel names one of the two questionnaires.
type AssessmentModel string

const (
	ModelInterest AssessmentModel = "riasec" // six-dimension interest model
	ModelTrait    AssessmentModel = "ocean"  // five-trait personality model
)

// AssessmentModels lists every supported model in display order.
var AssessmentModels = []AssessmentModel{ModelInterest, ModelTrait}

// Valid reports whether m is a supported model.
func (m AssessmentModel) Valid() bool {
	return m == ModelInterest || m == ModelTrait
}

// AssessmentStatus defines the status of a user's questionnaire session.
type AssessmentStatus string

const (
	AssessmentStatusInProgress AssessmentStatus = "in_progress"
	AssessmentStatusCompleted  AssessmentStatus = "completed"
)

// AssessmentSession is one user's walk through a question bank, one question at a time.
type AssessmentSession struct {
	ID                uint                `json:"id" gorm:"primaryKey"`
	UserID            string              `json:"user_id" gorm:"index;not null"`
	Model             AssessmentModel     `json:"model" gorm:"type:varchar(16);index;not null"`
	Responses         scoring.ResponseSet `json:"responses" gorm:"serializer:json"`
	Status            AssessmentStatus    `json:"status" gorm:"type:varchar(32);index;not null"`
	CurrentQuestionID string              `json:"current_question_id,omitempty"`
	StartedAt         time.Time           `json:"started_at"`
	CompletedAt       sql.NullTime       `json:"completed_at"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TableName specifies the table name for the AssessmentSession model.
func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

// AssessmentResult is a scored submission. Exactly one of Interest and Trait is set.
type AssessmentResult struct {
	ID         uint                    `json:"-" gorm:"primaryKey"`
	PublicID   string                  `json:"id" gorm:"uniqueIndex;not null"`
	UserID     string                  `json:"user_id" gorm:"index;not null"`
	Model      AssessmentModel         `json:"model" gorm:"type:varchar(16);index;not null"`
	Responses  scoring.ResponseSet     `json:"responses" gorm:"serializer:json"`
	Completion float64                 `json:"completion"`
	Interest   *scoring.InterestResult `json:"interest,omitempty" gorm:"serializer:json"`
	Trait      *scoring.TraitResult    `json:"trait,omitempty" gorm:"serializer:json"`
	CreatedAt  time.Time               `json:"created_at"`
}

// TableName specifies the table name for the AssessmentResult model.
func (AssessmentResult) TableName() string {
	return "assessment_results"
}
