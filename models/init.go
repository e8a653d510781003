package models

// InitResponse defines the structure for the /api/init endpoint response.
type InitResponse struct {
	UserType             string                   `json:"user_type"` // "guest" or "registered"
	UserID               string                   `json:"user_id"`
	GuestAIQuota         int                      `json:"guest_ai_quota"`
	GenerationsUsed      int                      `json:"generations_used"`
	RemainingQuota       int                      `json:"remaining_quota"`
	Models               []AssessmentModel        `json:"models"`
	CompletedAssessments map[AssessmentModel]bool `json:"completed_assessments"`
}
