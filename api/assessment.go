package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"limitfree/scoring"
	"limitfree/utils"
)

type answerRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	Value      *int   `json:"value" binding:"required"`
}

type scoreRequest struct {
	UserID    string              `json:"user_id" binding:"required"`
	Responses scoring.ResponseSet `json:"responses" binding:"required"`
}

// QuestionsHandler lists the model's questions in presentation order.
// GET /api/assessment/:model/questions
func (h *APIHandler) QuestionsHandler(c *gin.Context) {
	model, ok := modelParam(c)
	if !ok {
		return
	}
	questions, err := h.assessmentService.Questions(model)
	if err != nil {
		sendServiceError(c, err, "Failed to load questions.")
		return
	}
	utils.SendJSONSuccess(c, "Questions retrieved successfully", questions)
}

// StartAssessmentHandler starts or resumes a session.
// POST /api/assessment/:model/start
// Request body: { "user_id": "string" }
func (h *APIHandler) StartAssessmentHandler(c *gin.Context) {
	model, ok := modelParam(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: user_id is required.", err)
		return
	}

	next, session, err := h.assessmentService.StartOrContinue(c.Request.Context(), req.UserID, model)
	if err != nil {
		sendServiceError(c, err, "Failed to start assessment.")
		return
	}
	utils.SendJSONSuccess(c, "Assessment in progress", gin.H{
		"question":  next,
		"session":   session,
		"completed": next == nil,
	})
}

// AnswerHandler records one answer and returns the next question, or the
// result once the last question is answered.
// POST /api/assessment/:model/answer
// Request body: { "user_id": "string", "question_id": "string", "value": 1-7 }
func (h *APIHandler) AnswerHandler(c *gin.Context) {
	model, ok := modelParam(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: user_id, question_id and value are required.", err)
		return
	}

	next, session, result, err := h.assessmentService.SubmitAnswer(c.Request.Context(), req.UserID, model, req.QuestionID, *req.Value)
	if err != nil {
		sendServiceError(c, err, "Failed to record answer.")
		return
	}
	utils.SendJSONSuccess(c, "Answer recorded", gin.H{
		"question":  next,
		"session":   session,
		"result":    result,
		"completed": result != nil,
	})
}

// ScoreHandler scores a complete response set in one call.
// POST /api/assessment/:model/score
// Request body: { "user_id": "string", "responses": {"<question id>": 1-7} }
func (h *APIHandler) ScoreHandler(c *gin.Context) {
	model, ok := modelParam(c)
	if !ok {
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: user_id and responses are required.", err)
		return
	}

	result, err := h.assessmentService.ScoreResponses(c.Request.Context(), req.UserID, model, req.Responses)
	if err != nil {
		sendServiceError(c, err, "Failed to score assessment.")
		return
	}
	utils.SendJSONSuccess(c, "Assessment scored", result)
}

// GetResultHandler returns the user's latest result for the model.
// GET /api/assessment/:model/result/:userID
func (h *APIHandler) GetResultHandler(c *gin.Context) {
	model, ok := modelParam(c)
	if !ok {
		return
	}
	userID := c.Param("userID")

	result, err := h.assessmentService.GetLatestResult(c.Request.Context(), userID, model)
	if err != nil {
		sendServiceError(c, err, "Failed to fetch assessment result.")
		return
	}
	if result == nil {
		utils.SendJSONError(c, http.StatusNotFound, "No result yet for this assessment.", nil)
		return
	}
	utils.SendJSONSuccess(c, "Result retrieved successfully", result)
}
