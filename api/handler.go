package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"limitfree/models"
	"limitfree/repository"
	"limitfree/scoring"
	"limitfree/services"
	"limitfree/utils"
)

// APIHandler holds all dependencies for API handlers, such as repositories and services.
type APIHandler struct {
	quotaRepo         repository.QuotaRepository
	assessmentService services.AssessmentService
	shuttleService    services.ShuttleService
	questService      services.QuestService
	progressService   services.ProgressService
	guestLimit        func() int
	log               *zap.Logger
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
// guestLimit is read on every request so that config reloads take effect.
func NewAPIHandler(
	quotaRepo repository.QuotaRepository,
	assessmentService services.AssessmentService,
	shuttleService services.ShuttleService,
	questService services.QuestService,
	progressService services.ProgressService,
	guestLimit func() int,
	log *zap.Logger,
) *APIHandler {
	return &APIHandler{
		quotaRepo:         quotaRepo,
		assessmentService: assessmentService,
		shuttleService:    shuttleService,
		questService:      questService,
		progressService:   progressService,
		guestLimit:        guestLimit,
		log:               log.Named("APIHandler"),
	}
}

// userRequest is the body of endpoints that only need to know who is asking.
type userRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// InitHandler returns application initialization information, including user status and quota.
// GET /api/init?userID=
func (h *APIHandler) InitHandler(c *gin.Context) {
	userID := c.Query("userID")
	limit := h.guestLimit()

	resp := models.InitResponse{
		UserID:               userID,
		GuestAIQuota:         limit,
		Models:               models.AssessmentModels,
		CompletedAssessments: make(map[models.AssessmentModel]bool, len(models.AssessmentModels)),
	}

	if utils.IsGuest(userID) {
		resp.UserType = "guest"
		if userID == "" {
			resp.UserID = utils.GenerateGuestID()
			h.log.Info("No userID provided, generated new guest ID", zap.String("user_id", resp.UserID))
		}
		quota, err := h.quotaRepo.GetQuota(c.Request.Context(), resp.UserID)
		if err != nil {
			h.log.Warn("Could not fetch guest quota, assuming none used",
				zap.String("user_id", resp.UserID), zap.Error(err))
		} else {
			resp.GenerationsUsed = quota.GenerationsUsed
		}
		resp.RemainingQuota = max(limit-resp.GenerationsUsed, 0)
	} else {
		resp.UserType = "registered"
		resp.RemainingQuota = -1 // unlimited
	}

	for _, m := range models.AssessmentModels {
		result, err := h.assessmentService.GetLatestResult(c.Request.Context(), resp.UserID, m)
		if err != nil {
			utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load assessment status.", err)
			return
		}
		resp.CompletedAssessments[m] = result != nil
	}

	utils.SendJSONSuccess(c, "Success", resp)
}

// modelParam reads and validates the :model path parameter.
func modelParam(c *gin.Context) (models.AssessmentModel, bool) {
	model := models.AssessmentModel(c.Param("model"))
	if !model.Valid() {
		utils.SendJSONError(c, http.StatusBadRequest, "Unknown assessment model.", nil,
			fmt.Sprintf("model must be %q or %q", models.ModelInterest, models.ModelTrait))
		return "", false
	}
	return model, true
}

// uintParam parses a numeric path parameter such as :treeID.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter.", name), err)
		return 0, false
	}
	return uint(id), true
}

// sendServiceError maps service sentinels onto HTTP statuses. fallback is the
// public message for anything unexpected.
func sendServiceError(c *gin.Context, err error, fallback string) {
	var respErr *scoring.ResponseError
	switch {
	case errors.As(err, &respErr):
		utils.SendJSONError(c, http.StatusBadRequest, "Response value out of range.", err,
			fmt.Sprintf("question %s: value %d is not between %d and %d", respErr.QuestionID, respErr.Value, scoring.LikertMin, scoring.LikertMax))
	case errors.Is(err, scoring.ErrInvalidResponseValue):
		utils.SendJSONError(c, http.StatusBadRequest, "Response value out of range.", err)
	case errors.Is(err, services.ErrInvalidModel):
		utils.SendJSONError(c, http.StatusBadRequest, "Unknown assessment model.", err)
	case errors.Is(err, services.ErrNotFound):
		utils.SendJSONError(c, http.StatusNotFound, "Not found.", err, err.Error())
	case errors.Is(err, services.ErrNoAssessment):
		utils.SendJSONError(c, http.StatusNotFound, "No assessment in progress. Start one first.", err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.SendJSONError(c, http.StatusForbidden, "You are not allowed to access this resource.", err)
	case errors.Is(err, services.ErrQuotaExceeded):
		utils.SendJSONError(c, http.StatusTooManyRequests, "You have used all of your free AI generations. Please register to continue.", err)
	case errors.Is(err, services.ErrIncomplete):
		utils.SendJSONError(c, http.StatusUnprocessableEntity, "Not enough questions answered to score this assessment.", err)
	case errors.Is(err, services.ErrMissingResults):
		utils.SendJSONError(c, http.StatusConflict, "Complete both assessments first.", err)
	case errors.Is(err, services.ErrQuestionMismatch):
		utils.SendJSONError(c, http.StatusConflict, "That is not the current question.", err, err.Error())
	case errors.Is(err, services.ErrParentIncomplete):
		utils.SendJSONError(c, http.StatusConflict, "Complete the parent quest first.", err)
	case errors.Is(err, services.ErrAlreadyCompleted):
		utils.SendJSONError(c, http.StatusConflict, "Cannot skip an already completed quest.", err)
	default:
		utils.SendJSONError(c, http.StatusInternalServerError, fallback, err)
	}
}
