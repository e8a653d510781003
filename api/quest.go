package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"limitfree/models"
	"limitfree/utils"
)

type generateQuestsRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ShuttleID uint   `json:"shuttle_id"`
}

// GenerateQuestsHandler builds the quest tree for one shuttle, or for all of
// the user's shuttles when shuttle_id is omitted.
// POST /api/quests/generate
// Request body: { "user_id": "string", "shuttle_id": 0 }
func (h *APIHandler) GenerateQuestsHandler(c *gin.Context) {
	var req generateQuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: user_id is required.", err)
		return
	}

	if req.ShuttleID != 0 {
		tree, err := h.questService.GenerateTree(c.Request.Context(), req.UserID, req.ShuttleID)
		if err != nil {
			sendServiceError(c, err, "Failed to generate quest tree.")
			return
		}
		utils.SendJSONSuccess(c, "Quest tree generated successfully", tree)
		return
	}

	trees, err := h.questService.GenerateAll(c.Request.Context(), req.UserID)
	if err != nil {
		sendServiceError(c, err, "Failed to generate quest trees.")
		return
	}
	utils.SendJSONSuccess(c, "Quest trees generated successfully", trees)
}

// GetTreeHandler returns one quest tree with its quests.
// GET /api/quests/tree/:treeID
func (h *APIHandler) GetTreeHandler(c *gin.Context) {
	treeID, ok := uintParam(c, "treeID")
	if !ok {
		return
	}
	tree, err := h.questService.GetTree(c.Request.Context(), treeID)
	if err != nil {
		sendServiceError(c, err, "Failed to fetch quest tree.")
		return
	}
	utils.SendJSONSuccess(c, "Quest tree retrieved successfully", tree)
}

// GetTreesForUserHandler lists the user's quest trees.
// GET /api/quests/user/:userID
func (h *APIHandler) GetTreesForUserHandler(c *gin.Context) {
	trees, err := h.questService.ListTrees(c.Request.Context(), c.Param("userID"))
	if err != nil {
		sendServiceError(c, err, "Failed to fetch quest trees.")
		return
	}
	if trees == nil {
		trees = []*models.QuestTree{}
	}
	utils.SendJSONSuccess(c, "Quest trees retrieved successfully", trees)
}

// CompleteQuestHandler marks a quest as completed.
// POST /api/quests/:questID/complete
// Request body: { "user_id": "string" } (for authorization)
func (h *APIHandler) CompleteQuestHandler(c *gin.Context) {
	h.updateQuest(c, "Quest marked as completed", h.questService.CompleteQuest)
}

// SkipQuestHandler marks a quest as skipped.
// POST /api/quests/:questID/skip
// Request body: { "user_id": "string" } (for authorization)
func (h *APIHandler) SkipQuestHandler(c *gin.Context) {
	h.updateQuest(c, "Quest marked as skipped", h.questService.SkipQuest)
}

type questUpdate func(ctx context.Context, questID uint, userID string) (*models.Quest, error)

func (h *APIHandler) updateQuest(c *gin.Context, message string, update questUpdate) {
	questID, ok := uintParam(c, "questID")
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: user_id is required.", err)
		return
	}

	quest, err := update(c.Request.Context(), questID, req.UserID)
	if err != nil {
		sendServiceError(c, err, "Failed to update quest.")
		return
	}
	utils.SendJSONSuccess(c, message, quest)
}
