package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"limitfree/utils"
)

// GenerateShuttlesHandler creates passion shuttles from both assessment results.
// POST /api/shuttles/generate
// Request body: { "user_id": "string" }
func (h *APIHandler) GenerateShuttlesHandler(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: user_id is required.", err)
		return
	}
	shuttles, err := h.shuttleService.Generate(c.Request.Context(), req.UserID)
	if err != nil {
		sendServiceError(c, err, "Failed to generate passion shuttles.")
		return
	}
	utils.SendJSONSuccess(c, "Passion shuttles generated successfully", shuttles)
}

// GetShuttlesHandler lists the user's shuttles.
// GET /api/shuttles/user/:userID
func (h *APIHandler) GetShuttlesHandler(c *gin.Context) {
	shuttles, err := h.shuttleService.ListForUser(c.Request.Context(), c.Param("userID"))
	if err != nil {
		sendServiceError(c, err, "Failed to fetch passion shuttles.")
		return
	}
	utils.SendJSONSuccess(c, "Passion shuttles retrieved successfully", shuttles)
}
