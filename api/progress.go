package api

import (
	"github.com/gin-gonic/gin"

	"limitfree/utils"
)

// GetProgressHandler returns the user's space-RPG progress.
// GET /api/progress/:userID
func (h *APIHandler) GetProgressHandler(c *gin.Context) {
	progress, err := h.progressService.GetProgress(c.Request.Context(), c.Param("userID"))
	if err != nil {
		sendServiceError(c, err, "Failed to compute progress.")
		return
	}
	utils.SendJSONSuccess(c, "Progress retrieved successfully", progress)
}
