package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GuestPrefix marks user IDs minted for anonymous visitors.
const GuestPrefix = "guest_"

// SendJSONError sends a standardized JSON error response and logs the internal error.
// For 5xx errors the client gets a generic message when publicMsg is empty or
// would leak internalError.
func SendJSONError(c *gin.Context, statusCode int, publicMsg string, internalError error, details ...string) {
	errorDetails := ""
	if len(details) > 0 {
		errorDetails = details[0]
	}

	response := gin.H{"error": publicMsg}
	if errorDetails != "" {
		response["details"] = errorDetails
	}

	fields := []zap.Field{
		zap.Int("status_code", statusCode),
		zap.String("public_message", publicMsg),
		zap.String("details", errorDetails),
		zap.String("path", c.Request.URL.Path),
	}
	log := zap.L().Named("Handler")
	switch {
	case internalError != nil && statusCode >= http.StatusInternalServerError:
		log.Error("Handler error", append(fields, zap.Error(internalError))...)
	case internalError != nil:
		log.Warn("Handler error", append(fields, zap.Error(internalError))...)
	default:
		log.Info("Handler response", fields...)
	}

	if statusCode >= http.StatusInternalServerError {
		if publicMsg == "" || (internalError != nil && publicMsg == internalError.Error()) {
			response["error"] = "An unexpected error occurred. Please try again later."
		}
	}

	c.AbortWithStatusJSON(statusCode, response)
}

// SendJSONSuccess writes the standard success envelope.
func SendJSONSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": message,
		"data":    data,
	})
}

// GenerateID returns a new random identifier.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateGuestID returns a new guest user ID.
func GenerateGuestID() string {
	return GuestPrefix + uuid.NewString()
}

// IsGuest reports whether userID belongs to an anonymous visitor.
func IsGuest(userID string) bool {
	return userID == "" || strings.HasPrefix(userID, GuestPrefix)
}
