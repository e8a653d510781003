package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every endpoint under /api. metrics, when non-nil,
// is served on /metrics.
func RegisterRoutes(r *gin.Engine, h *APIHandler, metrics gin.HandlerFunc) {
	if metrics != nil {
		r.GET("/metrics", metrics)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/init", h.InitHandler)

		assessmentGroup := apiGroup.Group("/assessment/:model")
		{
			assessmentGroup.GET("/questions", h.QuestionsHandler)
			assessmentGroup.POST("/start", h.StartAssessmentHandler)
			assessmentGroup.POST("/answer", h.AnswerHandler)
			assessmentGroup.POST("/score", h.ScoreHandler)
			assessmentGroup.GET("/result/:userID", h.GetResultHandler)
		}

		shuttleGroup := apiGroup.Group("/shuttles")
		{
			shuttleGroup.POST("/generate", h.GenerateShuttlesHandler)
			shuttleGroup.GET("/user/:userID", h.GetShuttlesHandler)
		}

		questGroup := apiGroup.Group("/quests")
		{
			questGroup.POST("/generate", h.GenerateQuestsHandler)
			questGroup.GET("/tree/:treeID", h.GetTreeHandler)
			questGroup.GET("/user/:userID", h.GetTreesForUserHandler)
			questGroup.POST("/:questID/complete", h.CompleteQuestHandler)
			questGroup.POST("/:questID/skip", h.SkipQuestHandler)
		}

		apiGroup.GET("/progress/:userID", h.GetProgressHandler)
	}
}
