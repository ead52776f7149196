package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/talkgenius/interview-engine/internal/services"
	"github.com/talkgenius/interview-engine/internal/utils"
)

type HandlerManager struct {
	sessionHandler   *SessionHandler
	interviewHandler *InterviewHandler
}

func NewHandlerManager(
	sessions services.SessionService,
	interviews services.InterviewService,
	reports services.ReportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:   NewSessionHandler(sessions, logger),
		interviewHandler: NewInterviewHandler(interviews, reports, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "interview-engine",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Live session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/answer", hm.sessionHandler.SubmitAnswer)
			sessions.POST("/:id/skip", hm.sessionHandler.SkipQuestion)
			sessions.POST("/:id/proceed", hm.sessionHandler.Proceed)
			sessions.POST("/:id/question", hm.sessionHandler.AskInterviewer)
			sessions.POST("/:id/resume", hm.sessionHandler.Resume)
			sessions.POST("/:id/abandon", hm.sessionHandler.AbandonSession)

			// Multimodal signal ingestion
			sessions.POST("/:id/frames", hm.sessionHandler.IngestFrame)
			sessions.POST("/:id/audio", hm.sessionHandler.IngestAudio)
			sessions.POST("/:id/transcript", hm.sessionHandler.IngestTranscript)
		}

		// Completed interview archive routes
		interviews := v1.Group("/interviews")
		{
			interviews.GET("", hm.interviewHandler.ListInterviews)
			interviews.GET("/export", hm.interviewHandler.ExportInterviewsCSV)
			interviews.GET("/:id", hm.interviewHandler.GetInterview)
			interviews.GET("/:id/summary", hm.interviewHandler.GetInterviewSummary)
			interviews.GET("/:id/report", hm.interviewHandler.ExportInterviewReport)
		}
	}
}
