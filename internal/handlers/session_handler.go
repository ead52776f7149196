package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talkgenius/interview-engine/internal/models"
	"github.com/talkgenius/interview-engine/internal/services"
	"github.com/talkgenius/interview-engine/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
	}
}

// ===== REQUEST STRUCTURES =====

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type UserQuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

type TranscriptRequest struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
	Final           bool    `json:"final"`
}

// ===== SESSION LIFECYCLE =====

// StartSession creates a new interview session from a candidate profile
func (h *SessionHandler) StartSession(c *gin.Context) {
	var profile models.InterviewProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting interview session", "job_title", profile.JobTitle)

	view, err := h.sessions.Start(c.Request.Context(), profile)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current view of a live session
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AbandonSession terminates a session without producing a completion record
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Abandoning interview session", "session_id", id)

	if err := h.sessions.Abandon(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session abandoned", nil)
}

// ===== ANSWER FLOW =====

// SubmitAnswer records the candidate's answer to the current question
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessions.SubmitAnswer(c.Request.Context(), id, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SkipQuestion records a skip for the current question and advances
func (h *SessionHandler) SkipQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessions.Skip(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Proceed advances past the feedback or corrected-answer review screens
func (h *SessionHandler) Proceed(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessions.Proceed(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AskInterviewer diverts the session into answering a candidate question
func (h *SessionHandler) AskInterviewer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req UserQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessions.AskInterviewer(c.Request.Context(), id, req.Question)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Resume returns from a candidate-question diversion to the interview
func (h *SessionHandler) Resume(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessions.Resume(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ===== SIGNAL INGESTION =====

// IngestFrame analyzes one camera frame and returns the behavioral snapshot
func (h *SessionHandler) IngestFrame(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var frame models.Frame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	snapshot, err := h.sessions.IngestFrame(c.Request.Context(), id, frame)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// IngestAudio analyzes one audio chunk and returns the voice snapshot
func (h *SessionHandler) IngestAudio(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var chunk models.AudioChunk
	if err := c.ShouldBindJSON(&chunk); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	snapshot, err := h.sessions.IngestAudio(c.Request.Context(), id, chunk)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// IngestTranscript feeds speech-recognition text into the analyzer. Final
// chunks accumulate into the answer transcript; interim ones overlay it.
func (h *SessionHandler) IngestTranscript(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessions.IngestTranscript(c.Request.Context(), id, req.Text, req.DurationSeconds, req.Final); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Transcript recorded", nil)
}
